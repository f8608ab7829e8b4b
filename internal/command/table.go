package command

import (
	"fmt"
	"strings"
)

// Kind is the value type a command accepts.
type Kind int

const (
	// KindAction takes no value; matching triggers an action.
	KindAction Kind = iota
	// KindInteger takes a signed integer.
	KindInteger
	// KindBoolean takes an integer normalised to 0 or 1.
	KindBoolean
)

// String returns the kind name used in logs and the status API.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Command names in the default table.
const (
	NameTime24    = "TIME24"
	NameUTCOffset = "UTCOFFSET"
	NameSurvey    = "SURVEY"
)

// Command is one table entry. Persisted entries mirror their value into the
// store under Name.
type Command struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Value     int    `json:"value"`
	Persisted bool   `json:"persisted"`
}

// Table is the ordered command table. It is owned by a single goroutine;
// use Snapshot to hand values to other goroutines.
type Table struct {
	entries []Command
}

// NewTable builds a table, rejecting duplicate names (case-insensitive).
func NewTable(cmds ...Command) (*Table, error) {
	seen := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		key := strings.ToUpper(c.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCommand, c.Name)
		}
		seen[key] = true
	}
	entries := make([]Command, len(cmds))
	copy(entries, cmds)
	return &Table{entries: entries}, nil
}

// DefaultTable returns the clock's command set.
func DefaultTable() *Table {
	return &Table{entries: []Command{
		{Name: NameTime24, Kind: KindInteger, Persisted: true},
		{Name: NameUTCOffset, Kind: KindInteger, Persisted: true},
		{Name: NameSurvey, Kind: KindAction},
	}}
}

// IntReader reads persisted integers.
type IntReader interface {
	GetInteger(key string) (int, error)
}

// LoadPersisted initialises every persisted entry from the store. Any
// read failure is reported as ErrStoreReadInconsistency; it is never
// silently defaulted.
func (t *Table) LoadPersisted(r IntReader) error {
	for i := range t.entries {
		c := &t.entries[i]
		if !c.Persisted {
			continue
		}
		v, err := r.GetInteger(c.Name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrStoreReadInconsistency, c.Name, err)
		}
		c.Value = v
	}
	return nil
}

// Value returns the cached value of name.
func (t *Table) Value(name string) (int, bool) {
	for _, c := range t.entries {
		if strings.EqualFold(c.Name, name) {
			return c.Value, true
		}
	}
	return 0, false
}

// Snapshot returns a copy of the entries in table order.
func (t *Table) Snapshot() []Command {
	out := make([]Command, len(t.entries))
	copy(out, t.entries)
	return out
}
