package command

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Persister makes accepted values durable.
type Persister interface {
	UpdateNumber(ctx context.Context, key string, n int) error
}

// ActionFunc runs when an action command matches.
type ActionFunc func(ctx context.Context)

// Result describes an applied command.
type Result struct {
	Name  string
	Kind  Kind
	Value int
}

// Dispatcher applies inbound command text to a Table.
type Dispatcher struct {
	table   *Table
	store   Persister
	actions map[string]ActionFunc
	logger  Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards output.
func NewDispatcher(table *Table, store Persister, logger Logger) *Dispatcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Dispatcher{
		table:   table,
		store:   store,
		actions: make(map[string]ActionFunc),
		logger:  logger,
	}
}

// OnAction registers fn for the action command name.
func (d *Dispatcher) OnAction(name string, fn ActionFunc) {
	d.actions[strings.ToUpper(name)] = fn
}

// Dispatch matches text against the table and applies the first entry
// that accepts it.
//
// An entry accepts the text when its name is a case-insensitive prefix of
// text and, for Integer and Boolean kinds, the remainder scans as an
// integer. A scan failure moves on to the next entry.
//
// Returns:
//   - Result: The applied command (valid whenever a command matched)
//   - error: ErrNoMatchingCommand when nothing matched; ErrStorePersist
//     when the value was applied but could not be persisted
func (d *Dispatcher) Dispatch(ctx context.Context, text string) (Result, error) {
	for i := range d.table.entries {
		c := &d.table.entries[i]
		if len(text) < len(c.Name) || !strings.EqualFold(text[:len(c.Name)], c.Name) {
			continue
		}

		if c.Kind == KindAction {
			d.runAction(ctx, c.Name)
			return Result{Name: c.Name, Kind: c.Kind}, nil
		}

		v, ok := scanInt(text[len(c.Name):])
		if !ok {
			d.logger.Debug("command value did not scan, trying next entry", "command", c.Name, "text", text)
			continue
		}
		if c.Kind == KindBoolean && v != 0 {
			v = 1
		}

		c.Value = v
		res := Result{Name: c.Name, Kind: c.Kind, Value: v}
		d.logger.Info("command applied", "command", c.Name, "value", v)

		if !c.Persisted {
			return res, nil
		}
		if err := d.store.UpdateNumber(ctx, c.Name, v); err != nil {
			d.logger.Error("command value not persisted", "command", c.Name, "value", v, "error", err)
			return res, fmt.Errorf("%w: %s: %w", ErrStorePersist, c.Name, err)
		}
		return res, nil
	}

	d.logger.Warn("no matching command", "text", text)
	return Result{}, fmt.Errorf("%w: %q", ErrNoMatchingCommand, text)
}

func (d *Dispatcher) runAction(ctx context.Context, name string) {
	fn, ok := d.actions[strings.ToUpper(name)]
	if !ok {
		d.logger.Warn("action command has no handler", "command", name)
		return
	}
	d.logger.Info("command action", "command", name)
	fn(ctx)
}
