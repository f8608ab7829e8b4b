package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SchemaVersion identifies the layout of the field table. Bump it when a
// field is added, removed or changes meaning.
const SchemaVersion = 1

// Field bounds.
const (
	MaxKeyLen   = 14
	MaxValueLen = 79
)

// Field keys.
const (
	KeyWiFiSSID     = "WIFISSID"
	KeyWiFiPass     = "WIFIPASS"
	KeyMQTTHost     = "MQTTHOST"
	KeyMQTTPort     = "MQTTPORT"
	KeyMQTTSecure   = "MQTTSECUR"
	KeyMQTTDeviceID = "MQTTDEVID"
	KeyMQTTUser     = "MQTTCLNT"
	KeyMQTTPass     = "MQTTPASS"
	KeyMQTTKeepAliv = "MQTTKPALIV"
	KeyMQTTDevPath  = "MQTTDEVPATH"
	KeySNTPHosts    = "SNTPHOSTS"
	KeyUTCOffset    = "UTCOFFSET"
	KeySNTPPoll     = "SNTPPOLL"
	KeyTime24       = "TIME24"
)

// MaxSNTPServers is the most servers the time-sync client is given.
const MaxSNTPServers = 4

// Field is one named configuration value.
type Field struct {
	Key      string
	Required bool
	Value    string
}

// NewField builds a Field, enforcing the key and value bounds.
func NewField(key string, required bool, value string) (Field, error) {
	if key == "" || len(key) > MaxKeyLen {
		return Field{}, fmt.Errorf("%w: key %q must be 1-%d bytes", ErrFieldBounds, key, MaxKeyLen)
	}
	if len(value) > MaxValueLen {
		return Field{}, fmt.Errorf("%w: %s value is %d bytes, max %d", ErrFieldBounds, key, len(value), MaxValueLen)
	}
	return Field{Key: key, Required: required, Value: value}, nil
}

// defaultFields is the compiled-in table, in its fixed order. Required
// fields without a sensible default are left empty and must be provisioned.
var defaultFields = []Field{
	{Key: KeyWiFiSSID, Required: true},
	{Key: KeyWiFiPass, Required: true},
	{Key: KeyMQTTHost, Required: true},
	{Key: KeyMQTTPort, Value: "1880"},
	{Key: KeyMQTTSecure, Value: "0"},
	{Key: KeyMQTTDeviceID, Value: "dev_id"},
	{Key: KeyMQTTUser},
	{Key: KeyMQTTPass},
	{Key: KeyMQTTKeepAliv, Value: "120"},
	{Key: KeyMQTTDevPath, Required: true, Value: "/home/lab/clock"},
	{Key: KeySNTPHosts, Value: "pool.ntp.org"},
	{Key: KeyUTCOffset, Value: "-28800"},
	{Key: KeySNTPPoll, Value: "3600000"},
	{Key: KeyTime24, Value: "0"},
}

// Static is the ordered field table for one node.
type Static struct {
	fields []Field
	index  map[string]int
}

// New returns the compiled-in table with overrides applied.
//
// Parameters:
//   - overrides: Per-node values keyed by field name (may be nil)
//
// Returns:
//   - *Static: The table
//   - error: ErrUnknownField, ErrFieldBounds or ErrInvalidValue for a bad override
func New(overrides map[string]string) (*Static, error) {
	s := &Static{
		fields: make([]Field, len(defaultFields)),
		index:  make(map[string]int, len(defaultFields)),
	}
	copy(s.fields, defaultFields)
	for i, f := range s.fields {
		s.index[f.Key] = i
	}

	for key, value := range overrides {
		i, ok := s.index[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		f, err := NewField(key, s.fields[i].Required, value)
		if err != nil {
			return nil, err
		}
		if isPersisted(key) && value != "" {
			// The store parses these without trimming.
			if _, err := strconv.Atoi(value); err != nil {
				return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
			}
		}
		s.fields[i] = f
	}
	return s, nil
}

func isPersisted(key string) bool {
	for _, k := range PersistedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Fields returns a copy of the table in order.
func (s *Static) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Get returns the value of key, or "" for an unknown key.
func (s *Static) Get(key string) string {
	if i, ok := s.index[key]; ok {
		return s.fields[i].Value
	}
	return ""
}

// Validate reports the first required field that is empty.
func (s *Static) Validate() error {
	for _, f := range s.fields {
		if f.Required && strings.TrimSpace(f.Value) == "" {
			return fmt.Errorf("%w: %s", ErrConfigMissingRequired, f.Key)
		}
	}
	return nil
}

// Int parses key as a decimal integer.
func (s *Static) Int(key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s.Get(key)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, s.Get(key))
	}
	return n, nil
}

// SNTPServers splits SNTPHOSTS on commas, dropping blanks. At most
// MaxSNTPServers are returned.
func (s *Static) SNTPServers() []string {
	var out []string
	for _, host := range strings.Split(s.Get(KeySNTPHosts), ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		out = append(out, host)
		if len(out) == MaxSNTPServers {
			break
		}
	}
	return out
}

// SNTPPollInterval returns SNTPPOLL, which is stored in milliseconds.
func (s *Static) SNTPPollInterval() (time.Duration, error) {
	ms, err := s.Int(KeySNTPPoll)
	if err != nil {
		return 0, err
	}
	if ms <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidValue, KeySNTPPoll)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// DevicePath is the topic prefix for this node.
func (s *Static) DevicePath() string {
	return strings.TrimRight(s.Get(KeyMQTTDevPath), "/")
}

// CommandTopic is where remote commands arrive.
func (s *Static) CommandTopic() string {
	return s.DevicePath() + "/command"
}

// StatusTopic is where command responses such as survey results go.
func (s *Static) StatusTopic() string {
	return s.DevicePath() + "/status"
}

// Broker describes the MQTT session parameters held in the table.
type Broker struct {
	Host      string
	Port      int
	TLS       bool
	DeviceID  string
	Username  string
	Password  string
	KeepAlive time.Duration
}

// Broker collects the MQTT fields.
func (s *Static) Broker() (Broker, error) {
	port, err := s.Int(KeyMQTTPort)
	if err != nil {
		return Broker{}, err
	}
	secure, err := s.Int(KeyMQTTSecure)
	if err != nil {
		return Broker{}, err
	}
	keepAlive, err := s.Int(KeyMQTTKeepAliv)
	if err != nil {
		return Broker{}, err
	}
	return Broker{
		Host:      s.Get(KeyMQTTHost),
		Port:      port,
		TLS:       secure != 0,
		DeviceID:  s.Get(KeyMQTTDeviceID),
		Username:  s.Get(KeyMQTTUser),
		Password:  s.Get(KeyMQTTPass),
		KeepAlive: time.Duration(keepAlive) * time.Second,
	}, nil
}
