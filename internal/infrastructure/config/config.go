package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the clock appliance.
// All configuration is loaded from YAML and can be overridden by environment variables.
//
// The Fields map carries per-node provisioning values (Wi-Fi credentials,
// broker address, device path, ...) keyed by their static field name. They
// are applied on top of the compiled-in defaults by the settings package.
type Config struct {
	Fields    map[string]string `yaml:"fields"`
	Database  DatabaseConfig    `yaml:"database"`
	MQTT      MQTTConfig        `yaml:"mqtt"`
	TimeSync  TimeSyncConfig    `yaml:"timesync"`
	Display   DisplayConfig     `yaml:"display"`
	Radio     RadioConfig       `yaml:"radio"`
	API       APIConfig         `yaml:"api"`
	WebSocket WebSocketConfig   `yaml:"websocket"`
	InfluxDB  InfluxDBConfig    `yaml:"influxdb"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig contains SQLite settings for the persistent key/value store.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains session tuning that is not part of the node's
// provisioning fields. Broker address and credentials live in Fields.
type MQTTConfig struct {
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// TimeSyncConfig contains SNTP client settings.
type TimeSyncConfig struct {
	// QueryTimeout is the per-server request timeout in seconds.
	QueryTimeout int `yaml:"query_timeout"`
}

// DisplayConfig contains the serial 7-segment display settings.
type DisplayConfig struct {
	// Port is the serial device, e.g. /dev/ttyUSB0. Empty disables the UART
	// transport; frames are still mirrored to WebSocket clients.
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// TickInterval is the render period in milliseconds.
	TickInterval int `yaml:"tick_interval"`
}

// RadioConfig contains wireless interface settings.
type RadioConfig struct {
	Interface string `yaml:"interface"`

	// Managed starts and supervises wpa_supplicant. When false the
	// association is expected to be handled by the host OS.
	Managed          bool   `yaml:"managed"`
	SupplicantBinary string `yaml:"supplicant_binary"`
	SupplicantConfig string `yaml:"supplicant_config"`
	IWBinary         string `yaml:"iw_binary"`

	// PollInterval is how often the interface address is checked, in seconds.
	PollInterval int `yaml:"poll_interval"`
}

// APIConfig contains HTTP status server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket display mirror settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// fieldEnvOverrides maps environment variables onto provisioning fields.
// Secrets should be supplied this way rather than committed to the file.
var fieldEnvOverrides = map[string]string{
	"NETCLOCK_WIFISSID": "WIFISSID",
	"NETCLOCK_WIFIPASS": "WIFIPASS",
	"NETCLOCK_MQTTHOST": "MQTTHOST",
	"NETCLOCK_MQTTCLNT": "MQTTCLNT",
	"NETCLOCK_MQTTPASS": "MQTTPASS",
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Fields: map[string]string{},
		Database: DatabaseConfig{
			Path:        "./data/netclock.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		TimeSync: TimeSyncConfig{
			QueryTimeout: 5,
		},
		Display: DisplayConfig{
			Baud:         9600,
			TickInterval: 1000,
		},
		Radio: RadioConfig{
			Interface:        "wlan0",
			SupplicantBinary: "/sbin/wpa_supplicant",
			SupplicantConfig: "/run/netclock/wpa_supplicant.conf",
			IWBinary:         "/usr/sbin/iw",
			PollInterval:     2,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 1024,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if cfg.Fields == nil {
		cfg.Fields = map[string]string{}
	}
	for env, key := range fieldEnvOverrides {
		if v := os.Getenv(env); v != "" {
			cfg.Fields[key] = v
		}
	}

	if v := os.Getenv("NETCLOCK_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NETCLOCK_DISPLAY_PORT"); v != "" {
		cfg.Display.Port = v
	}
	if v := os.Getenv("NETCLOCK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the ambient configuration for errors. Provisioning fields
// are validated separately against the static field table.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Display.Port != "" && c.Display.Baud <= 0 {
		errs = append(errs, "display.baud must be positive")
	}
	if c.Display.TickInterval <= 0 {
		errs = append(errs, "display.tick_interval must be positive")
	}

	if c.Radio.Interface == "" {
		errs = append(errs, "radio.interface is required")
	}
	if c.Radio.Managed && c.Radio.SupplicantBinary == "" {
		errs = append(errs, "radio.supplicant_binary is required when radio.managed is set")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetTickInterval returns the display render period as a Duration.
func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.Display.TickInterval) * time.Millisecond
}

// GetRadioPollInterval returns the interface address poll period as a Duration.
func (c *Config) GetRadioPollInterval() time.Duration {
	return time.Duration(c.Radio.PollInterval) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
