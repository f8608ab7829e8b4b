// Package logging provides structured logging for netclock.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the appliance.
//
// # Features
//
//   - JSON output for deployed units (machine-parsable)
//   - Text output for bench work (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("display opened", "port", "/dev/ttyUSB0")
//
// Never log Wi-Fi or broker passwords.
package logging
