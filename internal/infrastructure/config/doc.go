// Package config handles loading and validating netclock configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of the ambient sections (database, display, radio, API)
//   - Default value handling
//
// Per-node provisioning values (Wi-Fi credentials, broker, device path)
// are carried verbatim in Config.Fields and validated against the static
// field table by the settings package, not here.
//
// Security Considerations:
//   - Wi-Fi and broker passwords should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Display.Port)
package config
