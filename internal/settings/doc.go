// Package settings holds the clock's static field table and the first-boot
// seeding of the runtime-adjustable fields into the persistent store.
//
// The table is fixed and ordered. Each field carries a compiled-in default
// which may be overridden per node from the fields section of config.yaml.
// Fields marked required must be non-empty before any connection attempt.
package settings
