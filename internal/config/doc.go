// Package config defines the operator console configuration: the QoS
// profile catalog, the managed slices with their shaping endpoints, the
// use-case bindings used for auto-configuration, and the arbitration
// presets for the shared bottleneck.
//
// Configuration is a TOML file validated with go-playground/validator plus
// cross-field checks (duplicate identifiers, dangling references, HTB rate
// consistency). Every catalog section is optional in the file; missing
// sections are filled from the built-in reference-testbed catalog, and
// running without a file at all uses the built-in catalog unchanged.
package config
