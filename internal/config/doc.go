// Package config defines the runtime configuration for couscous.
//
// Configuration flows in one direction: cobra flags (and an optional YAML
// file) populate a Config, Validate() checks it once before any worker
// starts, and the validated value is passed down via dependency injection.
// There is no global configuration state.
package config
