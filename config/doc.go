// Package config loads and validates livecoll runtime configuration.
//
// Values come from config.yml, a .env file and the process environment, in
// increasing priority, decoded with Viper on top of Default.
//
// # Usage
//
//	cfg, err := config.Load("feeds", config.WithEnvPrefix("FEEDS"))
//
// With a prefix, FEEDS_RUNTIME_DEFAULT_THROTTLE=200ms sets
// runtime.default_throttle.
package config
