// Package validation checks livecoll configuration.
//
// Struct tag validation uses go-playground/validator, with field names
// taken from mapstructure tags so messages match the keys of config.yml.
// A small programmatic Validator covers cross-field rules that tags
// cannot express.
//
//	if err := validation.Validate(cfg); err != nil { ... }
//
//	v := validation.New()
//	v.OptionalUUID("runtime.id", cfg.Runtime.ID)
//	err := v.Validate()
package validation
