// Package logger provides structured logging for livecoll using zerolog.
//
// A reactive.Runtime carries one *Logger; engines derive component-scoped
// loggers from it and log only at debug level (rebuild fallbacks,
// disposal). The runtime default is Nop, so an unconfigured library stays
// silent.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "inventory")
//	rt := reactive.NewRuntime(reactive.WithLogger(log))
package logger
