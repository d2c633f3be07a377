// Package logging builds the zap loggers used throughout the module.
package logging
