package sqlscript

import "errors"

// Common errors used throughout the sqlscript package
var (
	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrUnknownEnvironment indicates a database environment name not present in the configuration.
	ErrUnknownEnvironment = errors.New("unknown database environment")
	// ErrNoConnection indicates neither an environment nor explicit connection settings were given.
	ErrNoConnection = errors.New("no database connection configured")
)
