// Package config defines the application configuration structure and
// loading logic. Configuration is sourced from environment variables
// (prefixed with DUVET_) and an optional config file, with environment
// variables taking precedence.
//
// Database role credentials are deliberately NOT validated at load time:
// a missing credential is reported by the database access layer at first
// use, so that commands which never touch the database (for example
// printing help text) do not require a full credential set.
package config
