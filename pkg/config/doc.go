// Package config loads the reminder configuration from an optional YAML file,
// a .env file and environment variables, and resolves the sender credential
// from the OS keyring when it is not configured directly.
package config
