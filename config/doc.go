// Package config loads the sales generator configuration from the environment
// and provides factory functions for the store connection and the logger.
//
// Every setting has a default, so the generator starts against a local database without any
// environment at all. The store is always opened with a single connection.
package config
