// Package helper provides testing utilities and log handlers for the sales generator test suites.
//
// This package contains shared testing infrastructure including custom log handlers
// for capturing and validating log output during tests, a metrics collector spy,
// and a file-backed SQLite database carrying the generator's schema.
package helper
