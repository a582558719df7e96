// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings and the derived values the
// Fiber app is built with.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key, the request body limit and
// the read timeout.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the start command to configure Fiber.
package server
