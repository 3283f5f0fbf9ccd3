// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure for the listen port, the API key and whether the
// metrics endpoint is public.
//
// # Usage
//
// This package is embedded by core/config and read by the start command.
package server
