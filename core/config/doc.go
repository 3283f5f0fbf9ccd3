// Package config provides configuration management for catalog-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: local store driver and connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Reconcile: the own source stamped on local identifiers
//   - Snapshot: snapshot source (dir, storage or publisher) and cache TTL
//   - Publisher: publisher file directory and identifier source
//
// Environment variables map to nested keys by replacing dots with underscores,
// e.g. RECONCILE_OWN_SOURCE sets reconcile.own_source.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
