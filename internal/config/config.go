// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; file and environment layers override them.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MongoURI points at the document store. When empty the service runs
	// on the in-memory store.
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase names the database holding the collections.
	MongoDatabase string `koanf:"mongo_database"`

	// CollectionPrefix is prepended to every collection name, which lets
	// several deployments share one database.
	CollectionPrefix string `koanf:"collection_prefix"`

	// MaxPageSize caps the count parameter of ranked reads.
	MaxPageSize int `koanf:"max_page_size"`

	// AdminSecret signs and verifies admin bearer tokens. Empty disables
	// the guard on definition-management routes.
	AdminSecret string `koanf:"admin_secret"`

	// ShutdownGraceSeconds bounds how long shutdown waits for in-flight
	// requests before the listener is torn down.
	ShutdownGraceSeconds int `koanf:"shutdown_grace_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		MongoDatabase:        "gamekeep",
		MaxPageSize:          1000,
		ShutdownGraceSeconds: 10,
	}
}
