package snapshot

// Config holds configuration for locating snapshots.
type Config struct {
	// Source selects the provider: "dir" reads Dir, "storage" reads the object storage bucket.
	Source string `mapstructure:"source" default:"dir"`
	// Dir is the directory holding snapshot documents.
	Dir string `mapstructure:"dir" default:"./snapshots"`
	// Prefix is the object key prefix under which snapshots are stored.
	Prefix string `mapstructure:"prefix" default:"snapshots/"`
	// CacheTTLSeconds is how long a loaded snapshot is reused by the server. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
}

const (
	SourceDir     = "dir"
	SourceStorage = "storage"
)
