package publisher

// SourceName is the snapshot.Config source value selecting publisher files.
const SourceName = "publisher"

// Config holds configuration for reading publisher data files.
type Config struct {
	// Source is the identifier source stamped on every publisher id.
	Source string `mapstructure:"source" default:"PublisherName.example"`
	// Dir is the directory scanned for publisher files.
	Dir string `mapstructure:"dir" default:"./publisher"`
}
