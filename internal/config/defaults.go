package config

const (
	defaultDataDir              = "~/.local/share/romdex"
	defaultCatalogDir           = "~/.local/share/romdex/catalogs"
	defaultLogDir               = "~/.local/share/romdex/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultQueueDepth           = 256
	defaultBatchSize            = 200
	defaultBatchIntervalSeconds = 5
	defaultMemoryHighMiB        = 1024
	defaultMemoryLowMiB         = 768

	// maxWorkers caps derived parallelism; hashing saturates most disks
	// well before eight streams.
	maxWorkers = 8
)

var defaultRegionPriority = []string{"USA", "World", "Europe", "Japan"}

var defaultLanguagePriority = []string{"En"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			CatalogDir: defaultCatalogDir,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			Workers:                0,
			QueueDepth:             defaultQueueDepth,
			BatchSize:              defaultBatchSize,
			BatchIntervalSeconds:   defaultBatchIntervalSeconds,
			SkipHidden:             true,
			IncludeArchiveFiles:    false,
			MemoryHighWatermarkMiB: defaultMemoryHighMiB,
			MemoryLowWatermarkMiB:  defaultMemoryLowMiB,
		},
		OneGame: OneGame{
			RegionPriority:   append([]string(nil), defaultRegionPriority...),
			LanguagePriority: append([]string(nil), defaultLanguagePriority...),
			PreferParent:     true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
