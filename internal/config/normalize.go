package config

import (
	"fmt"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeOneGame()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogDir) == "" {
		c.Paths.CatalogDir = defaultCatalogDir
	}
	if c.Paths.CatalogDir, err = expandPath(c.Paths.CatalogDir); err != nil {
		return fmt.Errorf("paths.catalog_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	roots := make([]string, 0, len(c.Paths.Roots))
	for _, root := range c.Paths.Roots {
		trimmed := strings.TrimSpace(root)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("paths.roots: %w", err)
		}
		roots = append(roots, expanded)
	}
	c.Paths.Roots = roots
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.Workers <= 0 {
		workers := runtime.GOMAXPROCS(0)
		if workers > maxWorkers {
			workers = maxWorkers
		}
		if workers < 1 {
			workers = 1
		}
		c.Scan.Workers = workers
	}
	if c.Scan.QueueDepth <= 0 {
		c.Scan.QueueDepth = defaultQueueDepth
	}
	if c.Scan.BatchSize <= 0 {
		c.Scan.BatchSize = defaultBatchSize
	}
	if c.Scan.BatchIntervalSeconds <= 0 {
		c.Scan.BatchIntervalSeconds = defaultBatchIntervalSeconds
	}
	// Zero disables the memory gate; the low watermark means nothing
	// without a high one. An absent key keeps the defaults because Load
	// decodes over Default().
	if c.Scan.MemoryHighWatermarkMiB < 0 {
		c.Scan.MemoryHighWatermarkMiB = 0
	}
	if c.Scan.MemoryHighWatermarkMiB == 0 {
		c.Scan.MemoryLowWatermarkMiB = 0
	} else if c.Scan.MemoryLowWatermarkMiB <= 0 {
		c.Scan.MemoryLowWatermarkMiB = c.Scan.MemoryHighWatermarkMiB * 3 / 4
	}
}

func (c *Config) normalizeOneGame() {
	c.OneGame.RegionPriority = trimList(c.OneGame.RegionPriority)
	c.OneGame.LanguagePriority = trimList(c.OneGame.LanguagePriority)
	if len(c.OneGame.RegionPriority) == 0 {
		c.OneGame.RegionPriority = append([]string(nil), defaultRegionPriority...)
	}
	if len(c.OneGame.LanguagePriority) == 0 {
		c.OneGame.LanguagePriority = append([]string(nil), defaultLanguagePriority...)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
