package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 1 {
		return errors.New("scan.workers must be at least 1")
	}
	if c.Scan.QueueDepth < 1 {
		return errors.New("scan.queue_depth must be at least 1")
	}
	if c.Scan.BatchSize < 1 {
		return errors.New("scan.batch_size must be at least 1")
	}
	if c.Scan.MemoryHighWatermarkMiB > 0 && c.Scan.MemoryLowWatermarkMiB >= c.Scan.MemoryHighWatermarkMiB {
		return fmt.Errorf(
			"scan.memory_low_watermark_mib (%d) must be below scan.memory_high_watermark_mib (%d)",
			c.Scan.MemoryLowWatermarkMiB, c.Scan.MemoryHighWatermarkMiB,
		)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
