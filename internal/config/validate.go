package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateThumbnails(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.VaultDir == c.Paths.ThumbnailDir {
		return errors.New("paths.vault_dir and paths.thumbnail_dir must differ")
	}
	return nil
}

func (c *Config) validateThumbnails() error {
	if c.Thumbnails.Size < 16 || c.Thumbnails.Size > 4096 {
		return fmt.Errorf("thumbnails.size must be between 16 and 4096, got %d", c.Thumbnails.Size)
	}
	if c.Thumbnails.JPEGQuality < 1 || c.Thumbnails.JPEGQuality > 100 {
		return fmt.Errorf("thumbnails.jpeg_quality must be between 1 and 100, got %d", c.Thumbnails.JPEGQuality)
	}
	if !c.Thumbnails.Enabled {
		return nil
	}
	if c.Thumbnails.Workers <= 0 {
		return errors.New("thumbnails.workers must be positive")
	}
	if c.Thumbnails.QueueSize <= 0 {
		return errors.New("thumbnails.queue_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
