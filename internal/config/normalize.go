package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeThumbnails()
	c.normalizeImport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(libraryDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.LibraryDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}

	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}

	derived := []struct {
		key    string
		value  *string
		subdir string
	}{
		{"paths.vault_dir", &c.Paths.VaultDir, defaultVaultSubdir},
		{"paths.thumbnail_dir", &c.Paths.ThumbnailDir, defaultThumbnailSubdir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogSubdir},
	}
	for _, d := range derived {
		if strings.TrimSpace(*d.value) == "" {
			*d.value = filepath.Join(c.Paths.LibraryDir, filepath.FromSlash(d.subdir))
		}
		if *d.value, err = expandPath(*d.value); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeThumbnails() {
	c.Thumbnails.FFmpegBinary = strings.TrimSpace(c.Thumbnails.FFmpegBinary)
	if c.Thumbnails.FFmpegBinary == "" {
		c.Thumbnails.FFmpegBinary = defaultFFmpegBinary
	}
	c.Thumbnails.MagickBinary = strings.TrimSpace(c.Thumbnails.MagickBinary)
	if c.Thumbnails.MagickBinary == "" {
		c.Thumbnails.MagickBinary = defaultMagickBinary
	}
	if c.Thumbnails.TimeoutSeconds <= 0 {
		c.Thumbnails.TimeoutSeconds = defaultThumbnailTimeout
	}
}

func (c *Config) normalizeImport() {
	seen := make(map[string]struct{}, len(c.Import.AllowedExtensions))
	exts := make([]string, 0, len(c.Import.AllowedExtensions))
	for _, ext := range c.Import.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Import.AllowedExtensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
