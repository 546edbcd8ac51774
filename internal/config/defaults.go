package config

import "time"

const (
	defaultConfigPath           = "~/.config/assetvault/config.toml"
	defaultLibraryDir           = "~/.local/share/assetvault"
	defaultVaultSubdir          = "vault"
	defaultThumbnailSubdir      = "cache/thumbnails"
	defaultLogSubdir            = "logs"
	databaseFileName            = "library.db"
	logFileName                 = "assetvault.log"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultThumbnailSize        = 256
	defaultThumbnailJPEGQuality = 80
	defaultThumbnailWorkers     = 2
	defaultThumbnailQueueSize   = 100
	defaultThumbnailTimeout     = 60
	defaultFFmpegBinary         = "ffmpeg"
	defaultMagickBinary         = "magick"
	libraryDirEnv               = "ASSETVAULT_LIBRARY_DIR"
)

var defaultAllowedExtensions = []string{"jpg", "jpeg", "png", "gif", "mp4", "mov", "avi", "webm", "pdf"}

// Default returns a Config populated with repository defaults. Vault,
// thumbnail, and log directories are left empty and derived from the library
// directory during normalization.
func Default() Config {
	exts := make([]string, len(defaultAllowedExtensions))
	copy(exts, defaultAllowedExtensions)
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
		},
		Thumbnails: Thumbnails{
			Enabled:        true,
			Size:           defaultThumbnailSize,
			JPEGQuality:    defaultThumbnailJPEGQuality,
			Workers:        defaultThumbnailWorkers,
			QueueSize:      defaultThumbnailQueueSize,
			FFmpegBinary:   defaultFFmpegBinary,
			MagickBinary:   defaultMagickBinary,
			TimeoutSeconds: defaultThumbnailTimeout,
		},
		Import: Import{
			AllowedExtensions: exts,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// ThumbnailTimeout returns the per-job limit for external thumbnail tools.
func (c *Config) ThumbnailTimeout() time.Duration {
	return time.Duration(c.Thumbnails.TimeoutSeconds) * time.Second
}
