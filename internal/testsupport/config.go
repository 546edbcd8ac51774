package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"assetvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Thumbnails are disabled unless WithThumbnails is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.VaultDir = filepath.Join(base, "library", "vault")
	cfgVal.Paths.ThumbnailDir = filepath.Join(base, "library", "cache", "thumbnails")
	cfgVal.Paths.LogDir = filepath.Join(base, "library", "logs")
	cfgVal.Thumbnails.Enabled = false
	cfgVal.Thumbnails.Workers = 1
	cfgVal.Thumbnails.TimeoutSeconds = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithThumbnails enables thumbnail generation on the test config.
func WithThumbnails() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Thumbnails.Enabled = true
	}
}

// WithAllowedExtensions overrides the import extension allow-list.
func WithAllowedExtensions(exts ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.AllowedExtensions = exts
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub writes a few bytes to its last argument,
// which is where ffmpeg and magick put their output. If names is empty,
// ffmpeg and magick are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		writeStubs(b, "#!/bin/sh\nfor last; do :; done\nprintf 'stub' > \"$last\"\n", names)
	}
}

// WithFailingBinaries writes stubs that exit non-zero without output.
func WithFailingBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		writeStubs(b, "#!/bin/sh\necho boom >&2\nexit 1\n", names)
	}
}

func writeStubs(b *configBuilder, script string, names []string) {
	if len(names) == 0 {
		names = []string{"ffmpeg", "magick"}
	}
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", name, err)
		}
	}
	b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
