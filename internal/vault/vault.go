package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"assetvault/internal/config"
	"assetvault/internal/fileutil"
	"assetvault/internal/logging"
	"assetvault/internal/textutil"
)

const fallbackMIME = "application/octet-stream"

// Vault owns the directory holding every asset's content. Asset paths are
// stored relative to its root.
type Vault struct {
	root    string
	allowed func(name string) bool
	logger  *slog.Logger
}

// New prepares the vault directory described by cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Vault, error) {
	if cfg == nil {
		return nil, errors.New("vault: config is required")
	}
	root := strings.TrimSpace(cfg.Paths.VaultDir)
	if root == "" {
		return nil, errors.New("vault: vault_dir is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create %s: %w", root, err)
	}
	return &Vault{
		root:    root,
		allowed: cfg.ExtensionAllowed,
		logger:  logging.NewComponentLogger(logger, "vault"),
	}, nil
}

// Root returns the vault directory.
func (v *Vault) Root() string {
	return v.root
}

// Abs resolves a vault-relative asset path. Paths that are absolute or climb
// out of the vault are rejected.
func (v *Vault) Abs(rel string) (string, error) {
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("vault: %q is not a vault-relative path", rel)
	}
	return filepath.Join(v.root, rel), nil
}

// Exists reports whether the content for rel is present.
func (v *Vault) Exists(rel string) bool {
	abs, err := v.Abs(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Store copies src into the vault under a fresh collision-free name and
// returns the vault-relative path.
func (v *Vault) Store(src string) (string, fileutil.CopyResult, error) {
	rel := newObjectName(src)
	abs, err := v.Abs(rel)
	if err != nil {
		return "", fileutil.CopyResult{}, err
	}
	result, err := fileutil.CopyFileVerified(src, abs)
	if err != nil {
		return "", fileutil.CopyResult{}, err
	}
	return rel, result, nil
}

// CloneForVersion copies the content of rootRel to newRel. The destination
// must not exist yet.
func (v *Vault) CloneForVersion(ctx context.Context, rootRel, newRel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := v.Abs(rootRel)
	if err != nil {
		return err
	}
	dst, err := v.Abs(newRel)
	if err != nil {
		return err
	}
	result, err := fileutil.CopyFileVerified(src, dst)
	if err != nil {
		return fmt.Errorf("vault: clone %s to %s: %w", rootRel, newRel, err)
	}
	logging.WithContext(ctx, v.logger).Debug("version content cloned",
		logging.String("source", rootRel),
		logging.String("path", newRel),
		logging.Int64("bytes", result.Bytes),
	)
	return nil
}

// Remove deletes the content for rel. Missing files are not an error.
func (v *Vault) Remove(rel string) error {
	abs, err := v.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("vault: remove %s: %w", rel, err)
	}
	return nil
}

// DetectMIME sniffs the content type of path, falling back to the extension
// when the content is not recognised. Parameters such as charset are dropped.
func DetectMIME(path string) string {
	detected := ""
	if mt, err := mimetype.DetectFile(path); err == nil && !mt.Is(fallbackMIME) {
		detected = mt.String()
	}
	if detected == "" || strings.HasPrefix(detected, "text/plain") {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
			detected = byExt
		}
	}
	if detected == "" {
		return fallbackMIME
	}
	if base, _, err := mime.ParseMediaType(detected); err == nil {
		return base
	}
	return detected
}

func newObjectName(src string) string {
	return uuid.NewString()[:8] + "-" + textutil.SanitizeFileName(filepath.Base(src))
}
