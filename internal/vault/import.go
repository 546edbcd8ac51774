package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"assetvault/internal/assets"
	"assetvault/internal/logging"
)

// Creator persists a newly stored file as a master asset.
type Creator interface {
	CreateAsset(ctx context.Context, in assets.NewAsset) (*assets.Asset, error)
}

// Metadata is applied to every asset created by one Import call.
type Metadata struct {
	Year       *int64
	Advertiser *string
	Niche      *string
	Shares     *int64
}

// ImportError explains why one source file was not imported.
type ImportError struct {
	FilePath string `json:"filePath"`
	Reason   string `json:"reason"`
}

// ImportResult lists what an Import call created and what it rejected.
type ImportResult struct {
	Imported []*assets.Asset
	Errors   []ImportError
	Skipped  []string
}

// Import copies each source file into the vault and records it as a master
// asset. Failures are collected per file and never stop the batch.
// Directories are skipped. Only cancellation of ctx is returned as an error,
// together with whatever was imported before it.
func (v *Vault) Import(ctx context.Context, creator Creator, sourcePaths []string, meta Metadata) (ImportResult, error) {
	logger := logging.WithContext(ctx, v.logger)
	result := ImportResult{}
	for _, src := range sourcePaths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		asset, skipped, err := v.importOne(ctx, creator, src, meta)
		switch {
		case skipped:
			result.Skipped = append(result.Skipped, src)
			logger.Debug("import skipped directory", logging.String("source", src))
		case err != nil:
			result.Errors = append(result.Errors, ImportError{FilePath: src, Reason: err.Error()})
			logger.Warn("import failed", logging.String("source", src), logging.Error(err))
		default:
			result.Imported = append(result.Imported, asset)
			logger.Info("asset imported",
				logging.Int64(logging.FieldAssetID, asset.ID),
				logging.String("source", src),
				logging.String("path", asset.Path),
				logging.String("mime_type", asset.MimeType),
			)
		}
	}
	return result, nil
}

func (v *Vault) importOne(ctx context.Context, creator Creator, src string, meta Metadata) (*assets.Asset, bool, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, false, fmt.Errorf("cannot read file: %w", err)
	}
	if info.IsDir() {
		return nil, true, nil
	}
	if !info.Mode().IsRegular() {
		return nil, false, fmt.Errorf("not a regular file")
	}
	if !v.allowed(filepath.Base(src)) {
		return nil, false, fmt.Errorf("file type %q is not allowed", filepath.Ext(src))
	}

	mimeType := DetectMIME(src)
	rel, copied, err := v.Store(src)
	if err != nil {
		return nil, false, fmt.Errorf("copy into vault: %w", err)
	}

	asset, err := creator.CreateAsset(ctx, assets.NewAsset{
		Path:       rel,
		MimeType:   mimeType,
		Size:       copied.Bytes,
		Year:       meta.Year,
		Advertiser: meta.Advertiser,
		Niche:      meta.Niche,
		Shares:     meta.Shares,
	})
	if err != nil {
		if rmErr := v.Remove(rel); rmErr != nil {
			v.logger.Warn("remove orphaned vault copy failed", logging.String("path", rel), logging.Error(rmErr))
		}
		return nil, false, err
	}
	return asset, false, nil
}
