package library

import (
	"context"

	"assetvault/internal/assets"
	"assetvault/internal/logging"
	"assetvault/internal/requestctx"
	"assetvault/internal/textutil"
	"assetvault/internal/vault"
)

// CreateAsset records an asset whose content is already in the vault at
// in.Path and queues its thumbnail.
func (s *Service) CreateAsset(ctx context.Context, in assets.NewAsset) (*assets.Asset, error) {
	ctx, _ = s.begin(ctx, "create asset")
	in.Advertiser = normalizeLabelPtr(in.Advertiser)
	in.Niche = normalizeLabelPtr(in.Niche)
	asset, err := s.store.CreateAsset(ctx, in)
	if err != nil {
		return nil, err
	}
	s.queueThumbnail(ctx, asset)
	return asset, nil
}

// GetAssets lists assets matching filter.
func (s *Service) GetAssets(ctx context.Context, filter assets.Filter) ([]*assets.Asset, error) {
	ctx, _ = s.begin(ctx, "get assets")
	return s.store.List(ctx, filter)
}

// GetAsset fetches one asset.
func (s *Service) GetAsset(ctx context.Context, id int64) (*assets.Asset, error) {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, id), "get asset")
	return s.store.GetAsset(ctx, id)
}

// UpdateAsset applies patch to one asset and returns the updated row.
func (s *Service) UpdateAsset(ctx context.Context, id int64, patch assets.Patch) (*assets.Asset, error) {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, id), "update asset")
	return s.store.Update(ctx, id, normalizePatch(patch))
}

// DeleteAsset removes an asset. With purge set, its vault content and
// thumbnail are deleted too; cleanup failures are logged, not returned, since
// the record is already gone.
func (s *Service) DeleteAsset(ctx context.Context, id int64, purge bool) error {
	ctx, logger := s.begin(requestctx.WithAssetID(ctx, id), "delete asset")
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !purge {
		return nil
	}
	if err := s.vault.Remove(deleted.Path); err != nil {
		logger.Warn("purge vault content failed", logging.String("path", deleted.Path), logging.Error(err))
	}
	if err := s.thumbs.Remove(deleted.ID); err != nil {
		logger.Warn("purge thumbnail failed", logging.Error(err))
	}
	return nil
}

// BulkUpdateAssets applies one patch to many assets. Rows are independent:
// a failing id is reported in the result and the others still apply.
func (s *Service) BulkUpdateAssets(ctx context.Context, ids []int64, patch assets.Patch) (assets.BulkResult, error) {
	ctx, _ = s.begin(ctx, "bulk update assets")
	return s.store.BulkUpdate(ctx, ids, normalizePatch(patch))
}

// Import copies files into the vault, records each as a master, and queues
// thumbnails for everything imported.
func (s *Service) Import(ctx context.Context, paths []string, meta vault.Metadata) (vault.ImportResult, error) {
	ctx, logger := s.begin(ctx, "import")
	meta.Advertiser = normalizeLabelPtr(meta.Advertiser)
	meta.Niche = normalizeLabelPtr(meta.Niche)
	result, err := s.vault.Import(ctx, s.store, paths, meta)
	for _, asset := range result.Imported {
		s.queueThumbnail(ctx, asset)
	}
	logger.Info("import finished",
		logging.Int("requested", len(paths)),
		logging.Int("imported", len(result.Imported)),
		logging.Int("failed", len(result.Errors)),
		logging.Int("skipped", len(result.Skipped)),
	)
	return result, err
}

func normalizeLabelPtr(v *string) *string {
	if v == nil {
		return nil
	}
	n := textutil.NormalizeLabel(*v)
	if n == "" {
		return nil
	}
	return &n
}

// normalizePatch tidies free-text labels; a label that is blank after
// trimming clears the column.
func normalizePatch(p assets.Patch) assets.Patch {
	p.Advertiser = normalizeLabelField(p.Advertiser)
	p.Niche = normalizeLabelField(p.Niche)
	return p
}

func normalizeLabelField(f assets.Field[string]) assets.Field[string] {
	v, ok := f.Value()
	if !ok {
		return f
	}
	if n := textutil.NormalizeLabel(v); n != "" {
		return assets.Set(n)
	}
	return assets.Clear[string]()
}
