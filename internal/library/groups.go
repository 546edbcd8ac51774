package library

import (
	"context"

	"assetvault/internal/assets"
	"assetvault/internal/logging"
	"assetvault/internal/requestctx"
)

// GetAssetVersions lists every member of the group containing id.
func (s *Service) GetAssetVersions(ctx context.Context, id int64) ([]*assets.Asset, error) {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, id), "get asset versions")
	return s.store.GetAssetVersions(ctx, id)
}

// CreateVersion adds a version to the group containing masterID, copies the
// root's content to the version's derived path, and queues a thumbnail. A
// failed content copy is logged; the version record stands.
func (s *Service) CreateVersion(ctx context.Context, masterID int64) (*assets.VersionRef, error) {
	ctx, logger := s.begin(requestctx.WithAssetID(ctx, masterID), "create version")
	ref, err := s.store.CreateVersion(ctx, masterID)
	if err != nil {
		return nil, err
	}

	created, err := s.store.GetAsset(ctx, ref.ID)
	if err != nil {
		logger.Warn("reload created version failed", logging.Int64("version_id", ref.ID), logging.Error(err))
		return ref, nil
	}
	root, err := s.store.GetAsset(ctx, created.GroupRoot())
	if err != nil {
		logger.Warn("load group root failed", logging.Int64("version_id", ref.ID), logging.Error(err))
		return ref, nil
	}
	if err := s.vault.CloneForVersion(ctx, root.Path, ref.Path); err != nil {
		logger.Warn("version content not cloned",
			logging.Int64("version_id", ref.ID),
			logging.String("path", ref.Path),
			logging.Error(err),
		)
		return ref, nil
	}
	s.queueThumbnail(ctx, created)
	return ref, nil
}

// PromoteVersion makes versionID the master of its group.
func (s *Service) PromoteVersion(ctx context.Context, versionID int64) error {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, versionID), "promote version")
	return s.store.PromoteVersion(ctx, versionID)
}

// RemoveFromGroup detaches versionID into a standalone master.
func (s *Service) RemoveFromGroup(ctx context.Context, versionID int64) error {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, versionID), "remove from group")
	return s.store.RemoveFromGroup(ctx, versionID)
}

// AddToGroup attaches the standalone asset assetID to masterID's group.
func (s *Service) AddToGroup(ctx context.Context, assetID, masterID int64) (*assets.VersionRef, error) {
	ctx, _ = s.begin(requestctx.WithAssetID(ctx, assetID), "add to group")
	return s.store.AddToGroup(ctx, assetID, masterID)
}
