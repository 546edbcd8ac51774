package assets

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"regexp"
	"strings"

	"assetvault/internal/logging"
)

// ResolveGroupRoot returns the id of the master of the group containing id.
// A master resolves to itself.
func (s *Store) ResolveGroupRoot(ctx context.Context, id int64) (int64, error) {
	return resolveGroupRoot(ensureContext(ctx), s.db, "resolve group root", id)
}

// resolveGroupRoot is the only place group membership is turned into a root
// id; every group operation goes through it.
func resolveGroupRoot(ctx context.Context, q querier, operation string, id int64) (int64, error) {
	asset, err := getAsset(ctx, q, operation, id)
	if err != nil {
		return 0, err
	}
	return asset.GroupRoot(), nil
}

// loadGroupRoot resolves id to its root and loads the root row. A root that
// is itself a version means the table is no longer flat.
func loadGroupRoot(ctx context.Context, q querier, operation string, id int64) (*Asset, error) {
	rootID, err := resolveGroupRoot(ctx, q, operation, id)
	if err != nil {
		return nil, err
	}
	root, err := getAsset(ctx, q, operation, rootID)
	if err != nil {
		return nil, err
	}
	if !root.IsMaster() {
		return nil, wrap(ErrInvalidState, operation,
			fmt.Sprintf("group root %d is itself a version of %d", root.ID, *root.MasterID), nil)
	}
	return root, nil
}

// maxVersionNo returns the highest version number in the group rooted at
// rootID, ignoring excludeID (pass 0 to include every member).
func maxVersionNo(ctx context.Context, q querier, rootID, excludeID int64) (int64, error) {
	var maxNo sql.NullInt64
	err := q.QueryRowContext(ctx,
		`SELECT MAX(version_no) FROM assets WHERE (id = ? OR master_id = ?) AND id <> ?`,
		rootID, rootID, excludeID,
	).Scan(&maxNo)
	if err != nil {
		return 0, fmt.Errorf("max version number: %w", err)
	}
	if !maxNo.Valid {
		return 0, nil
	}
	return maxNo.Int64, nil
}

func countVersions(ctx context.Context, q querier, masterID int64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(1) FROM assets WHERE master_id = ?", masterID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return n, nil
}

var versionSuffix = regexp.MustCompile(`_v[0-9]+$`)

// DerivedVersionPath names the content of version n of the asset stored at
// rootPath: "<dir>/<stem>_v<n><ext>". A trailing _v<digits> on the stem is
// replaced rather than stacked, so a promoted version's children stay short.
func DerivedVersionPath(rootPath string, n int64) string {
	dir, base := path.Split(rootPath)
	ext := path.Ext(base)
	stem := versionSuffix.ReplaceAllString(strings.TrimSuffix(base, ext), "")
	return dir + fmt.Sprintf("%s_v%d%s", stem, n, ext)
}

// CreateVersion adds a new version to the group containing masterID. The new
// row copies the root's content and business metadata, takes the next free
// version number, and starts without a thumbnail.
func (s *Store) CreateVersion(ctx context.Context, masterID int64) (*VersionRef, error) {
	const op = "create version"
	ctx = ensureContext(ctx)
	var ref VersionRef
	err := s.mutateGroup(ctx, func(tx *sql.Tx) error {
		root, err := loadGroupRoot(ctx, tx, op, masterID)
		if err != nil {
			return err
		}
		maxNo, err := maxVersionNo(ctx, tx, root.ID, 0)
		if err != nil {
			return err
		}
		next := maxNo + 1
		newPath := DerivedVersionPath(root.Path, next)

		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM assets WHERE path = ?", newPath).Scan(&exists); err != nil {
			return fmt.Errorf("check derived path: %w", err)
		}
		if exists > 0 {
			return wrap(ErrConflict, op, fmt.Sprintf("path %q already exists", newPath), nil)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO assets (path, mime_type, size, created_at, year, advertiser, niche, shares, master_id, version_no, thumbnail_path)
			 SELECT ?, mime_type, size, ?, year, advertiser, niche, shares, id, ?, NULL FROM assets WHERE id = ?`,
			newPath, formatTime(nowUTC()), next, root.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return wrap(ErrConflict, op, fmt.Sprintf("path %q or version %d already taken", newPath, next), err)
			}
			return fmt.Errorf("insert version: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("version id: %w", err)
		}
		ref = VersionRef{ID: id, VersionNo: next, Path: newPath}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, s.logger).Info("version created",
		logging.Int64(logging.FieldAssetID, ref.ID),
		logging.Int64("master_id", masterID),
		logging.Int64("version_no", ref.VersionNo),
	)
	return &ref, nil
}

// PromoteVersion makes versionID the master of its group. The old master
// becomes a version numbered after every other member, and the remaining
// siblings are re-pointed at the new master. Membership does not change.
func (s *Store) PromoteVersion(ctx context.Context, versionID int64) error {
	const op = "promote version"
	ctx = ensureContext(ctx)
	var oldMasterID, oldMasterNo int64
	err := s.mutateGroup(ctx, func(tx *sql.Tx) error {
		target, err := getAsset(ctx, tx, op, versionID)
		if err != nil {
			return err
		}
		if target.IsMaster() {
			versions, err := countVersions(ctx, tx, target.ID)
			if err != nil {
				return err
			}
			if versions > 0 {
				return wrap(ErrInvalidState, op, fmt.Sprintf("asset %d is already the master", versionID), nil)
			}
			return wrap(ErrInvalidState, op, fmt.Sprintf("asset %d is not part of a group", versionID), nil)
		}

		oldMasterID, err = resolveGroupRoot(ctx, tx, op, versionID)
		if err != nil {
			return err
		}
		maxNo, err := maxVersionNo(ctx, tx, oldMasterID, versionID)
		if err != nil {
			return err
		}
		oldMasterNo = maxNo + 1

		if _, err := tx.ExecContext(ctx,
			"UPDATE assets SET master_id = NULL, version_no = 1 WHERE id = ?", versionID); err != nil {
			return fmt.Errorf("promote %d: %w", versionID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE assets SET master_id = ?, version_no = ? WHERE id = ?", versionID, oldMasterNo, oldMasterID); err != nil {
			return fmt.Errorf("demote %d: %w", oldMasterID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE assets SET master_id = ? WHERE master_id = ?", versionID, oldMasterID); err != nil {
			return fmt.Errorf("re-point siblings of %d: %w", oldMasterID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Info("version promoted",
		logging.Int64(logging.FieldAssetID, versionID),
		logging.Int64("previous_master_id", oldMasterID),
		logging.Int64("previous_master_version_no", oldMasterNo),
	)
	return nil
}

// RemoveFromGroup detaches versionID into a standalone master. Siblings keep
// their numbers, so the group may have gaps afterwards.
func (s *Store) RemoveFromGroup(ctx context.Context, versionID int64) error {
	const op = "remove from group"
	ctx = ensureContext(ctx)
	err := s.mutateGroup(ctx, func(tx *sql.Tx) error {
		target, err := getAsset(ctx, tx, op, versionID)
		if err != nil {
			return err
		}
		if target.IsMaster() {
			return wrap(ErrInvalidState, op, fmt.Sprintf("asset %d is not a version", versionID), nil)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE assets SET master_id = NULL, version_no = 1 WHERE id = ?", versionID); err != nil {
			return fmt.Errorf("detach %d: %w", versionID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Info("version detached", logging.Int64(logging.FieldAssetID, versionID))
	return nil
}

// AddToGroup attaches the standalone asset assetID to the group containing
// masterID as its next version.
func (s *Store) AddToGroup(ctx context.Context, assetID, masterID int64) (*VersionRef, error) {
	const op = "add to group"
	ctx = ensureContext(ctx)
	var ref VersionRef
	err := s.mutateGroup(ctx, func(tx *sql.Tx) error {
		root, err := loadGroupRoot(ctx, tx, op, masterID)
		if err != nil {
			return err
		}
		asset, err := getAsset(ctx, tx, op, assetID)
		if err != nil {
			return err
		}
		if !asset.IsMaster() {
			return wrap(ErrInvalidState, op, fmt.Sprintf("asset %d is already in a group", assetID), nil)
		}
		if asset.ID == root.ID {
			return wrap(ErrInvalidState, op, fmt.Sprintf("asset %d is the master of that group", assetID), nil)
		}
		versions, err := countVersions(ctx, tx, asset.ID)
		if err != nil {
			return err
		}
		if versions > 0 {
			return wrap(ErrInvalidState, op, fmt.Sprintf("asset %d has versions", assetID), nil)
		}
		maxNo, err := maxVersionNo(ctx, tx, root.ID, 0)
		if err != nil {
			return err
		}
		next := maxNo + 1
		if _, err := tx.ExecContext(ctx,
			"UPDATE assets SET master_id = ?, version_no = ? WHERE id = ?", root.ID, next, asset.ID); err != nil {
			return fmt.Errorf("attach %d: %w", assetID, err)
		}
		ref = VersionRef{ID: asset.ID, VersionNo: next, Path: asset.Path}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, s.logger).Info("asset attached to group",
		logging.Int64(logging.FieldAssetID, assetID),
		logging.Int64("master_id", masterID),
		logging.Int64("version_no", ref.VersionNo),
	)
	return &ref, nil
}

// GetAssetVersions returns every member of the group containing id, highest
// version number first. The master, version 1, is always last.
func (s *Store) GetAssetVersions(ctx context.Context, id int64) ([]*Asset, error) {
	ctx = ensureContext(ctx)
	rootID, err := resolveGroupRoot(ctx, s.db, "get asset versions", id)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE id = ? OR master_id = ? ORDER BY version_no DESC, id DESC",
		rootID, rootID,
	)
	if err != nil {
		return nil, fmt.Errorf("get asset versions: %w", err)
	}
	defer rows.Close()

	var out []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, asset)
	}
	return out, rows.Err()
}
