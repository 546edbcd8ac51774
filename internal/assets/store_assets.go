package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"assetvault/internal/logging"
)

// CreateAsset inserts a new master. Path and MIME type are required and the
// path must be unused.
func (s *Store) CreateAsset(ctx context.Context, in NewAsset) (*Asset, error) {
	ctx = ensureContext(ctx)
	in.Path = strings.TrimSpace(in.Path)
	in.MimeType = strings.TrimSpace(in.MimeType)
	switch {
	case in.Path == "":
		return nil, wrap(ErrInvalidInput, "create asset", "path is required", nil)
	case in.MimeType == "":
		return nil, wrap(ErrInvalidInput, "create asset", "mime type is required", nil)
	case in.Size < 0:
		return nil, wrap(ErrInvalidInput, "create asset", "size must not be negative", nil)
	}
	shares := int64(0)
	if in.Shares != nil {
		shares = *in.Shares
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO assets (path, mime_type, size, created_at, year, advertiser, niche, shares, master_id, version_no)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, 1)`,
		in.Path, in.MimeType, in.Size, formatTime(nowUTC()),
		nullableInt64(in.Year), nullableString(in.Advertiser), nullableString(in.Niche), shares,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, wrap(ErrConflict, "create asset", fmt.Sprintf("path %q already exists", in.Path), nil)
		}
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("asset id: %w", err)
	}
	logging.WithContext(ctx, s.logger).Debug("asset created",
		logging.Int64(logging.FieldAssetID, id),
		logging.String("path", in.Path),
	)
	return s.GetAsset(ctx, id)
}

// GetAsset fetches a single asset by id.
func (s *Store) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	return getAsset(ensureContext(ctx), s.db, "get asset", id)
}

func getAsset(ctx context.Context, q querier, operation string, id int64) (*Asset, error) {
	row := q.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = ?", id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(operation, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return asset, nil
}

// GetAssetByPath fetches a single asset by its stored path.
func (s *Store) GetAssetByPath(ctx context.Context, path string) (*Asset, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+assetColumns+" FROM assets WHERE path = ?", path)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrap(ErrNotFound, "get asset", fmt.Sprintf("path %q", path), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get asset by path: %w", err)
	}
	return asset, nil
}

// List returns assets matching filter in the requested order.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Asset, error) {
	clause, args, err := filter.build()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT "+assetColumns+" FROM assets"+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
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

// Update applies patch to one asset and returns the updated row.
func (s *Store) Update(ctx context.Context, id int64, patch Patch) (*Asset, error) {
	ctx = ensureContext(ctx)
	if patch.IsEmpty() {
		return nil, wrap(ErrInvalidInput, "update asset", "no updatable fields supplied", nil)
	}
	sets, args := patch.assignments()
	args = append(args, id)
	res, err := s.execWithRetry(ctx, "UPDATE assets SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update asset %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound("update asset", id)
	}
	return s.GetAsset(ctx, id)
}

// Delete removes one asset and returns the row as it was. A master that still
// has versions is refused; promote or detach them first. Custom values are
// removed by cascade and the search index by trigger.
func (s *Store) Delete(ctx context.Context, id int64) (*Asset, error) {
	ctx = ensureContext(ctx)
	var deleted *Asset
	err := s.mutateGroup(ctx, func(tx *sql.Tx) error {
		asset, err := getAsset(ctx, tx, "delete asset", id)
		if err != nil {
			return err
		}
		if asset.IsMaster() {
			var versions int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM assets WHERE master_id = ?", id).Scan(&versions); err != nil {
				return fmt.Errorf("count versions: %w", err)
			}
			if versions > 0 {
				return wrap(ErrInvalidState, "delete asset",
					fmt.Sprintf("asset %d has versions; promote or detach them first", id), nil)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete asset %d: %w", id, err)
		}
		deleted = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, s.logger).Info("asset deleted", logging.Int64(logging.FieldAssetID, id))
	return deleted, nil
}

// SetThumbnailPath records where an asset's preview lives. An empty path
// clears it.
func (s *Store) SetThumbnailPath(ctx context.Context, id int64, path string) error {
	var value any
	if path != "" {
		value = path
	}
	res, err := s.execWithRetry(ctx, "UPDATE assets SET thumbnail_path = ? WHERE id = ?", value, id)
	if err != nil {
		return fmt.Errorf("set thumbnail path for %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("set thumbnail path", id)
	}
	return nil
}
