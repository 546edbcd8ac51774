package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Stats returns library totals.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ensureContext(ctx), `
		SELECT
			COUNT(1),
			COALESCE(SUM(CASE WHEN master_id IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN master_id IS NOT NULL THEN 1 ELSE 0 END), 0),
			(SELECT COUNT(DISTINCT master_id) FROM assets WHERE master_id IS NOT NULL),
			COALESCE(SUM(CASE WHEN thumbnail_path IS NOT NULL AND thumbnail_path <> '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(size), 0)
		FROM assets`,
	).Scan(&st.Assets, &st.Masters, &st.Versions, &st.Groups, &st.WithThumbnail, &st.TotalBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("asset stats: %w", err)
	}
	return st, nil
}

// VerifyGroups scans for rows that break the flat group rules: versions
// whose master is missing or is itself a version, masters not numbered 1,
// and members of one group sharing a version number. An empty result means
// the table is consistent.
func (s *Store) VerifyGroups(ctx context.Context) ([]GroupViolation, error) {
	ctx = ensureContext(ctx)
	var out []GroupViolation

	checks := []struct {
		query   string
		problem func(detail string) string
	}{
		{
			query: `SELECT a.id, COALESCE(CAST(m.master_id AS TEXT), '') FROM assets a
				LEFT JOIN assets m ON m.id = a.master_id
				WHERE a.master_id IS NOT NULL AND (m.id IS NULL OR m.master_id IS NOT NULL)`,
			problem: func(detail string) string {
				if detail == "" {
					return "master does not exist"
				}
				return "master is itself a version of " + detail
			},
		},
		{
			query: `SELECT id, CAST(version_no AS TEXT) FROM assets WHERE master_id IS NULL AND version_no <> 1`,
			problem: func(detail string) string {
				return "master has version number " + detail
			},
		},
		{
			query: `SELECT a.id, CAST(a.version_no AS TEXT) FROM assets a
				JOIN (
					SELECT COALESCE(master_id, id) AS root, version_no FROM assets
					GROUP BY root, version_no HAVING COUNT(1) > 1
				) d ON d.root = COALESCE(a.master_id, a.id) AND d.version_no = a.version_no`,
			problem: func(detail string) string {
				return "version number " + detail + " is shared within its group"
			},
		},
	}

	for _, check := range checks {
		rows, err := s.db.QueryContext(ctx, check.query)
		if err != nil {
			return nil, fmt.Errorf("verify groups: %w", err)
		}
		for rows.Next() {
			var (
				id     int64
				detail string
			)
			if err := rows.Scan(&id, &detail); err != nil {
				rows.Close()
				return nil, fmt.Errorf("verify groups: %w", err)
			}
			out = append(out, GroupViolation{AssetID: id, Problem: check.problem(detail)})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("verify groups: %w", err)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

var expectedAssetColumns = strings.Split(strings.ReplaceAll(assetColumns, " ", ""), ",")

// CheckHealth returns diagnostic information about the library database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	ctx = ensureContext(ctx)
	health := DatabaseHealth{
		DBPath:        s.path,
		SchemaVersion: strconv.Itoa(schemaVersion),
	}
	if s.path == "" {
		return health, errors.New("library database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat library database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("library database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping library database: %w", err)
	}
	health.DatabaseReadable = true

	rows, err := s.db.QueryContext(connCtx, "SELECT name FROM pragma_table_info('assets')")
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("table info: %w", err)
	}
	present := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			health.Error = err.Error()
			return health, fmt.Errorf("scan table info: %w", err)
		}
		present[name] = struct{}{}
		health.ColumnsPresent = append(health.ColumnsPresent, name)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("iterate table info: %w", err)
	}
	health.TableExists = len(present) > 0
	for _, col := range expectedAssetColumns {
		if _, ok := present[col]; !ok {
			health.MissingColumns = append(health.MissingColumns, col)
		}
	}

	if health.TableExists {
		if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM assets").Scan(&health.TotalAssets); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count assets: %w", err)
		}
	}

	var integrity string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")
	return health, nil
}
