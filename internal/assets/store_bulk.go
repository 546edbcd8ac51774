package assets

import (
	"context"
	"strings"

	"assetvault/internal/logging"
)

const bulkNotFoundReason = "not found"

// BulkUpdate applies patch to every id independently. Each row is its own
// statement with its own busy retry, so a failure on one id never rolls back
// another. Rows that do not exist and rows that fail are reported in the
// result's Errors; the call itself only fails for an empty id list or patch.
// Repeated ids are applied once.
func (s *Store) BulkUpdate(ctx context.Context, ids []int64, patch Patch) (BulkResult, error) {
	ctx = ensureContext(ctx)
	if len(ids) == 0 {
		return BulkResult{}, wrap(ErrInvalidInput, "bulk update", "no asset ids supplied", nil)
	}
	if patch.IsEmpty() {
		return BulkResult{}, wrap(ErrInvalidInput, "bulk update", "no updatable fields supplied", nil)
	}

	sets, args := patch.assignments()
	query := "UPDATE assets SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result := BulkResult{Errors: []BulkError{}}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, BulkError{ID: id, Reason: err.Error()})
			continue
		}
		rowArgs := append(append(make([]any, 0, len(args)+1), args...), id)
		res, err := s.execWithRetry(ctx, query, rowArgs...)
		if err != nil {
			result.Errors = append(result.Errors, BulkError{ID: id, Reason: err.Error()})
			continue
		}
		n, err := res.RowsAffected()
		switch {
		case err != nil:
			result.Errors = append(result.Errors, BulkError{ID: id, Reason: err.Error()})
		case n == 0:
			result.Errors = append(result.Errors, BulkError{ID: id, Reason: bulkNotFoundReason})
		default:
			result.UpdatedCount++
		}
	}

	logger := logging.WithContext(ctx, s.logger)
	if len(result.Errors) > 0 {
		logger.Warn("bulk update partially applied",
			logging.Int("requested", len(seen)),
			logging.Int("updated", result.UpdatedCount),
			logging.Int("failed", len(result.Errors)),
		)
	} else {
		logger.Info("bulk update applied", logging.Int("updated", result.UpdatedCount))
	}
	return result, nil
}
