package library

import (
	"context"

	"assetvault/internal/assets"
)

// Stats summarizes the library.
func (s *Service) Stats(ctx context.Context) (assets.Stats, error) {
	ctx, _ = s.begin(ctx, "stats")
	return s.store.Stats(ctx)
}

// VerifyGroups reports every row breaking the group rules. An empty result
// means the library is consistent.
func (s *Service) VerifyGroups(ctx context.Context) ([]assets.GroupViolation, error) {
	ctx, _ = s.begin(ctx, "verify groups")
	return s.store.VerifyGroups(ctx)
}

// CheckHealth inspects the database file and schema.
func (s *Service) CheckHealth(ctx context.Context) (assets.DatabaseHealth, error) {
	ctx, _ = s.begin(ctx, "check health")
	return s.store.CheckHealth(ctx)
}

// MissingContent lists assets whose vault file is absent.
func (s *Service) MissingContent(ctx context.Context) ([]*assets.Asset, error) {
	ctx, _ = s.begin(ctx, "missing content")
	all, err := s.store.List(ctx, assets.Filter{SortBy: assets.SortCreatedAt, SortOrder: assets.OrderAsc})
	if err != nil {
		return nil, err
	}
	var missing []*assets.Asset
	for _, a := range all {
		if !s.vault.Exists(a.Path) {
			missing = append(missing, a)
		}
	}
	return missing, nil
}
