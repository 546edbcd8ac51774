package library

import (
	"context"

	"assetvault/internal/assets"
	"assetvault/internal/logging"
	"assetvault/internal/thumbnail"
)

// RegenerateThumbnails renders previews for assets that lack one, or for
// every asset when force is set. Assets whose vault content is missing are
// counted as failures without invoking a renderer.
func (s *Service) RegenerateThumbnails(ctx context.Context, force bool) (thumbnail.RegenerateResult, error) {
	ctx, logger := s.begin(ctx, "regenerate thumbnails")
	if s.dispatcher == nil {
		return thumbnail.RegenerateResult{}, ErrThumbnailsDisabled
	}
	candidates, err := s.store.List(ctx, assets.Filter{MissingThumbnail: !force, SortBy: assets.SortCreatedAt, SortOrder: assets.OrderAsc})
	if err != nil {
		return thumbnail.RegenerateResult{}, err
	}

	jobs := make([]thumbnail.Job, 0, len(candidates))
	missing := 0
	for _, a := range candidates {
		if !s.vault.Exists(a.Path) {
			missing++
			logger.Warn("vault content missing; skipping thumbnail",
				logging.Int64(logging.FieldAssetID, a.ID),
				logging.String("path", a.Path),
			)
			continue
		}
		src, _ := s.vault.Abs(a.Path)
		jobs = append(jobs, thumbnail.Job{AssetID: a.ID, SourcePath: src, MimeType: a.MimeType})
	}

	result, err := s.dispatcher.Regenerate(ctx, jobs)
	result.Failed += missing
	return result, err
}
