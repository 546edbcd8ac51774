package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"assetvault/internal/assets"
	"assetvault/internal/config"
	"assetvault/internal/logging"
	"assetvault/internal/requestctx"
	"assetvault/internal/thumbnail"
	"assetvault/internal/vault"
)

// ErrThumbnailsDisabled is returned by thumbnail operations when the
// configuration turns generation off.
var ErrThumbnailsDisabled = errors.New("thumbnail generation is disabled")

// Service is the entry point for every library operation. It owns the asset
// store, the vault, and the thumbnail worker pool.
type Service struct {
	cfg        *config.Config
	store      *assets.Store
	vault      *vault.Vault
	thumbs     *thumbnail.Generator
	dispatcher *thumbnail.Dispatcher
	logger     *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open prepares directories, opens the library database, and starts the
// thumbnail workers when enabled.
func Open(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("library: config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("library: ensure directories: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "library")

	store, err := assets.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	v, err := vault.New(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	svc := &Service{
		cfg:    cfg,
		store:  store,
		vault:  v,
		thumbs: thumbnail.NewGenerator(thumbnail.OptionsFromConfig(cfg), logger),
		logger: logger,
	}
	if cfg.Thumbnails.Enabled {
		svc.dispatcher = thumbnail.NewDispatcher(svc.thumbs, store, cfg.Thumbnails.Workers, cfg.Thumbnails.QueueSize, logger)
	}
	return svc, nil
}

// Close drains queued thumbnail jobs and closes the database. It is safe to
// call more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		if s.dispatcher != nil {
			s.dispatcher.Shutdown(context.Background())
		}
		s.closeErr = s.store.Close()
	})
	return s.closeErr
}

// Config returns the configuration the service was opened with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Vault exposes the content store, mainly for diagnostics.
func (s *Service) Vault() *vault.Vault {
	return s.vault
}

func (s *Service) begin(ctx context.Context, operation string) (context.Context, *slog.Logger) {
	ctx = requestctx.Begin(ctx, operation)
	return ctx, logging.WithContext(ctx, s.logger)
}

// queueThumbnail schedules a preview for a. It never fails the caller.
func (s *Service) queueThumbnail(ctx context.Context, a *assets.Asset) {
	if s.dispatcher == nil || a == nil {
		return
	}
	src, err := s.vault.Abs(a.Path)
	if err != nil {
		logging.WithContext(ctx, s.logger).Debug("asset path outside vault; no thumbnail queued",
			logging.Int64(logging.FieldAssetID, a.ID),
			logging.Error(err),
		)
		return
	}
	s.dispatcher.Enqueue(thumbnail.Job{AssetID: a.ID, SourcePath: src, MimeType: a.MimeType})
}
