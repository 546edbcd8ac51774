package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"assetvault/internal/config"
	"assetvault/internal/logging"
)

// Kind is the rendering strategy chosen from a MIME type.
type Kind string

const (
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
	KindPDF         Kind = "pdf"
	KindUnsupported Kind = ""
)

// KindFor maps a MIME type to the strategy that can render it.
func KindFor(mimeType string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case strings.HasPrefix(mt, "video/"):
		return KindVideo
	case mt == "application/pdf":
		return KindPDF
	default:
		return KindUnsupported
	}
}

// Options controls thumbnail rendering.
type Options struct {
	Dir          string
	Size         int
	JPEGQuality  int
	FFmpegBinary string
	MagickBinary string
	Timeout      time.Duration
}

// OptionsFromConfig derives rendering options from application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dir:          cfg.Paths.ThumbnailDir,
		Size:         cfg.Thumbnails.Size,
		JPEGQuality:  cfg.Thumbnails.JPEGQuality,
		FFmpegBinary: cfg.Thumbnails.FFmpegBinary,
		MagickBinary: cfg.Thumbnails.MagickBinary,
		Timeout:      cfg.ThumbnailTimeout(),
	}
}

// Generator renders one JPEG preview per asset into Options.Dir.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// NewGenerator returns a generator; zero-valued options fall back to a
// 256px, quality 80 preview rendered with ffmpeg and magick from PATH.
func NewGenerator(opts Options, logger *slog.Logger) *Generator {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 80
	}
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.MagickBinary == "" {
		opts.MagickBinary = "magick"
	}
	return &Generator{opts: opts, logger: logging.NewComponentLogger(logger, "thumbnail")}
}

// OutputPath returns where the preview for assetID lives.
func (g *Generator) OutputPath(assetID int64) string {
	return filepath.Join(g.opts.Dir, strconv.FormatInt(assetID, 10)+".jpg")
}

// Generate renders a preview of sourcePath and returns its path, or "" when
// the type is unsupported or rendering fails. Failures are logged, never
// returned; a missing preview is not an error for the caller.
func (g *Generator) Generate(ctx context.Context, sourcePath, mimeType string, assetID int64) string {
	logger := logging.WithContext(ctx, g.logger).With(
		logging.Int64(logging.FieldAssetID, assetID),
		logging.String("mime_type", mimeType),
	)
	kind := KindFor(mimeType)
	if kind == KindUnsupported {
		logger.Debug("no thumbnail strategy for mime type")
		return ""
	}
	if err := os.MkdirAll(g.opts.Dir, 0o755); err != nil {
		logger.Warn("thumbnail directory unavailable", logging.Error(err))
		return ""
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	out := g.OutputPath(assetID)
	if err := g.render(ctx, kind, sourcePath, out); err != nil {
		logger.Warn("thumbnail generation failed",
			logging.String("source", sourcePath),
			logging.Error(err),
		)
		return ""
	}
	logger.Debug("thumbnail generated", logging.String("thumbnail_path", out))
	return out
}

// Remove deletes the preview for assetID if present.
func (g *Generator) Remove(assetID int64) error {
	err := os.Remove(g.OutputPath(assetID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove thumbnail: %w", err)
	}
	return nil
}

// render writes into a temp file in the output directory and renames it into
// place, so a reader never sees a half-written preview.
func (g *Generator) render(ctx context.Context, kind Kind, src, out string) error {
	tmp, err := os.CreateTemp(g.opts.Dir, ".thumb-*.jpg")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	switch kind {
	case KindImage:
		err = g.renderImage(src, tmp)
		if closeErr := tmp.Close(); err == nil {
			err = closeErr
		}
	case KindVideo:
		_ = tmp.Close()
		err = g.renderVideo(ctx, src, tmpPath)
	case KindPDF:
		_ = tmp.Close()
		err = g.renderPDF(ctx, src, tmpPath)
	default:
		_ = tmp.Close()
		err = fmt.Errorf("unsupported kind %q", kind)
	}
	if err != nil {
		return err
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("renderer produced an empty file")
	}
	if err := os.Rename(tmpPath, out); err != nil {
		return fmt.Errorf("move thumbnail into place: %w", err)
	}
	return nil
}

func (g *Generator) renderImage(src string, dst *os.File) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	thumb := imaging.Fit(img, g.opts.Size, g.opts.Size, imaging.Lanczos)
	if err := imaging.Encode(dst, thumb, imaging.JPEG, imaging.JPEGQuality(g.opts.JPEGQuality)); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}

// renderVideo grabs one frame one second in, falling back to the first
// frame for clips shorter than that.
func (g *Generator) renderVideo(ctx context.Context, src, dst string) error {
	scale := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", g.opts.Size, g.opts.Size)
	var lastErr error
	for _, offset := range []string{"1", "0"} {
		args := []string{"-y", "-v", "error", "-ss", offset, "-i", src, "-frames:v", "1", "-vf", scale, "-q:v", "3", dst}
		if err := runTool(ctx, g.opts.FFmpegBinary, args...); err != nil {
			lastErr = err
			continue
		}
		if info, err := os.Stat(dst); err == nil && info.Size() > 0 {
			return nil
		}
		lastErr = fmt.Errorf("ffmpeg produced no frame at %ss", offset)
	}
	return lastErr
}

func (g *Generator) renderPDF(ctx context.Context, src, dst string) error {
	geometry := fmt.Sprintf("%dx%d>", g.opts.Size, g.opts.Size)
	return runTool(ctx, g.opts.MagickBinary,
		src+"[0]",
		"-thumbnail", geometry,
		"-background", "white",
		"-alpha", "remove",
		"-alpha", "off",
		"-quality", strconv.Itoa(g.opts.JPEGQuality),
		dst,
	)
}

func runTool(ctx context.Context, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(binary), err, strings.TrimSpace(string(output)))
	}
	return nil
}
