package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const maxLineBytes = 1024 * 1024

// Filter selects log lines. A nil Filter accepts every line.
type Filter func(line string) bool

// MatchRequest selects lines tagged with the given request id.
func MatchRequest(id string) Filter {
	id = strings.TrimSpace(id)
	return func(line string) bool {
		return strings.Contains(line, "request_id="+id) || strings.Contains(line, `"request_id":"`+id+`"`)
	}
}

// MatchAsset selects lines tagged with the given asset id in either the
// console or the JSON format.
func MatchAsset(id int64) Filter {
	n := strconv.FormatInt(id, 10)
	console := "asset_id=" + n
	jsonKey := `"asset_id":` + n
	quoted := `"asset_id":"` + n + `"`
	return func(line string) bool {
		return containsToken(line, console) || containsToken(line, jsonKey) || strings.Contains(line, quoted)
	}
}

// All combines filters; a line must pass each non-nil filter.
func All(filters ...Filter) Filter {
	return func(line string) bool {
		for _, f := range filters {
			if f != nil && !f(line) {
				return false
			}
		}
		return true
	}
}

// containsToken reports whether token occurs in line and is not immediately
// followed by another digit, so asset_id=1 does not match asset_id=12.
func containsToken(line, token string) bool {
	for start := 0; ; {
		i := strings.Index(line[start:], token)
		if i < 0 {
			return false
		}
		end := start + i + len(token)
		if end == len(line) || line[end] < '0' || line[end] > '9' {
			return true
		}
		start = end
	}
}

// Last returns up to limit matching lines from the end of the file and the
// offset at which a follow should resume. A missing file yields no lines.
// A limit <= 0 returns no lines, only the end offset.
func Last(path string, limit int, match Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, offset, nil
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	ring := make([]string, limit)
	count, idx := 0, 0
	var offset int64
	for scanner.Scan() {
		line := scanner.Text()
		offset += int64(len(scanner.Bytes())) + 1
		if match != nil && !match(line) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	if end, err := file.Seek(0, io.SeekEnd); err == nil && offset > end {
		offset = end
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Follow hands each new complete matching line after offset to emit until
// ctx is done. It wakes on filesystem events for the log directory and also
// polls every poll interval, so it keeps working where notifications are
// unavailable. A file that shrinks is treated as rotated and read from the
// start.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, match Filter, emit func(string)) error {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if watcher.Add(filepath.Dir(path)) == nil {
			events, errs = watcher.Events, watcher.Errors
		}
	}
	target := filepath.Clean(path)

	for {
		next, err := readForward(path, offset, match, emit)
		if err != nil {
			return err
		}
		offset = next

	wait:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				break wait
			case event, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if filepath.Clean(event.Name) == target && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					break wait
				}
			case _, ok := <-errs:
				if !ok {
					errs = nil
				}
			}
		}
	}
}

// readForward emits complete lines after offset. A trailing partial line is
// left for the next poll.
func readForward(path string, offset int64, match Filter, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if match == nil || match(line) {
			emit(line)
		}
	}
}
