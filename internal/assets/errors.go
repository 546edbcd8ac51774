package assets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports that a referenced asset, field, or group does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState reports that an operation's precondition on group shape failed.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict reports a uniqueness collision, such as a duplicate path.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput reports a malformed request: empty id list, empty patch,
	// unknown sort key, or a custom value that does not match its field type.
	ErrInvalidInput = errors.New("invalid input")
)

// wrap builds an error tagged with one of the sentinels above so callers can
// branch with errors.Is while the message still names the failing operation.
func wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "asset store failure"
	}
	return strings.Join(parts, ": ")
}

func notFound(operation string, id int64) error {
	return wrap(ErrNotFound, operation, fmt.Sprintf("asset %d", id), nil)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteConstraintUnique {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
