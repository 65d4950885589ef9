package cache

import (
	"errors"
	"fmt"
	"strings"

	"Sentinel/internal/domain/models"
)

// ErrNoFallback is matched by errors.Is when a report failed and nothing was
// ever cached under its key.
var ErrNoFallback = errors.New("generation failed and no fallback data exists")

// NoFallbackError carries the key and the last compute failure.
type NoFallbackError struct {
	Key string
	Err error
}

func (e *NoFallbackError) Error() string {
	return fmt.Sprintf("report %s: %s: %v", e.Key, ErrNoFallback.Error(), e.Err)
}

func (e *NoFallbackError) Unwrap() []error { return []error{ErrNoFallback, e.Err} }

// ReportKey builds the cache slot for a report. Identical requests map to the
// same key.
func ReportKey(kind string, scheme models.Scheme, symbols, topN int) string {
	return fmt.Sprintf("%s:%s:n%d:top%d", kind, scheme, symbols, topN)
}

// kindOf is the report kind prefix of a key, used as a metrics label.
func kindOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
