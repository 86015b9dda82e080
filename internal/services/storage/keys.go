package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const publicObjectSegment = "/storage/v1/object/public/"

// MakeKey builds the flat object key: "<unix-ms>-<token>.<ext>". The token is
// drawn per request, so concurrent uploads cannot collide.
func MakeKey(t time.Time, token, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%d-%s.%s", t.UnixMilli(), token, ext)
}

// NewToken returns a short random alphanumeric token.
func NewToken() string {
	return uuid.New().String()[:8]
}

// NewKey is the production shorthand: current time plus a fresh token.
func NewKey(ext string) string {
	return MakeKey(time.Now(), NewToken(), ext)
}

// keyStrategy is one way of recovering a storage key from a public URL.
// Strategies run in order; adding a new provider URL shape means appending
// one, not editing the others.
type keyStrategy struct {
	name    string
	extract func(rawURL, bucket string) (string, bool)
}

var keyStrategies = []keyStrategy{
	{"public-object-path", extractFromPublicPath},
	{"bucket-segment", extractAfterBucket},
	{"last-path-segment", extractLastSegment},
}

// ExtractKeyFromURL maps a public URL back to its storage key. It tolerates
// query strings, fragments, and several URL shapes; a false return means the
// URL cannot be cleaned up, which callers must treat as a soft error.
func ExtractKeyFromURL(rawURL, bucket string) (string, bool) {
	if rawURL == "" {
		return "", false
	}

	for _, strategy := range keyStrategies {
		if key, ok := strategy.extract(rawURL, bucket); ok {
			return key, true
		}
	}
	return "", false
}

func extractFromPublicPath(rawURL, bucket string) (string, bool) {
	marker := publicObjectSegment + bucket + "/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return "", false
	}
	key := stripQuery(rawURL[idx+len(marker):])
	if key == "" {
		return "", false
	}
	return key, true
}

func extractAfterBucket(rawURL, bucket string) (string, bool) {
	if bucket == "" {
		return "", false
	}
	re := regexp.MustCompile(regexp.QuoteMeta(bucket) + `/([^?#]+)`)
	match := re.FindStringSubmatch(rawURL)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func extractLastSegment(rawURL, _ string) (string, bool) {
	if strings.ContainsAny(rawURL, "?#") {
		return "", false
	}
	idx := strings.LastIndex(rawURL, "/")
	if idx < 0 || idx == len(rawURL)-1 {
		return "", false
	}
	return rawURL[idx+1:], true
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}
