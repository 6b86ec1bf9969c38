// Package fingerprint derives the cache identity of a remote media asset
// from its kind and source URL. The fingerprint is a pure function of those
// two inputs; fetching the bytes is never required to compute it.
package fingerprint

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Compute returns the hex-encoded BLAKE3-256 fingerprint for a media asset.
// The URL is normalized first so trivial variations (surrounding whitespace,
// a fragment suffix) map to the same cache entry.
func Compute(kind, sourceURL string) string {
	sum := blake3.Sum256([]byte(kind + "\n" + NormalizeURL(sourceURL)))
	return hex.EncodeToString(sum[:])
}

// NormalizeURL trims surrounding whitespace and strips any fragment.
// Query strings are kept: ad CDNs encode the rendition in them.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return s
}

// Shard returns the directory shard for a fingerprint, the first two hex
// characters, keeping any single cache directory from growing unbounded.
func Shard(fp string) string {
	if len(fp) < 2 {
		return "00"
	}
	return fp[:2]
}
