package coloby

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Slugify lowercases s and collapses runs of non-alphanumerics into single
// hyphens, the way room slugs are derived from display names.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NewSlug derives a URL-stable room slug from a display name, suffixed with a
// short random segment so distinct rooms with the same name never collide.
func NewSlug(name string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:4]
	base := Slugify(name)
	if base == "" {
		base = "room"
	}
	return base + "-" + suffix
}

// NewLinkToken returns an opaque shareable room link token.
func NewLinkToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewObjectKey returns a blob-store key under the given prefix.
func NewObjectKey(prefix string) string {
	return prefix + "/" + uuid.New().String()
}

// ContentHash returns the xxh3 digest of blob content, recorded on versions
// for cheap equality checks and etags.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
