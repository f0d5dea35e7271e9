// Package sitecache stores rendered sitemap documents keyed by artifact type
// and language, with a time-to-live.
package sitecache

import (
	"context"
	"strings"
	"time"
)

// ArtifactType is a sitemap document kind.
type ArtifactType string

const (
	ArtifactIndex      ArtifactType = "index"
	ArtifactPosts      ArtifactType = "posts"
	ArtifactPages      ArtifactType = "pages"
	ArtifactTaxonomies ArtifactType = "taxonomies"

	// ArtifactAll addresses every artifact type in Invalidate.
	ArtifactAll ArtifactType = "all"
)

// AllLanguages addresses every language in Invalidate.
const AllLanguages = "all"

// DefaultTTL is the cache lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// ArtifactTypes lists the concrete artifact types.
var ArtifactTypes = []ArtifactType{ArtifactIndex, ArtifactPosts, ArtifactPages, ArtifactTaxonomies}

// ParseArtifactType returns the artifact type named s.
func ParseArtifactType(s string) (ArtifactType, bool) {
	switch t := ArtifactType(s); t {
	case ArtifactIndex, ArtifactPosts, ArtifactPages, ArtifactTaxonomies, ArtifactAll:
		return t, true
	}
	return "", false
}

// Key identifies a cached document. Language is "" for documents that are not
// language specific.
type Key struct {
	Type     ArtifactType
	Language string
}

func (k Key) String() string {
	if k.Language == "" {
		return string(k.Type)
	}
	return string(k.Type) + "-" + k.Language
}

// storageName maps a key to a filesystem and redis safe token. The mapping is
// injective: distinct keys never share a token.
func (k Key) storageName() string {
	return escapeToken(string(k.Type)) + "." + k.langToken()
}

func (k Key) langToken() string {
	if k.Language == "" {
		return "_"
	}
	return escapeToken(k.Language)
}

// escapeToken keeps [a-z0-9] and writes every other byte as "_" plus two
// lowercase hex digits, so "pt-BR", "pt_br" and "PT-br" stay apart.
func escapeToken(s string) string {
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('_')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// Store is a TTL cache for rendered documents. Storage errors never surface
// from Get; they are reported as a miss.
type Store interface {
	// Get returns the document when present and younger than ttl.
	Get(ctx context.Context, key Key, ttl time.Duration) ([]byte, bool)
	// Put overwrites the document and resets its timestamp.
	Put(ctx context.Context, key Key, data []byte, ttl time.Duration) error
	// Invalidate removes matching entries. ArtifactAll and AllLanguages act as
	// wildcards.
	Invalidate(ctx context.Context, t ArtifactType, language string) error
	// SweepExpired removes entries older than ttl and returns how many were removed.
	SweepExpired(ctx context.Context, ttl time.Duration) (int, error)
	Name() string
}
