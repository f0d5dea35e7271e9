// Package pathrule decides which request paths are never content: system
// endpoints, static assets and the generated SEO documents.
package pathrule

import (
	"path"
	"regexp"
	"strings"
)

// SystemPrefixes are path prefixes owned by the service or by the legacy CMS.
var SystemPrefixes = []string{
	"/api/",
	"/wp-admin",
	"/wp-includes/",
	"/wp-content/",
	"/wp-json/",
	"/wp-login.php",
	"/xmlrpc.php",
	"/feed/",
}

// AssetExtensions are file extensions that identify static assets.
var AssetExtensions = []string{
	".css", ".js", ".map", ".json", ".xml", ".txt",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico", ".bmp", ".avif",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
	".mp4", ".webm", ".mp3", ".ogg", ".wav",
	".pdf", ".zip", ".gz",
}

var seoDocument = regexp.MustCompile(`^/(robots\.txt|sitemap(-[a-z0-9_-]+)?\.xml)$`)

// IsSystemPath reports whether p belongs to a system endpoint.
func IsSystemPath(p string) bool {
	p = "/" + strings.TrimLeft(p, "/")
	for _, prefix := range SystemPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// IsAsset reports whether p ends in a static asset extension.
func IsAsset(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range AssetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsSEODocument reports whether p is robots.txt or a sitemap document.
func IsSEODocument(p string) bool {
	return seoDocument.MatchString(strings.ToLower(p))
}

// Excluded reports whether p must never be listed in a sitemap or caught by
// the catch-all redirect.
func Excluded(p string) bool {
	return IsSystemPath(p) || IsAsset(p) || IsSEODocument(p)
}

// MatchAny reports whether p contains any of the given substrings. Empty
// patterns are ignored.
func MatchAny(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(p, pattern) {
			return true
		}
	}
	return false
}
