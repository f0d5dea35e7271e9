package redirect

import (
	"net/url"
	"strings"
)

// NormalizeOldURL reduces an absolute URL to its path and ensures a leading
// slash. Query strings are dropped.
func NormalizeOldURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	}
	if raw == "" {
		return "/"
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw
}

// toggleSlash returns p with its trailing slash added or removed.
func toggleSlash(p string) string {
	if p == "/" || p == "" {
		return ""
	}
	if strings.HasSuffix(p, "/") {
		return strings.TrimRight(p, "/")
	}
	return p + "/"
}

// canonical reduces u to a site-relative path without trailing slash so
// that "/a/", "/a" and "<site>/a" compare equal.
func canonical(u, siteURL string) string {
	u = strings.TrimSpace(u)
	if siteURL != "" && strings.HasPrefix(strings.ToLower(u), strings.ToLower(siteURL)) {
		u = u[len(siteURL):]
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}

// SameTarget reports whether a and b address the same location under siteURL.
func SameTarget(a, b, siteURL string) bool {
	return canonical(a, siteURL) == canonical(b, siteURL)
}

// isLocal reports whether u points into the site.
func isLocal(u, siteURL string) bool {
	if strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return true
	}
	return siteURL != "" && strings.HasPrefix(strings.ToLower(u), strings.ToLower(siteURL))
}

func isAbsolute(u string) bool {
	parsed, err := url.Parse(u)
	return err == nil && parsed.IsAbs()
}
