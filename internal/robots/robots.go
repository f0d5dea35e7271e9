// Package robots renders robots.txt.
package robots

import (
	"strings"

	"go_polyseo/internal/settings"
)

// ContentType of the rendered document.
const ContentType = "text/plain; charset=utf-8"

// Render builds robots.txt for all user agents. The sitemap line is emitted
// when sitemaps are enabled and s.IncludeSitemap is set.
func Render(s settings.RobotsSettings, siteURL string, sitemapEnabled bool) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	for _, p := range s.Disallow {
		b.WriteString("Disallow: " + p + "\n")
	}
	for _, p := range s.Allow {
		b.WriteString("Allow: " + p + "\n")
	}
	if len(s.Disallow) == 0 && len(s.Allow) == 0 {
		b.WriteString("Disallow:\n")
	}

	if s.Custom != "" {
		b.WriteString("\n")
		b.WriteString(s.Custom)
		b.WriteString("\n")
	}

	if sitemapEnabled && s.IncludeSitemap {
		b.WriteString("\nSitemap: " + siteURL + "/sitemap.xml\n")
	}
	return b.String()
}
