// Package settings holds the runtime-editable SEO settings. Values are
// normalized once, when saved, and handed to components as immutable
// snapshots.
package settings

import (
	"math"
	"strings"
	"time"

	"go_polyseo/internal/model"
)

// SitemapSettings controls sitemap generation.
type SitemapSettings struct {
	Enabled              bool               `json:"enabled"`
	PostTypes            []string           `json:"postTypes"`
	Taxonomies           []string           `json:"taxonomies"`
	Priorities           map[string]float64 `json:"priorities"`
	DefaultPriority      float64            `json:"defaultPriority"`
	LandingPriority      float64            `json:"landingPriority"`
	CacheDurationSeconds int                `json:"cacheDurationSeconds"`
}

// CacheTTL returns the cache lifetime.
func (s SitemapSettings) CacheTTL() time.Duration {
	return time.Duration(s.CacheDurationSeconds) * time.Second
}

// Priority returns the configured priority of a content type or taxonomy.
func (s SitemapSettings) Priority(kind string) float64 {
	if p, ok := s.Priorities[kind]; ok {
		return p
	}
	return s.DefaultPriority
}

// PostArtifactTypes returns the included content types listed in the posts
// sitemap (everything except pages).
func (s SitemapSettings) PostArtifactTypes() []string {
	out := make([]string, 0, len(s.PostTypes))
	for _, t := range s.PostTypes {
		if t != model.ContentTypePage {
			out = append(out, t)
		}
	}
	return out
}

// PageArtifactTypes returns ["page"] when pages are included.
func (s SitemapSettings) PageArtifactTypes() []string {
	for _, t := range s.PostTypes {
		if t == model.ContentTypePage {
			return []string{model.ContentTypePage}
		}
	}
	return nil
}

// Catch-all destination types
const (
	DestinationContentItem = "content_item"
	DestinationURL         = "url"
	DestinationHome        = "home"
)

// CatchAllPolicy controls the fallback redirect for unresolved requests.
type CatchAllPolicy struct {
	Enabled              bool     `json:"enabled"`
	RedirectType         int      `json:"redirectType"`
	DestinationType      string   `json:"destinationType"`
	DestinationContentID int      `json:"destinationContentId"`
	DestinationURL       string   `json:"destinationUrl"`
	ExcludePatterns      []string `json:"excludePatterns"`
}

// RobotsSettings controls robots.txt output.
type RobotsSettings struct {
	Disallow       []string `json:"disallow"`
	Allow          []string `json:"allow"`
	IncludeSitemap bool     `json:"includeSitemap"`
	Custom         string   `json:"custom"`
}

// Snapshot is an immutable view of all settings. Callers must not modify
// the slices or maps it holds.
type Snapshot struct {
	Sitemap  SitemapSettings `json:"sitemap"`
	CatchAll CatchAllPolicy  `json:"catchAll"`
	Robots   RobotsSettings  `json:"robots"`
}

// DefaultSitemap returns the sitemap defaults.
func DefaultSitemap() SitemapSettings {
	return SitemapSettings{
		Enabled:    true,
		PostTypes:  []string{model.ContentTypePost, model.ContentTypePage},
		Taxonomies: []string{model.TaxonomyCategory},
		Priorities: map[string]float64{
			model.ContentTypePost:  0.6,
			model.ContentTypePage:  0.8,
			model.TaxonomyCategory: 0.4,
		},
		DefaultPriority:      0.5,
		LandingPriority:      1.0,
		CacheDurationSeconds: 86400,
	}
}

// DefaultCatchAll returns the catch-all defaults.
func DefaultCatchAll() CatchAllPolicy {
	return CatchAllPolicy{
		Enabled:         false,
		RedirectType:    model.RedirectMovedPermanently,
		DestinationType: DestinationHome,
	}
}

// DefaultRobots returns the robots.txt defaults.
func DefaultRobots() RobotsSettings {
	return RobotsSettings{
		Disallow:       []string{"/api/"},
		IncludeSitemap: true,
	}
}

// Defaults returns a snapshot of all defaults.
func Defaults() Snapshot {
	return Snapshot{Sitemap: DefaultSitemap(), CatchAll: DefaultCatchAll(), Robots: DefaultRobots()}
}

// ClampPriority limits p to [0, 1] and rounds it to one decimal place.
func ClampPriority(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return math.Round(p*10) / 10
}

func cleanList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeSitemap clamps priorities and fills invalid values with defaults.
func NormalizeSitemap(s SitemapSettings) SitemapSettings {
	def := DefaultSitemap()
	s.PostTypes = cleanList(s.PostTypes)
	s.Taxonomies = cleanList(s.Taxonomies)

	priorities := make(map[string]float64, len(s.Priorities))
	for k, v := range s.Priorities {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		priorities[k] = ClampPriority(v)
	}
	s.Priorities = priorities
	s.DefaultPriority = ClampPriority(s.DefaultPriority)
	s.LandingPriority = ClampPriority(s.LandingPriority)
	if s.CacheDurationSeconds <= 0 {
		s.CacheDurationSeconds = def.CacheDurationSeconds
	}
	return s
}

// NormalizeCatchAll restricts the redirect type and destination type to
// known values.
func NormalizeCatchAll(p CatchAllPolicy) CatchAllPolicy {
	switch p.RedirectType {
	case model.RedirectMovedPermanently, model.RedirectFound, model.RedirectTemporaryRedirect:
	default:
		p.RedirectType = model.RedirectMovedPermanently
	}
	switch p.DestinationType {
	case DestinationContentItem, DestinationURL, DestinationHome:
	default:
		p.DestinationType = DestinationHome
	}
	p.DestinationURL = strings.TrimSpace(p.DestinationURL)
	if p.DestinationType == DestinationURL && p.DestinationURL == "" {
		p.DestinationType = DestinationHome
	}
	if p.DestinationContentID < 0 {
		p.DestinationContentID = 0
	}
	p.ExcludePatterns = cleanList(p.ExcludePatterns)
	return p
}

// NormalizeRobots trims rule lists.
func NormalizeRobots(r RobotsSettings) RobotsSettings {
	r.Disallow = cleanList(r.Disallow)
	r.Allow = cleanList(r.Allow)
	r.Custom = strings.TrimSpace(r.Custom)
	return r
}
