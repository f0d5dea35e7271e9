// Package sitemap renders sitemap documents from published content and
// serves them through the sitemap cache.
package sitemap

import (
	"context"
	"fmt"
	"time"

	"go_polyseo/internal/content"
	"go_polyseo/internal/model"
	"go_polyseo/internal/pathrule"
	"go_polyseo/internal/settings"
	"go_polyseo/internal/sitecache"
)

// ContentSource queries published content.
type ContentSource interface {
	QueryPublished(ctx context.Context, types []string, f content.LanguageFilter) ([]model.Content, error)
	QueryTerms(ctx context.Context, taxonomies []string, f content.LanguageFilter) ([]model.Term, error)
}

// LanguageSource describes the configured languages.
type LanguageSource interface {
	Enabled(ctx context.Context) ([]model.Language, error)
	Default(ctx context.Context) (string, error)
	LandingPages(ctx context.Context) (map[int]string, error)
}

// Builder renders sitemap documents. It holds no state between builds.
type Builder struct {
	content ContentSource
	langs   LanguageSource
	siteURL string
	now     func() time.Time
}

// NewBuilder creates a Builder producing absolute URLs under siteURL.
func NewBuilder(src ContentSource, langs LanguageSource, siteURL string) *Builder {
	return &Builder{content: src, langs: langs, siteURL: siteURL, now: time.Now}
}

// WithClock overrides the clock used for change frequencies.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

type leaf struct {
	loc     string
	lastMod time.Time
}

// Build renders the document for artifact t. language is ignored for the
// index; for leaves "" selects the default language set.
func (b *Builder) Build(ctx context.Context, cfg settings.SitemapSettings, t sitecache.ArtifactType, language string) ([]byte, error) {
	def, err := b.langs.Default(ctx)
	if err != nil {
		return nil, err
	}
	landing, err := b.langs.LandingPages(ctx)
	if err != nil {
		return nil, err
	}

	if t == sitecache.ArtifactIndex {
		leaves, err := b.leaves(ctx, cfg, def, landing)
		if err != nil {
			return nil, err
		}
		return renderIndex(leaves)
	}

	entries, err := b.entries(ctx, cfg, t, language, def, landing)
	if err != nil {
		return nil, err
	}
	return renderURLSet(entries, b.now())
}

func (b *Builder) leaves(ctx context.Context, cfg settings.SitemapSettings, def string, landing map[int]string) ([]leaf, error) {
	langs, err := b.langs.Enabled(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		codes = append(codes, l.Code)
	}
	if len(codes) == 0 {
		codes = []string{""}
	}

	var out []leaf
	for _, code := range codes {
		for _, t := range []sitecache.ArtifactType{sitecache.ArtifactPosts, sitecache.ArtifactPages, sitecache.ArtifactTaxonomies} {
			entries, err := b.entries(ctx, cfg, t, code, def, landing)
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 {
				continue
			}
			l := leaf{loc: b.siteURL + LeafPath(t, code)}
			for _, e := range entries {
				if e.LastMod.After(l.lastMod) {
					l.lastMod = e.LastMod
				}
			}
			out = append(out, l)
		}
	}
	return out, nil
}

func (b *Builder) entries(ctx context.Context, cfg settings.SitemapSettings, t sitecache.ArtifactType, language, def string, landing map[int]string) ([]Entry, error) {
	filter := content.LanguageFilter{Code: language, DefaultCode: def}

	switch t {
	case sitecache.ArtifactPosts:
		return b.contentEntries(ctx, cfg, cfg.PostArtifactTypes(), filter, landing)
	case sitecache.ArtifactPages:
		return b.contentEntries(ctx, cfg, cfg.PageArtifactTypes(), filter, landing)
	case sitecache.ArtifactTaxonomies:
		return b.termEntries(ctx, cfg, filter)
	}
	return nil, fmt.Errorf("sitemap: unknown artifact type %q", t)
}

func (b *Builder) contentEntries(ctx context.Context, cfg settings.SitemapSettings, types []string, filter content.LanguageFilter, landing map[int]string) ([]Entry, error) {
	if len(types) == 0 {
		return nil, nil
	}
	items, err := b.content.QueryPublished(ctx, types, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(items))
	for i := range items {
		item := &items[i]
		addr := content.Address(item, filter.DefaultCode)
		if pathrule.Excluded(addr) {
			continue
		}
		priority := cfg.Priority(item.Type)
		if lang, ok := landing[item.ID]; ok && lang == content.EffectiveLanguage(item.Language, filter.DefaultCode) {
			priority = cfg.LandingPriority
		}
		out = append(out, Entry{Loc: b.siteURL + addr, LastMod: lastModified(item), Priority: priority})
	}
	return out, nil
}

func (b *Builder) termEntries(ctx context.Context, cfg settings.SitemapSettings, filter content.LanguageFilter) ([]Entry, error) {
	if len(cfg.Taxonomies) == 0 {
		return nil, nil
	}
	terms, err := b.content.QueryTerms(ctx, cfg.Taxonomies, filter)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(terms))
	for i := range terms {
		term := &terms[i]
		addr := content.TermAddress(term, filter.DefaultCode)
		if pathrule.Excluded(addr) {
			continue
		}
		out = append(out, Entry{Loc: b.siteURL + addr, LastMod: term.ModifiedAt, Priority: cfg.Priority(term.Taxonomy)})
	}
	return out, nil
}

func lastModified(c *model.Content) time.Time {
	switch {
	case !c.ModifiedAt.IsZero():
		return c.ModifiedAt
	case c.PublishedAt != nil:
		return *c.PublishedAt
	}
	return c.CreatedAt
}

// LeafPath returns the request path of a leaf sitemap.
func LeafPath(t sitecache.ArtifactType, language string) string {
	if language == "" {
		return "/sitemap-" + string(t) + ".xml"
	}
	return "/sitemap-" + string(t) + "-" + language + ".xml"
}
