package sitemap

import (
	"context"
	"reflect"

	"go_polyseo/internal/content"
	"go_polyseo/internal/model"
	"go_polyseo/internal/settings"
	"go_polyseo/internal/sitecache"

	"github.com/sirupsen/logrus"
)

// Invalidator drops cached sitemaps affected by content, term and settings
// changes.
type Invalidator struct {
	cache sitecache.Store
	log   *logrus.Entry
}

// NewInvalidator creates an Invalidator.
func NewInvalidator(cache sitecache.Store, log *logrus.Entry) *Invalidator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Invalidator{cache: cache, log: log.WithField("component", "sitemap-invalidator")}
}

// HandleContentEvent invalidates the leaf type touched by ev, in every
// language, together with the index.
func (i *Invalidator) HandleContentEvent(ctx context.Context, ev content.Event) {
	var t sitecache.ArtifactType
	switch ev.Kind {
	case content.EventTermSaved, content.EventTermDeleted:
		t = sitecache.ArtifactTaxonomies
	default:
		if ev.ContentType() == model.ContentTypePage {
			t = sitecache.ArtifactPages
		} else {
			t = sitecache.ArtifactPosts
		}
	}
	i.invalidate(ctx, t)
	i.invalidate(ctx, sitecache.ArtifactIndex)
}

// SettingsChanged clears the cache when the sitemap settings change.
func (i *Invalidator) SettingsChanged(ctx context.Context, old, updated *settings.Snapshot) {
	if old != nil && reflect.DeepEqual(old.Sitemap, updated.Sitemap) {
		return
	}
	i.ClearAll(ctx)
}

// ClearAll drops every cached sitemap.
func (i *Invalidator) ClearAll(ctx context.Context) {
	i.invalidate(ctx, sitecache.ArtifactAll)
}

func (i *Invalidator) invalidate(ctx context.Context, t sitecache.ArtifactType) {
	if err := i.cache.Invalidate(ctx, t, sitecache.AllLanguages); err != nil {
		i.log.WithError(err).WithField("type", t).Warn("Failed to invalidate sitemap cache")
		return
	}
	i.log.WithField("type", t).Debug("Invalidated sitemap cache")
}

var _ content.Handler = (*Invalidator)(nil)
