package redirect

import (
	"context"
	"net/http"
	"testing"

	"go_polyseo/internal/content"
	"go_polyseo/internal/metrics"
	"go_polyseo/internal/model"
	"go_polyseo/internal/settings"
	"go_polyseo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const siteURL = "https://example.com"

type staticSettings struct{ snap settings.Snapshot }

func (s *staticSettings) Current() *settings.Snapshot { return &s.snap }

type staticLanguage string

func (s staticLanguage) Default(context.Context) (string, error) { return string(s), nil }

type resolverFixture struct {
	db       *gorm.DB
	store    *Store
	settings *staticSettings
	metrics  *metrics.Recorder
	resolver *Resolver
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	gdb := testutil.OpenDB(t)
	f := &resolverFixture{
		db:       gdb,
		store:    NewStore(gdb),
		settings: &staticSettings{snap: settings.Defaults()},
		metrics:  metrics.NewRecorder(),
	}
	f.resolver = NewResolver(f.store, content.NewRepository(gdb), staticLanguage("en"), f.settings, siteURL, f.metrics, testutil.Logger())
	return f
}

func (f *resolverFixture) insert(t *testing.T, old, dest string, code int) {
	t.Helper()
	r := &model.Redirect{OldURL: old, RedirectType: code, ChangeType: model.ChangeTypeManual}
	if dest != "" {
		r.NewURL = model.SPtr(dest)
	}
	_, err := f.store.Insert(context.Background(), r)
	require.NoError(t, err)
}

func (f *resolverFixture) enableCatchAll(p settings.CatchAllPolicy) {
	p.Enabled = true
	f.settings.snap.CatchAll = settings.NormalizeCatchAll(p)
}

func TestResolveSpecificRedirect(t *testing.T) {
	f := newResolverFixture(t)
	f.insert(t, "/a", "/b", 301)

	out := f.resolver.Resolve(context.Background(), "/a")
	assert.Equal(t, Sent, out.Kind)
	assert.Equal(t, http.StatusMovedPermanently, out.Status)
	assert.Equal(t, "/b", out.Location)
	assert.False(t, out.CatchAll)
	assert.Equal(t, int64(1), f.metrics.Get("redirect.resolve", metrics.Tag("outcome", "sent")))
}

func TestResolveTrailingSlashVariant(t *testing.T) {
	f := newResolverFixture(t)
	f.insert(t, "/moved/", "/new/", 302)

	out := f.resolver.Resolve(context.Background(), "/moved")
	assert.Equal(t, Sent, out.Kind)
	assert.Equal(t, http.StatusFound, out.Status)
	assert.Equal(t, "/new/", out.Location)
}

func TestResolveGone(t *testing.T) {
	f := newResolverFixture(t)
	f.insert(t, "/removed/", "", 410)

	out := f.resolver.Resolve(context.Background(), "/removed/")
	assert.Equal(t, Gone, out.Kind)
	assert.Equal(t, http.StatusGone, out.Status)
	assert.Empty(t, out.Location)
}

func TestResolveSpecificBeatsCatchAll(t *testing.T) {
	f := newResolverFixture(t)
	f.enableCatchAll(settings.CatchAllPolicy{DestinationType: settings.DestinationHome})
	f.insert(t, "/x", "/specific", 307)
	f.insert(t, "/y", "", 410)

	out := f.resolver.Resolve(context.Background(), "/x")
	assert.Equal(t, "/specific", out.Location)
	assert.Equal(t, http.StatusTemporaryRedirect, out.Status)
	assert.False(t, out.CatchAll)

	out = f.resolver.Resolve(context.Background(), "/y")
	assert.Equal(t, Gone, out.Kind)
}

func TestResolveMostRecentWins(t *testing.T) {
	f := newResolverFixture(t)
	f.insert(t, "/a", "/old-target", 301)
	f.insert(t, "/a", "/new-target", 302)

	out := f.resolver.Resolve(context.Background(), "/a")
	assert.Equal(t, "/new-target", out.Location)
	assert.Equal(t, http.StatusFound, out.Status)
}

func TestResolveCatchAllHome(t *testing.T) {
	f := newResolverFixture(t)
	f.enableCatchAll(settings.CatchAllPolicy{DestinationType: settings.DestinationHome})

	out := f.resolver.Resolve(context.Background(), "/missing-page")
	assert.Equal(t, Sent, out.Kind)
	assert.Equal(t, http.StatusMovedPermanently, out.Status)
	assert.Equal(t, siteURL+"/", out.Location)
	assert.True(t, out.CatchAll)
	assert.Equal(t, int64(1), f.metrics.Get("redirect.resolve", metrics.Tag("outcome", "catch_all")))
}

func TestResolveCatchAllDisabled(t *testing.T) {
	f := newResolverFixture(t)

	out := f.resolver.Resolve(context.Background(), "/missing-page")
	assert.Equal(t, NotFound, out.Kind)
	assert.Equal(t, http.StatusNotFound, out.Status)
	assert.Equal(t, int64(1), f.metrics.Get("redirect.resolve", metrics.Tag("outcome", "not_found")))
}

func TestResolveCatchAllExclusions(t *testing.T) {
	f := newResolverFixture(t)
	f.enableCatchAll(settings.CatchAllPolicy{
		DestinationType: settings.DestinationHome,
		ExcludePatterns: []string{"/private/"},
	})

	for _, path := range []string{
		"/wp-admin/options.php",
		"/api/v1/ping",
		"/images/logo.png",
		"/sitemap-posts-xx.xml",
		"/robots.txt",
		"/private/report/",
	} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, NotFound, f.resolver.Resolve(context.Background(), path).Kind)
		})
	}
}

func TestResolveCatchAllLoopPrevention(t *testing.T) {
	f := newResolverFixture(t)
	f.enableCatchAll(settings.CatchAllPolicy{DestinationType: settings.DestinationURL, DestinationURL: "/landing/"})

	assert.Equal(t, NotFound, f.resolver.Resolve(context.Background(), "/landing").Kind)
	assert.Equal(t, NotFound, f.resolver.Resolve(context.Background(), "/landing/").Kind)

	out := f.resolver.Resolve(context.Background(), "/elsewhere")
	assert.Equal(t, Sent, out.Kind)
	assert.Equal(t, "/landing/", out.Location)
}

func TestResolveCatchAllContentItem(t *testing.T) {
	f := newResolverFixture(t)
	target := model.Content{Type: "page", Slug: "start", Status: model.ContentStatusPublish}
	require.NoError(t, f.db.Create(&target).Error)

	f.enableCatchAll(settings.CatchAllPolicy{DestinationType: settings.DestinationContentItem, DestinationContentID: target.ID})
	out := f.resolver.Resolve(context.Background(), "/nope")
	assert.Equal(t, siteURL+"/start/", out.Location)

	// unpublished destination falls back to home
	require.NoError(t, f.db.Model(&target).Update("status", model.ContentStatusDraft).Error)
	out = f.resolver.Resolve(context.Background(), "/nope")
	assert.Equal(t, siteURL+"/", out.Location)

	f.enableCatchAll(settings.CatchAllPolicy{DestinationType: settings.DestinationContentItem, DestinationContentID: 9999})
	out = f.resolver.Resolve(context.Background(), "/nope")
	assert.Equal(t, siteURL+"/", out.Location)
}

func TestResolveRedirectCycles(t *testing.T) {
	f := newResolverFixture(t)
	f.insert(t, "/self", "/self/", 301)
	f.insert(t, "/p", "/q", 301)
	f.insert(t, "/q", "/r/", 301)
	f.insert(t, "/r/", "https://example.com/p", 301)
	f.insert(t, "/chain-1", "/chain-2", 301)
	f.insert(t, "/chain-2", "/chain-3", 301)

	for _, path := range []string{"/self", "/p", "/q"} {
		assert.Equal(t, NotFound, f.resolver.Resolve(context.Background(), path).Kind, path)
	}

	out := f.resolver.Resolve(context.Background(), "/chain-1")
	assert.Equal(t, Sent, out.Kind)
	assert.Equal(t, "/chain-2", out.Location)
}

func TestResolveEmptyDestinationFallsThrough(t *testing.T) {
	f := newResolverFixture(t)
	require.NoError(t, f.db.Create(&model.Redirect{OldURL: "/broken", RedirectType: 301, ChangeType: model.ChangeTypeManual}).Error)

	assert.Equal(t, NotFound, f.resolver.Resolve(context.Background(), "/broken").Kind)

	f.enableCatchAll(settings.CatchAllPolicy{DestinationType: settings.DestinationHome})
	out := f.resolver.Resolve(context.Background(), "/broken")
	assert.True(t, out.CatchAll)
}
