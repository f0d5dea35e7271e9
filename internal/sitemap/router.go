package sitemap

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"go_polyseo/internal/metrics"
	"go_polyseo/internal/settings"
	"go_polyseo/internal/sitecache"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrDisabled is returned when sitemaps are switched off.
	ErrDisabled = errors.New("sitemap: disabled")
	// ErrUnknownLanguage is returned for a language that is not enabled.
	ErrUnknownLanguage = errors.New("sitemap: unknown language")
)

// Response headers
const (
	ContentType  = "application/xml; charset=UTF-8"
	CacheControl = "public, max-age=3600"
	HeaderCache  = "X-Sitemap-Cache"
)

// buildTimeout bounds one shared document build.
const buildTimeout = 30 * time.Second

var pathPattern = regexp.MustCompile(`^/sitemap(?:-(index|posts|pages|taxonomies)(?:-([A-Za-z0-9_-]+))?)?\.xml$`)

// Request is a parsed sitemap path.
type Request struct {
	Type     sitecache.ArtifactType
	Language string
}

// Key returns the cache key of the request.
func (r Request) Key() sitecache.Key {
	return sitecache.Key{Type: r.Type, Language: r.Language}
}

// Match parses sitemap.xml, sitemap-index.xml, sitemap-{type}.xml and
// sitemap-{type}-{lang}.xml.
func Match(path string) (Request, bool) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return Request{}, false
	}
	kind, lang := m[1], m[2]
	if kind == "" || kind == "index" {
		if lang != "" {
			return Request{}, false
		}
		return Request{Type: sitecache.ArtifactIndex}, true
	}
	return Request{Type: sitecache.ArtifactType(kind), Language: lang}, true
}

// SettingsSource returns the active settings snapshot.
type SettingsSource interface {
	Current() *settings.Snapshot
}

// LanguageChecker validates requested languages.
type LanguageChecker interface {
	IsEnabled(ctx context.Context, code string) (bool, error)
}

// Router serves sitemap requests through the cache.
type Router struct {
	builder  *Builder
	cache    sitecache.Store
	settings SettingsSource
	langs    LanguageChecker
	metrics  metrics.Publisher
	log      *logrus.Entry
	builds   singleflight.Group
}

// NewRouter creates a Router.
func NewRouter(builder *Builder, cache sitecache.Store, s SettingsSource, langs LanguageChecker, pub metrics.Publisher, log *logrus.Entry) *Router {
	if pub == nil {
		pub = metrics.NoOpPublisher{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Router{
		builder:  builder,
		cache:    cache,
		settings: s,
		langs:    langs,
		metrics:  pub,
		log:      log.WithField("component", "sitemap"),
	}
}

// Result is a rendered document and whether it came from the cache.
type Result struct {
	Body   []byte
	Cached bool
}

// Resolve returns the document for req, building and caching it on a miss.
// Concurrent misses for the same key share one build.
func (r *Router) Resolve(ctx context.Context, req Request) (Result, error) {
	cfg := r.settings.Current().Sitemap
	if !cfg.Enabled {
		return Result{}, ErrDisabled
	}
	if req.Language != "" {
		ok, err := r.langs.IsEnabled(ctx, req.Language)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, ErrUnknownLanguage
		}
	}

	typeTag := metrics.Tag("type", string(req.Type))
	ttl := cfg.CacheTTL()
	if body, ok := r.cache.Get(ctx, req.Key(), ttl); ok {
		r.metrics.Incr("sitemap.request", typeTag, metrics.Tag("cache", "hit"))
		return Result{Body: body, Cached: true}, nil
	}
	r.metrics.Incr("sitemap.request", typeTag, metrics.Tag("cache", "miss"))

	v, err, _ := r.builds.Do(req.Key().String(), func() (interface{}, error) {
		// the build is shared by every waiter, so it must outlive the caller that started it
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()

		start := time.Now()
		body, err := r.builder.Build(buildCtx, cfg, req.Type, req.Language)
		if err != nil {
			return nil, err
		}
		r.metrics.Timing("sitemap.build", time.Since(start), typeTag)

		if err := r.cache.Put(buildCtx, req.Key(), body, ttl); err != nil {
			r.log.WithError(err).WithField("key", req.Key().String()).Warn("Failed to cache sitemap")
		}
		return body, nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Body: v.([]byte)}, nil
}

// Serve writes the sitemap for req.
func (r *Router) Serve(w http.ResponseWriter, httpReq *http.Request, req Request) {
	res, err := r.Resolve(httpReq.Context(), req)
	switch {
	case errors.Is(err, ErrDisabled), errors.Is(err, ErrUnknownLanguage):
		r.log.WithField("path", httpReq.URL.Path).WithError(err).Debug("Sitemap not served")
		http.NotFound(w, httpReq)
		return
	case err != nil:
		r.log.WithError(err).WithField("path", httpReq.URL.Path).Error("Failed to build sitemap")
		http.Error(w, "sitemap temporarily unavailable", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("X-Robots-Tag", "noindex")
	h.Set("Cache-Control", CacheControl)
	if res.Cached {
		h.Set(HeaderCache, "HIT")
	} else {
		h.Set(HeaderCache, "MISS")
	}
	w.WriteHeader(http.StatusOK)
	if httpReq.Method != http.MethodHead {
		_, _ = w.Write(res.Body)
	}
}

// ServeHTTP serves any sitemap path and answers 404 for everything else.
func (r *Router) ServeHTTP(w http.ResponseWriter, httpReq *http.Request) {
	req, ok := Match(httpReq.URL.Path)
	if !ok {
		http.NotFound(w, httpReq)
		return
	}
	r.Serve(w, httpReq, req)
}
