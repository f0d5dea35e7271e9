// Package app wires the stores, services, background workers and HTTP
// handlers into one runnable unit.
package app

import (
	"context"
	"time"

	"go_polyseo/api/site"
	v1 "go_polyseo/api/v1"
	"go_polyseo/api/v1/middleware"
	"go_polyseo/internal/content"
	"go_polyseo/internal/language"
	"go_polyseo/internal/metrics"
	"go_polyseo/internal/redirect"
	"go_polyseo/internal/settings"
	"go_polyseo/internal/sitecache"
	"go_polyseo/internal/sitemap"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options configures New.
type Options struct {
	SiteURL         string
	DB              *gorm.DB
	Cache           sitecache.Store
	Metrics         metrics.Publisher
	Log             *logrus.Entry
	DefaultLanguage string
	Sweeper         sitecache.SweeperConfig
	Verifier        redirect.VerifierConfig
	Cleaner         redirect.CleanerConfig
}

type worker interface {
	Start()
	Stop()
}

// App is the assembled service.
type App struct {
	Engine    *gin.Engine
	Settings  *settings.Service
	Content   *content.Service
	Languages *language.Registry
	Redirects *redirect.Store
	Resolver  *redirect.Resolver
	Sitemaps  *sitemap.Router
	Verifier  *redirect.Verifier
	Cleaner   *redirect.Cleaner
	Sweeper   *sitecache.Sweeper

	workers []worker
	log     *logrus.Entry
}

// New builds the App. Nothing runs until Start is called or Engine serves
// a request.
func New(ctx context.Context, opts Options) (*App, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	pub := opts.Metrics
	if pub == nil {
		pub = metrics.NoOpPublisher{}
	}
	fallback := opts.DefaultLanguage
	if fallback == "" {
		fallback = language.FallbackDefault
	}

	settingsSvc, err := settings.NewService(ctx, opts.DB, log)
	if err != nil {
		return nil, err
	}
	registry := language.NewRegistry(opts.DB, fallback)
	redirects := redirect.NewStore(opts.DB)

	// content events fan out to the redirect tracker and the sitemap cache
	events := content.NewDispatcher()
	contentSvc := content.NewService(opts.DB, registry, events, log)
	invalidator := sitemap.NewInvalidator(opts.Cache, log)
	events.Subscribe(redirect.NewTracker(redirects, log))
	events.Subscribe(invalidator)
	settingsSvc.OnChange(invalidator.SettingsChanged)

	repo := contentSvc.Repository()
	builder := sitemap.NewBuilder(repo, registry, opts.SiteURL)
	sitemaps := sitemap.NewRouter(builder, opts.Cache, settingsSvc, registry, pub, log)
	resolver := redirect.NewResolver(redirects, repo, registry, settingsSvc, opts.SiteURL, pub, log)

	sweeper := sitecache.NewSweeper(opts.Cache, func() time.Duration {
		return settingsSvc.Current().Sitemap.CacheTTL()
	}, opts.Sweeper, log)
	verifier := redirect.NewVerifier(redirects, opts.SiteURL, opts.Verifier, pub, log)
	cleaner := redirect.NewCleaner(redirects, opts.Cleaner, pub, log)

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(log), middleware.AccessLog())
	v1.SetupRouter(engine, v1.Deps{
		Redirects:   redirects,
		Verifier:    verifier,
		Cache:       opts.Cache,
		Sweeper:     sweeper,
		Invalidator: invalidator,
		Settings:    settingsSvc,
		Content:     contentSvc,
		Languages:   registry,
		SiteURL:     opts.SiteURL,
	})
	site.NewHandler(settingsSvc, sitemaps, repo, registry, resolver, opts.SiteURL, log).Register(engine)

	return &App{
		Engine:    engine,
		Settings:  settingsSvc,
		Content:   contentSvc,
		Languages: registry,
		Redirects: redirects,
		Resolver:  resolver,
		Sitemaps:  sitemaps,
		Verifier:  verifier,
		Cleaner:   cleaner,
		Sweeper:   sweeper,
		workers:   []worker{sweeper, verifier, cleaner},
		log:       log,
	}, nil
}

// Start starts the background workers.
func (a *App) Start() {
	for _, w := range a.workers {
		w.Start()
	}
}

// Stop stops the background workers and waits for them to exit.
func (a *App) Stop() {
	for i := len(a.workers) - 1; i >= 0; i-- {
		a.workers[i].Stop()
	}
}
