package v1

import (
	"go_polyseo/api/v1/contents"
	"go_polyseo/api/v1/languages"
	"go_polyseo/api/v1/redirects"
	"go_polyseo/api/v1/settings"
	"go_polyseo/api/v1/sitemaps"
	"go_polyseo/internal/content"
	"go_polyseo/internal/httpx"
	"go_polyseo/internal/language"
	"go_polyseo/internal/redirect"
	sitesettings "go_polyseo/internal/settings"
	"go_polyseo/internal/sitecache"
	"go_polyseo/internal/sitemap"

	"github.com/gin-gonic/gin"
)

// Deps holds the services the admin API operates on.
type Deps struct {
	Redirects   *redirect.Store
	Verifier    *redirect.Verifier
	Cache       sitecache.Store
	Sweeper     *sitecache.Sweeper
	Invalidator *sitemap.Invalidator
	Settings    *sitesettings.Service
	Content     *content.Service
	Languages   *language.Registry
	SiteURL     string
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, d Deps) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", pingHandler)

		redirectsHandler := redirects.NewHandler(d.Redirects, d.Verifier, d.SiteURL)
		redirectsGroup := v1.Group("/redirects")
		{
			redirectsGroup.GET("", redirectsHandler.List)
			redirectsGroup.POST("/create", redirectsHandler.Create)
			redirectsGroup.POST("/update", redirectsHandler.Update)
			redirectsGroup.POST("/delete", redirectsHandler.Delete)
			redirectsGroup.POST("/verify", redirectsHandler.Verify)
		}

		sitemapsHandler := sitemaps.NewHandler(d.Cache, d.Sweeper)
		sitemapGroup := v1.Group("/sitemap/cache")
		{
			sitemapGroup.POST("/clear", sitemapsHandler.Clear)
			sitemapGroup.POST("/sweep", sitemapsHandler.Sweep)
		}

		settingsHandler := settings.NewHandler(d.Settings)
		settingsGroup := v1.Group("/settings")
		{
			settingsGroup.GET("", settingsHandler.Get)
			settingsGroup.POST("/sitemap", settingsHandler.SaveSitemap)
			settingsGroup.POST("/catch-all", settingsHandler.SaveCatchAll)
			settingsGroup.POST("/robots", settingsHandler.SaveRobots)
		}

		contentsHandler := contents.NewHandler(d.Content)
		contentsGroup := v1.Group("/contents")
		{
			contentsGroup.GET("", contentsHandler.List)
			contentsGroup.POST("/create", contentsHandler.Create)
			contentsGroup.POST("/update", contentsHandler.Update)
			contentsGroup.POST("/trash", contentsHandler.Trash)
			contentsGroup.POST("/restore", contentsHandler.Restore)
			contentsGroup.POST("/delete", contentsHandler.Delete)
		}
		termsGroup := v1.Group("/terms")
		{
			termsGroup.POST("/save", contentsHandler.SaveTerm)
			termsGroup.POST("/delete", contentsHandler.DeleteTerm)
		}

		languagesHandler := languages.NewHandler(d.Languages, d.Invalidator)
		languagesGroup := v1.Group("/languages")
		{
			languagesGroup.GET("", languagesHandler.List)
			languagesGroup.POST("/save", languagesHandler.Save)
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
