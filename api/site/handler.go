// Package site serves the public surface: robots.txt, sitemaps, published
// content and the redirect fallback for everything else.
package site

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go_polyseo/internal/content"
	"go_polyseo/internal/httpx"
	"go_polyseo/internal/model"
	"go_polyseo/internal/redirect"
	"go_polyseo/internal/robots"
	"go_polyseo/internal/settings"
	"go_polyseo/internal/sitemap"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="canonical" href="{{.Canonical}}">
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{.Body}}
</article>
</body>
</html>
`

// ContentFinder looks up published content by address.
type ContentFinder interface {
	FindPublishedByAddress(ctx context.Context, path, defaultLang string) (*model.Content, error)
}

// DefaultLanguager returns the default language code.
type DefaultLanguager interface {
	Default(ctx context.Context) (string, error)
}

// SettingsSource returns the active settings snapshot.
type SettingsSource interface {
	Current() *settings.Snapshot
}

// Handler is the public site handler.
type Handler struct {
	settings SettingsSource
	sitemaps *sitemap.Router
	content  ContentFinder
	langs    DefaultLanguager
	resolver *redirect.Resolver
	siteURL  string
	log      *logrus.Entry
}

// NewHandler creates a Handler.
func NewHandler(s SettingsSource, sitemaps *sitemap.Router, finder ContentFinder, langs DefaultLanguager, resolver *redirect.Resolver, siteURL string, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		settings: s,
		sitemaps: sitemaps,
		content:  finder,
		langs:    langs,
		resolver: resolver,
		siteURL:  siteURL,
		log:      log.WithField("component", "site"),
	}
}

// Register mounts robots.txt and the fallback for unmatched routes.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("page").Parse(pageTemplate)))
	r.GET("/robots.txt", h.Robots)
	r.HEAD("/robots.txt", h.Robots)
	r.NoRoute(h.Fallback)
}

// Robots serves robots.txt.
func (h *Handler) Robots(c *gin.Context) {
	snap := h.settings.Current()
	body := robots.Render(snap.Robots, h.siteURL, snap.Sitemap.Enabled)
	c.Data(http.StatusOK, robots.ContentType, []byte(body))
}

// Fallback handles every path no route matched: sitemaps, then published
// content, then the redirect resolver.
func (h *Handler) Fallback(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") {
		httpx.FailErr(c, httpx.ErrNotFound("route not found"))
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	if req, ok := sitemap.Match(path); ok {
		h.sitemaps.Serve(c.Writer, c.Request, req)
		return
	}

	ctx := c.Request.Context()
	def, err := h.langs.Default(ctx)
	if err != nil {
		h.log.WithError(err).Error("Failed to load default language")
		c.String(http.StatusServiceUnavailable, "503 service unavailable")
		return
	}

	item, err := h.content.FindPublishedByAddress(ctx, path, def)
	switch {
	case err == nil:
		h.render(c, item, def)
		return
	case !errors.Is(err, content.ErrNotFound):
		h.log.WithError(err).WithField("path", path).Error("Content lookup failed")
	}

	// verification probes must only see what the host does on its own
	if c.GetHeader(redirect.ProbeHeader) != "" {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	out := h.resolver.Resolve(ctx, path)
	switch out.Kind {
	case redirect.Sent:
		c.Redirect(out.Status, out.Location)
	case redirect.Gone:
		c.String(http.StatusGone, "410 gone")
	default:
		c.String(http.StatusNotFound, "404 page not found")
	}
}

func (h *Handler) render(c *gin.Context, item *model.Content, defaultLang string) {
	addr := content.Address(item, defaultLang)
	c.HTML(http.StatusOK, "page", gin.H{
		"Lang":      content.EffectiveLanguage(item.Language, defaultLang),
		"Title":     item.Title,
		"Body":      item.Body,
		"Canonical": h.siteURL + addr,
	})
}
