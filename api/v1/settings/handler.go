package settings

import (
	"go_polyseo/internal/httpx"
	"go_polyseo/internal/model"
	sitesettings "go_polyseo/internal/settings"

	"github.com/gin-gonic/gin"
)

// Handler 运行时配置handler
type Handler struct {
	svc *sitesettings.Service
}

// NewHandler 创建handler
func NewHandler(svc *sitesettings.Service) *Handler {
	return &Handler{svc: svc}
}

// Get 当前配置
func (h *Handler) Get(c *gin.Context) {
	httpx.OK(c, h.svc.Current())
}

// SaveSitemap 保存站点地图配置
func (h *Handler) SaveSitemap(c *gin.Context) {
	var req sitesettings.SitemapSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if req.CacheDurationSeconds < 0 {
		httpx.FailErr(c, httpx.ErrParamIllegal("cacheDurationSeconds must not be negative"))
		return
	}

	snap, err := h.svc.SaveSitemap(c.Request.Context(), req)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to save sitemap settings", err))
		return
	}
	httpx.OK(c, snap.Sitemap)
}

// SaveCatchAll 保存兜底重定向配置
func (h *Handler) SaveCatchAll(c *gin.Context) {
	var req sitesettings.CatchAllPolicy
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if req.RedirectType == 0 {
		req.RedirectType = model.RedirectMovedPermanently
	}
	switch req.RedirectType {
	case model.RedirectMovedPermanently, model.RedirectFound, model.RedirectTemporaryRedirect:
	default:
		httpx.FailErr(c, httpx.ErrParamIllegal("redirectType must be one of 301, 302, 307"))
		return
	}
	switch req.DestinationType {
	case "":
		req.DestinationType = sitesettings.DestinationHome
	case sitesettings.DestinationHome:
	case sitesettings.DestinationURL:
		if req.DestinationURL == "" {
			httpx.FailErr(c, httpx.ErrParamMissing("destinationUrl is required"))
			return
		}
	case sitesettings.DestinationContentItem:
		if req.DestinationContentID <= 0 {
			httpx.FailErr(c, httpx.ErrParamMissing("destinationContentId is required"))
			return
		}
	default:
		httpx.FailErr(c, httpx.ErrParamIllegal("destinationType must be one of content_item, url, home"))
		return
	}

	snap, err := h.svc.SaveCatchAll(c.Request.Context(), req)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to save catch-all settings", err))
		return
	}
	httpx.OK(c, snap.CatchAll)
}

// SaveRobots 保存 robots.txt 配置
func (h *Handler) SaveRobots(c *gin.Context) {
	var req sitesettings.RobotsSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	snap, err := h.svc.SaveRobots(c.Request.Context(), req)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to save robots settings", err))
		return
	}
	httpx.OK(c, snap.Robots)
}
