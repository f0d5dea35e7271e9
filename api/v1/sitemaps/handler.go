package sitemaps

import (
	"go_polyseo/internal/httpx"
	"go_polyseo/internal/sitecache"

	"github.com/gin-gonic/gin"
)

// Handler 站点地图缓存管理handler
type Handler struct {
	cache   sitecache.Store
	sweeper *sitecache.Sweeper
}

// NewHandler 创建handler
func NewHandler(cache sitecache.Store, sweeper *sitecache.Sweeper) *Handler {
	return &Handler{cache: cache, sweeper: sweeper}
}

// ClearRequest 清除缓存请求
type ClearRequest struct {
	Type string `json:"type"`
	Lang string `json:"lang"`
}

// Clear 清除缓存；type/lang 为空或 "all" 时匹配全部
func (h *Handler) Clear(c *gin.Context) {
	var req ClearRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}
	}
	if req.Type == "" {
		req.Type = string(sitecache.ArtifactAll)
	}
	if req.Lang == "" {
		req.Lang = sitecache.AllLanguages
	}
	t, ok := sitecache.ParseArtifactType(req.Type)
	if !ok {
		httpx.FailErr(c, httpx.ErrParamIllegal("type must be one of index, posts, pages, taxonomies, all"))
		return
	}

	if err := h.cache.Invalidate(c.Request.Context(), t, req.Lang); err != nil {
		httpx.FailErr(c, httpx.ErrStorageError("failed to clear sitemap cache", err))
		return
	}
	httpx.OK(c, gin.H{"type": t, "lang": req.Lang, "store": h.cache.Name()})
}

// Sweep 立即清理过期缓存
func (h *Handler) Sweep(c *gin.Context) {
	httpx.OK(c, gin.H{"removed": h.sweeper.RunOnce(c.Request.Context())})
}
