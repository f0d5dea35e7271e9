package languages

import (
	"context"
	"errors"

	"go_polyseo/internal/httpx"
	"go_polyseo/internal/language"
	"go_polyseo/internal/model"

	"github.com/gin-gonic/gin"
)

// CacheClearer drops cached sitemaps after language changes.
type CacheClearer interface {
	ClearAll(ctx context.Context)
}

// Handler 语言管理handler
type Handler struct {
	registry *language.Registry
	cache    CacheClearer
}

// NewHandler 创建handler
func NewHandler(registry *language.Registry, cache CacheClearer) *Handler {
	return &Handler{registry: registry, cache: cache}
}

// List 语言列表
func (h *Handler) List(c *gin.Context) {
	langs, err := h.registry.All(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query languages", err))
		return
	}
	httpx.OK(c, gin.H{"items": langs})
}

// SaveRequest 保存请求
type SaveRequest struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	Locale           string `json:"locale"`
	Enabled          *bool  `json:"enabled"`
	IsDefault        bool   `json:"isDefault"`
	LandingContentID *int   `json:"landingContentId"`
	SortOrder        int    `json:"sortOrder"`
}

// Save 新增或更新语言（按 code）
func (h *Handler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if req.Code == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("code is required"))
		return
	}

	lang := &model.Language{
		Code:             req.Code,
		Name:             req.Name,
		Locale:           req.Locale,
		Enabled:          req.Enabled == nil || *req.Enabled,
		IsDefault:        req.IsDefault,
		LandingContentID: req.LandingContentID,
		SortOrder:        req.SortOrder,
	}
	if lang.IsDefault && !lang.Enabled {
		httpx.FailErr(c, httpx.ErrParamIllegal("the default language must be enabled"))
		return
	}

	ctx := c.Request.Context()
	if err := h.registry.Save(ctx, lang); err != nil {
		if errors.Is(err, language.ErrInvalidCode) {
			httpx.FailErr(c, httpx.ErrParamIllegal("code may contain letters, digits, '-' and '_' (max 16)"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to save language", err))
		return
	}
	h.cache.ClearAll(ctx)
	httpx.OK(c, lang)
}
