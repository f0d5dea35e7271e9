package redirects

import (
	"errors"
	"strings"

	"go_polyseo/internal/httpx"
	"go_polyseo/internal/model"
	"go_polyseo/internal/redirect"

	"github.com/gin-gonic/gin"
)

// Handler 重定向管理handler
type Handler struct {
	store    *redirect.Store
	verifier *redirect.Verifier
	siteURL  string
}

// NewHandler 创建handler
func NewHandler(store *redirect.Store, verifier *redirect.Verifier, siteURL string) *Handler {
	return &Handler{store: store, verifier: verifier, siteURL: siteURL}
}

// ListRequest 列表请求
type ListRequest struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
	ChangeType string `form:"changeType"`
	Q          string `form:"q"`
}

// List 重定向列表
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid query parameters"))
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 200 {
		req.PageSize = 20
	}

	items, total, err := h.store.List(c.Request.Context(), redirect.ListFilter{
		ChangeType: req.ChangeType,
		Query:      strings.TrimSpace(req.Q),
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to query redirects", err))
		return
	}
	httpx.OKItems(c, items, total, req.Page, req.PageSize)
}

// CreateRequest 创建请求
type CreateRequest struct {
	OldURL       string `json:"oldUrl"`
	NewURL       string `json:"newUrl"`
	RedirectType int    `json:"redirectType"`
	ChangeType   string `json:"changeType"`
}

// validateTarget rejects input the store would otherwise normalize silently,
// and redirects that point back at their own source.
func (h *Handler) validateTarget(redirectType int, oldURL, newURL string) *httpx.AppError {
	if !model.IsValidRedirectType(redirectType) {
		return httpx.ErrParamIllegal("redirectType must be one of 301, 302, 307, 410")
	}
	if redirectType == model.RedirectGone {
		return nil
	}
	if strings.TrimSpace(newURL) == "" {
		return httpx.ErrParamMissing("newUrl is required unless redirectType is 410")
	}
	if redirect.SameTarget(redirect.NormalizeOldURL(oldURL), strings.TrimSpace(newURL), h.siteURL) {
		return httpx.ErrParamIllegal("newUrl must differ from oldUrl")
	}
	return nil
}

// Create 手动创建重定向
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if strings.TrimSpace(req.OldURL) == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("oldUrl is required"))
		return
	}
	if req.RedirectType == 0 {
		req.RedirectType = model.RedirectMovedPermanently
	}
	if appErr := h.validateTarget(req.RedirectType, req.OldURL, req.NewURL); appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}
	switch req.ChangeType {
	case "":
		req.ChangeType = model.ChangeTypeManual
	case model.ChangeTypeManual, model.ChangeTypeTestSystem:
	default:
		httpx.FailErr(c, httpx.ErrParamIllegal("changeType must be manual or test_system"))
		return
	}

	rec := &model.Redirect{
		OldURL:       req.OldURL,
		NewURL:       model.SPtr(req.NewURL),
		RedirectType: req.RedirectType,
		ChangeType:   req.ChangeType,
	}
	if _, err := h.store.Insert(c.Request.Context(), rec); err != nil {
		if errors.Is(err, redirect.ErrEmptyOldURL) {
			httpx.FailErr(c, httpx.ErrParamMissing("oldUrl is required"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create redirect", err))
		return
	}
	httpx.OK(c, rec)
}

// UpdateRequest 更新请求
type UpdateRequest struct {
	ID           int     `json:"id"`
	OldURL       *string `json:"oldUrl"`
	NewURL       *string `json:"newUrl"`
	RedirectType *int    `json:"redirectType"`
}

// Update 更新重定向
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if req.ID <= 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}

	ctx := c.Request.Context()
	current, err := h.store.Get(ctx, req.ID)
	if errors.Is(err, redirect.ErrNotFound) {
		httpx.FailErr(c, httpx.ErrNotFound("redirect not found"))
		return
	}
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load redirect", err))
		return
	}

	redirectType, oldURL, newURL := current.RedirectType, current.OldURL, current.Destination()
	if req.RedirectType != nil {
		redirectType = *req.RedirectType
	}
	if req.OldURL != nil {
		oldURL = *req.OldURL
	}
	if req.NewURL != nil {
		newURL = *req.NewURL
	}
	if appErr := h.validateTarget(redirectType, oldURL, newURL); appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	rec, err := h.store.UpdateFields(ctx, req.ID, redirect.Update{
		OldURL:       req.OldURL,
		NewURL:       req.NewURL,
		RedirectType: req.RedirectType,
	})
	switch {
	case errors.Is(err, redirect.ErrEmptyOldURL):
		httpx.FailErr(c, httpx.ErrParamMissing("oldUrl is required"))
	case errors.Is(err, redirect.ErrNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("redirect not found"))
	case err != nil:
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to update redirect", err))
	default:
		httpx.OK(c, rec)
	}
}

// DeleteRequest 删除请求
type DeleteRequest struct {
	IDs []int `json:"ids"`
}

// Delete 批量删除重定向
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if len(req.IDs) == 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("ids is required"))
		return
	}

	n, err := h.store.DeleteByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete redirects", err))
		return
	}
	httpx.OK(c, gin.H{"deleted": n})
}

// Verify 立即执行一批重定向校验
func (h *Handler) Verify(c *gin.Context) {
	httpx.OK(c, h.verifier.RunOnce(c.Request.Context()))
}
