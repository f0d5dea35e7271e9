package contents

import (
	"errors"

	"go_polyseo/internal/content"
	"go_polyseo/internal/httpx"
	"go_polyseo/internal/model"

	"github.com/gin-gonic/gin"
)

// Handler 内容管理handler
type Handler struct {
	svc *content.Service
}

// NewHandler 创建handler
func NewHandler(svc *content.Service) *Handler {
	return &Handler{svc: svc}
}

// fail maps content errors to API errors.
func fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("content not found"))
	case errors.Is(err, content.ErrInvalidSlug):
		httpx.FailErr(c, httpx.ErrParamIllegal("slug may contain lowercase letters, digits, '-' and '_'"))
	case errors.Is(err, content.ErrInvalidStatus):
		httpx.FailErr(c, httpx.ErrParamIllegal("status must be draft or publish"))
	case errors.Is(err, content.ErrInvalidTransition):
		httpx.FailErr(c, httpx.ErrStateConflict(""))
	default:
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to "+action, err))
	}
}

// ListRequest 列表请求
type ListRequest struct {
	Page     int     `form:"page"`
	PageSize int     `form:"pageSize"`
	Type     string  `form:"type"`
	Status   string  `form:"status"`
	Language *string `form:"language"`
}

// List 内容列表
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

	items, total, err := h.svc.Repository().List(c.Request.Context(), content.ListFilter{
		Type:     req.Type,
		Status:   req.Status,
		Language: req.Language,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		fail(c, err, "query content")
		return
	}
	httpx.OKItems(c, items, total, req.Page, req.PageSize)
}

// CreateRequest 创建请求
type CreateRequest struct {
	Type     string `json:"type"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Status   string `json:"status"`
	Language string `json:"language"`
}

// Create 创建内容
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if req.Slug == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("slug is required"))
		return
	}

	item := &model.Content{
		Type:     req.Type,
		Slug:     req.Slug,
		Title:    req.Title,
		Body:     req.Body,
		Status:   req.Status,
		Language: req.Language,
	}
	if err := h.svc.Create(c.Request.Context(), item); err != nil {
		fail(c, err, "create content")
		return
	}
	httpx.OK(c, item)
}

// UpdateRequest 更新请求
type UpdateRequest struct {
	ID       int     `json:"id"`
	Title    *string `json:"title"`
	Slug     *string `json:"slug"`
	Body     *string `json:"body"`
	Status   *string `json:"status"`
	Language *string `json:"language"`
}

// Update 更新内容
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

	item, err := h.svc.Update(c.Request.Context(), req.ID, content.Patch{
		Title:    req.Title,
		Slug:     req.Slug,
		Body:     req.Body,
		Status:   req.Status,
		Language: req.Language,
	})
	if err != nil {
		fail(c, err, "update content")
		return
	}
	httpx.OK(c, item)
}

// IDRequest 单 ID 请求
type IDRequest struct {
	ID int `json:"id"`
}

func bindID(c *gin.Context) (int, bool) {
	var req IDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return 0, false
	}
	if req.ID <= 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return 0, false
	}
	return req.ID, true
}

// Trash 移入回收站
func (h *Handler) Trash(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.svc.Trash(c.Request.Context(), id); err != nil {
		fail(c, err, "trash content")
		return
	}
	httpx.OK(c, gin.H{"id": id})
}

// Restore 从回收站恢复
func (h *Handler) Restore(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	item, err := h.svc.Restore(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "restore content")
		return
	}
	httpx.OK(c, item)
}

// Delete 永久删除
func (h *Handler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, "delete content")
		return
	}
	httpx.OK(c, gin.H{"id": id})
}

// TermRequest 分类保存请求
type TermRequest struct {
	ID       int    `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// SaveTerm 新增或更新分类
func (h *Handler) SaveTerm(c *gin.Context) {
	var req TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if req.Slug == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("slug is required"))
		return
	}

	term := &model.Term{Taxonomy: req.Taxonomy, Slug: req.Slug, Name: req.Name, Language: req.Language}
	term.ID = req.ID
	if err := h.svc.SaveTerm(c.Request.Context(), term); err != nil {
		fail(c, err, "save term")
		return
	}
	httpx.OK(c, term)
}

// DeleteTerm 删除分类
func (h *Handler) DeleteTerm(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTerm(c.Request.Context(), id); err != nil {
		fail(c, err, "delete term")
		return
	}
	httpx.OK(c, gin.H{"id": id})
}
