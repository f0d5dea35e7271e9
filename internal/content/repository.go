// Package content owns the content store: items, taxonomy terms, their
// public addresses and lifecycle events.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go_polyseo/internal/model"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a content item or term does not exist.
var ErrNotFound = errors.New("content: not found")

// Repository queries the content store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// QueryPublished returns published items of the given types for one language,
// newest modification first with id as tie-break.
func (r *Repository) QueryPublished(ctx context.Context, types []string, f LanguageFilter) ([]model.Content, error) {
	if len(types) == 0 {
		return nil, nil
	}
	var items []model.Content
	q := r.db.WithContext(ctx).
		Where("status = ? AND type IN ?", model.ContentStatusPublish, types)
	if err := f.apply(q).
		Order("modified_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("query published content: %w", err)
	}
	return items, nil
}

// QueryTerms returns the terms of the given taxonomies for one language.
func (r *Repository) QueryTerms(ctx context.Context, taxonomies []string, f LanguageFilter) ([]model.Term, error) {
	if len(taxonomies) == 0 {
		return nil, nil
	}
	var terms []model.Term
	q := r.db.WithContext(ctx).Where("taxonomy IN ?", taxonomies)
	if err := f.apply(q).
		Order("taxonomy ASC, slug ASC, id ASC").
		Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	return terms, nil
}

// Get returns the item with the given id.
func (r *Repository) Get(ctx context.Context, id int) (*model.Content, error) {
	var c model.Content
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load content %d: %w", id, err)
	}
	return &c, nil
}

// GetTerm returns the term with the given id.
func (r *Repository) GetTerm(ctx context.Context, id int) (*model.Term, error) {
	var t model.Term
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load term %d: %w", id, err)
	}
	return &t, nil
}

// PublishedAddress returns the address of a published item, or ErrNotFound
// when the item is missing or not publicly addressable.
func (r *Repository) PublishedAddress(ctx context.Context, id int, defaultLang string) (string, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !c.IsPublished() {
		return "", ErrNotFound
	}
	return Address(c, defaultLang), nil
}

// FindPublishedByAddress returns the published item served at path.
func (r *Repository) FindPublishedByAddress(ctx context.Context, path, defaultLang string) (*model.Content, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, ErrNotFound
	}
	segments := strings.Split(trimmed, "/")
	slug := segments[len(segments)-1]
	want := "/" + trimmed + "/"

	var candidates []model.Content
	if err := r.db.WithContext(ctx).
		Where("status = ? AND slug = ?", model.ContentStatusPublish, slug).
		Order("id ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("find content by address: %w", err)
	}
	for i := range candidates {
		if Address(&candidates[i], defaultLang) == want {
			return &candidates[i], nil
		}
	}
	return nil, ErrNotFound
}

// ListFilter narrows List.
type ListFilter struct {
	Type     string
	Status   string
	Language *string
	Page     int
	PageSize int
}

// List returns a page of items for the admin API, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]model.Content, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Content{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Language != nil {
		q = q.Where("language = ?", *f.Language)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count content: %w", err)
	}

	var items []model.Content
	if err := q.Order("id DESC").
		Limit(f.PageSize).
		Offset((f.Page - 1) * f.PageSize).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list content: %w", err)
	}
	return items, total, nil
}
