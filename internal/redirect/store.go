// Package redirect stores redirect records, resolves unmatched requests
// against them and keeps them in step with content changes.
package redirect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go_polyseo/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrEmptyOldURL is returned when a record has no source address.
	ErrEmptyOldURL = errors.New("redirect: old_url is required")
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("redirect: not found")
)

// Store persists redirect records. Duplicate old_url values are allowed;
// lookups return the newest record.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func normalizeRecord(r *model.Redirect) error {
	r.OldURL = NormalizeOldURL(r.OldURL)
	if r.OldURL == "" {
		return ErrEmptyOldURL
	}
	if !model.IsValidRedirectType(r.RedirectType) {
		r.RedirectType = model.RedirectMovedPermanently
	}
	if r.NewURL != nil {
		v := strings.TrimSpace(*r.NewURL)
		r.NewURL = &v
		if v == "" {
			r.NewURL = nil
		}
	}
	if r.RedirectType == model.RedirectGone {
		r.NewURL = nil
	}
	if r.ChangeType == "" {
		r.ChangeType = model.ChangeTypeManual
	}
	return nil
}

// Insert validates and stores r and returns its id.
func (s *Store) Insert(ctx context.Context, r *model.Redirect) (int, error) {
	if err := normalizeRecord(r); err != nil {
		return 0, err
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return 0, fmt.Errorf("insert redirect: %w", err)
	}
	return r.ID, nil
}

// Get returns the record with id.
func (s *Store) Get(ctx context.Context, id int) (*model.Redirect, error) {
	var r model.Redirect
	err := s.db.WithContext(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load redirect %d: %w", id, err)
	}
	return &r, nil
}

// FindLatestByOldURL returns the most recently created record whose old_url
// equals oldURL exactly.
func (s *Store) FindLatestByOldURL(ctx context.Context, oldURL string) (*model.Redirect, error) {
	var r model.Redirect
	err := s.db.WithContext(ctx).
		Where("old_url = ?", oldURL).
		Order("created_at DESC, id DESC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find redirect %q: %w", oldURL, err)
	}
	return &r, nil
}

// Update lists the fields UpdateFields changes. Nil fields are left alone;
// an empty NewURL clears the destination.
type Update struct {
	OldURL             *string
	NewURL             *string
	RedirectType       *int
	HostNativeRedirect *bool
}

// UpdateFields applies u to the record with id.
func (s *Store) UpdateFields(ctx context.Context, id int, u Update) (*model.Redirect, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.OldURL != nil {
		r.OldURL = *u.OldURL
	}
	if u.NewURL != nil {
		r.NewURL = u.NewURL
	}
	if u.RedirectType != nil {
		r.RedirectType = *u.RedirectType
	}
	if u.HostNativeRedirect != nil {
		r.HostNativeRedirect = *u.HostNativeRedirect
	}
	if err := normalizeRecord(r); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Redirect{}).Where("id = ?", id).Updates(map[string]interface{}{
		"old_url":              r.OldURL,
		"new_url":              r.NewURL,
		"redirect_type":        r.RedirectType,
		"host_native_redirect": r.HostNativeRedirect,
	}).Error; err != nil {
		return nil, fmt.Errorf("update redirect %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// DeleteByIDs removes the given records.
func (s *Store) DeleteByIDs(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Redirect{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete redirects: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteWhere removes the records of changeType sourced from contentID.
func (s *Store) DeleteWhere(ctx context.Context, contentID int, changeType string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("source_content_id = ? AND change_type = ?", contentID, changeType).
		Delete(&model.Redirect{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s redirects of content %d: %w", changeType, contentID, res.Error)
	}
	return res.RowsAffected, nil
}

// ResyncLinks rewrites old_url of records sourced from contentID and new_url
// of records destined to it so they match address. Records that end up
// redirecting to themselves are removed.
func (s *Store) ResyncLinks(ctx context.Context, contentID int, address string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Redirect{}).
			Where("source_content_id = ? AND old_url <> ?", contentID, address).
			Update("old_url", address).Error; err != nil {
			return fmt.Errorf("resync source links of content %d: %w", contentID, err)
		}
		if err := tx.Model(&model.Redirect{}).
			Where("destination_content_id = ? AND (new_url IS NULL OR new_url <> ?) AND redirect_type <> ?",
				contentID, address, model.RedirectGone).
			Update("new_url", address).Error; err != nil {
			return fmt.Errorf("resync destination links of content %d: %w", contentID, err)
		}
		if err := tx.
			Where("(source_content_id = ? OR destination_content_id = ?) AND old_url = new_url", contentID, contentID).
			Delete(&model.Redirect{}).Error; err != nil {
			return fmt.Errorf("remove self redirects of content %d: %w", contentID, err)
		}
		return nil
	})
}

// ListUnverified returns up to limit "changed" records not yet confirmed as
// host-native, least recently checked first.
func (s *Store) ListUnverified(ctx context.Context, limit int) ([]model.Redirect, error) {
	var out []model.Redirect
	if err := s.db.WithContext(ctx).
		Where("change_type = ? AND host_native_redirect = ? AND new_url IS NOT NULL", model.ChangeTypeChanged, false).
		Order("CASE WHEN checked_at IS NULL THEN 0 ELSE 1 END, checked_at ASC, created_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list unverified redirects: %w", err)
	}
	return out, nil
}

// MarkChecked stamps a verification attempt.
func (s *Store) MarkChecked(ctx context.Context, id int, hostNative bool, at time.Time) error {
	if err := s.db.WithContext(ctx).Model(&model.Redirect{}).Where("id = ?", id).Updates(map[string]interface{}{
		"host_native_redirect": hostNative,
		"checked_at":           at,
	}).Error; err != nil {
		return fmt.Errorf("mark redirect %d checked: %w", id, err)
	}
	return nil
}

// DeleteChangedOlderThan removes "changed" records created before cutoff.
func (s *Store) DeleteChangedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("change_type = ? AND created_at < ?", model.ChangeTypeChanged, cutoff).
		Delete(&model.Redirect{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired redirects: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListFilter narrows List.
type ListFilter struct {
	ChangeType string
	Query      string
	Page       int
	PageSize   int
}

// List returns a page of records, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]model.Redirect, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Redirect{})
	if f.ChangeType != "" {
		q = q.Where("change_type = ?", f.ChangeType)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("old_url LIKE ? OR new_url LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count redirects: %w", err)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 200 {
		f.PageSize = 20
	}
	var out []model.Redirect
	if err := q.Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list redirects: %w", err)
	}
	return out, total, nil
}
