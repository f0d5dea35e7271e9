// Package language exposes the configured site languages.
package language

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go_polyseo/internal/model"

	"gorm.io/gorm"
)

// FallbackDefault is used only when no language is configured at all.
const FallbackDefault = "en"

// ErrInvalidCode is returned by Save for an empty or malformed code.
var ErrInvalidCode = errors.New("language: invalid code")

// Registry reads and writes language configuration.
type Registry struct {
	db       *gorm.DB
	fallback string
}

// NewRegistry creates a registry. fallback names the default language used
// when the languages table is empty; "" selects FallbackDefault.
func NewRegistry(db *gorm.DB, fallback string) *Registry {
	if fallback == "" {
		fallback = FallbackDefault
	}
	return &Registry{db: db, fallback: fallback}
}

// All returns every configured language ordered for display.
func (r *Registry) All(ctx context.Context) ([]model.Language, error) {
	var langs []model.Language
	if err := r.db.WithContext(ctx).Order("sort_order ASC, code ASC").Find(&langs).Error; err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return langs, nil
}

// Enabled returns the enabled languages ordered for display.
func (r *Registry) Enabled(ctx context.Context) ([]model.Language, error) {
	var langs []model.Language
	if err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("sort_order ASC, code ASC").
		Find(&langs).Error; err != nil {
		return nil, fmt.Errorf("list enabled languages: %w", err)
	}
	return langs, nil
}

// Default returns the default language code: the language flagged as
// default, else the first enabled language, else the fallback.
func (r *Registry) Default(ctx context.Context) (string, error) {
	langs, err := r.Enabled(ctx)
	if err != nil {
		return "", err
	}
	for _, l := range langs {
		if l.IsDefault {
			return l.Code, nil
		}
	}
	if len(langs) > 0 {
		return langs[0].Code, nil
	}
	return r.fallback, nil
}

// IsEnabled reports whether code names an enabled language.
func (r *Registry) IsEnabled(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Language{}).
		Where("code = ? AND enabled = ?", code, true).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("check language: %w", err)
	}
	return n > 0, nil
}

// LandingPages maps landing content ids to the language they serve.
func (r *Registry) LandingPages(ctx context.Context) (map[int]string, error) {
	langs, err := r.Enabled(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(langs))
	for _, l := range langs {
		if l.LandingContentID != nil && *l.LandingContentID > 0 {
			out[*l.LandingContentID] = l.Code
		}
	}
	return out, nil
}

// Save inserts or updates a language by code. Marking a language as default
// clears the flag on every other language.
func (r *Registry) Save(ctx context.Context, lang *model.Language) error {
	lang.Code = strings.TrimSpace(lang.Code)
	if !validCode(lang.Code) {
		return ErrInvalidCode
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if lang.IsDefault {
			if err := tx.Model(&model.Language{}).
				Where("code <> ?", lang.Code).
				Update("is_default", false).Error; err != nil {
				return fmt.Errorf("clear default flag: %w", err)
			}
		}

		var existing model.Language
		err := tx.Where("code = ?", lang.Code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(lang).Error
		case err != nil:
			return fmt.Errorf("load language: %w", err)
		}

		lang.ID = existing.ID
		lang.CreatedAt = existing.CreatedAt
		return tx.Save(lang).Error
	})
}

func validCode(code string) bool {
	if code == "" || len(code) > 16 {
		return false
	}
	for _, r := range code {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
