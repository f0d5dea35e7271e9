package content

import "gorm.io/gorm"

// LanguageFilter selects items for one language. The default language set
// contains untagged items as well as items tagged with the default code, so
// legacy content without a language is never dropped.
type LanguageFilter struct {
	Code        string
	DefaultCode string
}

// IsDefault reports whether the filter selects the default language set.
func (f LanguageFilter) IsDefault() bool {
	return f.Code == "" || f.Code == f.DefaultCode
}

func (f LanguageFilter) apply(q *gorm.DB) *gorm.DB {
	if f.IsDefault() {
		return q.Where("language IN ?", []string{"", f.DefaultCode})
	}
	return q.Where("language = ?", f.Code)
}
