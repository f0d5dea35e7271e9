package model

import "time"

// Term 分类法条目（分类、标签等）
type Term struct {
	BaseModel
	Taxonomy   string    `gorm:"type:varchar(32);not null;uniqueIndex:uk_terms_taxonomy_slug_lang" json:"taxonomy"`
	Slug       string    `gorm:"type:varchar(200);not null;uniqueIndex:uk_terms_taxonomy_slug_lang" json:"slug"`
	Name       string    `gorm:"type:varchar(200)" json:"name"`
	Language   string    `gorm:"type:varchar(16);not null;default:'';uniqueIndex:uk_terms_taxonomy_slug_lang" json:"language"`
	ModifiedAt time.Time `gorm:"not null" json:"modifiedAt"`
}

// TableName 指定表名
func (Term) TableName() string {
	return "terms"
}

// Built-in taxonomies
const (
	TaxonomyCategory = "category"
	TaxonomyPostTag  = "post_tag"
)
