package model

import "time"

// Content 内容条目（文章、页面及自定义类型）
type Content struct {
	BaseModel
	Type           string     `gorm:"type:varchar(32);not null;index:idx_contents_type_status" json:"type"`
	Status         string     `gorm:"type:varchar(16);not null;default:'draft';index:idx_contents_type_status" json:"status"`
	Slug           string     `gorm:"type:varchar(200);not null;index" json:"slug"`
	Title          string     `gorm:"type:varchar(255)" json:"title"`
	Body           string     `gorm:"type:text" json:"body"`
	Language       string     `gorm:"type:varchar(16);not null;default:'';index" json:"language"`
	PreTrashStatus string     `gorm:"type:varchar(16);not null;default:''" json:"preTrashStatus"`
	ModifiedAt     time.Time  `gorm:"not null" json:"modifiedAt"`
	PublishedAt    *time.Time `gorm:"default:null" json:"publishedAt"`
}

// TableName 指定表名
func (Content) TableName() string {
	return "contents"
}

// Content status constants
const (
	ContentStatusPublish = "publish"
	ContentStatusDraft   = "draft"
	ContentStatusTrash   = "trash"
)

// Built-in content types
const (
	ContentTypePost = "post"
	ContentTypePage = "page"
)

// IsPublished reports whether the item is publicly addressable.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublish
}
