package model

import "time"

// Redirect 重定向记录
type Redirect struct {
	BaseModel
	OldURL               string     `gorm:"type:varchar(768);not null;index:idx_redirects_old_url" json:"oldUrl"`
	NewURL               *string    `gorm:"type:varchar(2048);default:null" json:"newUrl"`
	RedirectType         int        `gorm:"not null;default:301" json:"redirectType"`
	ChangeType           string     `gorm:"type:varchar(32);not null;index" json:"changeType"`
	SourceContentID      *int       `gorm:"index;default:null" json:"sourceContentId"`
	DestinationContentID *int       `gorm:"index;default:null" json:"destinationContentId"`
	HostNativeRedirect   bool       `gorm:"not null;default:false" json:"hostNativeRedirect"`
	CheckedAt            *time.Time `gorm:"default:null" json:"checkedAt"`
}

// TableName 指定表名
func (Redirect) TableName() string {
	return "redirects"
}

// Redirect status codes
const (
	RedirectMovedPermanently  = 301
	RedirectFound             = 302
	RedirectTemporaryRedirect = 307
	RedirectGone              = 410
)

// ChangeType constants
const (
	ChangeTypeChanged            = "changed"
	ChangeTypeTrashed            = "trashed"
	ChangeTypeDeletedPermanently = "deleted_permanently"
	ChangeTypeManual             = "manual"
	ChangeTypeTestSystem         = "test_system"
)

// IsValidRedirectType reports whether code is one of the stored redirect codes.
func IsValidRedirectType(code int) bool {
	switch code {
	case RedirectMovedPermanently, RedirectFound, RedirectTemporaryRedirect, RedirectGone:
		return true
	}
	return false
}

// Destination returns the target URL or "" when the record marks a gone resource.
func (r *Redirect) Destination() string {
	if r.NewURL == nil {
		return ""
	}
	return *r.NewURL
}
