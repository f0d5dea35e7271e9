package model

// Language 站点语言
type Language struct {
	BaseModel
	Code             string `gorm:"type:varchar(16);uniqueIndex;not null" json:"code"`
	Name             string `gorm:"type:varchar(64)" json:"name"`
	Locale           string `gorm:"type:varchar(16)" json:"locale"`
	Enabled          bool   `gorm:"not null" json:"enabled"`
	IsDefault        bool   `gorm:"not null;default:false" json:"isDefault"`
	LandingContentID *int   `gorm:"default:null" json:"landingContentId"`
	SortOrder        int    `gorm:"not null;default:0" json:"sortOrder"`
}

// TableName 指定表名
func (Language) TableName() string {
	return "languages"
}
