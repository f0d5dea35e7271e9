package model

import "gorm.io/datatypes"

// Setting 运行时配置（键值，值为 JSON）
type Setting struct {
	BaseModel
	Key   string         `gorm:"column:setting_key;type:varchar(64);uniqueIndex;not null" json:"key"`
	Value datatypes.JSON `gorm:"column:setting_value;type:json;not null" json:"value"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}

// Setting keys
const (
	SettingKeySitemap  = "sitemap"
	SettingKeyCatchAll = "catch_all"
	SettingKeyRobots   = "robots"
)
