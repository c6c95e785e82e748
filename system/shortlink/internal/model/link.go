package model

import (
	"time"

	"duanlian/pkg/core/model/common"
)

// Link 短链接模型，OriginalURL 存储规范化后的目标地址
type Link struct {
	common.Model
	Code        string     `gorm:"type:varchar(16);not null;uniqueIndex;comment:短码" json:"code" comment:"短码"`
	OriginalURL string     `gorm:"type:varchar(2048);not null;index:idx_original_url,length:255;comment:规范化后的原始URL" json:"originalUrl" comment:"原始URL"`
	AccessCount int64      `gorm:"type:bigint;not null;default:0;comment:访问次数" json:"accessCount" comment:"访问次数"`
	ExpiresAt   *time.Time `gorm:"comment:过期时间" json:"expiresAt" comment:"过期时间"`
	Comment     string     `gorm:"type:varchar(500);comment:备注" json:"comment" comment:"备注"`
}

// TableName 设置表名
func (Link) TableName() string {
	return "shortlink_links"
}

// IsExpired 是否已过期
func (l *Link) IsExpired() bool {
	return l.IsExpiredAt(time.Now())
}

// IsExpiredAt 在指定时间点是否已过期
func (l *Link) IsExpiredAt(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return now.After(*l.ExpiresAt)
}
