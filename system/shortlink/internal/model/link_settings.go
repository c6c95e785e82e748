package model

import (
	"duanlian/pkg/core/model/common"
)

// 重定向类型
const (
	RedirectTypePermanent = 301
	RedirectTypeFound     = 302
	RedirectTypeTemporary = 307
)

// LinkSettings 短链接访问控制与跟踪开关，与 Link 一对一
type LinkSettings struct {
	common.Model
	LinkID                 int64      `gorm:"type:bigint;not null;uniqueIndex;comment:短链接ID" json:"linkId" comment:"短链接ID"`
	IsActive               bool       `gorm:"not null;default:true;comment:是否启用" json:"isActive" comment:"是否启用"`
	PasswordHash           string     `gorm:"type:varchar(255);comment:访问密码哈希" json:"-" comment:"访问密码哈希"`
	MaxVisits              *int64     `gorm:"comment:最大访问次数（NULL表示无限制）" json:"maxVisits" comment:"最大访问次数"`
	RedirectType           int        `gorm:"not null;default:302;comment:重定向类型" json:"redirectType" comment:"重定向类型"`
	EnableTracking         bool       `gorm:"not null;default:true;comment:是否记录访问" json:"enableTracking" comment:"是否记录访问"`
	EnableDeviceTracking   bool       `gorm:"not null;default:true;comment:是否解析设备信息" json:"enableDeviceTracking" comment:"是否解析设备信息"`
	EnableLocationTracking bool       `gorm:"not null;default:true;comment:是否解析地理位置" json:"enableLocationTracking" comment:"是否解析地理位置"`
	AllowedReferrers       StringList `gorm:"type:text;comment:允许的来源域名" json:"allowedReferrers" comment:"允许的来源域名"`
	BlockedReferrers       StringList `gorm:"type:text;comment:禁止的来源域名" json:"blockedReferrers" comment:"禁止的来源域名"`
	BlockedIPs             StringList `gorm:"type:text;comment:禁止的IP" json:"blockedIps" comment:"禁止的IP"`
	BlockedCountries       StringList `gorm:"type:text;comment:禁止的国家" json:"blockedCountries" comment:"禁止的国家"`
}

// TableName 设置表名
func (LinkSettings) TableName() string {
	return "shortlink_link_settings"
}

// HasPassword 是否设置了访问密码
func (s *LinkSettings) HasPassword() bool {
	return s.PasswordHash != ""
}

// IsVisitLimitReached 访问次数是否已达上限
func (s *LinkSettings) IsVisitLimitReached(accessCount int64) bool {
	if s.MaxVisits == nil {
		return false
	}
	return accessCount >= *s.MaxVisits
}

// RedirectStatus 返回有效的重定向状态码，非法值回退到302
func (s *LinkSettings) RedirectStatus() int {
	switch s.RedirectType {
	case RedirectTypePermanent, RedirectTypeFound, RedirectTypeTemporary:
		return s.RedirectType
	}
	return RedirectTypeFound
}
