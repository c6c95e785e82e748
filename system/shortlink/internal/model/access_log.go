package model

import (
	"time"

	"duanlian/pkg/core/model/common"
)

// 设备类型
const (
	DeviceTypeMobile  = "mobile"
	DeviceTypeDesktop = "desktop"
	DeviceTypeTablet  = "tablet"
	DeviceTypeBot     = "bot"
	DeviceTypeUnknown = "unknown"
)

// AccessLog 短链接访问记录，仅由访问记录服务创建，只增不改
type AccessLog struct {
	common.Model
	LinkID         int64     `gorm:"type:bigint;not null;index;comment:短链接ID" json:"linkId" comment:"短链接ID"`
	Code           string    `gorm:"type:varchar(16);not null;index;comment:短码（冗余）" json:"code" comment:"短码"`
	AccessedAt     time.Time `gorm:"not null;index;comment:访问时间" json:"accessedAt" comment:"访问时间"`
	IPAddress      string    `gorm:"type:varchar(100);comment:访问者IP" json:"ipAddress" comment:"访问者IP"`
	UserAgent      string    `gorm:"type:varchar(500);comment:User-Agent" json:"userAgent" comment:"User-Agent"`
	Referer        string    `gorm:"type:varchar(500);comment:Referer" json:"referer" comment:"Referer"`
	Country        string    `gorm:"type:varchar(100);comment:国家" json:"country" comment:"国家"`
	City           string    `gorm:"type:varchar(100);comment:城市" json:"city" comment:"城市"`
	DeviceType     string    `gorm:"type:varchar(20);comment:设备类型" json:"deviceType" comment:"设备类型"`
	Browser        string    `gorm:"type:varchar(50);comment:浏览器" json:"browser" comment:"浏览器"`
	OS             string    `gorm:"type:varchar(50);comment:操作系统" json:"os" comment:"操作系统"`
	ResponseTimeMs int64     `gorm:"type:bigint;not null;default:0;comment:响应耗时毫秒" json:"responseTimeMs" comment:"响应耗时毫秒"`
}

// TableName 设置表名
func (AccessLog) TableName() string {
	return "shortlink_access_logs"
}
