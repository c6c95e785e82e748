package model

import (
	"duanlian/pkg/core/model/common"
)

// 运行参数键
const (
	ConfigKeyAccessLogRetentionDays  = "shortlink.access_log_retention_days"
	ConfigKeyDailyStatsRetentionDays = "shortlink.daily_stats_retention_days"
	ConfigKeyRateLimitPerMinute      = "shortlink.rate_limit_per_minute"
	ConfigKeyEnableTracking          = "shortlink.enable_tracking"
)

// SystemConfig 运行参数键值存储
type SystemConfig struct {
	common.Model
	Key     string `gorm:"type:varchar(100);not null;uniqueIndex;comment:配置键" json:"key" comment:"配置键"`
	Value   string `gorm:"type:varchar(500);comment:配置值" json:"value" comment:"配置值"`
	Comment string `gorm:"type:varchar(500);comment:备注" json:"comment" comment:"备注"`
}

// TableName 设置表名
func (SystemConfig) TableName() string {
	return "shortlink_system_configs"
}
