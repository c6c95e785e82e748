package config

// ShortlinkConfig 短链接服务配置
type ShortlinkConfig struct {
	// BaseURL 短链接基础地址（用于拼接完整短链接）
	BaseURL string `yaml:"base-url"`
	// CodeLength 默认短码长度
	CodeLength int `yaml:"code-length"`
	// CodeMinLength 短码最小长度
	CodeMinLength int `yaml:"code-min-length"`
	// CodeMaxLength 短码最大长度
	CodeMaxLength int `yaml:"code-max-length"`
	// MaxRetries 短码生成最大重试次数
	MaxRetries int `yaml:"max-retries"`
	// DefaultExpireDays 默认过期天数（0 表示永不过期）
	DefaultExpireDays int `yaml:"default-expire-days"`
	// RedirectStatus 默认跳转状态码（301/302/307）
	RedirectStatus int `yaml:"redirect-status"`
	// AccessLogRetentionDays 访问日志保留天数
	AccessLogRetentionDays int `yaml:"access-log-retention-days"`
	// DailyStatsRetentionDays 每日统计保留天数
	DailyStatsRetentionDays int `yaml:"daily-stats-retention-days"`
	// RateLimitPerMinute 创建接口默认限流（每分钟）
	RateLimitPerMinute int `yaml:"rate-limit-per-minute"`
	// EnableTracking 是否开启访问记录
	EnableTracking *bool `yaml:"enable-tracking"`
	// CleanupCron 清理任务的cron表达式
	CleanupCron string `yaml:"cleanup-cron"`
}

// WithDefaults 填充缺省配置
func (c ShortlinkConfig) WithDefaults() ShortlinkConfig {
	if c.CodeLength <= 0 {
		c.CodeLength = 6
	}
	if c.CodeMinLength <= 0 {
		c.CodeMinLength = 4
	}
	if c.CodeMaxLength <= 0 {
		c.CodeMaxLength = 16
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 10
	}
	if c.RedirectStatus != 301 && c.RedirectStatus != 302 && c.RedirectStatus != 307 {
		c.RedirectStatus = 302
	}
	if c.AccessLogRetentionDays <= 0 {
		c.AccessLogRetentionDays = 365
	}
	if c.DailyStatsRetentionDays <= 0 {
		c.DailyStatsRetentionDays = 1095
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
	if c.CleanupCron == "" {
		c.CleanupCron = "0 30 3 * * *"
	}
	return c
}

// TrackingEnabled 访问记录开关（默认开启）
func (c ShortlinkConfig) TrackingEnabled() bool {
	if c.EnableTracking == nil {
		return true
	}
	return *c.EnableTracking
}
