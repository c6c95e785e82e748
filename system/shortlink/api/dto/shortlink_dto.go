package dto

import (
	"time"
)

// LinkDTO 短链接DTO
type LinkDTO struct {
	ID             int64      `json:"id" comment:"ID"`
	Code           string     `json:"code" comment:"短码"`
	ShortURL       string     `json:"shortUrl" comment:"完整短链接"`
	OriginalURL    string     `json:"originalUrl" comment:"原始URL"`
	AccessCount    int64      `json:"accessCount" comment:"访问次数"`
	ExpiresAt      *time.Time `json:"expiresAt" comment:"过期时间"`
	HasPassword    bool       `json:"hasPassword" comment:"是否设置密码"`
	MaxVisits      *int64     `json:"maxVisits" comment:"最大访问次数"`
	RedirectType   int        `json:"redirectType" comment:"重定向类型"`
	IsActive       bool       `json:"isActive" comment:"是否启用"`
	EnableTracking bool       `json:"enableTracking" comment:"是否记录访问"`
	Comment        string     `json:"comment" comment:"备注"`
	CreatedAt      time.Time  `json:"createdAt" comment:"创建时间"`
	UpdatedAt      time.Time  `json:"updatedAt" comment:"更新时间"`
}

// ResolveInfoDTO 短码解析结果DTO（JSON解析接口使用，不做跳转）
type ResolveInfoDTO struct {
	Code        string     `json:"code" comment:"短码"`
	State       string     `json:"state" comment:"解析状态"`
	OriginalURL string     `json:"originalUrl" comment:"原始URL"`
	ExpiresAt   *time.Time `json:"expiresAt" comment:"过期时间"`
	HasPassword bool       `json:"hasPassword" comment:"是否需要密码"`
	Comment     string     `json:"comment" comment:"备注说明"`
}

// LinkStatsDTO 短链接统计DTO
type LinkStatsDTO struct {
	TotalVisits int64          `json:"totalVisits" comment:"总访问次数"`
	DailyStats  []DailyStatDTO `json:"dailyStats" comment:"每日统计"`
	RecentLogs  []AccessLogDTO `json:"recentLogs" comment:"最近访问记录"`
}

// DailyStatDTO 每日统计DTO
type DailyStatDTO struct {
	Date           string        `json:"date" comment:"日期"`
	TotalVisits    int64         `json:"totalVisits" comment:"访问次数"`
	UniqueVisitors int64         `json:"uniqueVisitors" comment:"独立访客数"`
	MobileVisits   int64         `json:"mobileVisits" comment:"移动端访问"`
	DesktopVisits  int64         `json:"desktopVisits" comment:"桌面端访问"`
	TabletVisits   int64         `json:"tabletVisits" comment:"平板访问"`
	BotVisits      int64         `json:"botVisits" comment:"爬虫访问"`
	UnknownVisits  int64         `json:"unknownVisits" comment:"未知设备访问"`
	TopCountries   []KeyCountDTO `json:"topCountries" comment:"国家Top榜"`
	TopCities      []KeyCountDTO `json:"topCities" comment:"城市Top榜"`
	TopReferrers   []KeyCountDTO `json:"topReferrers" comment:"来源Top榜"`
}

// KeyCountDTO 键值计数DTO
type KeyCountDTO struct {
	Key   string `json:"key" comment:"键"`
	Count int64  `json:"count" comment:"计数"`
}

// AccessLogDTO 访问记录DTO
type AccessLogDTO struct {
	ID             int64     `json:"id" comment:"ID"`
	IP             string    `json:"ip" comment:"IP地址"`
	UserAgent      string    `json:"userAgent" comment:"User-Agent"`
	Referer        string    `json:"referer" comment:"Referer"`
	Country        string    `json:"country" comment:"国家"`
	City           string    `json:"city" comment:"城市"`
	DeviceType     string    `json:"deviceType" comment:"设备类型"`
	Browser        string    `json:"browser" comment:"浏览器"`
	OS             string    `json:"os" comment:"操作系统"`
	ResponseTimeMs int64     `json:"responseTimeMs" comment:"响应耗时毫秒"`
	AccessedAt     time.Time `json:"accessedAt" comment:"访问时间"`
}

// SlugSuggestionDTO 短码建议DTO
type SlugSuggestionDTO struct {
	Base        string   `json:"base" comment:"建议基准"`
	Suggestions []string `json:"suggestions" comment:"可用短码候选"`
}
