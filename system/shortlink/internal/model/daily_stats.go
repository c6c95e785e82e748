package model

import (
	"duanlian/pkg/core/model/common"
)

// DailyStats 每链接每日统计汇总，(link_id, date) 唯一
type DailyStats struct {
	common.Model
	LinkID         int64        `gorm:"type:bigint;not null;uniqueIndex:idx_link_date;comment:短链接ID" json:"linkId" comment:"短链接ID"`
	Date           string       `gorm:"type:varchar(10);not null;uniqueIndex:idx_link_date;index;comment:日期(yyyy-MM-dd)" json:"date" comment:"日期"`
	TotalVisits    int64        `gorm:"type:bigint;not null;default:0;comment:访问总数" json:"totalVisits" comment:"访问总数"`
	UniqueVisitors int64        `gorm:"type:bigint;not null;default:0;comment:独立访客数" json:"uniqueVisitors" comment:"独立访客数"`
	MobileVisits   int64        `gorm:"type:bigint;not null;default:0;comment:移动端访问数" json:"mobileVisits" comment:"移动端访问数"`
	DesktopVisits  int64        `gorm:"type:bigint;not null;default:0;comment:桌面端访问数" json:"desktopVisits" comment:"桌面端访问数"`
	TabletVisits   int64        `gorm:"type:bigint;not null;default:0;comment:平板访问数" json:"tabletVisits" comment:"平板访问数"`
	BotVisits      int64        `gorm:"type:bigint;not null;default:0;comment:爬虫访问数" json:"botVisits" comment:"爬虫访问数"`
	UnknownVisits  int64        `gorm:"type:bigint;not null;default:0;comment:未知设备访问数" json:"unknownVisits" comment:"未知设备访问数"`
	TopCountries   KeyCountList `gorm:"type:text;comment:国家Top榜JSON" json:"topCountries" comment:"国家Top榜"`
	TopCities      KeyCountList `gorm:"type:text;comment:城市Top榜JSON" json:"topCities" comment:"城市Top榜"`
	TopReferrers   KeyCountList `gorm:"type:text;comment:来源域名Top榜JSON" json:"topReferrers" comment:"来源域名Top榜"`
}

// TableName 设置表名
func (DailyStats) TableName() string {
	return "shortlink_daily_stats"
}

// VisitsByDevice 按设备类型取访问数
func (d *DailyStats) VisitsByDevice(deviceType string) int64 {
	switch deviceType {
	case DeviceTypeMobile:
		return d.MobileVisits
	case DeviceTypeDesktop:
		return d.DesktopVisits
	case DeviceTypeTablet:
		return d.TabletVisits
	case DeviceTypeBot:
		return d.BotVisits
	}
	return d.UnknownVisits
}
