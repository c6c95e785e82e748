package service

import (
	"context"
	"net/url"
	"sort"
	"time"

	"duanlian/pkg/core/config"
	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"
)

const (
	topListSize = 5
	dateLayout  = "2006-01-02"
	// ReferrerDirect 无来源访问的归类
	ReferrerDirect = "Direct"
)

// StatsService 统计服务：每日汇总、趋势查询与保留期清理
type StatsService struct {
	LinkDao      *dao.LinkDao
	LogDao       *dao.AccessLogDao
	StatsDao     *dao.DailyStatsDao
	SysConfigDao *dao.SystemConfigDao
	cfg          config.ShortlinkConfig
	log          *logger.Log
	err          *errorc.ErrorBuilder
}

// NewStatsService 创建统计服务实例
func NewStatsService(linkDao *dao.LinkDao, logDao *dao.AccessLogDao, statsDao *dao.DailyStatsDao,
	sysConfigDao *dao.SystemConfigDao, cfg config.ShortlinkConfig, log *logger.Log) *StatsService {
	return &StatsService{
		LinkDao:      linkDao,
		LogDao:       logDao,
		StatsDao:     statsDao,
		SysConfigDao: sysConfigDao,
		cfg:          cfg.WithDefaults(),
		log:          log.WithEntryName("StatsService"),
		err:          errorc.NewErrorBuilder("StatsService"),
	}
}

// AggregateDay 重算指定链接指定日期的统计并落库（按 link_id+date 原地更新）
func (s *StatsService) AggregateDay(ctx context.Context, linkID int64, day time.Time) (*model.DailyStats, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	logs, err := s.LogDao.ListByLinkAndRange(ctx, linkID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	stats := &model.DailyStats{
		LinkID: linkID,
		Date:   dayStart.Format(dateLayout),
	}

	uniqueIPs := make(map[string]bool)
	countries := make(map[string]int64)
	cities := make(map[string]int64)
	referrers := make(map[string]int64)

	for _, entry := range logs {
		stats.TotalVisits++
		if entry.IPAddress != "" {
			uniqueIPs[entry.IPAddress] = true
		}

		switch entry.DeviceType {
		case model.DeviceTypeMobile:
			stats.MobileVisits++
		case model.DeviceTypeDesktop:
			stats.DesktopVisits++
		case model.DeviceTypeTablet:
			stats.TabletVisits++
		case model.DeviceTypeBot:
			stats.BotVisits++
		default:
			stats.UnknownVisits++
		}

		if entry.Country != "" {
			countries[entry.Country]++
		}
		if entry.City != "" {
			cities[entry.City]++
		}
		// 无来源归类为Direct，但不进入来源Top榜
		if domain := ReferrerDomain(entry.Referer); domain != ReferrerDirect {
			referrers[domain]++
		}
	}

	stats.UniqueVisitors = int64(len(uniqueIPs))
	stats.TopCountries = topN(countries, topListSize)
	stats.TopCities = topN(cities, topListSize)
	stats.TopReferrers = topN(referrers, topListSize)

	if err := s.StatsDao.Upsert(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// DailySeries 查询最近N天的每日统计，缺失的日期补零行
func (s *StatsService) DailySeries(ctx context.Context, linkID int64, days int) ([]*model.DailyStats, error) {
	if days <= 0 {
		days = 30
	}

	now := time.Now()
	endDate := now.Format(dateLayout)
	startDate := now.AddDate(0, 0, -(days - 1)).Format(dateLayout)

	rows, err := s.StatsDao.ListByLinkAndRange(ctx, linkID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*model.DailyStats, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}

	series := make([]*model.DailyStats, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		if row, ok := byDate[date]; ok {
			series = append(series, row)
		} else {
			series = append(series, &model.DailyStats{LinkID: linkID, Date: date})
		}
	}
	return series, nil
}

// Overview 全局统计概览
type Overview struct {
	TotalLinks  int64 `json:"totalLinks"`
	TotalVisits int64 `json:"totalVisits"`
	TodayVisits int64 `json:"todayVisits"`
}

// GetOverview 查询全局统计概览
func (s *StatsService) GetOverview(ctx context.Context) (*Overview, error) {
	totalLinks, err := s.LinkDao.Count(ctx, &model.Link{})
	if err != nil {
		return nil, err
	}

	totalVisits, err := s.LinkDao.SumAccessCount(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayVisits, err := s.LogDao.CountSince(ctx, todayStart)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalLinks:  totalLinks,
		TotalVisits: totalVisits,
		TodayVisits: todayVisits,
	}, nil
}

// CleanupReport 清理结果。ExpiredCodes 供调用方做缓存失效，不进入响应
type CleanupReport struct {
	DeletedAccessLogs int64    `json:"deletedAccessLogs"`
	DeletedDailyStats int64    `json:"deletedDailyStats"`
	DeletedLinks      int64    `json:"deletedLinks"`
	AggregatedLinks   int      `json:"aggregatedLinks"`
	ExpiredCodes      []string `json:"-"`
}

// Cleanup 保留期清理：删除过期访问日志与统计、删除已过期链接，
// 并对前一天有访问的链接补一次汇总。保留天数可被运行参数覆盖。
func (s *StatsService) Cleanup(ctx context.Context) (*CleanupReport, error) {
	report := &CleanupReport{}
	now := time.Now()

	// 前一天补汇总
	yesterdayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	yesterdayEnd := yesterdayStart.AddDate(0, 0, 1)
	linkIDs, err := s.LogDao.DistinctLinkIDsInRange(ctx, yesterdayStart, yesterdayEnd)
	if err != nil {
		return nil, err
	}
	for _, linkID := range linkIDs {
		if _, err := s.AggregateDay(ctx, linkID, yesterdayStart); err != nil {
			s.log.WithErr(err).WithLinkID(linkID).Warn("补汇总前一天统计失败")
			continue
		}
		report.AggregatedLinks++
	}

	logRetention := s.SysConfigDao.GetInt(ctx, model.ConfigKeyAccessLogRetentionDays, s.cfg.AccessLogRetentionDays)
	statsRetention := s.SysConfigDao.GetInt(ctx, model.ConfigKeyDailyStatsRetentionDays, s.cfg.DailyStatsRetentionDays)

	deletedLogs, err := s.LogDao.DeleteStale(ctx, now.AddDate(0, 0, -logRetention))
	if err != nil {
		return nil, err
	}
	report.DeletedAccessLogs = deletedLogs

	deletedStats, err := s.StatsDao.DeleteStale(ctx, now.AddDate(0, 0, -statsRetention).Format(dateLayout))
	if err != nil {
		return nil, err
	}
	report.DeletedDailyStats = deletedStats

	// 删除前先取短码，交给调用方清除跳转缓存
	expiredCodes, err := s.LinkDao.ListExpiredCodes(ctx, now)
	if err != nil {
		return nil, err
	}
	report.ExpiredCodes = expiredCodes

	deletedLinks, err := s.LinkDao.DeleteExpired(ctx, now)
	if err != nil {
		return nil, err
	}
	report.DeletedLinks = deletedLinks

	s.log.WithFields(report).Info("清理任务完成")
	return report, nil
}

// ReferrerDomain 提取来源域名（仅主机名），空来源归类为Direct
func ReferrerDomain(referer string) string {
	if referer == "" {
		return ReferrerDirect
	}
	u, err := url.Parse(referer)
	if err != nil || u.Hostname() == "" {
		return ReferrerDirect
	}
	return u.Hostname()
}

// topN 取计数前N名，计数相同按键名排序保证结果稳定
func topN(counter map[string]int64, n int) model.KeyCountList {
	list := make(model.KeyCountList, 0, len(counter))
	for key, count := range counter {
		list = append(list, model.KeyCount{Key: key, Count: count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Key < list[j].Key
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
