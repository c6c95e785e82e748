package service

import (
	"context"
	"testing"
	"time"

	"duanlian/pkg/core/config"
	"duanlian/pkg/core/logger"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type statsTestEnv struct {
	svc      *StatsService
	linkDao  *dao.LinkDao
	logDao   *dao.AccessLogDao
	statsDao *dao.DailyStatsDao
}

func newStatsTestEnv(t *testing.T) *statsTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Link{}, &model.AccessLog{}, &model.DailyStats{}, &model.SystemConfig{}))

	log := logger.GetLogger()
	linkDao := dao.NewLinkDao(db, log)
	logDao := dao.NewAccessLogDao(db, log)
	statsDao := dao.NewDailyStatsDao(db, log)
	sysDao := dao.NewSystemConfigDao(db, log)

	return &statsTestEnv{
		svc:      NewStatsService(linkDao, logDao, statsDao, sysDao, config.ShortlinkConfig{}, log),
		linkDao:  linkDao,
		logDao:   logDao,
		statsDao: statsDao,
	}
}

func (e *statsTestEnv) addLog(t *testing.T, linkID int64, at time.Time, ip, device, country, city, referer string) {
	t.Helper()
	err := e.logDao.Create(context.Background(), &model.AccessLog{
		LinkID:     linkID,
		Code:       "tEsT01",
		AccessedAt: at,
		IPAddress:  ip,
		DeviceType: device,
		Country:    country,
		City:       city,
		Referer:    referer,
	})
	require.NoError(t, err)
}

func TestStatsService_AggregateDay(t *testing.T) {
	env := newStatsTestEnv(t)
	ctx := context.Background()

	link := &model.Link{Code: "tEsT01", OriginalURL: "https://example.com/page"}
	require.NoError(t, env.linkDao.Create(ctx, link))

	// 5次访问、3个独立IP、2移动3桌面
	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.Local)
	env.addLog(t, link.ID, day.Add(8*time.Hour), "1.1.1.1", model.DeviceTypeMobile, "US", "New York", "https://news.site/a")
	env.addLog(t, link.ID, day.Add(9*time.Hour), "2.2.2.2", model.DeviceTypeMobile, "US", "New York", "https://news.site/b")
	env.addLog(t, link.ID, day.Add(10*time.Hour), "1.1.1.1", model.DeviceTypeDesktop, "US", "Boston", "")
	env.addLog(t, link.ID, day.Add(11*time.Hour), "3.3.3.3", model.DeviceTypeDesktop, "CN", "Beijing", "https://blog.example/p")
	env.addLog(t, link.ID, day.Add(12*time.Hour), "2.2.2.2", model.DeviceTypeDesktop, "CN", "Beijing", "")

	stats, err := env.svc.AggregateDay(ctx, link.ID, day.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "2026-08-27", stats.Date)
	assert.Equal(t, int64(5), stats.TotalVisits)
	assert.Equal(t, int64(3), stats.UniqueVisitors)
	assert.Equal(t, int64(2), stats.MobileVisits)
	assert.Equal(t, int64(3), stats.DesktopVisits)
	assert.Equal(t, int64(0), stats.BotVisits)

	require.NotEmpty(t, stats.TopCountries)
	assert.Equal(t, model.KeyCount{Key: "US", Count: 3}, stats.TopCountries[0])
	assert.Equal(t, model.KeyCount{Key: "CN", Count: 2}, stats.TopCountries[1])

	// 无来源不进入来源Top榜
	require.Len(t, stats.TopReferrers, 2)
	assert.Equal(t, model.KeyCount{Key: "news.site", Count: 2}, stats.TopReferrers[0])

	// 重复汇总是幂等的原地更新
	again, err := env.svc.AggregateDay(ctx, link.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.TotalVisits)

	rows, err := env.statsDao.ListByLinkAndRange(ctx, link.ID, "2026-08-27", "2026-08-27")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStatsService_DailySeries_FillsMissingDates(t *testing.T) {
	env := newStatsTestEnv(t)
	ctx := context.Background()

	link := &model.Link{Code: "tEsT01", OriginalURL: "https://example.com"}
	require.NoError(t, env.linkDao.Create(ctx, link))

	now := time.Now()
	env.addLog(t, link.ID, now, "1.1.1.1", model.DeviceTypeDesktop, "", "", "")
	_, err := env.svc.AggregateDay(ctx, link.ID, now)
	require.NoError(t, err)

	series, err := env.svc.DailySeries(ctx, link.ID, 7)
	require.NoError(t, err)
	require.Len(t, series, 7)

	// 最后一条是今天，其余补零
	today := now.Format("2006-01-02")
	assert.Equal(t, today, series[6].Date)
	assert.Equal(t, int64(1), series[6].TotalVisits)
	for _, row := range series[:6] {
		assert.Equal(t, int64(0), row.TotalVisits, "date %s", row.Date)
	}
}

func TestStatsService_GetOverview(t *testing.T) {
	env := newStatsTestEnv(t)
	ctx := context.Background()

	link1 := &model.Link{Code: "aaaB01", OriginalURL: "https://a.example.com", AccessCount: 3}
	link2 := &model.Link{Code: "bbbC02", OriginalURL: "https://b.example.com", AccessCount: 2}
	require.NoError(t, env.linkDao.Create(ctx, link1))
	require.NoError(t, env.linkDao.Create(ctx, link2))

	env.addLog(t, link1.ID, time.Now(), "1.1.1.1", model.DeviceTypeDesktop, "", "", "")

	overview, err := env.svc.GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.TotalLinks)
	assert.Equal(t, int64(5), overview.TotalVisits)
	assert.Equal(t, int64(1), overview.TodayVisits)
}

func TestStatsService_Cleanup(t *testing.T) {
	env := newStatsTestEnv(t)
	ctx := context.Background()

	link := &model.Link{Code: "tEsT01", OriginalURL: "https://example.com"}
	require.NoError(t, env.linkDao.Create(ctx, link))

	expired := time.Now().Add(-time.Hour)
	expiredLink := &model.Link{Code: "oldE99", OriginalURL: "https://old.example.com", ExpiresAt: &expired}
	require.NoError(t, env.linkDao.Create(ctx, expiredLink))

	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)

	// 前一天有访问，清理时应补汇总
	env.addLog(t, link.ID, yesterday, "1.1.1.1", model.DeviceTypeMobile, "US", "", "")

	// 超过保留期的访问记录与统计行
	env.addLog(t, link.ID, now.AddDate(0, 0, -400), "2.2.2.2", model.DeviceTypeDesktop, "", "", "")
	require.NoError(t, env.statsDao.Create(ctx, &model.DailyStats{
		LinkID: link.ID, Date: "2020-01-01", TotalVisits: 10,
	}))

	report, err := env.svc.Cleanup(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.AggregatedLinks)
	assert.Equal(t, int64(1), report.DeletedAccessLogs)
	assert.Equal(t, int64(1), report.DeletedDailyStats)
	assert.Equal(t, int64(1), report.DeletedLinks)
	// 被删链接的短码返回给调用方做缓存失效
	assert.Equal(t, []string{"oldE99"}, report.ExpiredCodes)

	// 前一天的汇总行已落库
	row, err := env.statsDao.FindByLinkAndDate(ctx, link.ID, yesterday.Format("2006-01-02"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.TotalVisits)
	assert.Equal(t, int64(1), row.MobileVisits)
}

func TestReferrerDomain(t *testing.T) {
	testCases := []struct {
		referer string
		want    string
	}{
		{"", "Direct"},
		{"https://news.site/article/1", "news.site"},
		{"http://blog.example:8080/p?x=1", "blog.example"},
		{"no-host-here", "Direct"},
		{"%%%", "Direct"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ReferrerDomain(tc.referer), "referer %q", tc.referer)
	}
}
