package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"duanlian/pkg/scheduler"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"
	"duanlian/system/shortlink/internal/service"

	jsoniter "github.com/json-iterator/go"
)

const cleanupTaskTimeout = 10 * time.Minute

// LinkStats 单链接统计
type LinkStats struct {
	Link       *model.Link
	Daily      []*model.DailyStats
	RecentLogs []*model.AccessLog
}

// GetLinkStats 查询单链接最近N天统计与最近访问明细
func (a *App) GetLinkStats(ctx context.Context, id int64, days int) (*LinkStats, error) {
	link, err := a.LinkService.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	daily, err := a.StatsService.DailySeries(ctx, link.ID, days)
	if err != nil {
		return nil, err
	}

	logs, _, err := a.AccessService.LogDao.Query(ctx, &dao.AccessLogFilter{
		LinkID:   link.ID,
		PageNum:  1,
		PageSize: 10,
	})
	if err != nil {
		return nil, err
	}

	return &LinkStats{Link: link, Daily: daily, RecentLogs: logs}, nil
}

// GetOverview 查询全局统计概览
func (a *App) GetOverview(ctx context.Context) (*service.Overview, error) {
	return a.StatsService.GetOverview(ctx)
}

// TopLinks 按访问量排序的链接榜单
func (a *App) TopLinks(ctx context.Context, limit int) ([]*model.Link, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return a.LinkService.Dao.TopByAccessCount(ctx, limit)
}

// QueryAccessLogs 分页查询访问明细
func (a *App) QueryAccessLogs(ctx context.Context, filter *dao.AccessLogFilter) ([]*model.AccessLog, int64, error) {
	if filter == nil {
		filter = &dao.AccessLogFilter{}
	}
	if filter.PageNum <= 0 {
		filter.PageNum = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 20
	}
	return a.AccessService.LogDao.Query(ctx, filter)
}

// SuggestSlugs 基于给定前缀生成可用短码候选
func (a *App) SuggestSlugs(ctx context.Context, base string, count int) ([]string, error) {
	if count <= 0 || count > 10 {
		count = 5
	}

	candidates := a.SlugGenerator.GenerateSuggestions(base, count*2)
	available := make([]string, 0, count)
	for _, candidate := range candidates {
		taken, err := a.LinkService.Dao.ExistsByCode(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !taken {
			available = append(available, candidate)
			if len(available) == count {
				break
			}
		}
	}
	return available, nil
}

// RunCleanup 执行一次保留期清理，并清除被删链接的跳转缓存
func (a *App) RunCleanup(ctx context.Context) (*service.CleanupReport, error) {
	report, err := a.StatsService.Cleanup(ctx)
	if err != nil {
		return nil, err
	}
	for _, code := range report.ExpiredCodes {
		a.invalidateLinkCache(ctx, code)
	}
	return report, nil
}

// ExportStats 导出单链接统计，format支持csv与json
func (a *App) ExportStats(ctx context.Context, id int64, days int, format string) ([]byte, string, error) {
	stats, err := a.GetLinkStats(ctx, id, days)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "csv":
		data, err := a.statsToCSV(stats.Daily)
		if err != nil {
			return nil, "", a.err.New("导出CSV失败", err)
		}
		return data, "text/csv", nil
	case "", "json":
		data, err := jsoniter.Marshal(stats.Daily)
		if err != nil {
			return nil, "", a.err.New("导出JSON失败", err)
		}
		return data, "application/json", nil
	}
	return nil, "", a.err.New("不支持的导出格式: "+format, nil).ValidWithCtx()
}

func (a *App) statsToCSV(daily []*model.DailyStats) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "total_visits", "unique_visitors",
		"mobile_visits", "desktop_visits", "tablet_visits", "bot_visits", "unknown_visits"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range daily {
		record := []string{
			row.Date,
			strconv.FormatInt(row.TotalVisits, 10),
			strconv.FormatInt(row.UniqueVisitors, 10),
			strconv.FormatInt(row.MobileVisits, 10),
			strconv.FormatInt(row.DesktopVisits, 10),
			strconv.FormatInt(row.TabletVisits, 10),
			strconv.FormatInt(row.BotVisits, 10),
			strconv.FormatInt(row.UnknownVisits, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RegisterCleanupTask 向调度器注册保留期清理定时任务，多实例下走分布式抢锁执行
func (a *App) RegisterCleanupTask(sched *scheduler.Scheduler) error {
	if sched == nil {
		return nil
	}

	task, err := scheduler.NewCronTask("shortlink-cleanup", a.cfg.CleanupCron,
		scheduler.TaskExecuteModeDistributed, cleanupTaskTimeout, func(ctx context.Context) error {
			report, err := a.RunCleanup(ctx)
			if err != nil {
				return err
			}
			a.log.WithFields(report).Info("定时清理完成")
			return nil
		})
	if err != nil {
		return a.err.New("创建清理任务失败", err)
	}

	if err := sched.AddTask(task); err != nil {
		return a.err.New("注册清理任务失败", err)
	}
	return nil
}
