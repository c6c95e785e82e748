package app

import (
	"context"

	"duanlian/base"
	"duanlian/pkg/core/config"
	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"
	"duanlian/system/shortlink/internal/service"
)

// App 短链接组件应用层
type App struct {
	LinkService   *service.LinkService
	AccessService *service.AccessService
	StatsService  *service.StatsService
	SlugGenerator *service.SlugGenerator
	URLValidator  *service.URLValidator
	SysConfigDao  *dao.SystemConfigDao

	cfg config.ShortlinkConfig
	log *logger.Log
	err *errorc.ErrorBuilder
}

// NewApp 创建短链接组件应用层实例
func NewApp() *App {
	log := logger.GetLogger().WithEntryName("ShortlinkApp")

	shortlinkCfg := base.Configures.Config.Shortlink.WithDefaults()
	geoCfg := base.Configures.Config.Geo

	// 初始化 DAO
	linkDao := dao.NewLinkDao(base.DB, log)
	settingsDao := dao.NewSettingsDao(base.DB, log)
	accessLogDao := dao.NewAccessLogDao(base.DB, log)
	dailyStatsDao := dao.NewDailyStatsDao(base.DB, log)
	sysConfigDao := dao.NewSystemConfigDao(base.DB, log)

	// 初始化 Service
	linkSvc := service.NewLinkService(linkDao, settingsDao, shortlinkCfg, log)
	statsSvc := service.NewStatsService(linkDao, accessLogDao, dailyStatsDao, sysConfigDao, shortlinkCfg, log)
	geoSvc := service.NewGeoService(geoCfg, log)
	accessSvc := service.NewAccessService(accessLogDao, geoSvc, statsSvc, log)

	slugGen := service.NewSlugGenerator(service.SlugConfig{
		Length:     shortlinkCfg.CodeLength,
		MinLength:  shortlinkCfg.CodeMinLength,
		MaxLength:  shortlinkCfg.CodeMaxLength,
		MaxRetries: shortlinkCfg.MaxRetries,
	})
	urlValidator := service.NewURLValidator(service.DefaultValidatorConfig())

	return &App{
		LinkService:   linkSvc,
		AccessService: accessSvc,
		StatsService:  statsSvc,
		SlugGenerator: slugGen,
		URLValidator:  urlValidator,
		SysConfigDao:  sysConfigDao,
		cfg:           shortlinkCfg,
		log:           log,
		err:           errorc.NewErrorBuilder("ShortlinkApp"),
	}
}

// RateLimitPerMinute 创建接口限流阈值，运行参数优先于文件配置
func (a *App) RateLimitPerMinute(ctx context.Context) int {
	return a.SysConfigDao.GetInt(ctx, model.ConfigKeyRateLimitPerMinute, a.cfg.RateLimitPerMinute)
}
