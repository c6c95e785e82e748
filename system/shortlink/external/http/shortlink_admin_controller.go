package http

import (
	"context"
	"fmt"
	"strconv"
	"time"

	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/result"
	"duanlian/pkg/core/util"
	"duanlian/system/shortlink/api/dto"
	internalapp "duanlian/system/shortlink/internal/app"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"
	"duanlian/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ShortlinkAdminController 短链接后台管理控制器
type ShortlinkAdminController struct {
	app *internalapp.App
	err *errorc.ErrorBuilder
	log *logger.Log
}

// NewShortlinkAdminController 创建短链接后台管理控制器
func NewShortlinkAdminController(app *internalapp.App) *ShortlinkAdminController {
	return &ShortlinkAdminController{
		app: app,
		err: errorc.NewErrorBuilder("ShortlinkAdminController"),
		log: logger.GetLogger().WithEntryName("ShortlinkAdminController"),
	}
}

// RegisterRoutes 注册路由。静态路径在 /:id 之前注册。
func (c *ShortlinkAdminController) RegisterRoutes(admin fiber.Router) {
	// 创建接口按IP限流
	createLimiter := limiter.New(limiter.Config{
		Max:        c.app.RateLimitPerMinute(context.Background()),
		Expiration: time.Minute,
	})

	linkRouter := admin.Group("/short-links")
	linkRouter.Post("/", createLimiter, c.CreateLink)
	linkRouter.Get("/", c.ListLinks)
	linkRouter.Get("/suggest", c.SuggestSlugs)
	linkRouter.Get("/stats/top", c.TopLinks)
	linkRouter.Get("/stats/overview", c.GetOverview)
	linkRouter.Post("/cleanup", c.RunCleanup)
	linkRouter.Get("/:id", c.GetLink)
	linkRouter.Put("/:id", c.UpdateLink)
	linkRouter.Put("/:id/status", c.UpdateLinkStatus)
	linkRouter.Delete("/:id", c.DeleteLink)
	linkRouter.Get("/:id/stats", c.GetLinkStats)
	linkRouter.Get("/:id/stats/export", c.ExportStats)
	linkRouter.Get("/:id/access-logs", c.QueryAccessLogs)
}

// CreateLink 创建短链接
func (c *ShortlinkAdminController) CreateLink(ctx *fiber.Ctx) error {
	var req internalapp.CreateLinkRequest

	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}

	if errMsg, err := utils.Validate(&req); err != nil {
		return c.err.New(errMsg, err).WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}

	created, err := c.app.CreateLink(util.Context(ctx), &req)
	if err != nil {
		return err
	}

	return result.OK(ctx, fiber.Map{
		"reused": created.Reused,
		"link":   c.convertToDTO(created.Link, created.Settings),
	})
}

// ListLinks 分页查询短链接列表
func (c *ShortlinkAdminController) ListLinks(ctx *fiber.Ctx) error {
	pageNum := utils.ParseInt(ctx.Query("page"), 1)
	pageSize := utils.ParseInt(ctx.Query("size"), 20)

	links, total, err := c.app.ListLinks(util.Context(ctx), pageNum, pageSize)
	if err != nil {
		return err
	}

	content := make([]*dto.LinkDTO, 0, len(links))
	for _, link := range links {
		content = append(content, c.convertToDTO(link, nil))
	}

	return result.OK(ctx, fiber.Map{
		"total":   total,
		"content": content,
	})
}

// SuggestSlugs 生成可用短码候选
func (c *ShortlinkAdminController) SuggestSlugs(ctx *fiber.Ctx) error {
	base := ctx.Query("base", "")
	count := utils.ParseInt(ctx.Query("count"), 5)

	suggestions, err := c.app.SuggestSlugs(util.Context(ctx), base, count)
	if err != nil {
		return err
	}

	return result.OK(ctx, &dto.SlugSuggestionDTO{
		Base:        base,
		Suggestions: suggestions,
	})
}

// TopLinks 按访问量查询链接榜单
func (c *ShortlinkAdminController) TopLinks(ctx *fiber.Ctx) error {
	limit := utils.ParseInt(ctx.Query("limit"), 10)

	links, err := c.app.TopLinks(util.Context(ctx), limit)
	if err != nil {
		return err
	}

	content := make([]*dto.LinkDTO, 0, len(links))
	for _, link := range links {
		content = append(content, c.convertToDTO(link, nil))
	}

	return result.OK(ctx, fiber.Map{
		"total":   len(content),
		"content": content,
	})
}

// GetOverview 全局统计概览
func (c *ShortlinkAdminController) GetOverview(ctx *fiber.Ctx) error {
	overview, err := c.app.GetOverview(util.Context(ctx))
	if err != nil {
		return err
	}
	return result.OK(ctx, overview)
}

// RunCleanup 手动触发保留期清理
func (c *ShortlinkAdminController) RunCleanup(ctx *fiber.Ctx) error {
	report, err := c.app.RunCleanup(util.Context(ctx))
	if err != nil {
		return err
	}
	return result.OK(ctx, report)
}

// GetLink 获取短链接详情
func (c *ShortlinkAdminController) GetLink(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("ID参数错误", err).WithTraceID(util.Context(ctx))
	}

	link, settings, err := c.app.GetLink(util.Context(ctx), id)
	if err != nil {
		return err
	}

	return result.OK(ctx, c.convertToDTO(link, settings))
}

// UpdateLink 更新短链接
func (c *ShortlinkAdminController) UpdateLink(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("ID参数错误", err).WithTraceID(util.Context(ctx))
	}

	var req internalapp.UpdateLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}

	err = c.app.UpdateLink(util.Context(ctx), id, &req)
	return result.Once(ctx, "更新成功", err)
}

// UpdateLinkStatus 更新短链接状态
func (c *ShortlinkAdminController) UpdateLinkStatus(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("ID参数错误", err).WithTraceID(util.Context(ctx))
	}

	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).WithTraceID(util.Context(ctx)).ToLog(c.log.GetLogger())
	}

	err = c.app.UpdateLinkStatus(util.Context(ctx), id, req.IsActive)
	return result.Once(ctx, "更新状态成功", err)
}

// DeleteLink 删除短链接
func (c *ShortlinkAdminController) DeleteLink(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("ID参数错误", err).WithTraceID(util.Context(ctx))
	}

	err = c.app.DeleteLink(util.Context(ctx), id)
	return result.Once(ctx, "删除成功", err)
}

// GetLinkStats 获取短链接统计
func (c *ShortlinkAdminController) GetLinkStats(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("ID参数错误", err).WithTraceID(util.Context(ctx))
	}

	days := utils.ParseInt(ctx.Query("days"), 30)

	stats, err := c.app.GetLinkStats(util.Context(ctx), id, days)
	if err != nil {
		return err
	}

	response := &dto.LinkStatsDTO{
		TotalVisits: stats.Link.AccessCount,
		DailyStats:  make([]dto.DailyStatDTO, 0, len(stats.Daily)),
		RecentLogs:  make([]dto.AccessLogDTO, 0, len(stats.RecentLogs)),
	}

	for _, ds := range stats.Daily {
		response.DailyStats = append(response.DailyStats, convertDailyStatDTO(ds))
	}
	for _, entry := range stats.RecentLogs {
		response.RecentLogs = append(response.RecentLogs, convertAccessLogDTO(entry))
	}

	return result.OK(ctx, response)
}

// ExportStats 导出短链接统计（csv或json）
func (c *ShortlinkAdminController) ExportStats(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("ID参数错误", err).WithTraceID(util.Context(ctx))
	}

	days := utils.ParseInt(ctx.Query("days"), 30)
	format := ctx.Query("format", "csv")

	data, contentType, err := c.app.ExportStats(util.Context(ctx), id, days, format)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="shortlink-%d-stats.%s"`, id, format))
	return ctx.Send(data)
}

// QueryAccessLogs 分页查询访问明细
func (c *ShortlinkAdminController) QueryAccessLogs(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("ID参数错误", err).WithTraceID(util.Context(ctx))
	}

	filter := &dao.AccessLogFilter{
		LinkID:     id,
		DeviceType: ctx.Query("deviceType", ""),
		Country:    ctx.Query("country", ""),
	}
	filter.PageNum = utils.ParseInt(ctx.Query("page"), 1)
	filter.PageSize = utils.ParseInt(ctx.Query("size"), 20)

	if ts := utils.ParseInt64(ctx.Query("start"), 0); ts > 0 {
		start := time.Unix(ts, 0)
		filter.StartTime = &start
	}
	if ts := utils.ParseInt64(ctx.Query("end"), 0); ts > 0 {
		end := time.Unix(ts, 0)
		filter.EndTime = &end
	}

	logs, total, err := c.app.QueryAccessLogs(util.Context(ctx), filter)
	if err != nil {
		return err
	}

	content := make([]dto.AccessLogDTO, 0, len(logs))
	for _, entry := range logs {
		content = append(content, convertAccessLogDTO(entry))
	}

	return result.OK(ctx, fiber.Map{
		"total":   total,
		"content": content,
	})
}

// convertToDTO 将模型转换为DTO，settings可为nil
func (c *ShortlinkAdminController) convertToDTO(link *model.Link, settings *model.LinkSettings) *dto.LinkDTO {
	out := &dto.LinkDTO{
		ID:             link.ID,
		Code:           link.Code,
		ShortURL:       c.app.LinkService.ShortURL(link.Code),
		OriginalURL:    link.OriginalURL,
		AccessCount:    link.AccessCount,
		ExpiresAt:      link.ExpiresAt,
		IsActive:       true,
		EnableTracking: true,
		Comment:        link.Comment,
		CreatedAt:      link.CreatedAt,
		UpdatedAt:      link.UpdatedAt,
	}

	if settings != nil {
		out.HasPassword = settings.HasPassword()
		out.MaxVisits = settings.MaxVisits
		out.RedirectType = settings.RedirectStatus()
		out.IsActive = settings.IsActive
		out.EnableTracking = settings.EnableTracking
	}
	return out
}

func convertDailyStatDTO(ds *model.DailyStats) dto.DailyStatDTO {
	return dto.DailyStatDTO{
		Date:           ds.Date,
		TotalVisits:    ds.TotalVisits,
		UniqueVisitors: ds.UniqueVisitors,
		MobileVisits:   ds.MobileVisits,
		DesktopVisits:  ds.DesktopVisits,
		TabletVisits:   ds.TabletVisits,
		BotVisits:      ds.BotVisits,
		UnknownVisits:  ds.UnknownVisits,
		TopCountries:   convertKeyCountDTOs(ds.TopCountries),
		TopCities:      convertKeyCountDTOs(ds.TopCities),
		TopReferrers:   convertKeyCountDTOs(ds.TopReferrers),
	}
}

func convertKeyCountDTOs(list model.KeyCountList) []dto.KeyCountDTO {
	out := make([]dto.KeyCountDTO, 0, len(list))
	for _, kc := range list {
		out = append(out, dto.KeyCountDTO{Key: kc.Key, Count: kc.Count})
	}
	return out
}

func convertAccessLogDTO(entry *model.AccessLog) dto.AccessLogDTO {
	return dto.AccessLogDTO{
		ID:             entry.ID,
		IP:             entry.IPAddress,
		UserAgent:      entry.UserAgent,
		Referer:        entry.Referer,
		Country:        entry.Country,
		City:           entry.City,
		DeviceType:     entry.DeviceType,
		Browser:        entry.Browser,
		OS:             entry.OS,
		ResponseTimeMs: entry.ResponseTimeMs,
		AccessedAt:     entry.AccessedAt,
	}
}
