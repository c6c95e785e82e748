package http

import (
	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/result"
	"duanlian/pkg/core/util"
	"duanlian/system/shortlink/api/dto"
	internalapp "duanlian/system/shortlink/internal/app"
	"duanlian/system/shortlink/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ShortlinkAPIController 短链接API控制器（跳转与解析）
type ShortlinkAPIController struct {
	app *internalapp.App
	err *errorc.ErrorBuilder
	log *logger.Log
}

// NewShortlinkAPIController 创建短链接API控制器
func NewShortlinkAPIController(app *internalapp.App) *ShortlinkAPIController {
	return &ShortlinkAPIController{
		app: app,
		err: errorc.NewErrorBuilder("ShortlinkAPIController"),
		log: logger.GetLogger().WithEntryName("ShortlinkAPIController"),
	}
}

// RegisterRoutes 注册路由。跳转路由挂在应用根路径上，
// 必须在 /api、/admin 分组之后注册，避免吞掉其他路由。
func (c *ShortlinkAPIController) RegisterRoutes(root fiber.Router) {
	// 短码解析（返回JSON，无鉴权）
	root.Get("/:code/info", c.Info)

	// 短链接跳转（无鉴权）
	root.Get("/:code", c.Visit)
}

// Visit 访问短链接并跳转
func (c *ShortlinkAPIController) Visit(ctx *fiber.Ctx) error {
	code := ctx.Params("code")
	password := ctx.Query("password", "")

	resolved, err := c.app.ResolveLink(util.Context(ctx), code, password, requestMeta(ctx))
	if err != nil {
		return err
	}

	return ctx.Redirect(resolved.Link.OriginalURL, resolved.RedirectStatus)
}

// Info 解析短链接并返回JSON（不跳转）。过期链接仍返回元数据。
func (c *ShortlinkAPIController) Info(ctx *fiber.Ctx) error {
	code := ctx.Params("code")
	password := ctx.Query("password", "")

	resolved, err := c.app.GetLinkInfo(util.Context(ctx), code, password, requestMeta(ctx))
	if err != nil {
		return err
	}

	response := &dto.ResolveInfoDTO{
		Code:        resolved.Link.Code,
		State:       string(resolved.State),
		OriginalURL: resolved.Link.OriginalURL,
		ExpiresAt:   resolved.Link.ExpiresAt,
		Comment:     resolved.Link.Comment,
	}
	if resolved.Settings != nil {
		response.HasPassword = resolved.Settings.HasPassword()
	}

	return result.OK(ctx, response)
}

// requestMeta 从请求中提取访问信息
func requestMeta(ctx *fiber.Ctx) service.RequestMeta {
	return service.RequestMeta{
		RemoteIP:     ctx.IP(),
		ForwardedFor: ctx.Get(fiber.HeaderXForwardedFor),
		RealIP:       ctx.Get("X-Real-IP"),
		UserAgent:    ctx.Get(fiber.HeaderUserAgent),
		Referer:      ctx.Get(fiber.HeaderReferer),
	}
}
