package router

import (
	"duanlian/app"
	"duanlian/system/shortlink"

	"github.com/gofiber/fiber/v2"
)

// Register 负责集中注册所有 HTTP 路由。
// 按规范：
//   - 只依赖 app.App（业务编排入口）和 fiber.App（HTTP Server）。
//   - 不直接依赖任何 DAO / Service / system/internal 包。
//   - 不包含业务逻辑，只做分组与路由绑定。
func Register(a *app.App, f *fiber.App) {
	// 公共 API 分组
	api := f.Group("/api")

	// 简单存活检查路由
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"msg": "ok"})
	})

	// 后台管理路由分组
	admin := f.Group("/admin")

	// 注册短链接组件路由。跳转路由挂在根路径的 /:code 上，
	// 必须在 /api、/admin 分组之后注册。
	shortlink.RegisterRoutes(a.ShortlinkModule, f, admin)
}
