package shortlink

import (
	controller "duanlian/system/shortlink/external/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册短链接组件的所有 HTTP 路由。
// root 挂载跳转与解析路由，admin 挂载后台管理接口。
func RegisterRoutes(m *Module, root, admin fiber.Router) {
	// 后台管理接口（依赖 internal/app.App）
	adminController := controller.NewShortlinkAdminController(m.internalApp)
	adminController.RegisterRoutes(admin)

	// 对外接口（短码跳转与解析），根路径通配路由最后注册
	apiController := controller.NewShortlinkAPIController(m.internalApp)
	apiController.RegisterRoutes(root)
}
