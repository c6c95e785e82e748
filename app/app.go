package app

import (
	"duanlian/pkg/core/start"
	"duanlian/system/shortlink"

	"github.com/gofiber/fiber/v2"
)

// App 应用组合根，持有所有业务组件模块
type App struct {
	ShortlinkModule *shortlink.Module
}

// NewApp 创建应用组合根
func NewApp() *App {
	return &App{
		ShortlinkModule: shortlink.NewModule(),
	}
}

// GetApp 创建 Fiber 应用实例
func GetApp() *fiber.App {
	return start.GetApp()
}
