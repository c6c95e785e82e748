package shortlink

import (
	"duanlian/pkg/scheduler"
	internalapp "duanlian/system/shortlink/internal/app"
)

// Module 短链接组件模块
type Module struct {
	internalApp *internalapp.App
}

// NewModule 创建短链接组件模块
func NewModule() *Module {
	return &Module{
		internalApp: internalapp.NewApp(),
	}
}

// App 返回内部应用层实例
func (m *Module) App() *internalapp.App {
	return m.internalApp
}

// RegisterTasks 注册组件的定时任务
func (m *Module) RegisterTasks(sched *scheduler.Scheduler) error {
	return m.internalApp.RegisterCleanupTask(sched)
}
