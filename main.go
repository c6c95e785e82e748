package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"duanlian/app"
	"duanlian/base"
	"duanlian/pkg/core/start"
	"duanlian/pkg/scheduler"
	"duanlian/router"
	"duanlian/system/shortlink"
)

func main() {
	env, filename := getBaseInfo()

	file, err := os.ReadFile(filename)
	if err != nil {
		panic(fmt.Sprintf("读取配置文件失败,因为：%v", err))
	}

	configures := start.NewConfigures(file, env)
	base.Configures = configures
	base.Logger = configures.Logger
	base.ENV = env

	base.DB = configures.EnableDatabase()

	// 执行数据库迁移
	if err := shortlink.AutoMigrate(base.DB, base.Logger); err != nil {
		configures.Logger.WithErr(err).Panic("数据库迁移失败")
	}

	base.RDB = configures.EnableRedis()
	base.Cache = configures.EnableCache(base.RDB)
	base.Locker = configures.EnableLocker(base.RDB)

	base.Scheduler = scheduler.NewScheduler(base.Locker, scheduler.DefaultSchedulerConfig())
	if err := base.Scheduler.Start(); err != nil {
		configures.Logger.WithErr(err).Panic("启动调度器失败")
	}

	// 创建应用组合根
	appRoot := app.NewApp()

	// 注册短链接组件的保留期清理定时任务
	if err := appRoot.ShortlinkModule.RegisterTasks(base.Scheduler); err != nil {
		configures.Logger.WithErr(err).Panic("注册定时任务失败")
	}

	// 创建 Fiber 应用并注册路由
	fiberApp := app.GetApp()
	router.Register(appRoot, fiberApp)

	log.Fatal(fiberApp.Listen(fmt.Sprintf(":%d", base.Configures.Config.Port)))
}

func getBaseInfo() (string, string) {
	// 定义命令行参数
	env := flag.String("env", "dev", "环境配置 (dev, prod, test等)")
	configFile := flag.String("config", "", "配置文件路径，默认为 ./resources/{env}.yaml")

	// 解析命令行参数
	flag.Parse()

	// 如果没有指定配置文件路径，则使用默认路径
	var filename string
	if *configFile == "" {
		getwd, err := os.Getwd()
		if err != nil {
			panic(fmt.Sprintf("获取当前文件位置失败,因为：%v", err))
		}
		filename = getwd + "/resources/" + *env + ".yaml"
	} else {
		filename = *configFile
	}
	return *env, filename
}
