package start

import (
	"fmt"

	"duanlian/pkg/core/config"
	"duanlian/pkg/core/logger"

	"github.com/bsm/redislock"
	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Config struct {
	AppName   string                 `yaml:"app-name"`
	Env       string                 `yaml:"env"`
	Port      int                    `yaml:"port"`
	LogLevel  string                 `yaml:"log-level"`
	Redis     config.RedisConfig     `yaml:"redis"`
	Database  config.Database        `yaml:"db"`
	Shortlink config.ShortlinkConfig `yaml:"shortlink"`
	Geo       config.GeoConfig       `yaml:"geo"`
}

type Configures struct {
	Config Config
	Logger *logger.Log
}

func NewConfigures(file []byte, env string) *Configures {
	var cfg Config
	err := yaml.Unmarshal(file, &cfg)
	if err != nil {
		panic(fmt.Sprintf("读取文件信息失败，因为%v", err))
	}

	cfg.Env = env
	cfg.Shortlink = cfg.Shortlink.WithDefaults()
	cfg.Geo = cfg.Geo.WithDefaults()
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return &Configures{
		Config: cfg,
		Logger: logger.InitLogger(cfg.LogLevel),
	}
}

func (c *Configures) EnableRedis() *redis.Client {
	return config.InitRDB(c.Config.Redis)
}

func (c *Configures) EnableCache(rdb *redis.Client) *cache.Cache {
	return config.InitCache(rdb)
}

func (c *Configures) EnableLocker(rdb *redis.Client) *redislock.Client {
	return redislock.New(rdb)
}

func (c *Configures) EnablePg() *gorm.DB {
	db, err := config.InitPg(c.Config.Database)
	if err != nil {
		c.Logger.WithField("database", c.Config.Database.Host).WithField("err", err).Panic("failed connect database")
	}
	c.Logger.Info("connect database success")
	return db
}

func (c *Configures) EnableMysql() *gorm.DB {
	db, err := config.InitMysql(c.Config.Database)
	if err != nil {
		c.Logger.WithField("database", c.Config.Database.Host).WithField("err", err).Panic("failed connect database")
	}
	c.Logger.Info("connect database success")
	return db
}

// EnableDatabase 根据配置选择数据库类型
func (c *Configures) EnableDatabase() *gorm.DB {
	if c.Config.Database.Type == "postgres" {
		return c.EnablePg()
	}
	return c.EnableMysql()
}
