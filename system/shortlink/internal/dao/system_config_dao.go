package dao

import (
	"context"
	"strconv"

	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/mvc"
	"duanlian/system/shortlink/internal/model"

	"gorm.io/gorm"
)

// SystemConfigDao 运行参数数据访问层
type SystemConfigDao struct {
	mvc.IBaseDao[model.SystemConfig]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewSystemConfigDao 创建运行参数 DAO 实例
func NewSystemConfigDao(db *gorm.DB, log *logger.Log) *SystemConfigDao {
	return &SystemConfigDao{
		IBaseDao: mvc.NewGormDao[model.SystemConfig](db),
		log:      log.WithEntryName("SystemConfigDao"),
		err:      errorc.NewErrorBuilder("SystemConfigDao"),
		db:       db,
	}
}

// GetValue 读取配置值
func (d *SystemConfigDao) GetValue(ctx context.Context, key string) (string, error) {
	var result model.SystemConfig
	err := d.db.WithContext(ctx).Where("`key` = ?", key).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", d.err.New("配置不存在", err).NotFound()
		}
		return "", d.err.New("查询配置失败", err).DB()
	}
	return result.Value, nil
}

// GetInt 读取整型配置值，不存在或非法时返回默认值
func (d *SystemConfigDao) GetInt(ctx context.Context, key string, defaultVal int) int {
	value, err := d.GetValue(ctx, key)
	if err != nil {
		if !errorc.IsNotFound(err) {
			d.log.WithErr(err).WithField("key", key).Warn("读取配置失败，使用默认值")
		}
		return defaultVal
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		d.log.WithField("key", key).WithField("value", value).Warn("配置值不是合法整数，使用默认值")
		return defaultVal
	}
	return parsed
}

// Set 写入配置值，键已存在时覆盖
func (d *SystemConfigDao) Set(ctx context.Context, key, value string) error {
	var existing model.SystemConfig
	err := d.db.WithContext(ctx).Where("`key` = ?", key).First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			cfg := &model.SystemConfig{Key: key, Value: value}
			if createErr := d.Create(ctx, cfg); createErr != nil {
				return d.err.New("创建配置失败", createErr).DB()
			}
			return nil
		}
		return d.err.New("查询配置失败", err).DB()
	}

	existing.Value = value
	if err := d.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return d.err.New("更新配置失败", err).DB()
	}
	return nil
}
