package dao

import (
	"context"

	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/mvc"
	"duanlian/system/shortlink/internal/model"

	"gorm.io/gorm"
)

// SettingsDao 短链接设置数据访问层
type SettingsDao struct {
	mvc.IBaseDao[model.LinkSettings]
	log *logger.Log
	err *errorc.ErrorBuilder
	DB  *gorm.DB
}

// NewSettingsDao 创建短链接设置 DAO 实例
func NewSettingsDao(db *gorm.DB, log *logger.Log) *SettingsDao {
	return &SettingsDao{
		IBaseDao: mvc.NewGormDao[model.LinkSettings](db),
		log:      log.WithEntryName("SettingsDao"),
		err:      errorc.NewErrorBuilder("SettingsDao"),
		DB:       db,
	}
}

// FindByLinkID 根据短链接ID查找设置
func (d *SettingsDao) FindByLinkID(ctx context.Context, linkID int64) (*model.LinkSettings, error) {
	var result model.LinkSettings
	err := d.DB.WithContext(ctx).Where("link_id = ?", linkID).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, d.err.New("短链接设置不存在", err).NotFound()
		}
		return nil, d.err.New("查询短链接设置失败", err).DB()
	}
	return &result, nil
}

// DeleteByLinkID 删除指定短链接的设置
func (d *SettingsDao) DeleteByLinkID(ctx context.Context, linkID int64) error {
	err := d.DB.WithContext(ctx).Where("link_id = ?", linkID).Delete(&model.LinkSettings{}).Error
	if err != nil {
		return d.err.New("删除短链接设置失败", err).DB()
	}
	return nil
}
