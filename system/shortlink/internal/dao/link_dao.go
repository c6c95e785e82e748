package dao

import (
	"context"
	"time"

	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/mvc"
	"duanlian/system/shortlink/internal/model"

	"gorm.io/gorm"
)

// LinkDao 短链接数据访问层
type LinkDao struct {
	mvc.IBaseDao[model.Link]
	log *logger.Log
	err *errorc.ErrorBuilder
	DB  *gorm.DB
}

// NewLinkDao 创建短链接 DAO 实例
func NewLinkDao(db *gorm.DB, log *logger.Log) *LinkDao {
	return &LinkDao{
		IBaseDao: mvc.NewGormDao[model.Link](db),
		log:      log.WithEntryName("LinkDao"),
		err:      errorc.NewErrorBuilder("LinkDao"),
		DB:       db,
	}
}

// FindByCode 根据短码查找
func (d *LinkDao) FindByCode(ctx context.Context, code string) (*model.Link, error) {
	var result model.Link
	err := d.DB.WithContext(ctx).Where("code = ?", code).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, d.err.New("短链接不存在", err).NotFound()
		}
		return nil, d.err.New("查询短链接失败", err).DB()
	}
	return &result, nil
}

// FindByURL 根据规范化URL查找最近创建的一条
func (d *LinkDao) FindByURL(ctx context.Context, normalizedURL string) (*model.Link, error) {
	var result model.Link
	err := d.DB.WithContext(ctx).Where("original_url = ?", normalizedURL).
		Order("id DESC").First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, d.err.New("短链接不存在", err).NotFound()
		}
		return nil, d.err.New("按URL查询短链接失败", err).DB()
	}
	return &result, nil
}

// ExistsByCode 检查短码是否已存在
func (d *LinkDao) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := d.DB.WithContext(ctx).Model(&model.Link{}).
		Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, d.err.New("检查短码是否存在失败", err).DB()
	}
	return count > 0, nil
}

// IncrementAccessCount 原子递增访问次数
func (d *LinkDao) IncrementAccessCount(ctx context.Context, id int64) error {
	err := d.DB.WithContext(ctx).Model(&model.Link{}).
		Where("id = ?", id).
		UpdateColumn("access_count", gorm.Expr("access_count + ?", 1)).Error
	if err != nil {
		return d.err.New("更新访问次数失败", err).DB()
	}
	return nil
}

// ListWithPage 分页查询短链接
func (d *LinkDao) ListWithPage(ctx context.Context, pageNum, pageSize int) ([]*model.Link, int64, error) {
	var results []*model.Link
	var total int64

	query := d.DB.WithContext(ctx).Model(&model.Link{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, d.err.New("统计短链接数量失败", err).DB()
	}

	offset := (pageNum - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("id DESC").Find(&results).Error
	if err != nil {
		return nil, 0, d.err.New("分页查询短链接失败", err).DB()
	}

	return results, total, nil
}

// TopByAccessCount 按访问次数取前N条
func (d *LinkDao) TopByAccessCount(ctx context.Context, limit int) ([]*model.Link, error) {
	var results []*model.Link
	err := d.DB.WithContext(ctx).Order("access_count DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, d.err.New("查询热门短链接失败", err).DB()
	}
	return results, nil
}

// SumAccessCount 所有短链接访问次数之和
func (d *LinkDao) SumAccessCount(ctx context.Context) (int64, error) {
	var total *int64
	err := d.DB.WithContext(ctx).Model(&model.Link{}).
		Select("SUM(access_count)").Scan(&total).Error
	if err != nil {
		return 0, d.err.New("统计访问总数失败", err).DB()
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ListExpiredCodes 查询已过期短链接的短码集合
func (d *LinkDao) ListExpiredCodes(ctx context.Context, now time.Time) ([]string, error) {
	var codes []string
	err := d.DB.WithContext(ctx).Model(&model.Link{}).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Pluck("code", &codes).Error
	if err != nil {
		return nil, d.err.New("查询过期短码失败", err).DB()
	}
	return codes, nil
}

// DeleteExpired 删除已过期的短链接，返回删除数量
func (d *LinkDao) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := d.DB.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&model.Link{})
	if result.Error != nil {
		return 0, d.err.New("删除过期短链接失败", result.Error).DB()
	}
	return result.RowsAffected, nil
}
