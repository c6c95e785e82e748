package dao

import (
	"context"

	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/mvc"
	"duanlian/system/shortlink/internal/model"

	"gorm.io/gorm"
)

// DailyStatsDao 每日统计数据访问层
type DailyStatsDao struct {
	mvc.IBaseDao[model.DailyStats]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewDailyStatsDao 创建每日统计 DAO 实例
func NewDailyStatsDao(db *gorm.DB, log *logger.Log) *DailyStatsDao {
	return &DailyStatsDao{
		IBaseDao: mvc.NewGormDao[model.DailyStats](db),
		log:      log.WithEntryName("DailyStatsDao"),
		err:      errorc.NewErrorBuilder("DailyStatsDao"),
		db:       db,
	}
}

// FindByLinkAndDate 根据链接ID和日期查找
func (d *DailyStatsDao) FindByLinkAndDate(ctx context.Context, linkID int64, date string) (*model.DailyStats, error) {
	var result model.DailyStats
	err := d.db.WithContext(ctx).
		Where("link_id = ? AND date = ?", linkID, date).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, d.err.New("每日统计不存在", err).NotFound()
		}
		return nil, d.err.New("查询每日统计失败", err).DB()
	}
	return &result, nil
}

// Upsert 按 (link_id, date) 新建或原地更新统计行
func (d *DailyStatsDao) Upsert(ctx context.Context, stats *model.DailyStats) error {
	existing, err := d.FindByLinkAndDate(ctx, stats.LinkID, stats.Date)
	if err != nil {
		if errorc.IsNotFound(err) {
			if createErr := d.Create(ctx, stats); createErr != nil {
				return d.err.New("创建每日统计失败", createErr).DB()
			}
			return nil
		}
		return err
	}

	stats.ID = existing.ID
	stats.CreatedAt = existing.CreatedAt
	if err := d.db.WithContext(ctx).Save(stats).Error; err != nil {
		return d.err.New("更新每日统计失败", err).DB()
	}
	return nil
}

// ListByLinkAndRange 查询指定链接在日期范围内的统计（含边界）
func (d *DailyStatsDao) ListByLinkAndRange(ctx context.Context, linkID int64, startDate, endDate string) ([]*model.DailyStats, error) {
	var results []*model.DailyStats
	err := d.db.WithContext(ctx).
		Where("link_id = ? AND date >= ? AND date <= ?", linkID, startDate, endDate).
		Order("date ASC").Find(&results).Error
	if err != nil {
		return nil, d.err.New("查询每日统计失败", err).DB()
	}
	return results, nil
}

// DeleteStale 删除指定日期之前的统计，返回删除数量
func (d *DailyStatsDao) DeleteStale(ctx context.Context, beforeDate string) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("date < ?", beforeDate).
		Delete(&model.DailyStats{})
	if result.Error != nil {
		return 0, d.err.New("删除过期每日统计失败", result.Error).DB()
	}
	return result.RowsAffected, nil
}

// DeleteByLinkID 删除指定链接的全部统计
func (d *DailyStatsDao) DeleteByLinkID(ctx context.Context, linkID int64) error {
	err := d.db.WithContext(ctx).Where("link_id = ?", linkID).Delete(&model.DailyStats{}).Error
	if err != nil {
		return d.err.New("删除每日统计失败", err).DB()
	}
	return nil
}
