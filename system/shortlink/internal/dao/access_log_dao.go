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

// AccessLogDao 访问记录数据访问层
type AccessLogDao struct {
	mvc.IBaseDao[model.AccessLog]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewAccessLogDao 创建访问记录 DAO 实例
func NewAccessLogDao(db *gorm.DB, log *logger.Log) *AccessLogDao {
	return &AccessLogDao{
		IBaseDao: mvc.NewGormDao[model.AccessLog](db),
		log:      log.WithEntryName("AccessLogDao"),
		err:      errorc.NewErrorBuilder("AccessLogDao"),
		db:       db,
	}
}

// AccessLogFilter 访问记录查询条件
type AccessLogFilter struct {
	LinkID     int64
	Code       string
	StartTime  *time.Time
	EndTime    *time.Time
	DeviceType string
	Country    string
	PageNum    int
	PageSize   int
}

// Query 按条件分页查询访问记录
func (d *AccessLogDao) Query(ctx context.Context, filter *AccessLogFilter) ([]*model.AccessLog, int64, error) {
	query := d.db.WithContext(ctx).Model(&model.AccessLog{})

	if filter.LinkID > 0 {
		query = query.Where("link_id = ?", filter.LinkID)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.StartTime != nil {
		query = query.Where("accessed_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("accessed_at < ?", *filter.EndTime)
	}
	if filter.DeviceType != "" {
		query = query.Where("device_type = ?", filter.DeviceType)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, d.err.New("统计访问记录数量失败", err).DB()
	}

	pageNum := filter.PageNum
	if pageNum <= 0 {
		pageNum = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var results []*model.AccessLog
	err := query.Offset((pageNum - 1) * pageSize).Limit(pageSize).
		Order("accessed_at DESC").Find(&results).Error
	if err != nil {
		return nil, 0, d.err.New("查询访问记录失败", err).DB()
	}

	return results, total, nil
}

// ListByLinkAndRange 查询指定链接在时间范围内的访问记录
func (d *AccessLogDao) ListByLinkAndRange(ctx context.Context, linkID int64, start, end time.Time) ([]*model.AccessLog, error) {
	var results []*model.AccessLog
	err := d.db.WithContext(ctx).
		Where("link_id = ? AND accessed_at >= ? AND accessed_at < ?", linkID, start, end).
		Order("accessed_at ASC").Find(&results).Error
	if err != nil {
		return nil, d.err.New("查询访问记录失败", err).DB()
	}
	return results, nil
}

// CountSince 统计指定时间之后的访问数
func (d *AccessLogDao) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.AccessLog{}).
		Where("accessed_at >= ?", since).Count(&count).Error
	if err != nil {
		return 0, d.err.New("统计访问数失败", err).DB()
	}
	return count, nil
}

// DistinctLinkIDsInRange 时间范围内有访问记录的链接ID集合
func (d *AccessLogDao) DistinctLinkIDsInRange(ctx context.Context, start, end time.Time) ([]int64, error) {
	var ids []int64
	err := d.db.WithContext(ctx).Model(&model.AccessLog{}).
		Where("accessed_at >= ? AND accessed_at < ?", start, end).
		Distinct("link_id").Pluck("link_id", &ids).Error
	if err != nil {
		return nil, d.err.New("查询访问链接集合失败", err).DB()
	}
	return ids, nil
}

// DeleteStale 删除指定时间之前的访问记录，返回删除数量
func (d *AccessLogDao) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("accessed_at < ?", before).
		Delete(&model.AccessLog{})
	if result.Error != nil {
		return 0, d.err.New("删除过期访问记录失败", result.Error).DB()
	}
	return result.RowsAffected, nil
}

// DeleteByLinkID 删除指定链接的全部访问记录
func (d *AccessLogDao) DeleteByLinkID(ctx context.Context, linkID int64) error {
	err := d.db.WithContext(ctx).Where("link_id = ?", linkID).Delete(&model.AccessLog{}).Error
	if err != nil {
		return d.err.New("删除访问记录失败", err).DB()
	}
	return nil
}
