package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"
)

// RequestMeta 一次访问请求的原始信息
type RequestMeta struct {
	RemoteIP     string
	ForwardedFor string
	RealIP       string
	UserAgent    string
	Referer      string
}

// AccessService 访问记录服务：解析请求信息、落访问日志并触发当日统计汇总
type AccessService struct {
	LogDao *dao.AccessLogDao
	geo    GeoResolver
	stats  *StatsService
	log    *logger.Log
	err    *errorc.ErrorBuilder
}

// NewAccessService 创建访问记录服务实例
func NewAccessService(logDao *dao.AccessLogDao, geo GeoResolver, stats *StatsService, log *logger.Log) *AccessService {
	return &AccessService{
		LogDao: logDao,
		geo:    geo,
		stats:  stats,
		log:    log.WithEntryName("AccessService"),
		err:    errorc.NewErrorBuilder("AccessService"),
	}
}

// ClientIP 推导客户端IP：X-Forwarded-For首项 → X-Real-IP → 远端地址 → 回环占位
func (s *AccessService) ClientIP(meta RequestMeta) string {
	if meta.ForwardedFor != "" {
		first := meta.ForwardedFor
		if idx := strings.IndexByte(first, ','); idx >= 0 {
			first = first[:idx]
		}
		first = strings.TrimSpace(first)
		if first != "" {
			return first
		}
	}
	if meta.RealIP != "" {
		return meta.RealIP
	}
	if meta.RemoteIP != "" {
		return meta.RemoteIP
	}
	return "127.0.0.1"
}

// LookupCountry 解析访问IP所属国家，地理位置未启用或解析失败返回空
func (s *AccessService) LookupCountry(ctx context.Context, ip string) string {
	if s.geo == nil {
		return ""
	}
	info, err := s.geo.Resolve(ctx, ip)
	if err != nil || info == nil {
		return ""
	}
	return info.Country
}

// Record 记录一次访问并汇总当日统计。设备与地理位置解析受设置开关控制。
func (s *AccessService) Record(ctx context.Context, link *model.Link, settings *model.LinkSettings, meta RequestMeta, responseTime time.Duration) error {
	ip := s.ClientIP(meta)

	entry := &model.AccessLog{
		LinkID:         link.ID,
		Code:           link.Code,
		AccessedAt:     time.Now(),
		IPAddress:      ip,
		UserAgent:      truncate(meta.UserAgent, 500),
		Referer:        truncate(meta.Referer, 500),
		DeviceType:     model.DeviceTypeUnknown,
		ResponseTimeMs: responseTime.Milliseconds(),
	}

	if settings == nil || settings.EnableDeviceTracking {
		info := ParseUserAgent(meta.UserAgent)
		entry.DeviceType = info.DeviceType
		entry.Browser = info.Browser
		entry.OS = info.OS
	}

	if (settings == nil || settings.EnableLocationTracking) && s.geo != nil {
		geoInfo, err := s.geo.Resolve(ctx, ip)
		if err != nil {
			// 地理位置查询失败不影响记录本身
			s.log.WithErr(err).WithField("ip", ip).Debug("地理位置查询失败")
		} else if geoInfo != nil {
			entry.Country = geoInfo.Country
			entry.City = geoInfo.City
		}
	}

	if err := s.LogDao.Create(ctx, entry); err != nil {
		return s.err.New("创建访问记录失败", err)
	}

	// 汇总当日统计
	if s.stats != nil {
		if _, err := s.stats.AggregateDay(ctx, link.ID, entry.AccessedAt); err != nil {
			s.log.WithErr(err).WithLinkID(link.ID).Warn("汇总当日统计失败")
		}
	}

	return nil
}

// RecordAsync 异步记录访问，任何错误只记日志，绝不影响跳转主流程
func (s *AccessService) RecordAsync(link *model.Link, settings *model.LinkSettings, meta RequestMeta, responseTime time.Duration) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.WithField("panic", r).WithLinkID(link.ID).Error("访问记录协程崩溃")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Record(ctx, link, settings, meta, responseTime); err != nil {
			s.log.WithErr(err).WithLinkID(link.ID).Error("记录访问失败")
		}
	}()
}

// truncate 按字节上限截断，回退到rune边界保证结果是合法UTF-8
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
