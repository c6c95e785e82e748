package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"duanlian/pkg/core/config"
	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/mvc"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"
)

// ResolveState 短码解析状态
type ResolveState string

const (
	// ResolveStateNotFound 短码不存在，终态
	ResolveStateNotFound ResolveState = "not_found"
	// ResolveStateExpired 已过期，不可跳转但元数据仍可查询
	ResolveStateExpired ResolveState = "expired"
	// ResolveStateActive 可跳转
	ResolveStateActive ResolveState = "active"
)

// LinkService 短链接业务逻辑层
type LinkService struct {
	mvc.IBaseService[model.Link]
	Dao         *dao.LinkDao
	SettingsDao *dao.SettingsDao
	cfg         config.ShortlinkConfig
	log         *logger.Log
	err         *errorc.ErrorBuilder
}

// NewLinkService 创建短链接服务实例
func NewLinkService(linkDao *dao.LinkDao, settingsDao *dao.SettingsDao, cfg config.ShortlinkConfig, log *logger.Log) *LinkService {
	return &LinkService{
		IBaseService: mvc.NewBaseService[model.Link](linkDao),
		Dao:          linkDao,
		SettingsDao:  settingsDao,
		cfg:          cfg.WithDefaults(),
		log:          log.WithEntryName("LinkService"),
		err:          errorc.NewErrorBuilder("LinkService"),
	}
}

// Resolve 解析短码状态：不存在 / 已过期 / 可跳转。
// 过期记录不做同步删除，保留给清理任务处理。
func (s *LinkService) Resolve(ctx context.Context, code string) (ResolveState, *model.Link, error) {
	link, err := s.Dao.FindByCode(ctx, code)
	if err != nil {
		if errorc.IsNotFound(err) {
			return ResolveStateNotFound, nil, nil
		}
		return ResolveStateNotFound, nil, err
	}

	if link.IsExpired() {
		return ResolveStateExpired, link, nil
	}

	return ResolveStateActive, link, nil
}

// ComputeExpiry 计算过期时间，优先级：显式时间 > 天数 > 配置默认天数；
// 默认天数为0时表示永不过期
func (s *LinkService) ComputeExpiry(explicit *time.Time, expireDays int, now time.Time) *time.Time {
	if explicit != nil {
		return explicit
	}
	days := expireDays
	if days <= 0 {
		days = s.cfg.DefaultExpireDays
	}
	if days <= 0 {
		return nil
	}
	expiry := now.AddDate(0, 0, days)
	return &expiry
}

// ValidateAccess 校验访问控制规则，全部通过才允许跳转。
// country 为空表示国家未知，不参与国家封禁判断。
func (s *LinkService) ValidateAccess(link *model.Link, settings *model.LinkSettings, password, ip, referer, country string) error {
	if settings == nil {
		return nil
	}

	if !settings.IsActive {
		return s.err.New("短链接已禁用", nil).Forbidden()
	}

	if settings.IsVisitLimitReached(link.AccessCount) {
		return s.err.New("短链接访问次数已达上限", nil).Forbidden()
	}

	if settings.HasPassword() && !s.VerifyPassword(password, settings.PasswordHash) {
		return s.err.New("访问密码错误", nil).Forbidden()
	}

	if ip != "" && settings.BlockedIPs.Contains(ip) {
		return s.err.New("访问IP已被禁止", nil).Forbidden()
	}

	if country != "" && settings.BlockedCountries.Contains(country) {
		return s.err.New("访问地区已被禁止", nil).Forbidden()
	}

	refererHost := refererDomain(referer)
	if refererHost != "" {
		if settings.BlockedReferrers.Contains(refererHost) {
			return s.err.New("访问来源已被禁止", nil).Forbidden()
		}
		if len(settings.AllowedReferrers) > 0 && !settings.AllowedReferrers.Contains(refererHost) {
			return s.err.New("访问来源不在允许列表内", nil).Forbidden()
		}
	}

	return nil
}

// HashPassword 对密码进行哈希
func (s *LinkService) HashPassword(password string) string {
	if password == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}

// VerifyPassword 验证密码
func (s *LinkService) VerifyPassword(password, passwordHash string) bool {
	if passwordHash == "" {
		return true
	}
	return s.HashPassword(password) == passwordHash
}

// ShortURL 拼接完整短链接
func (s *LinkService) ShortURL(code string) string {
	return fmt.Sprintf("%s/%s", s.cfg.BaseURL, code)
}

// refererDomain 提取Referer的主机名，解析失败返回空
func refererDomain(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return u.Hostname()
}
