package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"duanlian/base"
	errorc "duanlian/pkg/core/err"
	"duanlian/system/shortlink/internal/model"
	"duanlian/system/shortlink/internal/service"

	"github.com/go-redis/cache/v9"
)

const linkCacheTTL = 5 * time.Minute

// CreateLinkRequest 创建短链接请求
type CreateLinkRequest struct {
	OriginalURL  string     `json:"originalUrl" validate:"required" comment:"原始URL"`
	CustomSlug   string     `json:"customSlug" comment:"自定义短码"`
	ExpiresAt    *time.Time `json:"expiresAt" comment:"过期时间"`
	ExpireDays   int        `json:"expireDays" comment:"过期天数"`
	Password     string     `json:"password" comment:"访问密码"`
	MaxVisits    *int64     `json:"maxVisits" comment:"最大访问次数"`
	RedirectType int        `json:"redirectType" comment:"重定向类型"`
	Comment      string     `json:"comment" comment:"备注"`
}

// CreateLinkResult 创建结果，Reused 表示命中同URL的既有链接
type CreateLinkResult struct {
	Link     *model.Link
	Settings *model.LinkSettings
	Reused   bool
}

// CreateLink 创建短链接。URL先校验规范化；未指定自定义短码时，
// 同一规范化URL的未过期链接直接复用（按URL幂等创建）。
func (a *App) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResult, error) {
	vr := a.URLValidator.Validate(req.OriginalURL, nil)
	if !vr.IsValid {
		return nil, a.err.New("URL校验失败: "+strings.Join(vr.Errors, "；"), nil).ValidWithCtx()
	}

	if req.CustomSlug == "" {
		existing, err := a.LinkService.Dao.FindByURL(ctx, vr.NormalizedURL)
		if err == nil && !existing.IsExpired() {
			return &CreateLinkResult{
				Link:     existing,
				Settings: a.findSettings(ctx, existing.ID),
				Reused:   true,
			}, nil
		}
		if err != nil && !errorc.IsNotFound(err) {
			return nil, err
		}
	}

	code, err := a.pickCode(ctx, req.CustomSlug)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	link := &model.Link{
		Code:        code,
		OriginalURL: vr.NormalizedURL,
		ExpiresAt:   a.LinkService.ComputeExpiry(req.ExpiresAt, req.ExpireDays, now),
		Comment:     req.Comment,
	}

	if err := a.createWithRetry(ctx, link, req.CustomSlug != ""); err != nil {
		return nil, err
	}

	settings := &model.LinkSettings{
		LinkID:                 link.ID,
		IsActive:               true,
		PasswordHash:           a.LinkService.HashPassword(req.Password),
		MaxVisits:              req.MaxVisits,
		RedirectType:           a.redirectTypeOrDefault(req.RedirectType),
		EnableTracking:         a.cfg.TrackingEnabled(),
		EnableDeviceTracking:   true,
		EnableLocationTracking: true,
	}
	if err := a.LinkService.SettingsDao.Create(ctx, settings); err != nil {
		return nil, err
	}

	a.invalidateLinkCache(ctx, link.Code)

	return &CreateLinkResult{Link: link, Settings: settings}, nil
}

// pickCode 确定短码：自定义短码走格式/安全校验与冲突检查，否则走生成器
func (a *App) pickCode(ctx context.Context, customSlug string) (string, error) {
	if customSlug != "" {
		normalized, errs := a.SlugGenerator.ValidateCustomSlug(customSlug)
		if len(errs) > 0 {
			return "", a.err.New("自定义短码不合法: "+strings.Join(errs, "；"), nil).ValidWithCtx()
		}
		taken, err := a.LinkService.Dao.ExistsByCode(ctx, normalized)
		if err != nil {
			return "", err
		}
		if taken {
			return "", a.err.New("短码已被占用", nil).Conflict()
		}
		return normalized, nil
	}

	result, err := a.SlugGenerator.Generate(ctx, a.LinkService.Dao.ExistsByCode)
	if err != nil {
		return "", err
	}
	return result.Slug, nil
}

// createWithRetry 落库创建。并发下唯一约束冲突与预检冲突同等对待：
// 生成的短码重新生成后重试，自定义短码直接报冲突。
func (a *App) createWithRetry(ctx context.Context, link *model.Link, isCustom bool) error {
	for attempt := 0; attempt < 3; attempt++ {
		err := a.LinkService.Create(ctx, link)
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return err
		}
		if isCustom {
			return a.err.New("短码已被占用", err).Conflict()
		}

		result, genErr := a.SlugGenerator.Generate(ctx, a.LinkService.Dao.ExistsByCode)
		if genErr != nil {
			return genErr
		}
		link.Code = result.Slug
	}
	return a.err.New("创建短链接失败：短码持续冲突", nil).Unavailable()
}

// 各数据库方言的唯一约束冲突信息
var duplicateKeyPatterns = []string{
	"Duplicate entry",             // mysql
	"UNIQUE constraint failed",    // sqlite
	"SQLSTATE 23505",              // postgres
	"duplicate key value violates unique constraint", // postgres
	"duplicated key not allowed",  // gorm TranslateError
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range duplicateKeyPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func (a *App) redirectTypeOrDefault(redirectType int) int {
	switch redirectType {
	case model.RedirectTypePermanent, model.RedirectTypeFound, model.RedirectTypeTemporary:
		return redirectType
	}
	return a.cfg.RedirectStatus
}

// ResolveResult 短码解析结果
type ResolveResult struct {
	State          service.ResolveState
	Link           *model.Link
	Settings       *model.LinkSettings
	RedirectStatus int
}

// ResolveLink 跳转热路径：缓存查短码，执行状态机与访问控制；
// 命中Active且开启跟踪时同步递增访问计数并异步记录访问
func (a *App) ResolveLink(ctx context.Context, code, password string, meta service.RequestMeta) (*ResolveResult, error) {
	start := time.Now()

	link, err := a.getLinkCached(ctx, code)
	if err != nil {
		if errorc.IsNotFound(err) {
			return nil, a.err.New("短链接不存在", nil).NotFound()
		}
		return nil, err
	}

	if link.IsExpired() {
		return nil, a.err.New(
			fmt.Sprintf("短链接已于%s过期", link.ExpiresAt.Format("2006-01-02 15:04:05")), nil).Gone()
	}

	settings := a.findSettings(ctx, link.ID)

	// 封顶链接的计数校验用实时行，不吃缓存副本
	if settings != nil && settings.MaxVisits != nil && base.Cache != nil {
		if fresh, err := a.LinkService.Dao.FindByCode(ctx, code); err == nil {
			link = fresh
		}
	}

	clientIP := a.AccessService.ClientIP(meta)
	if err := a.LinkService.ValidateAccess(link, settings, password, clientIP, meta.Referer,
		a.lookupCountryIfBlocked(ctx, settings, clientIP)); err != nil {
		return nil, err
	}

	redirectStatus := a.cfg.RedirectStatus
	if settings != nil {
		redirectStatus = settings.RedirectStatus()
	}

	if a.trackingEnabled(settings) {
		// 计数同步递增保证跳转前落库，访问明细异步记录
		if err := a.LinkService.Dao.IncrementAccessCount(ctx, link.ID); err != nil {
			a.log.WithErr(err).WithCode(code).Error("递增访问计数失败")
		} else {
			link.AccessCount++
		}
		a.AccessService.RecordAsync(link, settings, meta, time.Since(start))
	}

	return &ResolveResult{
		State:          service.ResolveStateActive,
		Link:           link,
		Settings:       settings,
		RedirectStatus: redirectStatus,
	}, nil
}

// GetLinkInfo 解析短码信息（不跳转）。过期链接仍返回元数据与过期时间；
// Active且开启跟踪时同样计入访问。
func (a *App) GetLinkInfo(ctx context.Context, code, password string, meta service.RequestMeta) (*ResolveResult, error) {
	start := time.Now()

	state, link, err := a.LinkService.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	switch state {
	case service.ResolveStateNotFound:
		return nil, a.err.New("短链接不存在", nil).NotFound()
	case service.ResolveStateExpired:
		return &ResolveResult{State: state, Link: link}, nil
	}

	settings := a.findSettings(ctx, link.ID)
	clientIP := a.AccessService.ClientIP(meta)
	if err := a.LinkService.ValidateAccess(link, settings, password, clientIP, meta.Referer,
		a.lookupCountryIfBlocked(ctx, settings, clientIP)); err != nil {
		return nil, err
	}

	if a.trackingEnabled(settings) {
		if err := a.LinkService.Dao.IncrementAccessCount(ctx, link.ID); err != nil {
			a.log.WithErr(err).WithCode(code).Error("递增访问计数失败")
		} else {
			link.AccessCount++
		}
		a.AccessService.RecordAsync(link, settings, meta, time.Since(start))
	}

	return &ResolveResult{
		State:          service.ResolveStateActive,
		Link:           link,
		Settings:       settings,
		RedirectStatus: a.cfg.RedirectStatus,
	}, nil
}

// UpdateLinkRequest 更新短链接请求
type UpdateLinkRequest struct {
	ExpiresAt    *time.Time `json:"expiresAt"`
	MaxVisits    *int64     `json:"maxVisits"`
	Password     *string    `json:"password"`
	RedirectType int        `json:"redirectType"`
	Comment      string     `json:"comment"`
}

// UpdateLink 更新短链接及其设置
func (a *App) UpdateLink(ctx context.Context, id int64, req *UpdateLinkRequest) error {
	link, err := a.LinkService.FindById(ctx, id)
	if err != nil {
		return err
	}

	if req.ExpiresAt != nil {
		link.ExpiresAt = req.ExpiresAt
	}
	if req.Comment != "" {
		link.Comment = req.Comment
	}
	if err := a.LinkService.Dao.DB.WithContext(ctx).Save(link).Error; err != nil {
		return a.err.New("更新短链接失败", err).DB()
	}

	settings := a.findSettings(ctx, link.ID)
	if settings != nil {
		if req.MaxVisits != nil {
			settings.MaxVisits = req.MaxVisits
		}
		if req.Password != nil {
			settings.PasswordHash = a.LinkService.HashPassword(*req.Password)
		}
		if req.RedirectType != 0 {
			settings.RedirectType = a.redirectTypeOrDefault(req.RedirectType)
		}
		if err := a.LinkService.SettingsDao.DB.WithContext(ctx).Save(settings).Error; err != nil {
			return a.err.New("更新短链接设置失败", err).DB()
		}
	}

	a.invalidateLinkCache(ctx, link.Code)
	return nil
}

// UpdateLinkStatus 启用/禁用短链接
func (a *App) UpdateLinkStatus(ctx context.Context, id int64, isActive bool) error {
	link, err := a.LinkService.FindById(ctx, id)
	if err != nil {
		return err
	}

	settings := a.findSettings(ctx, link.ID)
	if settings == nil {
		settings = &model.LinkSettings{
			LinkID:                 link.ID,
			IsActive:               isActive,
			RedirectType:           a.cfg.RedirectStatus,
			EnableTracking:         a.cfg.TrackingEnabled(),
			EnableDeviceTracking:   true,
			EnableLocationTracking: true,
		}
		if err := a.LinkService.SettingsDao.Create(ctx, settings); err != nil {
			return err
		}
	} else {
		settings.IsActive = isActive
		if err := a.LinkService.SettingsDao.DB.WithContext(ctx).Save(settings).Error; err != nil {
			return a.err.New("更新短链接状态失败", err).DB()
		}
	}

	a.invalidateLinkCache(ctx, link.Code)
	return nil
}

// DeleteLink 删除短链接及其子数据
func (a *App) DeleteLink(ctx context.Context, id int64) error {
	link, err := a.LinkService.FindById(ctx, id)
	if err != nil {
		return err
	}

	if err := a.LinkService.DeleteById(ctx, id); err != nil {
		return err
	}
	if err := a.LinkService.SettingsDao.DeleteByLinkID(ctx, id); err != nil {
		a.log.WithErr(err).WithLinkID(id).Warn("删除短链接设置失败")
	}
	if err := a.AccessService.LogDao.DeleteByLinkID(ctx, id); err != nil {
		a.log.WithErr(err).WithLinkID(id).Warn("删除访问记录失败")
	}
	if err := a.StatsService.StatsDao.DeleteByLinkID(ctx, id); err != nil {
		a.log.WithErr(err).WithLinkID(id).Warn("删除每日统计失败")
	}

	a.invalidateLinkCache(ctx, link.Code)
	return nil
}

// GetLink 根据ID查询短链接
func (a *App) GetLink(ctx context.Context, id int64) (*model.Link, *model.LinkSettings, error) {
	link, err := a.LinkService.FindById(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return link, a.findSettings(ctx, link.ID), nil
}

// ListLinks 分页查询短链接
func (a *App) ListLinks(ctx context.Context, pageNum, pageSize int) ([]*model.Link, int64, error) {
	if pageNum <= 0 {
		pageNum = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return a.LinkService.Dao.ListWithPage(ctx, pageNum, pageSize)
}

// trackingEnabled 服务级与链接级跟踪开关都打开才记录访问
func (a *App) trackingEnabled(settings *model.LinkSettings) bool {
	if !a.cfg.TrackingEnabled() {
		return false
	}
	return settings == nil || settings.EnableTracking
}

// lookupCountryIfBlocked 仅在链接配置了国家封禁时做同步地理位置解析
func (a *App) lookupCountryIfBlocked(ctx context.Context, settings *model.LinkSettings, ip string) string {
	if settings == nil || len(settings.BlockedCountries) == 0 {
		return ""
	}
	return a.AccessService.LookupCountry(ctx, ip)
}

// findSettings 查询链接设置，不存在返回nil
func (a *App) findSettings(ctx context.Context, linkID int64) *model.LinkSettings {
	settings, err := a.LinkService.SettingsDao.FindByLinkID(ctx, linkID)
	if err != nil {
		if !errorc.IsNotFound(err) {
			a.log.WithErr(err).WithLinkID(linkID).Warn("查询短链接设置失败")
		}
		return nil
	}
	return settings
}

// getLinkCached 带缓存的短码查询，缓存未启用时直查数据库
func (a *App) getLinkCached(ctx context.Context, code string) (*model.Link, error) {
	if base.Cache == nil {
		return a.LinkService.Dao.FindByCode(ctx, code)
	}

	var link *model.Link
	err := base.Cache.Once(&cache.Item{
		Key:   linkCacheKey(code),
		Value: &link,
		TTL:   linkCacheTTL,
		Do: func(*cache.Item) (interface{}, error) {
			return a.LinkService.Dao.FindByCode(ctx, code)
		},
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// invalidateLinkCache 清除短码缓存
func (a *App) invalidateLinkCache(ctx context.Context, code string) {
	if base.Cache == nil {
		return
	}
	if err := base.Cache.Delete(ctx, linkCacheKey(code)); err != nil && err != cache.ErrCacheMiss {
		a.log.WithErr(err).WithCode(code).Warn("清除短码缓存失败")
	}
}

func linkCacheKey(code string) string {
	return "shortlink:code:" + code
}
