package service

import (
	"testing"
	"time"

	"duanlian/pkg/core/config"
	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/system/shortlink/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestLinkService_ValidateAccess(t *testing.T) {
	svc := NewLinkService(nil, nil, config.ShortlinkConfig{}, logger.GetLogger())

	maxVisits := int64(5)
	passwordHash := svc.HashPassword("s3cret")

	testCases := []struct {
		name      string
		link      *model.Link
		settings  *model.LinkSettings
		password  string
		ip        string
		referer   string
		country   string
		forbidden bool
	}{
		{
			name: "无设置直接放行",
			link: &model.Link{},
		},
		{
			name:      "链接已禁用",
			link:      &model.Link{},
			settings:  &model.LinkSettings{IsActive: false},
			forbidden: true,
		},
		{
			name:      "访问次数已达上限",
			link:      &model.Link{AccessCount: 5},
			settings:  &model.LinkSettings{IsActive: true, MaxVisits: &maxVisits},
			forbidden: true,
		},
		{
			name:     "访问次数未达上限",
			link:     &model.Link{AccessCount: 4},
			settings: &model.LinkSettings{IsActive: true, MaxVisits: &maxVisits},
		},
		{
			name:      "密码错误",
			link:      &model.Link{},
			settings:  &model.LinkSettings{IsActive: true, PasswordHash: passwordHash},
			password:  "wrong",
			forbidden: true,
		},
		{
			name:     "密码正确",
			link:     &model.Link{},
			settings: &model.LinkSettings{IsActive: true, PasswordHash: passwordHash},
			password: "s3cret",
		},
		{
			name:      "IP被禁止",
			link:      &model.Link{},
			settings:  &model.LinkSettings{IsActive: true, BlockedIPs: model.StringList{"1.2.3.4"}},
			ip:        "1.2.3.4",
			forbidden: true,
		},
		{
			name:      "来源被禁止",
			link:      &model.Link{},
			settings:  &model.LinkSettings{IsActive: true, BlockedReferrers: model.StringList{"bad.site"}},
			referer:   "https://bad.site/page",
			forbidden: true,
		},
		{
			name:      "来源不在允许列表",
			link:      &model.Link{},
			settings:  &model.LinkSettings{IsActive: true, AllowedReferrers: model.StringList{"ok.site"}},
			referer:   "https://other.site/page",
			forbidden: true,
		},
		{
			name:     "来源在允许列表",
			link:     &model.Link{},
			settings: &model.LinkSettings{IsActive: true, AllowedReferrers: model.StringList{"ok.site"}},
			referer:  "https://ok.site/page",
		},
		{
			name:      "国家被禁止",
			link:      &model.Link{},
			settings:  &model.LinkSettings{IsActive: true, BlockedCountries: model.StringList{"KP"}},
			country:   "KP",
			forbidden: true,
		},
		{
			name:     "国家未知不参与封禁判断",
			link:     &model.Link{},
			settings: &model.LinkSettings{IsActive: true, BlockedCountries: model.StringList{"KP"}},
			country:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ValidateAccess(tc.link, tc.settings, tc.password, tc.ip, tc.referer, tc.country)
			if tc.forbidden {
				assert.True(t, errorc.IsCode(err, errorc.ErrorCodeForbidden), "err=%v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLinkService_ComputeExpiry(t *testing.T) {
	svc := NewLinkService(nil, nil, config.ShortlinkConfig{}, logger.GetLogger())

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	explicit := time.Date(2026, 12, 31, 0, 0, 0, 0, time.Local)

	// 显式时间优先于天数
	got := svc.ComputeExpiry(&explicit, 7, now)
	assert.Equal(t, explicit, *got)

	// 天数从当前时间起算
	got = svc.ComputeExpiry(nil, 7, now)
	assert.Equal(t, now.AddDate(0, 0, 7), *got)

	// 默认天数为0表示永不过期
	assert.Nil(t, svc.ComputeExpiry(nil, 0, now))
}
