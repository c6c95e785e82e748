package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"duanlian/base"
	"duanlian/pkg/core/config"
	errorc "duanlian/pkg/core/err"
	"duanlian/pkg/core/logger"
	"duanlian/pkg/core/start"
	"duanlian/system/shortlink/internal/dao"
	"duanlian/system/shortlink/internal/model"
	"duanlian/system/shortlink/internal/service"

	"github.com/go-redis/cache/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T) *App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Link{}, &model.LinkSettings{}, &model.AccessLog{},
		&model.DailyStats{}, &model.SystemConfig{}))

	base.DB = db
	base.Cache = nil
	base.Configures = &start.Configures{
		Config: start.Config{
			AppName: "duanlian-test",
			Shortlink: config.ShortlinkConfig{
				BaseURL: "http://localhost:8080",
			},
		},
		Logger: logger.GetLogger(),
	}

	return NewApp()
}

// enableLocalCache 启用纯本地缓存，模拟生产环境的跳转缓存路径
func enableLocalCache(t *testing.T) {
	t.Helper()
	base.Cache = cache.New(&cache.Options{
		LocalCache: cache.NewTinyLFU(1000, time.Minute),
	})
	t.Cleanup(func() { base.Cache = nil })
}

func testMeta() service.RequestMeta {
	return service.RequestMeta{
		RemoteIP:  "8.8.8.8",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Referer:   "https://news.site/a",
	}
}

func TestCreateLink_GeneratedCode(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: "https://Example.com/Landing/"})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.False(t, created.Reused)
	assert.Equal(t, "https://example.com/Landing", created.Link.OriginalURL)
	assert.True(t, a.SlugGenerator.IsValidFormat(created.Link.Code))
	assert.True(t, a.SlugGenerator.IsSafe(created.Link.Code))
	assert.Nil(t, created.Link.ExpiresAt)

	require.NotNil(t, created.Settings)
	assert.True(t, created.Settings.IsActive)
	assert.False(t, created.Settings.HasPassword())
}

func TestCreateLink_ReuseSameURL(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	first, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: "https://example.com/page"})
	require.NoError(t, err)

	// 同一资源的不同写法，规范化后命中复用
	second, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: "https://EXAMPLE.com/page"})
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, first.Link.ID, second.Link.ID)
	assert.Equal(t, first.Link.Code, second.Link.Code)
}

func TestCreateLink_CustomSlug(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/sale",
		CustomSlug:  "summerSale",
	})
	require.NoError(t, err)
	assert.Equal(t, "summerSale", created.Link.Code)

	// 短码冲突
	_, err = a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/other",
		CustomSlug:  "summerSale",
	})
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeConflict))

	// 非法自定义短码
	_, err = a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/another",
		CustomSlug:  "admin123",
	})
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeValid))
}

func TestCreateLink_RejectsUnsafeURL(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	for _, raw := range []string{"http://192.168.1.1/", "http://localhost/x", "javascript:alert(1)"} {
		_, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: raw})
		require.Error(t, err, "url %q", raw)
		assert.True(t, errorc.IsCode(err, errorc.ErrorCodeValid), "url %q", raw)
	}
}

func TestCreateLink_ExpireDays(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/temp",
		ExpireDays:  7,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Link.ExpiresAt)

	expected := time.Now().AddDate(0, 0, 7)
	assert.WithinDuration(t, expected, *created.Link.ExpiresAt, time.Minute)
}

func TestResolveLink_CountsAndRecords(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: "https://example.com/page"})
	require.NoError(t, err)

	resolved, err := a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.NoError(t, err)

	assert.Equal(t, service.ResolveStateActive, resolved.State)
	assert.Equal(t, "https://example.com/page", resolved.Link.OriginalURL)
	assert.Equal(t, 302, resolved.RedirectStatus)
	assert.Equal(t, int64(1), resolved.Link.AccessCount)

	// 计数同步落库
	stored, err := a.LinkService.FindById(ctx, created.Link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.AccessCount)

	// 访问明细与当日汇总异步落库
	require.Eventually(t, func() bool {
		logs, total, err := a.AccessService.LogDao.Query(ctx, &dao.AccessLogFilter{LinkID: created.Link.ID})
		if err != nil || total != 1 {
			return false
		}
		return logs[0].DeviceType == model.DeviceTypeDesktop && logs[0].IPAddress == "8.8.8.8"
	}, 3*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		row, err := a.StatsService.StatsDao.FindByLinkAndDate(ctx, created.Link.ID, time.Now().Format("2006-01-02"))
		return err == nil && row.TotalVisits == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestResolveLink_NotFound(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	_, err := a.ResolveLink(ctx, "nOpE42", "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsNotFound(err))

	// 未命中不产生访问记录
	_, total, err := a.AccessService.LogDao.Query(ctx, &dao.AccessLogFilter{Code: "nOpE42"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestResolveLink_Expired(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	created, err := a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/gone",
		ExpiresAt:   &past,
	})
	require.NoError(t, err)

	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeGone))

	// 过期链接的元数据仍可查询
	info, err := a.GetLinkInfo(ctx, created.Link.Code, "", testMeta())
	require.NoError(t, err)
	assert.Equal(t, service.ResolveStateExpired, info.State)
	assert.Equal(t, "https://example.com/gone", info.Link.OriginalURL)
}

func TestResolveLink_Disabled(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: "https://example.com/off"})
	require.NoError(t, err)

	require.NoError(t, a.UpdateLinkStatus(ctx, created.Link.ID, false))

	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeForbidden))
}

func TestResolveLink_Password(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/secret",
		Password:    "s3cret",
	})
	require.NoError(t, err)

	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeForbidden))

	resolved, err := a.ResolveLink(ctx, created.Link.Code, "s3cret", testMeta())
	require.NoError(t, err)
	assert.Equal(t, service.ResolveStateActive, resolved.State)
}

func TestResolveLink_MaxVisits(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	limit := int64(1)
	created, err := a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/once",
		MaxVisits:   &limit,
	})
	require.NoError(t, err)

	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.NoError(t, err)

	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeForbidden))
}

func TestResolveLink_MaxVisitsWithCache(t *testing.T) {
	a := setupTestApp(t)
	enableLocalCache(t)
	ctx := context.Background()

	limit := int64(1)
	created, err := a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/capped",
		MaxVisits:   &limit,
	})
	require.NoError(t, err)

	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.NoError(t, err)

	// 缓存里的计数副本不得绕过封顶校验
	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeForbidden))
}

func TestRunCleanup_EvictsDeletedCodes(t *testing.T) {
	a := setupTestApp(t)
	enableLocalCache(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	created, err := a.CreateLink(ctx, &CreateLinkRequest{
		OriginalURL: "https://example.com/stale",
		ExpiresAt:   &past,
	})
	require.NoError(t, err)

	// 预热缓存：过期链接返回410
	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeGone))

	report, err := a.RunCleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.DeletedLinks)
	assert.Equal(t, []string{created.Link.Code}, report.ExpiredCodes)

	// 清理删除链接后缓存同步失效，解析直接404
	_, err = a.ResolveLink(ctx, created.Link.Code, "", testMeta())
	require.Error(t, err)
	assert.True(t, errorc.IsNotFound(err))
}

func TestIsDuplicateKey(t *testing.T) {
	builder := errorc.NewErrorBuilder("LinkDao")

	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "MySQL重复键",
			err:  builder.New("数据库操作失败", errors.New("Error 1062 (23000): Duplicate entry 'aB3xK9' for key 'idx_code'")).DB(),
			want: true,
		},
		{
			name: "SQLite唯一约束",
			err:  builder.New("数据库操作失败", errors.New("UNIQUE constraint failed: shortlink_links.code")).DB(),
			want: true,
		},
		{
			name: "Postgres唯一约束",
			err:  builder.New("数据库操作失败", errors.New(`ERROR: duplicate key value violates unique constraint "idx_shortlink_links_code" (SQLSTATE 23505)`)).DB(),
			want: true,
		},
		{
			name: "gorm翻译后的重复键",
			err:  builder.New("数据库操作失败", gorm.ErrDuplicatedKey).DB(),
			want: true,
		},
		{
			name: "普通数据库错误",
			err:  builder.New("数据库操作失败", errors.New("dial tcp: connection refused")).DB(),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isDuplicateKey(tc.err))
		})
	}
}

func TestUpdateLink(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: "https://example.com/u"})
	require.NoError(t, err)

	newPassword := "changed"
	require.NoError(t, a.UpdateLink(ctx, created.Link.ID, &UpdateLinkRequest{
		Comment:      "促销活动",
		Password:     &newPassword,
		RedirectType: 301,
	}))

	link, settings, err := a.GetLink(ctx, created.Link.ID)
	require.NoError(t, err)
	assert.Equal(t, "促销活动", link.Comment)
	require.NotNil(t, settings)
	assert.True(t, settings.HasPassword())
	assert.Equal(t, 301, settings.RedirectType)
}

func TestDeleteLink_RemovesChildren(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	created, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: "https://example.com/d"})
	require.NoError(t, err)

	// 产生一条访问与汇总
	require.NoError(t, a.AccessService.Record(ctx, created.Link, created.Settings, testMeta(), 0))

	require.NoError(t, a.DeleteLink(ctx, created.Link.ID))

	_, _, err = a.GetLink(ctx, created.Link.ID)
	require.Error(t, err)
	assert.True(t, errorc.IsNotFound(err))

	_, total, err := a.AccessService.LogDao.Query(ctx, &dao.AccessLogFilter{LinkID: created.Link.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestListLinks(t *testing.T) {
	a := setupTestApp(t)
	ctx := context.Background()

	for _, u := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
		_, err := a.CreateLink(ctx, &CreateLinkRequest{OriginalURL: u})
		require.NoError(t, err)
	}

	links, total, err := a.ListLinks(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, links, 2)
}
