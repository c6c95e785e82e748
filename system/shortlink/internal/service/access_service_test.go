package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"duanlian/pkg/core/logger"

	"github.com/stretchr/testify/assert"
)

func TestAccessService_ClientIP(t *testing.T) {
	svc := NewAccessService(nil, nil, nil, logger.GetLogger())

	testCases := []struct {
		name string
		meta RequestMeta
		want string
	}{
		{
			name: "XForwardedFor首项优先",
			meta: RequestMeta{ForwardedFor: "8.8.8.8, 10.0.0.1", RealIP: "9.9.9.9", RemoteIP: "1.1.1.1"},
			want: "8.8.8.8",
		},
		{
			name: "XRealIP次之",
			meta: RequestMeta{RealIP: "9.9.9.9", RemoteIP: "1.1.1.1"},
			want: "9.9.9.9",
		},
		{
			name: "远端地址兜底",
			meta: RequestMeta{RemoteIP: "1.1.1.1"},
			want: "1.1.1.1",
		},
		{
			name: "全部缺失回退占位",
			meta: RequestMeta{},
			want: "127.0.0.1",
		},
		{
			name: "XForwardedFor全是空白时跳过",
			meta: RequestMeta{ForwardedFor: " , ", RemoteIP: "1.1.1.1"},
			want: "1.1.1.1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.ClientIP(tc.meta))
		})
	}
}

func TestTruncate(t *testing.T) {
	// 未超限原样返回
	assert.Equal(t, "短链接", truncate("短链接", 100))

	// ASCII在上限处截断
	assert.Equal(t, strings.Repeat("a", 500), truncate(strings.Repeat("a", 600), 500))

	// 多字节字符回退到rune边界，结果必须是合法UTF-8
	got := truncate(strings.Repeat("中", 200), 500)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 500)
	assert.Equal(t, strings.Repeat("中", 166), got)
}
