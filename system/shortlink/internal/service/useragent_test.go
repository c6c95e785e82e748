package service

import (
	"testing"

	"duanlian/system/shortlink/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	testCases := []struct {
		name       string
		ua         string
		deviceType string
		browser    string
		os         string
		isBot      bool
	}{
		{
			name:       "Windows桌面Chrome",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			deviceType: model.DeviceTypeDesktop,
			browser:    "Chrome",
			os:         "Windows",
		},
		{
			name:       "iPhone Safari",
			ua:         "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			deviceType: model.DeviceTypeMobile,
			browser:    "Safari",
			os:         "iOS",
		},
		{
			name:       "iPad识别为平板",
			ua:         "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/604.1",
			deviceType: model.DeviceTypeTablet,
			browser:    "Safari",
			os:         "iOS",
		},
		{
			name:       "Android手机Chrome",
			ua:         "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Mobile Safari/537.36",
			deviceType: model.DeviceTypeMobile,
			browser:    "Chrome",
			os:         "Android",
		},
		{
			name:       "Edge马甲内核优先于Chrome",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			deviceType: model.DeviceTypeDesktop,
			browser:    "Edge",
			os:         "Windows",
		},
		{
			name:       "macOS Firefox",
			ua:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:120.0) Gecko/20100101 Firefox/120.0",
			deviceType: model.DeviceTypeDesktop,
			browser:    "Firefox",
			os:         "macOS",
		},
		{
			name:       "Googlebot短路设备检测",
			ua:         "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			deviceType: model.DeviceTypeBot,
			browser:    "Unknown",
			os:         "Unknown",
			isBot:      true,
		},
		{
			name:       "curl命令行",
			ua:         "curl/8.4.0",
			deviceType: model.DeviceTypeBot,
			browser:    "Unknown",
			os:         "Unknown",
			isBot:      true,
		},
		{
			name:       "空UA",
			ua:         "",
			deviceType: model.DeviceTypeUnknown,
			browser:    "Unknown",
			os:         "Unknown",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info := ParseUserAgent(tc.ua)
			assert.Equal(t, tc.deviceType, info.DeviceType)
			assert.Equal(t, tc.browser, info.Browser)
			assert.Equal(t, tc.os, info.OS)
			assert.Equal(t, tc.isBot, info.IsBot)
		})
	}
}
