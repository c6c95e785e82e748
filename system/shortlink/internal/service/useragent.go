package service

import (
	"strings"

	"duanlian/system/shortlink/internal/model"
)

// UAInfo User-Agent 解析结果
type UAInfo struct {
	DeviceType string `json:"deviceType"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	IsBot      bool   `json:"isBot"`
}

// uaRule 有序匹配规则：命中任意关键字即返回对应结果
type uaRule struct {
	keywords []string
	result   string
}

// 爬虫特征，优先匹配并短路后续检测
var botKeywords = []string{
	"bot", "spider", "crawler", "crawl", "slurp", "curl", "wget",
	"python-requests", "httpclient", "headless", "facebookexternalhit",
}

// 设备规则按序匹配，平板特征须先于移动端检查
var deviceRules = []uaRule{
	{[]string{"ipad", "tablet", "kindle", "playbook", "silk"}, model.DeviceTypeTablet},
	{[]string{"mobile", "iphone", "ipod", "windows phone", "android"}, model.DeviceTypeMobile},
	{[]string{"windows nt", "macintosh", "x11", "cros", "linux"}, model.DeviceTypeDesktop},
}

// 浏览器规则，马甲内核（Edge/Opera带chrome标识，Chrome带safari标识）须先于宿主检查
var browserRules = []uaRule{
	{[]string{"edg/", "edge/"}, "Edge"},
	{[]string{"opr/", "opera"}, "Opera"},
	{[]string{"chrome/", "crios/"}, "Chrome"},
	{[]string{"firefox/", "fxios/"}, "Firefox"},
	{[]string{"safari/"}, "Safari"},
	{[]string{"msie", "trident/"}, "IE"},
}

// 操作系统规则，iOS的UA含"like Mac OS X"，须先于macOS检查
var osRules = []uaRule{
	{[]string{"windows phone"}, "Windows Phone"},
	{[]string{"windows nt"}, "Windows"},
	{[]string{"iphone", "ipad", "ipod"}, "iOS"},
	{[]string{"mac os x", "macintosh"}, "macOS"},
	{[]string{"android"}, "Android"},
	{[]string{"cros"}, "ChromeOS"},
	{[]string{"linux", "x11"}, "Linux"},
}

// ParseUserAgent 解析User-Agent字符串，首个命中的规则生效
func ParseUserAgent(ua string) UAInfo {
	info := UAInfo{
		DeviceType: model.DeviceTypeUnknown,
		Browser:    "Unknown",
		OS:         "Unknown",
	}
	if ua == "" {
		return info
	}

	lower := strings.ToLower(ua)

	for _, keyword := range botKeywords {
		if strings.Contains(lower, keyword) {
			info.IsBot = true
			info.DeviceType = model.DeviceTypeBot
			return info
		}
	}

	if result, ok := matchRules(lower, deviceRules); ok {
		info.DeviceType = result
	}
	if result, ok := matchRules(lower, browserRules); ok {
		info.Browser = result
	}
	if result, ok := matchRules(lower, osRules); ok {
		info.OS = result
	}

	return info
}

func matchRules(lowerUA string, rules []uaRule) (string, bool) {
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowerUA, keyword) {
				return rule.result, true
			}
		}
	}
	return "", false
}
