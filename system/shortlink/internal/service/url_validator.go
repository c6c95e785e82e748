package service

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ValidatorConfig URL校验配置
type ValidatorConfig struct {
	// AllowedSchemes 允许的协议
	AllowedSchemes []string
	// MaxLength URL最大长度
	MaxLength int
	// CheckSafety 是否执行内网/SSRF防护检查
	CheckSafety bool
}

// DefaultValidatorConfig 默认配置
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		AllowedSchemes: []string{"http", "https", "ftp", "ftps"},
		MaxLength:      2048,
		CheckSafety:    true,
	}
}

// ValidateOptions 单次校验选项
type ValidateOptions struct {
	// SkipNormalize 跳过规范化，按原样校验
	SkipNormalize bool
	// AllowUnsafe 允许内网目标（管理员覆盖）
	AllowUnsafe bool
}

// ValidationResult 校验结果
type ValidationResult struct {
	IsValid       bool     `json:"isValid"`
	NormalizedURL string   `json:"normalizedUrl"`
	Errors        []string `json:"errors"`
}

// 管理端口与数据库端口，禁止作为跳转目标
var blockedPorts = map[int]bool{
	22: true, 23: true, 25: true, 53: true, 110: true, 143: true,
	993: true, 995: true, 1433: true, 3306: true, 5432: true, 6379: true,
}

var defaultSchemePorts = map[string]int{
	"http":  80,
	"https": 443,
	"ftp":   21,
	"ftps":  990,
}

// URLValidator 跳转目标校验与规范化
type URLValidator struct {
	cfg ValidatorConfig
}

// NewURLValidator 创建URL校验器，零值配置回退到默认值
func NewURLValidator(cfg ValidatorConfig) *URLValidator {
	def := DefaultValidatorConfig()
	if len(cfg.AllowedSchemes) == 0 {
		cfg.AllowedSchemes = def.AllowedSchemes
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = def.MaxLength
	}
	return &URLValidator{cfg: cfg}
}

// Validate 综合校验入口，返回是否合法、规范化结果与逐项错误
func (v *URLValidator) Validate(raw string, opts *ValidateOptions) ValidationResult {
	if opts == nil {
		opts = &ValidateOptions{}
	}

	result := ValidationResult{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		result.Errors = append(result.Errors, "URL不能为空")
		return result
	}
	if len(raw) > v.cfg.MaxLength {
		result.Errors = append(result.Errors, fmt.Sprintf("URL长度不能超过%d", v.cfg.MaxLength))
		return result
	}

	candidate := raw
	if !opts.SkipNormalize {
		normalized, err := v.Normalize(raw)
		if err != nil {
			result.Errors = append(result.Errors, "URL格式不合法")
			return result
		}
		candidate = normalized
	}

	u, err := url.Parse(candidate)
	if err != nil {
		result.Errors = append(result.Errors, "URL格式不合法")
		return result
	}

	if !v.isAllowedScheme(u.Scheme) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("协议必须是[%s]中的一个", strings.Join(v.cfg.AllowedSchemes, ", ")))
	}
	if u.Hostname() == "" {
		result.Errors = append(result.Errors, "URL缺少主机名")
	}

	if v.cfg.CheckSafety && !opts.AllowUnsafe {
		result.Errors = append(result.Errors, v.safetyErrors(u)...)
	}

	if len(result.Errors) == 0 {
		result.IsValid = true
		result.NormalizedURL = candidate
	}
	return result
}

// Normalize 规范化URL：裸域名补https前缀、主机名小写、去默认端口、
// 折叠末尾斜杠、空路径补"/"。满足幂等性。
func (v *URLValidator) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("空URL无法规范化")
	}

	if !strings.Contains(raw, "://") && looksLikeBareDomain(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	hostname := strings.ToLower(u.Hostname())
	port := u.Port()
	if defaultPort, ok := defaultSchemePorts[u.Scheme]; ok && port == strconv.Itoa(defaultPort) {
		port = ""
	}
	if port != "" {
		u.Host = hostname + ":" + port
	} else {
		u.Host = hostname
	}

	if u.Path == "" {
		u.Path = "/"
	} else if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}
	}

	return u.String(), nil
}

// IsSameResource 判断两个URL是否指向同一资源：规范化后比较
// 协议+主机+端口+路径，忽略查询串和片段
func (v *URLValidator) IsSameResource(a, b string) bool {
	na, err := v.Normalize(a)
	if err != nil {
		return false
	}
	nb, err := v.Normalize(b)
	if err != nil {
		return false
	}

	ua, err := url.Parse(na)
	if err != nil {
		return false
	}
	ub, err := url.Parse(nb)
	if err != nil {
		return false
	}

	return ua.Scheme == ub.Scheme &&
		ua.Hostname() == ub.Hostname() &&
		effectivePort(ua) == effectivePort(ub) &&
		ua.Path == ub.Path
}

func (v *URLValidator) isAllowedScheme(scheme string) bool {
	for _, s := range v.cfg.AllowedSchemes {
		if s == scheme {
			return true
		}
	}
	return false
}

// safetyErrors 内网/SSRF防护检查
func (v *URLValidator) safetyErrors(u *url.URL) []string {
	var errs []string

	if u.User != nil {
		errs = append(errs, "URL不允许包含用户信息")
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "localhost" || hostname == "0.0.0.0" {
		errs = append(errs, "不允许指向本机地址")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		switch {
		case ip.IsLoopback():
			errs = append(errs, "不允许指向回环地址")
		case ip.IsUnspecified():
			errs = append(errs, "不允许指向未指定地址")
		case ip.IsPrivate():
			errs = append(errs, "不允许指向内网地址")
		case ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast():
			errs = append(errs, "不允许指向链路本地地址")
		case ip.IsMulticast():
			errs = append(errs, "不允许指向组播地址")
		case isUniqueLocal(ip):
			errs = append(errs, "不允许指向唯一本地地址")
		case isReservedV4(ip):
			errs = append(errs, "不允许指向保留地址段")
		}
	}

	if port := u.Port(); port != "" {
		if p, err := strconv.Atoi(port); err == nil && blockedPorts[p] {
			errs = append(errs, fmt.Sprintf("不允许指向端口%d", p))
		}
	}

	return errs
}

// effectivePort 显式端口，缺省时取协议默认端口
func effectivePort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	if defaultPort, ok := defaultSchemePorts[u.Scheme]; ok {
		return strconv.Itoa(defaultPort)
	}
	return ""
}

// looksLikeBareDomain 无协议字符串是否像裸域名
func looksLikeBareDomain(raw string) bool {
	hostPart := raw
	if idx := strings.IndexAny(hostPart, "/?#"); idx >= 0 {
		hostPart = hostPart[:idx]
	}
	return strings.Contains(hostPart, ".") || strings.EqualFold(hostPart, "localhost")
}

// isUniqueLocal IPv6唯一本地地址 fc00::/7
func isUniqueLocal(ip net.IP) bool {
	if ip.To4() != nil {
		return false
	}
	v6 := ip.To16()
	return v6 != nil && v6[0]&0xfe == 0xfc
}

// isReservedV4 IPv4首段0、255或组播段224-239
func isReservedV4(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	first := v4[0]
	return first == 0 || first == 255 || (first >= 224 && first <= 239)
}
