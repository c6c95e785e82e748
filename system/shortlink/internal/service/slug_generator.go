package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	errorc "duanlian/pkg/core/err"
)

// SlugConfig 短码生成配置
type SlugConfig struct {
	// Length 目标长度
	Length int
	// MinLength / MaxLength 长度边界
	MinLength int
	MaxLength int
	// MaxRetries 最大尝试次数（格式/安全拒绝与冲突都计入）
	MaxRetries int
	// Charset 候选字符集
	Charset string
	// ExcludedChars 需要剔除的字符
	ExcludedChars string
}

// DefaultSlugConfig 默认配置
func DefaultSlugConfig() SlugConfig {
	return SlugConfig{
		Length:     6,
		MinLength:  4,
		MaxLength:  16,
		MaxRetries: 10,
		Charset:    Base62Alphabet,
	}
}

// SlugResult 生成结果
type SlugResult struct {
	Slug     string `json:"slug"`
	Attempts int    `json:"attempts"`
}

// ExistsFunc 短码存在性检查，由调用方提供
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// 保留词，出现在短码中即视为不安全
var reservedWords = []string{
	"admin", "api", "www", "app", "auth", "login", "logout", "register",
	"static", "assets", "health", "dashboard", "system", "root",
	"short", "link", "stats", "fuck", "shit",
}

// SlugGenerator 短码生成器
type SlugGenerator struct {
	cfg     SlugConfig
	charset string
	err     *errorc.ErrorBuilder
}

// NewSlugGenerator 创建短码生成器，非法配置回退到默认值
func NewSlugGenerator(cfg SlugConfig) *SlugGenerator {
	def := DefaultSlugConfig()
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = def.MaxLength
	}
	if cfg.MaxLength < cfg.MinLength {
		cfg.MaxLength = cfg.MinLength
	}
	if cfg.Length <= 0 {
		cfg.Length = def.Length
	}
	if cfg.Length < cfg.MinLength {
		cfg.Length = cfg.MinLength
	}
	if cfg.Length > cfg.MaxLength {
		cfg.Length = cfg.MaxLength
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Charset == "" {
		cfg.Charset = def.Charset
	}

	charset := cfg.Charset
	for _, c := range cfg.ExcludedChars {
		charset = strings.ReplaceAll(charset, string(c), "")
	}

	return &SlugGenerator{
		cfg:     cfg,
		charset: charset,
		err:     errorc.NewErrorBuilder("SlugGenerator"),
	}
}

// Config 返回生效的配置
func (g *SlugGenerator) Config() SlugConfig {
	return g.cfg
}

// Generate 生成唯一短码。前3次尝试从高精度时间戳派生候选（突发创建下冲突概率低），
// 之后逐位均匀随机。冲突次数超过重试预算一半时，目标长度加一（上限 MaxLength）。
func (g *SlugGenerator) Generate(ctx context.Context, exists ExistsFunc) (*SlugResult, error) {
	length := g.cfg.Length

	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		var candidate string
		var err error
		if attempt <= 3 {
			candidate, err = g.timeCandidate(length)
		} else {
			candidate, err = g.randomCandidate(length)
		}
		if err != nil {
			return nil, g.err.New("生成候选短码失败", err)
		}

		if !g.IsValidFormat(candidate) || !g.IsSafe(candidate) {
			continue
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !taken {
			return &SlugResult{Slug: candidate, Attempts: attempt}, nil
		}

		// 冲突：后半程尝试提升长度以降低冲突概率
		if attempt > g.cfg.MaxRetries/2 && length < g.cfg.MaxLength {
			length++
		}
	}

	return nil, g.err.New(fmt.Sprintf("生成短码失败：超过最大重试次数%d", g.cfg.MaxRetries), nil).Unavailable()
}

// timeCandidate 基于当前纳秒时间戳的候选：编码后附加随机后缀，
// 不足目标长度随机补齐，超出则从左截断
func (g *SlugGenerator) timeCandidate(length int) (string, error) {
	suffix, err := g.randomChars(2)
	if err != nil {
		return "", err
	}
	candidate := EncodeBase62(time.Now().UnixNano()) + suffix

	if len(candidate) < length {
		pad, err := g.randomChars(length - len(candidate))
		if err != nil {
			return "", err
		}
		candidate += pad
	}
	if len(candidate) > length {
		candidate = candidate[len(candidate)-length:]
	}
	return candidate, nil
}

// randomCandidate 逐位均匀随机的候选
func (g *SlugGenerator) randomCandidate(length int) (string, error) {
	return g.randomChars(length)
}

func (g *SlugGenerator) randomChars(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	result := make([]byte, n)
	max := big.NewInt(int64(len(g.charset)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = g.charset[idx.Int64()]
	}
	return string(result), nil
}

// IsValidFormat 格式校验：长度在边界内，所有字符都来自字符集，不含排除字符
func (g *SlugGenerator) IsValidFormat(slug string) bool {
	if len(slug) < g.cfg.MinLength || len(slug) > g.cfg.MaxLength {
		return false
	}
	for i := 0; i < len(slug); i++ {
		if strings.IndexByte(g.charset, slug[i]) < 0 {
			return false
		}
		if g.cfg.ExcludedChars != "" && strings.IndexByte(g.cfg.ExcludedChars, slug[i]) >= 0 {
			return false
		}
	}
	return true
}

// IsSafe 安全校验：拒绝纯数字（避免与内部数字ID混淆）、含保留词、
// 以及易混淆的同类字符组合（全0/O、全1/l/I）
func (g *SlugGenerator) IsSafe(slug string) bool {
	if slug == "" {
		return false
	}

	if isAllDigits(slug) {
		return false
	}

	lower := strings.ToLower(slug)
	for _, word := range reservedWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	if isAllInClass(slug, "0O") || isAllInClass(slug, "1lI") {
		return false
	}

	return true
}

// ValidateCustomSlug 校验自定义短码：去除首尾空白后执行格式与安全校验，
// 返回规范化短码与逐项错误信息
func (g *SlugGenerator) ValidateCustomSlug(slug string) (string, []string) {
	trimmed := strings.TrimSpace(slug)
	var errs []string

	if trimmed == "" {
		return trimmed, []string{"短码不能为空"}
	}

	if len(trimmed) < g.cfg.MinLength || len(trimmed) > g.cfg.MaxLength {
		errs = append(errs, fmt.Sprintf("短码长度必须在%d到%d之间", g.cfg.MinLength, g.cfg.MaxLength))
	}

	for i := 0; i < len(trimmed); i++ {
		if strings.IndexByte(g.charset, trimmed[i]) < 0 {
			errs = append(errs, "短码只能包含字母和数字")
			break
		}
	}

	if isAllDigits(trimmed) {
		errs = append(errs, "短码不能为纯数字")
	}

	lower := strings.ToLower(trimmed)
	for _, word := range reservedWords {
		if strings.Contains(lower, word) {
			errs = append(errs, fmt.Sprintf("短码不能包含保留词%q", word))
			break
		}
	}

	if isAllInClass(trimmed, "0O") || isAllInClass(trimmed, "1lI") {
		errs = append(errs, "短码不能全部由易混淆字符组成")
	}

	return trimmed, errs
}

// GenerateSuggestions 基于给定前缀生成指定数量的可用候选：
// 先数字后缀变体，再随机后缀变体，最后纯随机兜底，保证数量与唯一性
func (g *SlugGenerator) GenerateSuggestions(base string, count int) []string {
	if count <= 0 {
		return nil
	}

	base = strings.TrimSpace(base)
	seen := make(map[string]bool, count)
	suggestions := make([]string, 0, count)

	add := func(candidate string) {
		if len(suggestions) >= count {
			return
		}
		if candidate == "" || seen[candidate] {
			return
		}
		if !g.IsValidFormat(candidate) || !g.IsSafe(candidate) {
			return
		}
		seen[candidate] = true
		suggestions = append(suggestions, candidate)
	}

	if base != "" {
		// 数字后缀变体
		for i := 1; i <= 9 && len(suggestions) < count; i++ {
			add(g.fitToMax(fmt.Sprintf("%s%d", base, i)))
		}
		// 随机后缀变体
		for i := 0; i < count*3 && len(suggestions) < count; i++ {
			suffix, err := g.randomChars(2)
			if err != nil {
				break
			}
			add(g.fitToMax(base + suffix))
		}
	}

	// 纯随机兜底
	for i := 0; i < count*20 && len(suggestions) < count; i++ {
		candidate, err := g.randomChars(g.cfg.Length)
		if err != nil {
			break
		}
		add(candidate)
	}

	return suggestions
}

// fitToMax 超过最大长度时从左截断
func (g *SlugGenerator) fitToMax(s string) string {
	if len(s) > g.cfg.MaxLength {
		return s[len(s)-g.cfg.MaxLength:]
	}
	return s
}

// PossibleCombinations 指定长度下的候选空间大小
func (g *SlugGenerator) PossibleCombinations(length int) float64 {
	return math.Pow(float64(len(g.charset)), float64(length))
}

// CollisionProbability 生日悖论近似的冲突概率估计，结果仅供参考
func (g *SlugGenerator) CollisionProbability(existingCount int64, length int) float64 {
	if existingCount <= 1 {
		return 0
	}
	total := g.PossibleCombinations(length)
	k := float64(existingCount)
	if k >= total {
		return 1
	}
	return 1 - math.Exp(-k*(k-1)/(2*total))
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isAllInClass(s, class string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(class, s[i]) < 0 {
			return false
		}
	}
	return len(s) > 0
}
