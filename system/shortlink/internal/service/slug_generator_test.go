package service

import (
	"context"
	"testing"

	errorc "duanlian/pkg/core/err"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverExists(context.Context, string) (bool, error) {
	return false, nil
}

func alwaysExists(context.Context, string) (bool, error) {
	return true, nil
}

func TestSlugGenerator_Generate(t *testing.T) {
	g := NewSlugGenerator(DefaultSlugConfig())

	for i := 0; i < 50; i++ {
		result, err := g.Generate(context.Background(), neverExists)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.GreaterOrEqual(t, len(result.Slug), 4)
		assert.LessOrEqual(t, len(result.Slug), 16)
		assert.True(t, g.IsValidFormat(result.Slug), "slug %q", result.Slug)
		assert.True(t, g.IsSafe(result.Slug), "slug %q", result.Slug)
		assert.GreaterOrEqual(t, result.Attempts, 1)
	}
}

func TestSlugGenerator_Generate_Exhausted(t *testing.T) {
	g := NewSlugGenerator(DefaultSlugConfig())

	result, err := g.Generate(context.Background(), alwaysExists)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestSlugGenerator_Generate_EscalatesLength(t *testing.T) {
	// 字符集只含不构成保留词、非数字、非易混淆的字符，保证每个随机候选都进入存在性检查
	g := NewSlugGenerator(SlugConfig{
		Length:     6,
		MinLength:  4,
		MaxLength:  9,
		MaxRetries: 10,
		Charset:    "BCDF",
	})

	var lengths []int
	allTaken := func(_ context.Context, slug string) (bool, error) {
		lengths = append(lengths, len(slug))
		return true, nil
	}

	result, err := g.Generate(context.Background(), allTaken)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errorc.IsCode(err, errorc.ErrorCodeUnavailable))

	// 预算前半程保持目标长度，后半程冲突后逐次加一并封顶在最大长度
	require.NotEmpty(t, lengths)
	assert.Equal(t, 6, lengths[0])
	for i := 1; i < len(lengths); i++ {
		assert.GreaterOrEqual(t, lengths[i], lengths[i-1], "attempt %d", i+1)
	}
	assert.Contains(t, lengths, 7)
	assert.Contains(t, lengths, 8)
	assert.Equal(t, 9, lengths[len(lengths)-1])
}

func TestSlugGenerator_IsSafe(t *testing.T) {
	g := NewSlugGenerator(DefaultSlugConfig())

	testCases := []struct {
		slug string
		want bool
	}{
		{"myLink1", false}, // 包含保留词link
		{"admin123", false},
		{"123456", false}, // 纯数字
		{"0O0O", false},   // 全部易混淆字符
		{"1lI1", false},
		{"promo7", true},
		{"xK3f9a", true},
		{"", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, g.IsSafe(tc.slug), "IsSafe(%q)", tc.slug)
	}
}

func TestSlugGenerator_ValidateCustomSlug(t *testing.T) {
	g := NewSlugGenerator(DefaultSlugConfig())

	t.Run("合法短码去除首尾空白", func(t *testing.T) {
		normalized, errs := g.ValidateCustomSlug("  promo2024  ")
		assert.Equal(t, "promo2024", normalized)
		assert.Empty(t, errs)
	})

	t.Run("空短码", func(t *testing.T) {
		_, errs := g.ValidateCustomSlug("   ")
		require.Len(t, errs, 1)
	})

	t.Run("长度越界", func(t *testing.T) {
		_, errs := g.ValidateCustomSlug("ab")
		assert.NotEmpty(t, errs)

		_, errs = g.ValidateCustomSlug("abcdefghijklmnopq")
		assert.NotEmpty(t, errs)
	})

	t.Run("非法字符", func(t *testing.T) {
		_, errs := g.ValidateCustomSlug("abc_def")
		assert.NotEmpty(t, errs)
	})

	t.Run("保留词", func(t *testing.T) {
		_, errs := g.ValidateCustomSlug("admin123")
		assert.NotEmpty(t, errs)
	})

	t.Run("纯数字", func(t *testing.T) {
		_, errs := g.ValidateCustomSlug("123456")
		assert.NotEmpty(t, errs)
	})
}

func TestSlugGenerator_GenerateSuggestions(t *testing.T) {
	g := NewSlugGenerator(DefaultSlugConfig())

	suggestions := g.GenerateSuggestions("promo", 5)
	require.Len(t, suggestions, 5)

	seen := make(map[string]bool)
	for _, s := range suggestions {
		assert.True(t, g.IsValidFormat(s), "suggestion %q", s)
		assert.True(t, g.IsSafe(s), "suggestion %q", s)
		assert.False(t, seen[s], "duplicated suggestion %q", s)
		seen[s] = true
	}

	// 无基准时走纯随机兜底
	suggestions = g.GenerateSuggestions("", 3)
	assert.Len(t, suggestions, 3)

	assert.Nil(t, g.GenerateSuggestions("promo", 0))
}

func TestSlugGenerator_CollisionProbability(t *testing.T) {
	g := NewSlugGenerator(DefaultSlugConfig())

	assert.Equal(t, float64(0), g.CollisionProbability(0, 6))
	assert.Equal(t, float64(0), g.CollisionProbability(1, 6))
	assert.Equal(t, float64(1), g.CollisionProbability(100, 1))

	p := g.CollisionProbability(10_000, 6)
	assert.Greater(t, p, float64(0))
	assert.Less(t, p, float64(1))

	assert.Equal(t, float64(3844), g.PossibleCombinations(2))
}

func TestNewSlugGenerator_ConfigClamp(t *testing.T) {
	g := NewSlugGenerator(SlugConfig{Length: 100, MinLength: 4, MaxLength: 8})
	assert.Equal(t, 8, g.Config().Length)

	g = NewSlugGenerator(SlugConfig{Length: 2, MinLength: 4, MaxLength: 8})
	assert.Equal(t, 4, g.Config().Length)

	// 排除字符从字符集中剔除
	g = NewSlugGenerator(SlugConfig{ExcludedChars: "0O1lI"})
	assert.False(t, g.IsValidFormat("ab0c"))
	assert.True(t, g.IsValidFormat("abcd"))
}
