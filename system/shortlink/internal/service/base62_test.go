package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBase62(t *testing.T) {
	testCases := []struct {
		n    int64
		want string
	}{
		{0, "a"},
		{1, "b"},
		{25, "z"},
		{26, "A"},
		{51, "Z"},
		{52, "0"},
		{61, "9"},
		{62, "ba"},
		{3843, "99"},
		{-1, ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, EncodeBase62(tc.n), "EncodeBase62(%d)", tc.n)
	}
}

func TestDecodeBase62_RoundTrip(t *testing.T) {
	values := []int64{0, 1, 61, 62, 63, 3844, 1_000_000, 1_000_000_000_000}

	for _, n := range values {
		encoded := EncodeBase62(n)
		decoded, err := DecodeBase62(encoded)
		require.NoError(t, err)
		assert.Equal(t, n, decoded, "round trip %d", n)
	}
}

func TestDecodeBase62_InvalidInput(t *testing.T) {
	testCases := []string{"", "abc-", "中文", "a b"}

	for _, input := range testCases {
		_, err := DecodeBase62(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, ErrInvalidCharacter))
	}
}

// 字母表顺序是编码兼容性的一部分，任何调整都会破坏既有短码
func TestBase62Alphabet_Order(t *testing.T) {
	require.Len(t, Base62Alphabet, 62)
	assert.Equal(t, byte('a'), Base62Alphabet[0])
	assert.Equal(t, byte('z'), Base62Alphabet[25])
	assert.Equal(t, byte('A'), Base62Alphabet[26])
	assert.Equal(t, byte('Z'), Base62Alphabet[51])
	assert.Equal(t, byte('0'), Base62Alphabet[52])
	assert.Equal(t, byte('9'), Base62Alphabet[61])
}
