package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	testCases := []struct {
		input      string
		defaultVal int
		want       int
	}{
		{"42", 0, 42},
		{"-7", 0, -7},
		{"", 20, 20},
		{"abc", 10, 10},
		{"3.14", 5, 5},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseInt(tc.input, tc.defaultVal), "ParseInt(%q, %d)", tc.input, tc.defaultVal)
	}
}

func TestParseInt64(t *testing.T) {
	testCases := []struct {
		input      string
		defaultVal int64
		want       int64
	}{
		{"9223372036854775807", 0, 9223372036854775807},
		{"1756300000", 0, 1756300000},
		{"", 5, 5},
		{"not-a-number", -1, -1},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseInt64(tc.input, tc.defaultVal), "ParseInt64(%q, %d)", tc.input, tc.defaultVal)
	}
}
