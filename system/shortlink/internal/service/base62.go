package service

import (
	"errors"
	"fmt"
	"strings"
)

// Base62Alphabet 编码字母表，顺序固定：小写、大写、数字
const Base62Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrInvalidCharacter 输入包含字母表之外的字符
var ErrInvalidCharacter = errors.New("字符不在Base62字母表内")

// EncodeBase62 将非负整数编码为Base62字符串，0 编码为字母表首字符
func EncodeBase62(n int64) string {
	if n < 0 {
		return ""
	}
	if n == 0 {
		return string(Base62Alphabet[0])
	}

	base := int64(len(Base62Alphabet))
	buf := make([]byte, 0, 11)
	for n > 0 {
		buf = append(buf, Base62Alphabet[n%base])
		n /= base
	}

	// 反转
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// DecodeBase62 将Base62字符串解码为整数，与 EncodeBase62 严格互逆
func DecodeBase62(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("输入为空: %w", ErrInvalidCharacter)
	}

	base := int64(len(Base62Alphabet))
	var n int64
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(Base62Alphabet, s[i])
		if idx < 0 {
			return 0, fmt.Errorf("位置%d的字符%q: %w", i, s[i], ErrInvalidCharacter)
		}
		n = n*base + int64(idx)
	}
	return n, nil
}
