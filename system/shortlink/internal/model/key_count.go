package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// KeyCount 统计榜单条目
type KeyCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// KeyCountList 榜单列表，数据库边界序列化为JSON文本，领域层只操作类型化结构
type KeyCountList []KeyCount

// Scan 实现 sql.Scanner 接口
func (l *KeyCountList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal KeyCountList value:", value))
	}

	if len(bytes) == 0 {
		*l = nil
		return nil
	}

	var result []KeyCount
	err := json.Unmarshal(bytes, &result)
	*l = result
	return err
}

// Value 实现 driver.Valuer 接口
func (l KeyCountList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}
