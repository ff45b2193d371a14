package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap 用于处理数据库中的 JSON 字段 (GORM 兼容)，
// 承载 Project.Config、视频提示词等无固定结构的数据
type JSONMap map[string]interface{}

// Value 实现 Gorm 的 Valuer 接口（写入数据库）
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan 实现 Gorm 的 Scanner 接口（读取数据库）
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("JSONMap: 不支持的数据库类型")
		}
	}
	return json.Unmarshal(bytes, j)
}

// Clone 深拷贝（经由 JSON 往返，Config 等字段本身就是 JSON 来源）
func (j JSONMap) Clone() JSONMap {
	if j == nil {
		return nil
	}
	raw, err := json.Marshal(j)
	if err != nil {
		return JSONMap{}
	}
	out := make(JSONMap, len(j))
	_ = json.Unmarshal(raw, &out)
	return out
}
