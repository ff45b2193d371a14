package models

import (
	"fmt"
	"strconv"
)

// 参数类型标签
const (
	ParamText     = "text"
	ParamNumber   = "number"
	ParamDropdown = "dropdown"
)

// Parameter 挂在视频全局配置（stage1）或单个分镜上的生成参数。
// Value 按 Type 解释；Options 仅 dropdown 类型有意义
type Parameter struct {
	Key     string   `json:"key"`
	Type    string   `json:"type"`
	Value   string   `json:"value"`
	Options []string `json:"options,omitempty"`
}

// NewParameter 新增参数的默认值
func NewParameter() Parameter {
	return Parameter{Key: "newParam", Type: ParamText, Value: ""}
}

func TextParam(key, value string) Parameter {
	return Parameter{Key: key, Type: ParamText, Value: value}
}

func NumberParam(key string, value float64) Parameter {
	return Parameter{Key: key, Type: ParamNumber, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}

func DropdownParam(key, value string, options []string) Parameter {
	return Parameter{Key: key, Type: ParamDropdown, Value: value, Options: options}
}

// Validate 校验类型标签与取值的一致性
func (p Parameter) Validate() error {
	switch p.Type {
	case ParamText:
		return nil
	case ParamNumber:
		if p.Value == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(p.Value, 64); err != nil {
			return fmt.Errorf("参数 %q 不是合法数字: %q", p.Key, p.Value)
		}
		return nil
	case ParamDropdown:
		if p.Value == "" {
			return nil
		}
		for _, o := range p.Options {
			if o == p.Value {
				return nil
			}
		}
		return fmt.Errorf("参数 %q 的取值 %q 不在选项内", p.Key, p.Value)
	default:
		return fmt.Errorf("未知参数类型: %q", p.Type)
	}
}

// Float 按 number 类型取值，非法时返回 0
func (p Parameter) Float() float64 {
	f, _ := strconv.ParseFloat(p.Value, 64)
	return f
}

// Clone 深拷贝
func (p Parameter) Clone() Parameter {
	out := p
	if p.Options != nil {
		out.Options = append([]string(nil), p.Options...)
	}
	return out
}

func cloneParameters(ps []Parameter) []Parameter {
	if ps == nil {
		return nil
	}
	out := make([]Parameter, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
