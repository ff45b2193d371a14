package models

import (
	"time"

	"github.com/google/uuid"
)

// 模板参数类型（与视频参数不同，file 取代 dropdown）
const (
	TemplateParamText   = "text"
	TemplateParamNumber = "number"
	TemplateParamFile   = "file"
)

type TemplateParameter struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// ProjectTemplate 可复用的项目模板，四步向导创建
type ProjectTemplate struct {
	ID               string              `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name             string              `json:"name"`
	Purpose          string              `json:"purpose"`
	ShortDescription string              `json:"shortDescription"`
	Category         string              `json:"category"`
	ContentPrompt    string              `json:"contentPrompt"`
	ImageParameters  []TemplateParameter `gorm:"serializer:json" json:"imageParameters"`
	VideoParameters  []TemplateParameter `gorm:"serializer:json" json:"videoParameters"`
	IsActive         bool                `json:"isActive"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// NewTemplateID 模板主键
func NewTemplateID() string {
	return "template-" + uuid.NewString()
}
