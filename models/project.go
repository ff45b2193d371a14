package models

import (
	"time"

	"github.com/google/uuid"
)

// 项目状态，停用即软删除，流水线模型不提供项目硬删除
const (
	ProjectStatusActive   = "active"
	ProjectStatusInactive = "inactive"
)

type Project struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Videos      []Video   `gorm:"foreignKey:ProjectId;references:ID" json:"videos"`
	Config      JSONMap   `gorm:"type:json" json:"config,omitempty"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// NewProject 创建项目，默认 active、无视频
func NewProject(name, description, typ string, now time.Time) Project {
	return Project{
		ID:          "PRJ-" + uuid.NewString(),
		Name:        name,
		Description: description,
		Type:        typ,
		Status:      ProjectStatusActive,
		Videos:      []Video{},
		Created:     now,
		Modified:    now,
	}
}

// DuplicateProject 复制项目：新 ID、名称加 " (Copy)"、时间戳重置。
// 视频内容深拷贝但分配新 ID（主键不能复用）
func DuplicateProject(src Project, now time.Time) Project {
	copy := src
	copy.ID = src.ID + "-copy-" + uuid.NewString()[:8]
	copy.Name = src.Name + " (Copy)"
	copy.Config = src.Config.Clone()
	copy.Created = now
	copy.Modified = now
	copy.Videos = make([]Video, len(src.Videos))
	for i, v := range src.Videos {
		vc := v.Clone()
		vc.ID = uuid.NewString()
		vc.ProjectId = copy.ID
		copy.Videos[i] = vc
	}
	return copy
}

// ToggleStatus 切换 active/inactive
func (p *Project) ToggleStatus(now time.Time) {
	if p.Status == ProjectStatusActive {
		p.Status = ProjectStatusInactive
	} else {
		p.Status = ProjectStatusActive
	}
	p.Modified = now
}
