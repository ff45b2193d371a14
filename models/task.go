package models

import (
	"time"

	"gorm.io/gorm"
)

// 任务类型：批量生成图片 / 选中重绘 / 单分镜视频 / 最终合成
const (
	TaskTypeImageBatch    = "image_batch_gen"
	TaskTypeImageSubset   = "image_subset_gen"
	TaskTypeShotVideo     = "shot_video_gen"
	TaskTypeFinalAssembly = "final_assembly"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusFinished   = "finished"
	TaskStatusFailed     = "failed"
)

// ShotFailure 批量生成中单个分镜的失败记录，失败按分镜上报而非整批回滚
type ShotFailure struct {
	ShotNumber int    `json:"shotNumber"`
	Error      string `json:"error"`
}

type TaskResult struct {
	GeneratedCount int           `json:"generatedCount"`
	Failures       []ShotFailure `json:"failures,omitempty"`
	FinalUrl       string        `json:"finalUrl,omitempty"`
	TotalTime      float64       `json:"totalTime,omitempty"`
}

type Task struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectId  string     `gorm:"index;type:varchar(64)" json:"projectId"`
	VideoId    string     `gorm:"index;type:varchar(64)" json:"videoId"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	Progress   int        `json:"progress"`
	Message    string     `json:"message"`
	Parameters JSONMap    `gorm:"type:json" json:"parameters"`
	Result     TaskResult `gorm:"serializer:json" json:"result"`
	Error      string     `json:"error"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt time.Time  `json:"finishedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func GetTaskByID(db *gorm.DB, id string) (*Task, error) {
	var t Task
	if err := db.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatus 更新任务状态；result 为 nil 时保留原结果
func (t *Task) UpdateStatus(db *gorm.DB, status string, result *TaskResult, errMsg string) error {
	t.Status = status
	t.Error = errMsg
	switch status {
	case TaskStatusProcessing:
		t.StartedAt = time.Now()
	case TaskStatusFinished, TaskStatusFailed:
		t.Progress = 100
		t.FinishedAt = time.Now()
	}
	if result != nil {
		t.Result = *result
	}
	return db.Save(t).Error
}

// UpdateProgress 0..100，批量任务按分镜推进
func (t *Task) UpdateProgress(db *gorm.DB, progress int, message string) error {
	t.Progress = progress
	t.Message = message
	return db.Save(t).Error
}

// Done 任务是否已结束
func (t *Task) Done() bool {
	return t.Status == TaskStatusFinished || t.Status == TaskStatusFailed
}
