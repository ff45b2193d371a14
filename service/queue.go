package service

import (
	"encoding/json"
	"time"

	"ContentCreator-server/config"
	"ContentCreator-server/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const TypeGenerateTask = "pipeline:generate"

type TaskPayload struct {
	TaskID string `json:"task_id"`
}

var queueClient *asynq.Client

// InitQueue 初始化 asynq 客户端
func InitQueue() error {
	queueClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.Redis.Addr,
		Password: config.AppConfig.Redis.Password,
	})
	return nil
}

func CloseQueue() {
	if queueClient != nil {
		_ = queueClient.Close()
	}
}

// CreateTask 先落任务记录再入队，WebSocket 端按任务 ID 推送进度
func CreateTask(db *gorm.DB, projectID, videoID, taskType string, params models.JSONMap) (*models.Task, error) {
	task := models.Task{
		ID:         uuid.NewString(),
		ProjectId:  projectID,
		VideoId:    videoID,
		Type:       taskType,
		Status:     models.TaskStatusPending,
		Progress:   0,
		Parameters: params,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}

	payload, err := json.Marshal(TaskPayload{TaskID: task.ID})
	if err != nil {
		return nil, err
	}
	if _, err := queueClient.Enqueue(asynq.NewTask(TypeGenerateTask, payload)); err != nil {
		return nil, err
	}
	return &task, nil
}
