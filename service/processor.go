package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ContentCreator-server/config"
	"ContentCreator-server/logger"
	"ContentCreator-server/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Processor 处理队列任务：加载聚合 → 逐分镜调用生成后端 → 一次性提交
type Processor struct {
	DB  *gorm.DB
	Gen Generator
}

func NewProcessor(db *gorm.DB, gen Generator) *Processor {
	return &Processor{DB: db, Gen: gen}
}

// StartProcessor 启动任务消费者
func (p *Processor) StartProcessor(concurrency int) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.AppConfig.Redis.Addr,
			Password: config.AppConfig.Redis.Password,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGenerateTask, p.HandleGenerateTask)

	logger.L.Info("Starting Task Processor", zap.Int("concurrency", concurrency))
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.L.Fatal("could not run task processor", zap.Error(err))
		}
	}()
}

// HandleGenerateTask 核心处理逻辑
func (p *Processor) HandleGenerateTask(ctx context.Context, t *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	task, err := models.GetTaskByID(p.DB, payload.TaskID)
	if err != nil {
		return fmt.Errorf("task not found: %v", err)
	}

	logger.L.Info("Processing Task", zap.String("task_id", task.ID), zap.String("type", task.Type))
	if err := task.UpdateStatus(p.DB, models.TaskStatusProcessing, nil, ""); err != nil {
		return err
	}

	var video models.Video
	if err := p.DB.First(&video, "id = ?", task.VideoId).Error; err != nil {
		_ = task.UpdateStatus(p.DB, models.TaskStatusFailed, nil, fmt.Sprintf("video not found: %v", err))
		return fmt.Errorf("video not found: %v: %w", err, asynq.SkipRetry)
	}

	var (
		result        models.TaskResult
		processingErr error
	)
	switch task.Type {
	case models.TaskTypeImageBatch:
		video, result, processingErr = p.generateImageBatch(ctx, task, video, allSlots(video))
	case models.TaskTypeImageSubset:
		video, result, processingErr = p.generateImageBatch(ctx, task, video, subsetSlots(task.Parameters))
	case models.TaskTypeShotVideo:
		video, result, processingErr = p.generateShotVideo(ctx, task, video)
	case models.TaskTypeFinalAssembly:
		video, result, processingErr = p.assembleFinal(ctx, task, video)
	default:
		processingErr = fmt.Errorf("unknown task type: %s", task.Type)
	}

	if processingErr != nil {
		logger.L.Error("Processing failed", zap.String("task_id", task.ID), zap.Error(processingErr))
		_ = task.UpdateStatus(p.DB, models.TaskStatusFailed, &result, processingErr.Error())
		// 业务失败不重试
		return nil
	}

	// 聚合整体一次提交，调用方看不到半更新状态
	if err := p.DB.Save(&video).Error; err != nil {
		_ = task.UpdateStatus(p.DB, models.TaskStatusFailed, &result, fmt.Sprintf("save failed: %v", err))
		return err
	}
	return task.UpdateStatus(p.DB, models.TaskStatusFinished, &result, "")
}

// generateImageBatch 批量/选中重绘。单个分镜失败不回滚已成功的分镜，
// 失败按分镜记录在任务结果里
func (p *Processor) generateImageBatch(ctx context.Context, task *models.Task, video models.Video, slots []int) (models.Video, models.TaskResult, error) {
	var result models.TaskResult
	rows := StoryboardRows(video)
	for i, n := range slots {
		if err := ctx.Err(); err != nil {
			return video, result, err
		}
		// 槽位越界的请求记为该分镜失败，不打断整批
		if n < 1 || n > video.Stage1.NumShots {
			result.Failures = append(result.Failures, models.ShotFailure{
				ShotNumber: n,
				Error:      fmt.Sprintf("分镜槽位越界: %d (共 %d)", n, video.Stage1.NumShots),
			})
			_ = task.UpdateProgress(p.DB, (i+1)*100/len(slots), fmt.Sprintf("分镜 %d/%d", i+1, len(slots)))
			continue
		}
		prompt := video.Stage1.ContentPrompt
		if rows[n-1].ImagePrompt != "" {
			prompt = rows[n-1].ImagePrompt
		}
		res, err := p.Gen.GenerateImage(ctx, ImageRequest{
			ShotNumber: n,
			Prompt:     prompt,
			Parameters: imageParams(video),
		})
		if err != nil {
			result.Failures = append(result.Failures, models.ShotFailure{ShotNumber: n, Error: err.Error()})
		} else {
			updated, err := ApplyGeneratedImage(video, models.GeneratedImage{
				ShotNumber: n,
				Url:        res.Url,
				Prompt:     prompt,
				CreatedAt:  models.ISO8601(time.Now()),
			}, time.Now())
			if err != nil {
				result.Failures = append(result.Failures, models.ShotFailure{ShotNumber: n, Error: err.Error()})
			} else {
				video = updated
				result.GeneratedCount++
			}
		}
		_ = task.UpdateProgress(p.DB, (i+1)*100/len(slots), fmt.Sprintf("分镜 %d/%d", i+1, len(slots)))
	}
	if result.GeneratedCount == 0 && len(result.Failures) > 0 {
		return video, result, fmt.Errorf("所有分镜生成失败")
	}
	return video, result, nil
}

func (p *Processor) generateShotVideo(ctx context.Context, task *models.Task, video models.Video) (models.Video, models.TaskResult, error) {
	var result models.TaskResult
	shotNumber := intParam(task.Parameters, "shot_number")
	if shotNumber < 1 {
		return video, result, fmt.Errorf("missing shot_number")
	}

	req := VideoRequest{
		ShotNumber:      shotNumber,
		DurationSeconds: video.Stage1.DurationPerShot,
	}
	for _, img := range video.Stage3.GeneratedImages {
		if img.ShotNumber == shotNumber {
			req.ImageUrl = img.Url
			break
		}
	}
	for _, vp := range video.Stage4.VideoPrompts {
		if vp.ShotNumber == shotNumber {
			req.Prompt = vp.JSON
			break
		}
	}

	res, err := p.Gen.GenerateVideo(ctx, req)
	if err != nil {
		return video, result, err
	}
	updated, err := ApplyGeneratedVideo(video, models.GeneratedVideo{
		ShotNumber:  shotNumber,
		Url:         res.Url,
		GeneratedAt: models.ISO8601(time.Now()),
	}, time.Now())
	if err != nil {
		return video, result, err
	}
	result.GeneratedCount = 1
	return updated, result, nil
}

func (p *Processor) assembleFinal(ctx context.Context, task *models.Task, video models.Video) (models.Video, models.TaskResult, error) {
	var result models.TaskResult
	if len(video.Stage5.EditedVideos) == 0 {
		return video, result, fmt.Errorf("至少需要一条剪辑视频才能合成")
	}
	quality := stringParam(task.Parameters, "quality")
	if quality == "" {
		quality = "1080p"
	}
	clips := make([]string, 0, len(video.Stage5.EditedVideos))
	for _, e := range video.Stage5.EditedVideos {
		clips = append(clips, e.Url)
	}
	res, err := p.Gen.AssembleVideo(ctx, AssembleRequest{VideoID: video.ID, ClipUrls: clips, Quality: quality})
	if err != nil {
		return video, result, err
	}
	updated, err := AssembleFinalVideo(video, res.Url, quality, time.Now())
	if err != nil {
		return video, result, err
	}
	result.FinalUrl = res.Url
	result.GeneratedCount = len(clips)
	return updated, result, nil
}

func allSlots(v models.Video) []int {
	out := make([]int, 0, v.Stage1.NumShots)
	for n := 1; n <= v.Stage1.NumShots; n++ {
		out = append(out, n)
	}
	return out
}

// subsetSlots 从任务参数取 shot_numbers（JSON 数字反序列化为 float64）
func subsetSlots(params models.JSONMap) []int {
	raw, ok := params["shot_numbers"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, r := range raw {
		if f, ok := r.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

func imageParams(v models.Video) models.JSONMap {
	if len(v.Stage1.ImageParameters) == 0 {
		return nil
	}
	out := make(models.JSONMap, len(v.Stage1.ImageParameters))
	for _, p := range v.Stage1.ImageParameters {
		out[p.Key] = p.Value
	}
	return out
}

func intParam(params models.JSONMap, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func stringParam(params models.JSONMap, key string) string {
	s, _ := params[key].(string)
	return s
}
