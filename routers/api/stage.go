package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ContentCreator-server/models"
	"ContentCreator-server/service"

	"github.com/gin-gonic/gin"
)

// respondPipelineError 把流水线错误映射到 HTTP 状态码
func respondPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPreconditionFailed), errors.Is(err, service.ErrConfirmationMissing):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func shotNumberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("shot_number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shot_number 必须是整数"})
		return 0, false
	}
	return n, true
}

func indexParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index 必须是整数"})
		return 0, false
	}
	return n, true
}

// ---------- Stage 1 ----------

// 更新 Stage1 配置，逐字段应用
func UpdateStage1(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	var req struct {
		NumShots        *int     `json:"numShots"`
		DurationPerShot *float64 `json:"durationPerShot"`
		ContentPrompt   *string  `json:"contentPrompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	var err error
	if req.NumShots != nil {
		if video, err = service.SetNumShots(video, *req.NumShots, now); err != nil {
			respondPipelineError(c, err)
			return
		}
	}
	if req.DurationPerShot != nil {
		if video, err = service.SetDurationPerShot(video, *req.DurationPerShot, now); err != nil {
			respondPipelineError(c, err)
			return
		}
	}
	if req.ContentPrompt != nil {
		video = service.SetContentPrompt(video, *req.ContentPrompt, now)
	}
	saveVideo(c, video)
}

// 追加默认图片参数
func AddImageParameter(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	saveVideo(c, service.AddImageParameter(video, time.Now()))
}

// 按下标更新图片参数
func UpdateImageParameter(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	var p models.Parameter
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	video, err := service.UpdateImageParameter(video, idx, p, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// 按下标删除图片参数
func RemoveImageParameter(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	video, err := service.RemoveImageParameter(video, idx, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

type imageRefRequest struct {
	Url string `json:"url" binding:"required"`
}

// 添加产品图（上限 10 张），URL 由上游文件存储解析
func AddProductImage(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	var req imageRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	video, err := service.AddProductImage(video, req.Url, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

func RemoveProductImage(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	video, err := service.RemoveProductImage(video, idx, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

func AddReferenceImage(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	var req imageRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	video, err := service.AddReferenceImage(video, req.Url, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

func RemoveReferenceImage(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	video, err := service.RemoveReferenceImage(video, idx, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// 生成分镜：Stage1→Stage2 的守卫转移，不满足前置条件时拒绝。
// 幂等：Stage2 编辑前重复调用只是再次进入 Stage2
func GenerateShots(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	if err := service.CheckStage1Guard(video); err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stage": 2,
		"shots": service.StoryboardRows(video),
	})
}

// ---------- Stage 2 ----------

// 故事板：numShots 个槽位，缺口合成 pending 占位行
func GetStoryboard(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shots":    service.StoryboardRows(video),
		"expected": video.Stage1.NumShots,
	})
}

// 编辑分镜描述/图片提示词，首次编辑时物化该槽位
func UpdateShot(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	var req struct {
		Description *string `json:"description"`
		ImagePrompt *string `json:"imagePrompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	var err error
	if req.Description != nil {
		if video, err = service.UpdateShotDescription(video, n, *req.Description, now); err != nil {
			respondPipelineError(c, err)
			return
		}
	}
	if req.ImagePrompt != nil {
		if video, err = service.UpdateShotImagePrompt(video, n, *req.ImagePrompt, now); err != nil {
			respondPipelineError(c, err)
			return
		}
	}
	saveVideo(c, video)
}

// 删除分镜，confirm=true 必填，级联清理下游阶段记录
func DeleteShot(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusConflict, gin.H{"error": "删除需要确认: confirm=true"})
		return
	}
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	video, err := service.DeleteShot(video, n, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// 手动上传分镜图，跳过生成
func UploadShotImage(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	var req imageRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	video, err := service.UploadShotImage(video, n, req.Url, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// 按 key 新增或覆盖分镜参数
func SetShotParameter(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	var p models.Parameter
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	video, err := service.SetShotParameter(video, n, p, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

func DeleteShotParameter(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	video, err := service.DeleteShotParameter(video, n, c.Param("key"), time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// 追加故事板批注
func AddComment(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	var comment models.JSONMap
	if err := c.ShouldBindJSON(&comment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saveVideo(c, service.AddComment(video, comment, time.Now()))
}

// ---------- Stage 3 ----------

// 批量生成图片：每个槽位一条记录，入队后台任务
func GenerateImages(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	task, err := service.CreateTask(db, video.ProjectId, video.ID, models.TaskTypeImageBatch, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id": task.ID,
		"message": "图片生成任务已创建",
	})
}

// 重绘选中的分镜，非选中记录保持不变
func RegenerateImages(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	var req struct {
		ShotNumbers []int `json:"shot_numbers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.ShotNumbers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请选择要重绘的分镜"})
		return
	}
	for _, n := range req.ShotNumbers {
		if n < 1 || n > video.Stage1.NumShots {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("分镜槽位越界: %d (共 %d)", n, video.Stage1.NumShots)})
			return
		}
	}

	nums := make([]interface{}, len(req.ShotNumbers))
	for i, n := range req.ShotNumbers {
		nums[i] = n
	}
	task, err := service.CreateTask(db, video.ProjectId, video.ID, models.TaskTypeImageSubset,
		models.JSONMap{"shot_numbers": nums})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id": task.ID,
		"message": "重绘任务已创建",
	})
}

// 就地修改单条生成图的提示词与参数
func UpdateGeneratedImage(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	var req struct {
		Prompt     string         `json:"prompt"`
		Parameters models.JSONMap `json:"parameters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	video, err := service.UpdateGeneratedImage(video, n, req.Prompt, req.Parameters, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// 删除单条生成图记录，confirm=true 必填
func DeleteGeneratedImage(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusConflict, gin.H{"error": "删除需要确认: confirm=true"})
		return
	}
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	video, err := service.DeleteGeneratedImage(video, n, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// ---------- Stage 4 ----------

// 单分镜视频生成，不依赖 Stage3 是否完成
func GenerateShotVideo(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	if n < 1 || n > video.Stage1.NumShots {
		c.JSON(http.StatusNotFound, gin.H{"error": "分镜槽位越界"})
		return
	}
	task, err := service.CreateTask(db, video.ProjectId, video.ID, models.TaskTypeShotVideo,
		models.JSONMap{"shot_number": n})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id": task.ID,
		"message": "视频生成任务已创建",
	})
}

// 按 shotNumber upsert 视频提示词
func SetVideoPrompt(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	var prompt models.JSONMap
	if err := c.ShouldBindJSON(&prompt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	video, err := service.SetVideoPrompt(video, n, prompt, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// ---------- Stage 5 ----------

// 保存剪辑结果。未给 url 时沿用该分镜的生成视频地址
func SaveVideoEdit(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	n, ok := shotNumberParam(c)
	if !ok {
		return
	}
	var req struct {
		Url   string   `json:"url"`
		Edits []string `json:"edits"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url := req.Url
	if url == "" {
		for _, gv := range video.Stage4.GeneratedVideos {
			if gv.ShotNumber == n {
				url = gv.Url
				break
			}
		}
	}
	if url == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "该分镜还没有生成视频"})
		return
	}

	video, err := service.ApplyEditedVideo(video, n, url, req.Edits, time.Now())
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	saveVideo(c, video)
}

// 合成最终视频。editedVideos 为空时同步拒绝；成功则入队合成任务
func AssembleFinalVideo(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	if len(video.Stage5.EditedVideos) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "至少需要一条剪辑视频才能合成"})
		return
	}
	var req struct {
		Quality string `json:"quality"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quality == "" {
		req.Quality = "1080p"
	}
	task, err := service.CreateTask(db, video.ProjectId, video.ID, models.TaskTypeFinalAssembly,
		models.JSONMap{"quality": req.Quality})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id": task.ID,
		"message": "最终合成任务已创建",
	})
}
