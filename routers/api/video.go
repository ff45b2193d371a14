package api

import (
	"fmt"
	"net/http"
	"time"

	"ContentCreator-server/models"
	"ContentCreator-server/service"

	"github.com/gin-gonic/gin"
)

// 在项目下创建视频，五个阶段子记录全部初始化
func CreateVideo(c *gin.Context) {
	projectID := c.Param("project_id")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "项目不存在"})
		return
	}

	name := req.Name
	if name == "" {
		var count int64
		db.Model(&models.Video{}).Where("project_id = ?", projectID).Count(&count)
		name = fmt.Sprintf("Video %d", count+1)
	}
	video := models.NewVideo(projectID, name, time.Now())
	if err := db.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"video":   video,
		"message": "视频已创建",
	})
}

// 项目下的视频列表
func ListVideos(c *gin.Context) {
	projectID := c.Param("project_id")
	var videos []models.Video
	if err := db.Where("project_id = ?", projectID).Order("created").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"videos": videos,
		"total":  len(videos),
	})
}

// 获取视频聚合（含全部阶段子记录与进度）
func GetVideo(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"video":    video,
		"progress": service.StageProgress(video),
	})
}

// 更新视频元数据（名称/描述）
func UpdateVideoMetadata(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := time.Now()
	if req.Name != nil {
		video = service.SetVideoName(video, *req.Name, now)
	}
	if req.Description != nil {
		video = service.SetVideoDescription(video, *req.Description, now)
	}
	saveVideo(c, video)
}

// 复制视频
func DuplicateVideo(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	copy := models.DuplicateVideo(video, time.Now())
	if err := db.Create(&copy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"video":   copy,
		"message": "视频已复制",
	})
}

// 删除视频。必须带 confirm=true，拒绝静默删除
func DeleteVideo(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusConflict, gin.H{"error": "删除需要确认: confirm=true"})
		return
	}
	videoID := c.Param("video_id")
	res := db.Delete(&models.Video{}, "id = ?", videoID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "视频不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"video_id": videoID,
		"message":  "视频已删除",
	})
}

// loadVideo 按路径参数取聚合，失败时已写好响应
func loadVideo(c *gin.Context) (models.Video, bool) {
	videoID := c.Param("video_id")
	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "视频不存在"})
		return models.Video{}, false
	}
	return video, true
}

// saveVideo 提交聚合快照并返回
func saveVideo(c *gin.Context, video models.Video) {
	if err := db.Save(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}
