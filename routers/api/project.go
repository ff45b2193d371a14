package api

import (
	"net/http"
	"strings"
	"time"

	"ContentCreator-server/models"

	"github.com/gin-gonic/gin"
)

// 创建项目
func CreateProject(c *gin.Context) {
	var req struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Type        string         `json:"type"`
		Config      models.JSONMap `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "项目名称不能为空"})
		return
	}

	project := models.NewProject(req.Name, req.Description, req.Type, time.Now())
	project.Config = req.Config
	if err := db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"message": "项目已创建",
	})
}

// 项目列表，支持按状态/类型过滤
func ListProjects(c *gin.Context) {
	q := db.Model(&models.Project{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if typ := c.Query("type"); typ != "" {
		q = q.Where("type = ?", typ)
	}

	var projects []models.Project
	if err := q.Order("created").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    len(projects),
	})
}

// 获取项目详情（含视频列表）
func GetProject(c *gin.Context) {
	projectID := c.Param("project_id")

	var project models.Project
	if err := db.Preload("Videos").First(&project, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "项目不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// 更新项目信息
func UpdateProject(c *gin.Context) {
	projectID := c.Param("project_id")
	var req struct {
		Name        *string        `json:"name"`
		Description *string        `json:"description"`
		Type        *string        `json:"type"`
		Config      models.JSONMap `json:"config"`
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
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "项目名称不能为空"})
			return
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Type != nil {
		project.Type = *req.Type
	}
	if req.Config != nil {
		project.Config = req.Config
	}
	project.Modified = time.Now()
	if err := db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// 复制项目：新 ID、名称加 (Copy)、时间戳重置
func DuplicateProject(c *gin.Context) {
	projectID := c.Param("project_id")

	var src models.Project
	if err := db.Preload("Videos").First(&src, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "项目不存在"})
		return
	}
	copy := models.DuplicateProject(src, time.Now())
	if err := db.Create(&copy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project": copy,
		"message": "项目已复制",
	})
}

// 切换项目状态：流水线模型中项目只有软删除（停用）
func ToggleProjectStatus(c *gin.Context) {
	projectID := c.Param("project_id")

	var project models.Project
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "项目不存在"})
		return
	}
	project.ToggleStatus(time.Now())
	if err := db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     project.ID,
		"status": project.Status,
	})
}
