package api

import (
	"errors"
	"net/http"
	"time"

	"ContentCreator-server/models"
	"ContentCreator-server/service"

	"github.com/gin-gonic/gin"
)

// 模板列表，支持搜索与分类过滤
func ListTemplates(c *gin.Context) {
	svc := service.NewTemplateService(db)
	templates, err := svc.List(c.Query("q"), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

// 创建模板：一次提交四步向导的全部内容
func CreateTemplate(c *gin.Context) {
	var req struct {
		Name             string                     `json:"name"`
		Purpose          string                     `json:"purpose"`
		ShortDescription string                     `json:"shortDescription"`
		Category         string                     `json:"category"`
		ContentPrompt    string                     `json:"contentPrompt"`
		ImageParameters  []models.TemplateParameter `json:"imageParameters"`
		VideoParameters  []models.TemplateParameter `json:"videoParameters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wizard := service.NewTemplateWizard()
	wizard.SetBasicInfo(req.Name, req.Purpose, req.ShortDescription, req.Category)
	wizard.SetContentPrompt(req.ContentPrompt)
	wizard.SetImageParameters(req.ImageParameters)
	wizard.SetVideoParameters(req.VideoParameters)

	template, err := wizard.Commit(service.NewTemplateService(db), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"template": template,
		"message":  "模板已创建",
	})
}

func GetTemplate(c *gin.Context) {
	template, err := service.NewTemplateService(db).Get(c.Param("template_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "模板不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": template})
}

func UpdateTemplate(c *gin.Context) {
	var req struct {
		Name             *string                    `json:"name"`
		Purpose          *string                    `json:"purpose"`
		ShortDescription *string                    `json:"shortDescription"`
		Category         *string                    `json:"category"`
		ContentPrompt    *string                    `json:"contentPrompt"`
		ImageParameters  []models.TemplateParameter `json:"imageParameters"`
		VideoParameters  []models.TemplateParameter `json:"videoParameters"`
		IsActive         *bool                      `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := service.NewTemplateService(db).Update(c.Param("template_id"), func(t *models.ProjectTemplate) {
		if req.Name != nil {
			t.Name = *req.Name
		}
		if req.Purpose != nil {
			t.Purpose = *req.Purpose
		}
		if req.ShortDescription != nil {
			t.ShortDescription = *req.ShortDescription
		}
		if req.Category != nil {
			t.Category = *req.Category
		}
		if req.ContentPrompt != nil {
			t.ContentPrompt = *req.ContentPrompt
		}
		if req.ImageParameters != nil {
			t.ImageParameters = req.ImageParameters
		}
		if req.VideoParameters != nil {
			t.VideoParameters = req.VideoParameters
		}
		if req.IsActive != nil {
			t.IsActive = *req.IsActive
		}
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "模板不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": template})
}

// 删除模板，confirm=true 必填
func DeleteTemplate(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusConflict, gin.H{"error": "删除需要确认: confirm=true"})
		return
	}
	if err := service.NewTemplateService(db).Delete(c.Param("template_id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "模板不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "模板已删除"})
}

func DuplicateTemplate(c *gin.Context) {
	template, err := service.NewTemplateService(db).Duplicate(c.Param("template_id"), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "模板不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"template": template,
		"message":  "模板已复制",
	})
}
