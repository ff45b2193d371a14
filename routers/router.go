package routers

import (
	"ContentCreator-server/routers/api"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func InitRouter(db *gorm.DB, sessionSecret string) *gin.Engine {
	api.Init(db, sessionSecret)

	r := gin.Default()

	// 会话：登录/登出不做鉴权
	r.POST("/v1/api/login", api.Login)
	r.POST("/v1/api/logout", api.Logout)
	r.GET("/v1/api/session", api.SessionInfo)

	v1 := r.Group("/v1/api", api.RequireAuth())
	{
		v1.POST("/projects", api.CreateProject)
		v1.GET("/projects", api.ListProjects)
		v1.GET("/projects/:project_id", api.GetProject)
		v1.PUT("/projects/:project_id", api.UpdateProject)
		v1.POST("/projects/:project_id/duplicate", api.DuplicateProject)
		v1.POST("/projects/:project_id/toggle-status", api.ToggleProjectStatus)

		v1.POST("/projects/:project_id/videos", api.CreateVideo)
		v1.GET("/projects/:project_id/videos", api.ListVideos)
		v1.GET("/videos/:video_id", api.GetVideo)
		v1.PUT("/videos/:video_id", api.UpdateVideoMetadata)
		v1.POST("/videos/:video_id/duplicate", api.DuplicateVideo)
		v1.DELETE("/videos/:video_id", api.DeleteVideo)

		// Stage 1 配置
		v1.PUT("/videos/:video_id/stage1", api.UpdateStage1)
		v1.POST("/videos/:video_id/stage1/parameters", api.AddImageParameter)
		v1.PUT("/videos/:video_id/stage1/parameters/:index", api.UpdateImageParameter)
		v1.DELETE("/videos/:video_id/stage1/parameters/:index", api.RemoveImageParameter)
		v1.POST("/videos/:video_id/stage1/product-images", api.AddProductImage)
		v1.DELETE("/videos/:video_id/stage1/product-images/:index", api.RemoveProductImage)
		v1.POST("/videos/:video_id/stage1/reference-images", api.AddReferenceImage)
		v1.DELETE("/videos/:video_id/stage1/reference-images/:index", api.RemoveReferenceImage)
		v1.POST("/videos/:video_id/generate-shots", api.GenerateShots)

		// Stage 2 故事板
		v1.GET("/videos/:video_id/storyboard", api.GetStoryboard)
		v1.PUT("/videos/:video_id/shots/:shot_number", api.UpdateShot)
		v1.DELETE("/videos/:video_id/shots/:shot_number", api.DeleteShot)
		v1.POST("/videos/:video_id/shots/:shot_number/upload", api.UploadShotImage)
		v1.PUT("/videos/:video_id/shots/:shot_number/parameters", api.SetShotParameter)
		v1.DELETE("/videos/:video_id/shots/:shot_number/parameters/:key", api.DeleteShotParameter)
		v1.POST("/videos/:video_id/comments", api.AddComment)

		// Stage 3 图片生成
		v1.POST("/videos/:video_id/generate-images", api.GenerateImages)
		v1.POST("/videos/:video_id/regenerate-images", api.RegenerateImages)
		v1.PUT("/videos/:video_id/images/:shot_number", api.UpdateGeneratedImage)
		v1.DELETE("/videos/:video_id/images/:shot_number", api.DeleteGeneratedImage)

		// Stage 4 视频生成
		v1.POST("/videos/:video_id/shots/:shot_number/generate-video", api.GenerateShotVideo)
		v1.PUT("/videos/:video_id/video-prompts/:shot_number", api.SetVideoPrompt)

		// Stage 5 剪辑与最终合成
		v1.POST("/videos/:video_id/shots/:shot_number/edit", api.SaveVideoEdit)
		v1.POST("/videos/:video_id/assemble", api.AssembleFinalVideo)

		// 模板
		v1.GET("/templates", api.ListTemplates)
		v1.POST("/templates", api.CreateTemplate)
		v1.GET("/templates/:template_id", api.GetTemplate)
		v1.PUT("/templates/:template_id", api.UpdateTemplate)
		v1.DELETE("/templates/:template_id", api.DeleteTemplate)
		v1.POST("/templates/:template_id/duplicate", api.DuplicateTemplate)

		// 任务进度
		v1.GET("/tasks/:task_id", api.GetTask)
	}
	r.GET("/v1/api/tasks/:task_id/ws", api.TaskProgressWebSocket)
	return r
}
