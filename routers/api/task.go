package api

import (
	"net/http"
	"time"

	"ContentCreator-server/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// 查询任务
func GetTask(c *gin.Context) {
	task, err := models.GetTaskByID(db, c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// 任务进度 WebSocket 推送：轮询任务行，每秒推一帧，任务结束后收尾
func TaskProgressWebSocket(c *gin.Context) {
	taskID := c.Param("task_id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "WebSocket升级失败"})
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		task, err := models.GetTaskByID(db, taskID)
		if err != nil {
			_ = conn.WriteJSON(map[string]interface{}{
				"task_id": taskID,
				"status":  "unknown",
				"message": "任务不存在",
			})
			return
		}
		msg := map[string]interface{}{
			"task_id":  task.ID,
			"progress": task.Progress,
			"status":   task.Status,
			"message":  task.Message,
		}
		if task.Done() {
			msg["result"] = task.Result
			if task.Error != "" {
				msg["error"] = task.Error
			}
			_ = conn.WriteJSON(msg)
			return
		}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
