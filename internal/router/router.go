package router

import (
	"github.com/gin-gonic/gin"

	"clipforge/internal/handler"
)

func SetupRouter(r *gin.Engine) *handler.Handler {
	api := r.Group("/api")

	hdl := handler.NewHandler()
	{
		api.POST("/video/process", hdl.StartVideoTask)
		api.GET("/video/task", hdl.GetVideoTask)
		api.GET("/video/history", hdl.GetTaskHistory)
		api.DELETE("/video/task/:taskId", hdl.DeleteTask)
		api.GET("/video/progress", hdl.TaskProgressWS)
		api.POST("/clip/:clipId/retry", hdl.RetryClip)

		// Synchronous core operations for callers that manage their own
		// transcripts and windows.
		api.POST("/clip/highlights", hdl.SelectHighlights)
		api.POST("/clip/captions", hdl.GenerateCaptions)
		api.POST("/clip/render", hdl.RenderClip)

		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)

		api.POST("/file", hdl.UploadFile)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
	}

	return hdl
}
