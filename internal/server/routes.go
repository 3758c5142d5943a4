package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint on r
func SetupRoutes(r *gin.Engine, s *Server) {
	r.GET("/healthz", s.HandleHealth)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/watermark", s.HandleWatermark)
		apiGroup.POST("/probe", s.HandleProbe)
		apiGroup.GET("/config", s.HandleGetConfig)
		apiGroup.PUT("/config", s.HandlePutConfig)
		apiGroup.DELETE("/config", s.HandleDeleteConfig)
	}
}
