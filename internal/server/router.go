package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter builds the gin engine with recovery, request logging and the
// session routes.
func SetupRouter(bridge Bridge, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	s := NewServer(bridge, log)

	r.GET("/healthz", s.Health)

	api := r.Group("/v1")
	{
		api.POST("/sessions", s.CreateSession)
		api.POST("/sessions/:handle/generate", s.Generate)
		api.DELETE("/sessions/:handle", s.DestroySession)
	}

	return r
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}
