package protocol

import (
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vocabbie/internal/config"
)

// requestLogMiddleware tags each request with a correlation id and
// logs its outcome.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		start := time.Now()

		c.Next()

		log.Printf("[Protocol] %s %s -> %d, started %s [%s]",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			humanize.RelTime(start, time.Now(), "ago", "from now"), requestID)
	}
}

// SetupRouter wires the three endpoints plus CORS preflight under
// cfg.Server.Subpath (§6).
func SetupRouter(cfg *config.Config, deps *Deps) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())
	r.Use(requestLogMiddleware())

	subpath := cfg.Server.Subpath
	group := r.Group(subpath)
	{
		group.POST("/start", StartHandler(deps))
		group.GET("/state", StateHandler(deps))
		group.POST("/state", StateHandler(deps))
		group.POST("/submit", SubmitHandler(deps))

		group.OPTIONS("/start", func(c *gin.Context) {})
		group.OPTIONS("/state", func(c *gin.Context) {})
		group.OPTIONS("/submit", func(c *gin.Context) {})
	}

	return r
}
