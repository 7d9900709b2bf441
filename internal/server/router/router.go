package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/server/handlers"
	"github.com/quociou/pibao/internal/server/middleware"
)

// Handlers groups the HTTP adapters. Webhook may be nil when WhatsApp is disabled.
type Handlers struct {
	Journal *handlers.JournalHandler
	Report  *handlers.ReportHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(cfg config.ServerConfig, h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/send-message", h.Webhook.SendMessage)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/foods", h.Journal.ListFoods)
		api.POST("/foods", h.Journal.CreateFood)
		api.PUT("/foods/:id", h.Journal.UpdateFood)
		api.DELETE("/foods/:id", h.Journal.DeleteFood)

		api.GET("/records", h.Journal.ListRecords)
		api.GET("/records/:date", h.Journal.GetRecord)
		api.PUT("/records/:date", h.Journal.PutRecord)
		api.DELETE("/records/:date", h.Journal.DeleteRecord)
		api.GET("/records/:date/draft", h.Journal.DraftRecord)
		api.GET("/records/:date/stats", h.Journal.RecordStats)

		api.GET("/settings", h.Journal.GetSettings)
		api.PUT("/settings", h.Journal.PutSettings)

		api.GET("/reminders", h.Report.Reminders)
		api.GET("/trends", h.Report.Trends)
		api.POST("/export", h.Report.Export)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	logger.Info("router initialized", zap.Bool("webhook", h.Webhook != nil))
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
