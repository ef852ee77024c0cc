package main

import (
	"whatsapp-templates/internal/api"
	"whatsapp-templates/internal/config"
	"whatsapp-templates/internal/database"
	"whatsapp-templates/internal/logger"
	"whatsapp-templates/internal/templates"
	"whatsapp-templates/internal/webhook"
	"whatsapp-templates/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Request ID Middleware
	r.Use(func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	})

	hub := ws.NewHub(log)
	go hub.Run()

	service := templates.NewService(db, log, nil)
	service.Notifier = hub

	webhookHandler := webhook.NewHandler(cfg, db, service, log)
	templateHandler := api.NewTemplateHandler(service)
	accountHandler := api.NewAccountHandler(db)

	// Webhook Routes
	r.GET("/webhook", webhookHandler.Verify)
	r.POST("/webhook", webhookHandler.HandleEvent)

	// Dashboard push
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	// API Routes
	apiGroup := r.Group("/api")
	{
		// Template Routes
		apiGroup.GET("/templates", templateHandler.GetTemplates)
		apiGroup.POST("/templates", templateHandler.CreateTemplate)
		apiGroup.POST("/templates/fetch", templateHandler.FetchTemplates)
		apiGroup.GET("/templates/:name", templateHandler.GetTemplate)
		apiGroup.PUT("/templates/:name", templateHandler.UpdateTemplate)
		apiGroup.DELETE("/templates/:name", templateHandler.DeleteTemplate)
		apiGroup.GET("/templates/:name/actions", templateHandler.GetTemplateActions)
		apiGroup.POST("/templates/:name/sync", templateHandler.SyncTemplateStatus)

		// Account Routes
		apiGroup.GET("/accounts", accountHandler.GetAccounts)
		apiGroup.POST("/accounts", accountHandler.CreateAccount)
		apiGroup.PUT("/accounts/:name", accountHandler.UpdateAccount)
		apiGroup.DELETE("/accounts/:name", accountHandler.DeleteAccount)
	}

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("failed to run server", zap.Error(err))
	}
}
