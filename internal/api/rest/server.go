package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/api/websocket"
	"github.com/KevinKickass/OpenCameraCore/internal/auth"
	"github.com/KevinKickass/OpenCameraCore/internal/config"
	"github.com/KevinKickass/OpenCameraCore/internal/interfaces"
)

type Server struct {
	router    *gin.Engine
	tokenHash string
	lm        interfaces.LifecycleManager
	logger    *zap.Logger
	server    *http.Server
	wsHub     *websocket.Hub
}

func NewServer(cfg *config.Config, lm interfaces.LifecycleManager, logger *zap.Logger, wsHub *websocket.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:    gin.New(),
		tokenHash: cfg.Server.APITokenHash,
		lm:        lm,
		logger:    logger,
		wsHub:     wsHub,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.healthCheck)

	// API v1
	v1 := s.router.Group("/api/v1")
	if s.tokenHash != "" {
		v1.Use(auth.Middleware(s.tokenHash))
	} else {
		s.logger.Warn("API token not configured, camera control is open to everyone")
	}
	{
		// ==================== SYSTEM ====================
		system := v1.Group("/system")
		{
			system.GET("/status", s.getSystemStatus)
			system.POST("/shutdown", s.shutdown)
		}

		// ==================== DEVICES ====================
		devices := v1.Group("/devices")
		{
			devices.GET("", s.listDevices)
			devices.POST("/refresh", s.refreshDevices)
		}

		// ==================== CAMERA ====================
		camera := v1.Group("/camera")
		{
			camera.GET("", s.getCamera)
			camera.POST("", s.openCamera)
			camera.DELETE("", s.closeCamera)

			camera.GET("/config", s.getConfig)
			camera.POST("/config/reload", s.reloadConfig)
			camera.PUT("/config/:parent/:id", s.editSetting)
			camera.POST("/config/apply", s.applyConfig)
			camera.DELETE("/config/pending", s.discardConfig)

			camera.PUT("/liveview", s.setLiveView)
			camera.GET("/preview", s.getPreview)
		}

		// ==================== ERRORS ====================
		errs := v1.Group("/errors")
		{
			errs.GET("", s.listErrors)
			errs.DELETE("/:index", s.dismissError)
		}

		// ==================== WEBSOCKET ====================
		v1.GET("/ws", s.wsLiveConnection)
		v1.GET("/ws/status", s.wsStatus)
	}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
