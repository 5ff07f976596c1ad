package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	httpmw "github.com/johnquangdev/radio-transcriber/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	transcriptHandler *Transcript
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, transcriptHandler *Transcript) *Router {
	return &Router{
		cfg:               cfg,
		transcriptHandler: transcriptHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	apiKey := ""
	if rt.cfg != nil {
		apiKey = rt.cfg.Server.APIKey
	}

	// API v1 group
	v1 := e.Group("/v1", httpmw.EchoAPIKey(apiKey))

	rt.setupTranscriptRoutes(v1)
}

// setupTranscriptRoutes configures segmentation and transcript routes
func (rt *Router) setupTranscriptRoutes(g *echo.Group) {
	transcripts := g.Group("/transcripts")

	if rt.transcriptHandler != nil {
		g.POST("/segment", rt.transcriptHandler.Segment)
		transcripts.POST("", rt.transcriptHandler.Process)
		transcripts.GET("", rt.transcriptHandler.List)
		transcripts.GET("/combined", rt.transcriptHandler.Combine)
		transcripts.GET("/:name", rt.transcriptHandler.Get)
	} else {
		g.POST("/segment", rt.notImplemented)
		transcripts.POST("", rt.notImplemented)
		transcripts.GET("", rt.notImplemented)
		transcripts.GET("/combined", rt.notImplemented)
		transcripts.GET("/:name", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "production"
	if rt.cfg != nil {
		env = rt.cfg.App.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
