package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepnest/exam-engine/internal/config"
	"github.com/prepnest/exam-engine/internal/services"
	"github.com/prepnest/exam-engine/internal/utils"
	"github.com/prepnest/exam-engine/internal/validator"
)

type HandlerManager struct {
	testHandler    *TestHandler
	sessionHandler *SessionHandler
	authMiddleware gin.HandlerFunc
	serviceManager services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	cfg *config.Config,
) *HandlerManager {
	// Production validates tokens against Casdoor; everything else
	// accepts the trusted X-User-ID header for local work.
	var authMiddleware gin.HandlerFunc
	if cfg.IsProduction() {
		authMiddleware = NewCasdoorAuthMiddleware(cfg.Casdoor).AuthMiddleware()
	} else {
		authMiddleware = DevAuthMiddleware()
	}

	return &HandlerManager{
		testHandler:    NewTestHandler(serviceManager.Test(), serviceManager.Analytics(), validator, logger),
		sessionHandler: NewSessionHandler(serviceManager.Session(), serviceManager.Analytics(), validator, logger),
		authMiddleware: authMiddleware,
		serviceManager: serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware)
	{
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:test_id", hm.testHandler.GetTest)
			tests.GET("/:test_id/stats", hm.testHandler.GetTestStats)
			tests.GET("/:test_id/results/export", hm.testHandler.ExportResults)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.PATCH("/:id", hm.sessionHandler.UpdateSession)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)
			sessions.GET("/:id/analytics", hm.sessionHandler.GetSessionAnalytics)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "exam-engine",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
