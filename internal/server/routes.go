package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lotworks/reconboard/internal/auth"
)

// registerRoutes sets up all API routes on the Gin router.
func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", s.metrics.handler())

	// Credential endpoints carry no session.
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/signup", s.handleSignup)
		authGroup.POST("/login", s.handleLogin)
		authGroup.GET("/me", s.requireAuth(), s.handleMe)
	}

	// External systems push recon updates here. No signature verification
	// is performed; see the deployment notes.
	router.POST("/api/webhooks/recon", s.handleReconWebhook)

	v1 := router.Group("/api/v1", s.requireAuth())
	{
		v1.GET("/vehicles", s.handleVehicleList)
		v1.POST("/vehicles", s.requireAction(auth.ActionVehicleCreate), s.handleVehicleCreate)
		v1.GET("/vehicles/:vin", s.handleVehicleGet)
		v1.PUT("/vehicles/:vin", s.requireAction(auth.ActionVehicleUpdate), s.handleVehicleUpdate)
		v1.DELETE("/vehicles/:vin", s.requireAction(auth.ActionVehicleDelete), s.handleVehicleDelete)
		v1.GET("/vehicles/:vin/timeline", s.handleVehicleTimeline)
		v1.GET("/analytics/summary", s.handleAnalyticsSummary)
	}

	notifications := router.Group("/api/notifications", s.requireAuth(), s.requireAction(auth.ActionNotifySend))
	{
		notifications.POST("/email", s.handleEmailSend)
		notifications.POST("/email/bulk", s.handleEmailBulk)
		notifications.POST("/email/status", s.handleEmailStatus)
		notifications.POST("/sms", s.handleSMSSend)
	}
	// Password reset is requested by users who cannot log in.
	router.POST("/api/notifications/email/reset", s.handlePasswordResetEmail)
}
