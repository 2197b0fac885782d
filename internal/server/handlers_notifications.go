package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lotworks/reconboard/internal/auth"
	"github.com/lotworks/reconboard/internal/models"
	"github.com/lotworks/reconboard/internal/notify"
	"gorm.io/gorm"
)

type emailSendRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body" binding:"required"`
}

// handleEmailSend sends one email and reports the outcome. A failed delivery
// is a successful call with success=false, not an error status.
func (s *Server) handleEmailSend(c *gin.Context) {
	var req emailSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "to and body are required")
		return
	}

	res := s.notifier.Send(c.Request.Context(), notify.Message{
		Channel: notify.ChannelEmail,
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
	})
	s.metrics.recordNotification(notify.ChannelEmail, res.Success)
	c.JSON(http.StatusOK, res)
}

type emailBulkRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body" binding:"required"`
}

// handleEmailBulk sends to each recipient in turn and returns one result per
// recipient; a failure on one recipient does not abort the rest.
func (s *Server) handleEmailBulk(c *gin.Context) {
	var req emailBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "recipients and body are required")
		return
	}

	results := s.notifier.SendBulk(c.Request.Context(), notify.ChannelEmail, req.Recipients, req.Subject, req.Body)
	for _, r := range results {
		s.metrics.recordNotification(notify.ChannelEmail, r.Success)
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type emailStatusRequest struct {
	NotificationID string `json:"notificationId" binding:"required"`
	Status         string `json:"status" binding:"required"`
}

// handleEmailStatus records a post-hoc delivery status for a notification.
func (s *Server) handleEmailStatus(c *gin.Context) {
	var req emailStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "notificationId and status are required")
		return
	}

	if err := s.notifier.UpdateStatus(req.NotificationID, req.Status); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			s.writeError(c, err)
			return
		}
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type smsSendRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// handleSMSSend sends one SMS through the (stub) SMS channel.
func (s *Server) handleSMSSend(c *gin.Context) {
	var req smsSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "to and message are required")
		return
	}

	res := s.notifier.Send(c.Request.Context(), notify.Message{
		Channel: notify.ChannelSMS,
		To:      req.To,
		Body:    req.Message,
	})
	s.metrics.recordNotification(notify.ChannelSMS, res.Success)
	c.JSON(http.StatusOK, res)
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// handlePasswordResetEmail emails a short-lived reset link to a registered
// address. Unknown addresses get 404.
func (s *Server) handlePasswordResetEmail(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "a valid email is required")
		return
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.internalError(c, err)
		return
	}

	token, _, err := auth.IssueToken(s.cfg.SessionSecret, user.ID, user.Email, user.Role)
	if err != nil {
		s.internalError(c, err)
		return
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.BaseURL, token)
	res := s.notifier.Send(c.Request.Context(), notify.Message{
		Channel: notify.ChannelEmail,
		To:      user.Email,
		Subject: "Reconboard password reset",
		Body:    fmt.Sprintf("A password reset was requested for this account.\n\nReset link: %s\n\nIf you did not request this, ignore this message.", link),
	})
	s.metrics.recordNotification(notify.ChannelEmail, res.Success)
	c.JSON(http.StatusOK, res)
}
