package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lotworks/reconboard/internal/models"
	"github.com/lotworks/reconboard/internal/timeline"
	"github.com/lotworks/reconboard/internal/vehicle"
	"github.com/lotworks/reconboard/internal/workflow"
	"gorm.io/gorm"
)

type reconWebhookPayload struct {
	VIN             string `json:"vin"`
	Status          string `json:"status"`
	CurrentLocation string `json:"currentLocation"`
	EventType       string `json:"eventType"`
	Description     string `json:"description"`
	AssignedToEmail string `json:"assignedToEmail"`
}

// handleReconWebhook ingests a push from an external recon system. The VIN
// must reference a known vehicle before any writes happen; a payload for an
// unknown VIN changes nothing.
func (s *Server) handleReconWebhook(c *gin.Context) {
	var payload reconWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "body must be a JSON object")
		return
	}
	if payload.VIN == "" {
		badRequest(c, "vin is required")
		return
	}

	ok, err := vehicle.Exists(s.db, payload.VIN)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		s.writeError(c, vehicle.ErrNotFound)
		return
	}

	if payload.AssignedToEmail != "" {
		var user models.User
		err := s.db.Where("email = ?", payload.AssignedToEmail).First(&user).Error
		switch {
		case err == nil:
			if err := vehicle.Assign(s.db, payload.VIN, user.ID); err != nil {
				s.writeError(c, err)
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			badRequest(c, "assignedToEmail does not match a known user")
			return
		default:
			s.internalError(c, err)
			return
		}
	}

	if payload.CurrentLocation != "" {
		if _, err := vehicle.Update(s.db, payload.VIN, map[string]interface{}{
			"location": payload.CurrentLocation,
		}); err != nil {
			s.writeError(c, err)
			return
		}
	}

	if payload.Status != "" {
		res, err := s.coord.Transition(c.Request.Context(), payload.VIN, payload.Status, nil, workflow.Meta{Source: "webhook"})
		if err != nil {
			s.writeError(c, err)
			return
		}
		s.metrics.recordTransition(res.Vehicle.Status)
	}

	if payload.EventType != "" {
		if _, err := timeline.Record(s.db, payload.VIN, payload.EventType, payload.Description,
			timeline.RecordOpts{}); err != nil {
			s.writeError(c, err)
			return
		}
	}

	v, err := vehicle.Get(s.db, payload.VIN)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": v})
}
