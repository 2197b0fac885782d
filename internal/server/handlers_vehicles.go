package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lotworks/reconboard/internal/timeline"
	"github.com/lotworks/reconboard/internal/vehicle"
	"github.com/lotworks/reconboard/internal/workflow"
)

// handleVehicleList returns the board page matching the query filters.
func (s *Server) handleVehicleList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	vehicles, total, err := vehicle.List(s.db, vehicle.ListFilters{
		Status:   c.Query("status"),
		Make:     c.Query("make"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  vehicles,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

type vehicleCreateRequest struct {
	VIN      string `json:"vin" binding:"required"`
	Make     string `json:"make" binding:"required"`
	Model    string `json:"model" binding:"required"`
	Year     int    `json:"year"`
	Mileage  int    `json:"mileage"`
	Color    string `json:"color"`
	Priority string `json:"priority"`
	Location string `json:"location"`
}

// handleVehicleCreate registers a vehicle and records the intake event.
func (s *Server) handleVehicleCreate(c *gin.Context) {
	var req vehicleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "vin, make, and model are required")
		return
	}

	v, err := vehicle.Create(s.db, vehicle.CreateOpts{
		VIN:      req.VIN,
		Make:     req.Make,
		Model:    req.Model,
		Year:     req.Year,
		Mileage:  req.Mileage,
		Color:    req.Color,
		Priority: req.Priority,
		Location: req.Location,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	actor := s.currentUser(c)
	var actorID *uint
	if actor != nil {
		actorID = &actor.ID
	}
	if _, err := timeline.Record(s.db, v.VIN, "INTAKE", "Vehicle added to the board",
		timeline.RecordOpts{UserID: actorID}); err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, v)
}

// handleVehicleGet returns a single vehicle with its assignee and timeline.
func (s *Server) handleVehicleGet(c *gin.Context) {
	v, err := vehicle.Get(s.db, c.Param("vin"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// handleVehicleUpdate applies a partial update. A "status" field is routed
// through the transition coordinator; everything else is a plain field write.
func (s *Server) handleVehicleUpdate(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		badRequest(c, "body must be a JSON object")
		return
	}

	vin := c.Param("vin")

	if rawStatus, ok := updates["status"]; ok {
		status, ok := rawStatus.(string)
		if !ok {
			badRequest(c, "status must be a string")
			return
		}
		delete(updates, "status")

		res, err := s.coord.Transition(c.Request.Context(), vin, status, s.currentUser(c), workflow.Meta{Source: "api"})
		if err != nil {
			s.writeError(c, err)
			return
		}
		s.metrics.recordTransition(status)

		if len(updates) == 0 {
			c.JSON(http.StatusOK, res.Vehicle)
			return
		}
	}

	v, err := vehicle.Update(s.db, vin, updates)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// handleVehicleDelete hard-deletes a vehicle.
func (s *Server) handleVehicleDelete(c *gin.Context) {
	if err := vehicle.Delete(s.db, c.Param("vin")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// handleVehicleTimeline returns a vehicle's events, newest first.
func (s *Server) handleVehicleTimeline(c *gin.Context) {
	vin := c.Param("vin")
	ok, err := vehicle.Exists(s.db, vin)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		s.writeError(c, vehicle.ErrNotFound)
		return
	}

	events, err := timeline.List(s.db, vin)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}
