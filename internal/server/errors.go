package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lotworks/reconboard/internal/notify"
	"github.com/lotworks/reconboard/internal/vehicle"
	"github.com/lotworks/reconboard/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// writeError maps a service error onto the HTTP taxonomy. Anything
// unrecognized becomes a 500 with the detail logged, not leaked.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vehicle.ErrNotFound),
		errors.Is(err, notify.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, vehicle.ErrDuplicateVIN),
		errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, workflow.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.internalError(c, err)
	}
}

// internalError logs the detail and returns a generic 500 body.
func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error("internal error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// badRequest returns a 400 with the given message.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
