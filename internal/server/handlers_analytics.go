package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleAnalyticsSummary returns the board summary for the dashboards.
func (s *Server) handleAnalyticsSummary(c *gin.Context) {
	sum, err := s.analytics.Summary(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
