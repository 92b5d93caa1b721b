package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) SearchPatients(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	patients, err := s.patientSvc.Search(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": patients})
}
