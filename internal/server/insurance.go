package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListInsurances(c *gin.Context) {
	insurances, err := s.insuranceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": insurances})
}
