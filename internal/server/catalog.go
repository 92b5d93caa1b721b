package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) SearchMasterCatalog(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	items, err := s.catalogSvc.Search(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
