package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) ClaimOutstandingPrescription(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("patient_id"))
	patientID, err := snowflake.ParseString(raw)
	if err != nil || patientID == 0 {
		AbortWithError(c, newValidationError("patient_id", "invalid_patient_id"))
		return
	}

	result, err := s.prescriptionSvc.ClaimOutstanding(c.Request.Context(), patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !result.Found {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"found":           true,
		"prescription_id": result.PrescriptionID.String(),
		"items":           result.Items,
	})
}
