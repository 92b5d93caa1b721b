package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	invoicedomain "github.com/klinikita/billing/internal/invoice/domain"
	patientdomain "github.com/klinikita/billing/internal/patient/domain"
	"github.com/klinikita/billing/internal/providers/pdf"
)

type createInvoiceItem struct {
	Kind  string `json:"kind"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int    `json:"qty"`
}

type createInvoiceRequest struct {
	PatientID         string              `json:"patient_id"`
	PrescriptionID    string              `json:"prescription_id"`
	Items             []createInvoiceItem `json:"items"`
	TotalFinal        int64               `json:"total_final"`
	SettleImmediately bool                `json:"settle_immediately"`
	PaymentMethod     string              `json:"payment_method"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "malformed_body"))
		return
	}

	patientID, err := snowflake.ParseString(strings.TrimSpace(req.PatientID))
	if err != nil {
		AbortWithError(c, newValidationError("patient_id", "invalid_patient_id"))
		return
	}

	var prescriptionID *snowflake.ID
	if raw := strings.TrimSpace(req.PrescriptionID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("prescription_id", "invalid_prescription_id"))
			return
		}
		prescriptionID = &id
	}

	items := make([]invoicedomain.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicedomain.LineInput{
			Kind:      catalogdomain.ItemKind(item.Kind),
			Code:      item.Code,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Qty,
		})
	}

	resp, err := s.invoiceSvc.CreateInvoice(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		PatientID:         patientID,
		PrescriptionID:    prescriptionID,
		Items:             items,
		ExpectedTotal:     req.TotalFinal,
		SettleImmediately: req.SettleImmediately,
		PaymentMethod:     strings.TrimSpace(req.PaymentMethod),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"invoice_id": resp.InvoiceID.String(),
		"total":      resp.Total,
	})
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_invoice_id"))
		return
	}

	detail, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) GetInvoiceReceipt(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_invoice_id"))
		return
	}

	detail, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if detail.Payment == nil {
		AbortWithError(c, ErrInvoiceNotSettled)
		return
	}

	var pat patientdomain.Patient
	if err := s.db.WithContext(c.Request.Context()).
		First(&pat, "id = ?", detail.Invoice.PatientID).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]pdf.ReceiptItem, 0, len(detail.Lines))
	for _, line := range detail.Lines {
		items = append(items, pdf.ReceiptItem{
			Description: line.ItemName,
			Qty:         line.Quantity,
			UnitPrice:   line.UnitAmount,
			Amount:      line.Amount,
		})
	}

	reader, err := s.receipts.GenerateReceipt(c.Request.Context(), pdf.ReceiptData{
		InvoiceNumber: detail.Invoice.ID.String(),
		PatientName:   pat.FullName,
		RecordNumber:  pat.MRNo,
		DatePaid:      detail.Payment.PaidAt.Format("2006-01-02"),
		PaymentMethod: detail.Payment.Method,
		Items:         items,
		Total:         detail.Invoice.TotalAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, map[string]string{
		"Content-Disposition": `attachment; filename="receipt-` + detail.Invoice.ID.String() + `.pdf"`,
	})
}
