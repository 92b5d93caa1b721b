package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	invoicedomain "github.com/klinikita/billing/internal/invoice/domain"
	prescriptiondomain "github.com/klinikita/billing/internal/prescription/domain"
	"github.com/klinikita/billing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
	}
}

// CreateInvoice persists the header, every line, and the optional immediate
// settlement as one transaction. Line amounts and the invoice total are
// computed here; the caller-supplied total is only validated against them.
func (s *Service) CreateInvoice(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.CreateInvoiceResponse, error) {
	if err := validateRequest(req); err != nil {
		return invoicedomain.CreateInvoiceResponse{}, err
	}

	lines, total := computeLines(s.genID, req.Items)

	// One minor unit of rounding slack per line keeps a client that rounded
	// per-line honest without rejecting benign drift.
	if diff := total - req.ExpectedTotal; diff > int64(len(lines)) || diff < -int64(len(lines)) {
		return invoicedomain.CreateInvoiceResponse{}, fmt.Errorf("%w: computed %d, caller sent %d",
			invoicedomain.ErrTotalMismatch, total, req.ExpectedTotal)
	}

	invoice := invoicedomain.Invoice{
		ID:          s.genID.Generate(),
		PatientID:   req.PatientID,
		TotalAmount: total,
		Status:      invoicedomain.InvoiceStatusUnpaid,
		Metadata:    buildMetadata(req),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("insert invoice lines: %w", err)
		}

		if req.PrescriptionID != nil {
			res := tx.Model(&prescriptiondomain.Prescription{}).
				Where("id = ? AND status = ?", *req.PrescriptionID, prescriptiondomain.StatusClaimed).
				Update("status", prescriptiondomain.StatusBilled)
			if res.Error != nil {
				return fmt.Errorf("bill prescription %d: %w", *req.PrescriptionID, res.Error)
			}
			if res.RowsAffected == 0 {
				return invoicedomain.ErrPrescriptionGone
			}
		}

		if req.SettleImmediately {
			payment := invoicedomain.Payment{
				ID:        s.genID.Generate(),
				InvoiceID: invoice.ID,
				Amount:    total,
				Method:    paymentMethod(req.PaymentMethod),
				Reference: uuid.NewString(),
				PaidAt:    time.Now().UTC(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				if db.IsDuplicateKeyErr(err) {
					return invoicedomain.ErrDuplicatePayment
				}
				return fmt.Errorf("insert payment: %w", err)
			}
			if err := tx.Model(&invoicedomain.Invoice{}).
				Where("id = ?", invoice.ID).
				Update("status", invoicedomain.InvoiceStatusPaid).Error; err != nil {
				return fmt.Errorf("mark invoice paid: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return invoicedomain.CreateInvoiceResponse{}, err
	}

	s.log.Info("invoice created",
		zap.Int64("invoice_id", int64(invoice.ID)),
		zap.Int64("patient_id", int64(req.PatientID)),
		zap.Int64("total", total),
		zap.Int("lines", len(lines)),
		zap.Bool("settled", req.SettleImmediately),
	)

	return invoicedomain.CreateInvoiceResponse{InvoiceID: invoice.ID, Total: total}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.Detail, error) {
	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invoicedomain.Detail{}, invoicedomain.ErrNotFound
	}
	if err != nil {
		return invoicedomain.Detail{}, fmt.Errorf("load invoice: %w", err)
	}

	var lines []invoicedomain.InvoiceLine
	if err := s.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Order("id").
		Find(&lines).Error; err != nil {
		return invoicedomain.Detail{}, fmt.Errorf("load invoice lines: %w", err)
	}

	detail := invoicedomain.Detail{Invoice: invoice, Lines: lines}

	var payment invoicedomain.Payment
	err = s.db.WithContext(ctx).First(&payment, "invoice_id = ?", id).Error
	switch {
	case err == nil:
		detail.Payment = &payment
	case errors.Is(err, gorm.ErrRecordNotFound):
		// unsettled invoice
	default:
		return invoicedomain.Detail{}, fmt.Errorf("load payment: %w", err)
	}

	return detail, nil
}

func validateRequest(req invoicedomain.CreateInvoiceRequest) error {
	if req.PatientID == 0 {
		return invoicedomain.ErrPatientRequired
	}
	if len(req.Items) == 0 {
		return invoicedomain.ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: %q", invoicedomain.ErrInvalidQuantity, item.Code)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: %q", invoicedomain.ErrInvalidPrice, item.Code)
		}
		if !item.Kind.Valid() {
			return fmt.Errorf("%w: %q", invoicedomain.ErrInvalidKind, item.Kind)
		}
	}
	return nil
}

func computeLines(genID *snowflake.Node, items []invoicedomain.LineInput) ([]invoicedomain.InvoiceLine, int64) {
	lines := make([]invoicedomain.InvoiceLine, 0, len(items))
	var total int64
	for _, item := range items {
		amount := item.UnitPrice * int64(item.Quantity)
		total += amount
		lines = append(lines, invoicedomain.InvoiceLine{
			ID:         genID.Generate(),
			ItemKind:   item.Kind,
			ItemCode:   item.Code,
			ItemName:   item.Name,
			UnitAmount: item.UnitPrice,
			Quantity:   item.Quantity,
			Amount:     amount,
		})
	}
	return lines, total
}

func buildMetadata(req invoicedomain.CreateInvoiceRequest) datatypes.JSONMap {
	meta := datatypes.JSONMap{"source": "manual"}
	if req.PrescriptionID != nil {
		meta["source"] = "prescription"
		meta["prescription_id"] = req.PrescriptionID.String()
	}
	return meta
}

func paymentMethod(method string) string {
	if method == "" {
		return "cash"
	}
	return method
}
