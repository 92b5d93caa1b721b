package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
)

// LineInput is one cart line as assembled by the caller. The unit price and
// quantity are validated; the line amount is always recomputed server-side.
type LineInput struct {
	Kind      catalogdomain.ItemKind
	Code      string
	Name      string
	UnitPrice int64
	Quantity  int
}

type CreateInvoiceRequest struct {
	PatientID snowflake.ID
	// PrescriptionID links the invoice back to a previously claimed
	// prescription; the commit transitions it to BILLED atomically.
	PrescriptionID *snowflake.ID
	Items          []LineInput
	// ExpectedTotal is the client-side cart total, validated against the
	// engine-computed total within a per-line rounding tolerance.
	ExpectedTotal     int64
	SettleImmediately bool
	PaymentMethod     string
}

type CreateInvoiceResponse struct {
	InvoiceID snowflake.ID `json:"invoice_id"`
	Total     int64        `json:"total"`
}

// Detail is an invoice with its lines and optional settlement.
type Detail struct {
	Invoice Invoice       `json:"invoice"`
	Lines   []InvoiceLine `json:"lines"`
	Payment *Payment      `json:"payment,omitempty"`
}

type Service interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (CreateInvoiceResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (Detail, error)
}
