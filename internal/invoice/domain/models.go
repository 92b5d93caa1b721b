// Package domain contains persistence models for invoicing and payment.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "UNPAID"
	InvoiceStatusPaid   InvoiceStatus = "PAID"
)

// Invoice is created exactly once per commit; its total is fixed at creation
// and never recomputed afterwards.
type Invoice struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	PatientID   snowflake.ID      `gorm:"not null;index" json:"patient_id"`
	TotalAmount int64             `gorm:"not null;default:0" json:"total_amount"`
	Status      InvoiceStatus     `gorm:"type:text;not null;default:'UNPAID'" json:"status"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLine carries the engine-computed amount: always unit price times
// quantity, never a caller-supplied subtotal.
type InvoiceLine struct {
	ID         snowflake.ID           `gorm:"primaryKey" json:"id"`
	InvoiceID  snowflake.ID           `gorm:"not null;index" json:"invoice_id"`
	ItemKind   catalogdomain.ItemKind `gorm:"type:text;not null" json:"kind"`
	ItemCode   string                 `gorm:"type:text;not null" json:"code"`
	ItemName   string                 `gorm:"type:text;not null" json:"name"`
	UnitAmount int64                  `gorm:"not null" json:"price"`
	Quantity   int                    `gorm:"not null" json:"qty"`
	Amount     int64                  `gorm:"not null" json:"amount"`
	CreatedAt  time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }

// Payment records an immediate point-of-sale settlement. At most one payment
// exists per invoice.
type Payment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;uniqueIndex" json:"invoice_id"`
	Amount    int64        `gorm:"not null" json:"amount"`
	Method    string       `gorm:"type:text;not null" json:"method"`
	Reference string       `gorm:"type:text;not null" json:"reference"`
	PaidAt    time.Time    `gorm:"not null" json:"paid_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

var (
	ErrPatientRequired  = errors.New("invalid_patient_id")
	ErrEmptyItems       = errors.New("empty_items")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidKind      = errors.New("invalid_item_kind")
	ErrTotalMismatch    = errors.New("total_mismatch")
	ErrPrescriptionGone = errors.New("prescription_not_claimed")
	ErrDuplicatePayment = errors.New("duplicate_payment")
	ErrNotFound         = errors.New("invoice_not_found")
)
