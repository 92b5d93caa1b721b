// Package domain contains the prescription workflow state billed by the POS.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
)

// PrescriptionStatus is the closed lifecycle of a prescription. The status
// only ever moves forward: WAITING -> CLAIMED -> BILLED.
type PrescriptionStatus string

const (
	StatusWaiting PrescriptionStatus = "WAITING"
	StatusClaimed PrescriptionStatus = "CLAIMED"
	StatusBilled  PrescriptionStatus = "BILLED"
)

// Prescription is created by the prescribing workflow and mutated here only
// through the claim transition. Rows are never deleted by billing.
type Prescription struct {
	ID        snowflake.ID       `gorm:"primaryKey"`
	PatientID snowflake.ID       `gorm:"not null;index"`
	Status    PrescriptionStatus `gorm:"type:text;not null;default:'WAITING';index"`
	CreatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Prescription) TableName() string { return "prescriptions" }

// PrescriptionLine is immutable once written by the prescribing workflow.
type PrescriptionLine struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	PrescriptionID snowflake.ID `gorm:"not null;index"`
	MedicineID     snowflake.ID `gorm:"not null;index"`
	Quantity       int          `gorm:"not null;default:1"`
	Subtotal       *int64       `gorm:""`
	PriceSnapshot  *int64       `gorm:""`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PrescriptionLine) TableName() string { return "prescription_lines" }

// ClaimedItem is a prescription line stamped with its resolved unit price.
type ClaimedItem struct {
	Code         string                 `json:"code"`
	Name         string                 `json:"name"`
	DrugCategory string                 `json:"drug_category"`
	Kind         catalogdomain.ItemKind `json:"kind"`
	Quantity     int                    `json:"qty"`
	UnitPrice    int64                  `json:"price"`
}

// ClaimResult reports the outcome of a claim attempt. Found == false is a
// normal outcome, not an error.
type ClaimResult struct {
	Found          bool
	PrescriptionID snowflake.ID
	Items          []ClaimedItem
}

// ErrClaimConflict is returned when the compare-and-transition lost the race
// and the single bounded retry lost it again.
var ErrClaimConflict = errors.New("prescription_claim_conflict")

type Service interface {
	// ClaimOutstanding atomically claims the newest waiting prescription for
	// the patient and returns its price-resolved lines.
	ClaimOutstanding(ctx context.Context, patientID snowflake.ID) (ClaimResult, error)
}
