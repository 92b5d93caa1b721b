// Package domain contains the reference catalogs billable items are drawn from.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ItemKind tags the catalog an invoice line originated from.
type ItemKind string

const (
	KindDrug           ItemKind = "drug"
	KindProcedureICD9  ItemKind = "icd9"
	KindProcedureICD10 ItemKind = "icd10"
	KindManual         ItemKind = "manual"
)

// Valid reports whether k is one of the closed set of item kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindDrug, KindProcedureICD9, KindProcedureICD10, KindManual:
		return true
	default:
		return false
	}
}

// DefaultDrugCategory is stamped on drug lines whose catalog entry has no category.
const DefaultDrugCategory = "non-generik"

// Medicine is a drug catalog entry.
type Medicine struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	KFACode      string       `gorm:"column:kfa_code;type:text;not null;uniqueIndex"`
	Name         string       `gorm:"type:text;not null"`
	DrugCategory string       `gorm:"type:text"`
	SellingPrice int64        `gorm:"not null;default:0"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Medicine) TableName() string { return "medicines" }

// TariffICD9 is a procedure tariff entry keyed by ICD-9-CM code.
type TariffICD9 struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Code      string       `gorm:"type:text;not null;uniqueIndex"`
	Name      string       `gorm:"type:text;not null"`
	Price     int64        `gorm:"not null;default:0"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TariffICD9) TableName() string { return "tariff_icd9" }

// TariffICD10 is a diagnosis tariff entry keyed by ICD-10 code.
type TariffICD10 struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Code      string       `gorm:"type:text;not null;uniqueIndex"`
	Name      string       `gorm:"type:text;not null"`
	Price     int64        `gorm:"not null;default:0"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TariffICD10) TableName() string { return "tariff_icd10" }

// Item is the uniform projection every catalog search result is mapped to.
type Item struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Price int64    `json:"price"`
	Kind  ItemKind `json:"kind"`
}

type Service interface {
	// Search returns a bounded union of matches across all catalogs,
	// drug entries first. An unavailable catalog is skipped.
	Search(ctx context.Context, query string) ([]Item, error)
}
