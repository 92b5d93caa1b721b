// Package domain contains the read-only patient registry referenced by billing.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Patient rows are owned by the registration system; billing only reads them.
type Patient struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	FullName  string       `gorm:"type:text;not null" json:"name"`
	MRNo      string       `gorm:"column:mr_no;type:text;not null;uniqueIndex" json:"record_number"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Patient) TableName() string { return "patients" }

type Service interface {
	// Search matches a free-text fragment against name and record number.
	Search(ctx context.Context, query string) ([]Patient, error)
}
