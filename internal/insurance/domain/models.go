// Package domain contains the insurance registry exposed to the POS frontend.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Insurance struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Insurance) TableName() string { return "insurances" }

type InsuranceCoverage struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	InsuranceID     snowflake.ID `gorm:"not null;index"`
	CoveragePercent int64        `gorm:"not null;default:100"`
}

// TableName sets the database table name.
func (InsuranceCoverage) TableName() string { return "insurance_coverages" }

// View is the projection returned to callers. Coverage defaults to 100
// when no coverage row exists for the insurer.
type View struct {
	ID              snowflake.ID `json:"id"`
	Name            string       `json:"name"`
	CoveragePercent int64        `json:"coverage_percent"`
}

type Service interface {
	List(ctx context.Context) ([]View, error)
}
