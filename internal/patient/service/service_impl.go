package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/klinikita/billing/internal/config"
	patientdomain "github.com/klinikita/billing/internal/patient/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Cfg config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	limit int
}

func NewService(p ServiceParam) patientdomain.Service {
	limit := p.Cfg.PatientSearchLimit
	if limit <= 0 {
		limit = 5
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("patient.service"),
		limit: limit,
	}
}

func (s *Service) Search(ctx context.Context, query string) ([]patientdomain.Patient, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var patients []patientdomain.Patient
	err := s.db.WithContext(ctx).
		Where("LOWER(full_name) LIKE ? OR LOWER(mr_no) LIKE ?", pattern, pattern).
		Order("full_name").
		Limit(s.limit).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return patients, nil
}
