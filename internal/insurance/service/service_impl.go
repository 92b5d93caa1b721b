package service

import (
	"context"
	"fmt"

	insurancedomain "github.com/klinikita/billing/internal/insurance/domain"
	"github.com/klinikita/billing/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	log           *zap.Logger
	insurancerepo repository.Repository[insurancedomain.Insurance]
	coveragerepo  repository.Repository[insurancedomain.InsuranceCoverage]
}

func NewService(p ServiceParam) insurancedomain.Service {
	return &Service{
		log:           p.Log.Named("insurance.service"),
		insurancerepo: repository.ProvideStore[insurancedomain.Insurance](p.DB),
		coveragerepo:  repository.ProvideStore[insurancedomain.InsuranceCoverage](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]insurancedomain.View, error) {
	insurances, err := s.insurancerepo.Find(ctx, &insurancedomain.Insurance{})
	if err != nil {
		return nil, fmt.Errorf("list insurances: %w", err)
	}

	coverages, err := s.coveragerepo.Find(ctx, &insurancedomain.InsuranceCoverage{})
	if err != nil {
		return nil, fmt.Errorf("list insurance coverages: %w", err)
	}

	byInsurance := make(map[int64]int64, len(coverages))
	for _, coverage := range coverages {
		byInsurance[int64(coverage.InsuranceID)] = coverage.CoveragePercent
	}

	views := make([]insurancedomain.View, 0, len(insurances))
	for _, ins := range insurances {
		percent, ok := byInsurance[int64(ins.ID)]
		if !ok {
			percent = 100
		}
		views = append(views, insurancedomain.View{
			ID:              ins.ID,
			Name:            ins.Name,
			CoveragePercent: percent,
		})
	}
	return views, nil
}
