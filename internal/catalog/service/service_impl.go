package service

import (
	"context"
	"strings"

	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	"github.com/klinikita/billing/internal/config"
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

func NewService(p ServiceParam) catalogdomain.Service {
	limit := p.Cfg.CatalogSearchLimit
	if limit <= 0 {
		limit = 20
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		limit: limit,
	}
}

// Search merges per-catalog matches in a fixed order: drugs, then ICD-9
// procedures, then ICD-10 diagnoses. Each catalog is capped independently
// and a failing catalog degrades to an empty contribution.
func (s *Service) Search(ctx context.Context, query string) ([]catalogdomain.Item, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	items := make([]catalogdomain.Item, 0, 3*s.limit)
	items = append(items, s.searchMedicines(ctx, pattern)...)
	items = append(items, s.searchTariffICD9(ctx, pattern)...)
	items = append(items, s.searchTariffICD10(ctx, pattern)...)
	return items, nil
}

func (s *Service) searchMedicines(ctx context.Context, pattern string) []catalogdomain.Item {
	var rows []catalogdomain.Medicine
	err := s.db.WithContext(ctx).
		Where("LOWER(kfa_code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("name").
		Limit(s.limit).
		Find(&rows).Error
	if err != nil {
		s.log.Warn("medicine catalog unavailable, skipping", zap.Error(err))
		return nil
	}

	items := make([]catalogdomain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, catalogdomain.Item{
			Code:  row.KFACode,
			Name:  row.Name,
			Price: row.SellingPrice,
			Kind:  catalogdomain.KindDrug,
		})
	}
	return items
}

func (s *Service) searchTariffICD9(ctx context.Context, pattern string) []catalogdomain.Item {
	var rows []catalogdomain.TariffICD9
	err := s.db.WithContext(ctx).
		Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("name").
		Limit(s.limit).
		Find(&rows).Error
	if err != nil {
		s.log.Warn("icd9 tariff catalog unavailable, skipping", zap.Error(err))
		return nil
	}

	items := make([]catalogdomain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, catalogdomain.Item{
			Code:  row.Code,
			Name:  row.Name,
			Price: row.Price,
			Kind:  catalogdomain.KindProcedureICD9,
		})
	}
	return items
}

func (s *Service) searchTariffICD10(ctx context.Context, pattern string) []catalogdomain.Item {
	var rows []catalogdomain.TariffICD10
	err := s.db.WithContext(ctx).
		Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Order("name").
		Limit(s.limit).
		Find(&rows).Error
	if err != nil {
		s.log.Warn("icd10 tariff catalog unavailable, skipping", zap.Error(err))
		return nil
	}

	items := make([]catalogdomain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, catalogdomain.Item{
			Code:  row.Code,
			Name:  row.Name,
			Price: row.Price,
			Kind:  catalogdomain.KindProcedureICD10,
		})
	}
	return items
}
