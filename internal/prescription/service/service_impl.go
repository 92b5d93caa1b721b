package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	prescriptiondomain "github.com/klinikita/billing/internal/prescription/domain"
	"github.com/klinikita/billing/internal/pricing"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// claimAttempts bounds the compare-and-transition loop: the first attempt
// plus one retried selection after a lost race.
const claimAttempts = 2

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p ServiceParam) prescriptiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("prescription.service"),
	}
}

// ClaimOutstanding selects the newest WAITING prescription for the patient
// and transitions it to CLAIMED in the same transaction. The conditional
// update guarantees two concurrent claims cannot both own the same
// prescription; a lost race retries selection once so a genuinely eligible
// second prescription is not reported as missing.
func (s *Service) ClaimOutstanding(ctx context.Context, patientID snowflake.ID) (prescriptiondomain.ClaimResult, error) {
	var result prescriptiondomain.ClaimResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < claimAttempts; attempt++ {
			var presc prescriptiondomain.Prescription
			err := tx.
				Where("patient_id = ? AND status = ?", patientID, prescriptiondomain.StatusWaiting).
				Order("created_at DESC, id DESC").
				First(&presc).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = prescriptiondomain.ClaimResult{Found: false}
				return nil
			}
			if err != nil {
				return fmt.Errorf("select waiting prescription: %w", err)
			}

			res := tx.Model(&prescriptiondomain.Prescription{}).
				Where("id = ? AND status = ?", presc.ID, prescriptiondomain.StatusWaiting).
				Update("status", prescriptiondomain.StatusClaimed)
			if res.Error != nil {
				return fmt.Errorf("claim prescription %d: %w", presc.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				// Lost the race to a concurrent claim. Select again against
				// the updated state rather than reporting a false not-found.
				s.log.Info("claim lost race, retrying selection",
					zap.Int64("prescription_id", int64(presc.ID)),
					zap.Int64("patient_id", int64(patientID)),
				)
				continue
			}

			items, err := s.loadResolvedItems(ctx, tx, presc.ID)
			if err != nil {
				return err
			}

			result = prescriptiondomain.ClaimResult{
				Found:          true,
				PrescriptionID: presc.ID,
				Items:          items,
			}
			return nil
		}
		return prescriptiondomain.ErrClaimConflict
	})
	if err != nil {
		return prescriptiondomain.ClaimResult{}, err
	}
	return result, nil
}

type claimedLineRow struct {
	Quantity      int
	Subtotal      *int64
	PriceSnapshot *int64
	Code          string
	Name          string
	DrugCategory  string
	SellingPrice  int64
}

func (s *Service) loadResolvedItems(ctx context.Context, tx *gorm.DB, prescriptionID snowflake.ID) ([]prescriptiondomain.ClaimedItem, error) {
	var rows []claimedLineRow
	err := tx.WithContext(ctx).
		Table("prescription_lines AS pl").
		Select("pl.quantity, pl.subtotal, pl.price_snapshot, m.kfa_code AS code, m.name, m.drug_category, m.selling_price").
		Joins("JOIN medicines m ON m.id = pl.medicine_id").
		Where("pl.prescription_id = ?", prescriptionID).
		Order("pl.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load prescription lines: %w", err)
	}

	items := make([]prescriptiondomain.ClaimedItem, 0, len(rows))
	for _, row := range rows {
		qty := pricing.NormalizeQuantity(row.Quantity)
		catalogPrice := row.SellingPrice

		category := row.DrugCategory
		if category == "" {
			category = catalogdomain.DefaultDrugCategory
		}

		items = append(items, prescriptiondomain.ClaimedItem{
			Code:         row.Code,
			Name:         row.Name,
			DrugCategory: category,
			Kind:         catalogdomain.KindDrug,
			Quantity:     qty,
			UnitPrice:    pricing.ResolveUnitPrice(row.Quantity, row.Subtotal, row.PriceSnapshot, &catalogPrice),
		})
	}
	return items, nil
}
