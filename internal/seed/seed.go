package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	insurancedomain "github.com/klinikita/billing/internal/insurance/domain"
	patientdomain "github.com/klinikita/billing/internal/patient/domain"
	prescriptiondomain "github.com/klinikita/billing/internal/prescription/domain"
	"gorm.io/gorm"
)

// EnsureDemoData seeds a small catalog, a few patients, and one waiting
// prescription so a fresh install can exercise the whole billing flow.
// It is idempotent: a non-empty patient table short-circuits.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&patientdomain.Patient{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		patients := []patientdomain.Patient{
			{ID: node.Generate(), FullName: "Budi Santoso", MRNo: "MR-0001"},
			{ID: node.Generate(), FullName: "Siti Rahayu", MRNo: "MR-0002"},
			{ID: node.Generate(), FullName: "Agus Wibowo", MRNo: "MR-0003"},
		}
		if err := tx.Create(&patients).Error; err != nil {
			return err
		}

		bpjs := insurancedomain.Insurance{ID: node.Generate(), Name: "BPJS Kesehatan"}
		private := insurancedomain.Insurance{ID: node.Generate(), Name: "Asuransi Sehat Mandiri"}
		if err := tx.Create(&[]insurancedomain.Insurance{bpjs, private}).Error; err != nil {
			return err
		}
		if err := tx.Create(&insurancedomain.InsuranceCoverage{
			ID:              node.Generate(),
			InsuranceID:     private.ID,
			CoveragePercent: 80,
		}).Error; err != nil {
			return err
		}

		paracetamol := catalogdomain.Medicine{
			ID:           node.Generate(),
			KFACode:      "93001019",
			Name:         "Paracetamol 500 mg",
			DrugCategory: "generik",
			SellingPrice: 5000,
		}
		amoxicillin := catalogdomain.Medicine{
			ID:           node.Generate(),
			KFACode:      "93002054",
			Name:         "Amoxicillin 500 mg",
			SellingPrice: 8000,
		}
		if err := tx.Create(&[]catalogdomain.Medicine{paracetamol, amoxicillin}).Error; err != nil {
			return err
		}

		if err := tx.Create(&[]catalogdomain.TariffICD9{
			{ID: node.Generate(), Code: "54.91", Name: "Paracentesis abdominis", Price: 250000},
			{ID: node.Generate(), Code: "96.59", Name: "Wound irrigation", Price: 75000},
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&[]catalogdomain.TariffICD10{
			{ID: node.Generate(), Code: "J06.9", Name: "Acute upper respiratory infection", Price: 100000},
			{ID: node.Generate(), Code: "A09", Name: "Infectious gastroenteritis", Price: 125000},
		}).Error; err != nil {
			return err
		}

		prescription := prescriptiondomain.Prescription{
			ID:        node.Generate(),
			PatientID: patients[0].ID,
			Status:    prescriptiondomain.StatusWaiting,
		}
		if err := tx.Create(&prescription).Error; err != nil {
			return err
		}
		snapshot := int64(5000)
		return tx.Create(&[]prescriptiondomain.PrescriptionLine{
			{
				ID:             node.Generate(),
				PrescriptionID: prescription.ID,
				MedicineID:     paracetamol.ID,
				Quantity:       10,
				PriceSnapshot:  &snapshot,
			},
			{
				ID:             node.Generate(),
				PrescriptionID: prescription.ID,
				MedicineID:     amoxicillin.ID,
				Quantity:       15,
			},
		}).Error
	})
}
