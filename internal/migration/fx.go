package migration

import (
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	"github.com/klinikita/billing/internal/config"
	insurancedomain "github.com/klinikita/billing/internal/insurance/domain"
	invoicedomain "github.com/klinikita/billing/internal/invoice/domain"
	patientdomain "github.com/klinikita/billing/internal/patient/domain"
	prescriptiondomain "github.com/klinikita/billing/internal/prescription/domain"
	"github.com/klinikita/billing/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev conveniences; the schema is derived
			// from the models there instead of the versioned SQL.
			if err := conn.AutoMigrate(
				&patientdomain.Patient{},
				&insurancedomain.Insurance{},
				&insurancedomain.InsuranceCoverage{},
				&catalogdomain.Medicine{},
				&catalogdomain.TariffICD9{},
				&catalogdomain.TariffICD10{},
				&prescriptiondomain.Prescription{},
				&prescriptiondomain.PrescriptionLine{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceLine{},
				&invoicedomain.Payment{},
			); err != nil {
				return err
			}
		}

		if cfg.BootstrapDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
