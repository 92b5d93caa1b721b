package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Medicine{},
		&catalogdomain.TariffICD9{},
		&catalogdomain.TariffICD10{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func newTestService(t *testing.T, db *gorm.DB, limit int) *Service {
	t.Helper()
	return &Service{db: db, log: zap.NewNop(), limit: limit}
}

func seedCatalogs(t *testing.T, db *gorm.DB) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	medicines := []catalogdomain.Medicine{
		{ID: node.Generate(), KFACode: "KFA-001", Name: "Paracetamol 500 mg", DrugCategory: "generik", SellingPrice: 2000},
		{ID: node.Generate(), KFACode: "KFA-002", Name: "Amoxicillin 500 mg", DrugCategory: "generik", SellingPrice: 3500},
	}
	require.NoError(t, db.Create(&medicines).Error)

	icd9 := []catalogdomain.TariffICD9{
		{ID: node.Generate(), Code: "54.91", Name: "Paracentesis abdominis", Price: 150000},
	}
	require.NoError(t, db.Create(&icd9).Error)

	icd10 := []catalogdomain.TariffICD10{
		{ID: node.Generate(), Code: "J00", Name: "Acute nasopharyngitis", Price: 50000},
	}
	require.NoError(t, db.Create(&icd10).Error)
}

func TestSearchMergesCatalogsDrugsFirst(t *testing.T) {
	db := setupTestDB(t)
	seedCatalogs(t, db)
	svc := newTestService(t, db, 20)

	items, err := svc.Search(context.Background(), "  PARA  ")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, catalogdomain.KindDrug, items[0].Kind)
	assert.Equal(t, "KFA-001", items[0].Code)
	assert.Equal(t, int64(2000), items[0].Price)

	assert.Equal(t, catalogdomain.KindProcedureICD9, items[1].Kind)
	assert.Equal(t, "54.91", items[1].Code)
}

func TestSearchMatchesByCode(t *testing.T) {
	db := setupTestDB(t)
	seedCatalogs(t, db)
	svc := newTestService(t, db, 20)

	items, err := svc.Search(context.Background(), "j00")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, catalogdomain.KindProcedureICD10, items[0].Kind)
	assert.Equal(t, int64(50000), items[0].Price)
}

func TestSearchCapsEachCatalogIndependently(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, 3)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		med := catalogdomain.Medicine{
			ID:           node.Generate(),
			KFACode:      fmt.Sprintf("KFA-%03d", i),
			Name:         fmt.Sprintf("Vitamin B%d", i),
			SellingPrice: 1000,
		}
		require.NoError(t, db.Create(&med).Error)
		tariff := catalogdomain.TariffICD9{
			ID:    node.Generate(),
			Code:  fmt.Sprintf("99.%02d", i),
			Name:  fmt.Sprintf("Vitamin injection %d", i),
			Price: 25000,
		}
		require.NoError(t, db.Create(&tariff).Error)
	}

	items, err := svc.Search(context.Background(), "vitamin")
	require.NoError(t, err)
	require.Len(t, items, 6, "each catalog contributes at most its cap")
	for _, item := range items[:3] {
		assert.Equal(t, catalogdomain.KindDrug, item.Kind)
	}
	for _, item := range items[3:] {
		assert.Equal(t, catalogdomain.KindProcedureICD9, item.Kind)
	}
}

func TestSearchSkipsFailingCatalog(t *testing.T) {
	db := setupTestDB(t)
	seedCatalogs(t, db)
	svc := newTestService(t, db, 20)

	require.NoError(t, db.Migrator().DropTable(&catalogdomain.TariffICD9{}))

	items, err := svc.Search(context.Background(), "para")
	require.NoError(t, err, "a missing catalog degrades, it does not fail the search")
	require.Len(t, items, 1)
	assert.Equal(t, catalogdomain.KindDrug, items[0].Kind)
}
