package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	patientdomain "github.com/klinikita/billing/internal/patient/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&patientdomain.Patient{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func seedPatients(t *testing.T, db *gorm.DB) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	patients := []patientdomain.Patient{
		{ID: node.Generate(), FullName: "Budi Santoso", MRNo: "MR-0001"},
		{ID: node.Generate(), FullName: "Siti Rahayu", MRNo: "MR-0002"},
		{ID: node.Generate(), FullName: "Agus Wibowo", MRNo: "MR-0003"},
	}
	require.NoError(t, db.Create(&patients).Error)
}

func TestSearchMatchesNameCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	seedPatients(t, db)
	svc := &Service{db: db, log: zap.NewNop(), limit: 5}

	patients, err := svc.Search(context.Background(), "BUDI")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "MR-0001", patients[0].MRNo)
}

func TestSearchMatchesRecordNumber(t *testing.T) {
	db := setupTestDB(t)
	seedPatients(t, db)
	svc := &Service{db: db, log: zap.NewNop(), limit: 5}

	patients, err := svc.Search(context.Background(), "mr-0002")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "Siti Rahayu", patients[0].FullName)
}

func TestSearchHonorsLimit(t *testing.T) {
	db := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		p := patientdomain.Patient{
			ID:       node.Generate(),
			FullName: fmt.Sprintf("Pasien %02d", i),
			MRNo:     fmt.Sprintf("MR-%04d", 100+i),
		}
		require.NoError(t, db.Create(&p).Error)
	}
	svc := &Service{db: db, log: zap.NewNop(), limit: 5}

	patients, err := svc.Search(context.Background(), "pasien")
	require.NoError(t, err)
	assert.Len(t, patients, 5)
}
