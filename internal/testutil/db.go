package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/database"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// SetupTestDB opens a private in-memory SQLite database with the read schema
// migrated. Each call gets its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:reports_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to open in-memory test database")

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateTestClient inserts a client created at the given time
func CreateTestClient(t *testing.T, db *gorm.DB, name, status, source string, vendor *string, createdAt time.Time) *domain.Client {
	t.Helper()
	client := &domain.Client{
		ID:             uuid.New(),
		Name:           name,
		Status:         status,
		LeadSource:     source,
		AssignedVendor: vendor,
		CreatedAt:      createdAt.UTC(),
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestSale inserts a sale for a property
func CreateTestSale(t *testing.T, db *gorm.DB, vendor string, price float64, clientID, propertyID *uuid.UUID, saleDate time.Time) *domain.Sale {
	t.Helper()
	sale := &domain.Sale{
		ID:             uuid.New(),
		TotalPrice:     &price,
		Currency:       "PEN",
		SaleDate:       saleDate.UTC(),
		VendorUsername: vendor,
		ClientID:       clientID,
		PropertyID:     propertyID,
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

// CreateTestInteraction inserts an interaction
func CreateTestInteraction(t *testing.T, db *gorm.DB, clientID uuid.UUID, vendor, kind, result string, at time.Time) *domain.Interaction {
	t.Helper()
	interaction := &domain.Interaction{
		ID:              uuid.New(),
		ClientID:        clientID,
		VendorUsername:  vendor,
		Type:            kind,
		Result:          result,
		InteractionDate: at.UTC(),
	}
	require.NoError(t, db.Create(interaction).Error)
	return interaction
}

// CreateTestVendor inserts a vendor
func CreateTestVendor(t *testing.T, db *gorm.DB, username string, active bool, target *float64) *domain.Vendor {
	t.Helper()
	vendor := &domain.Vendor{
		Username:           username,
		FullName:           "Vendor " + username,
		Active:             active,
		MonthlySalesTarget: target,
	}
	// Create skips zero values for columns with a default, so false is set explicitly
	require.NoError(t, db.Create(vendor).Error)
	if !active {
		require.NoError(t, db.Model(vendor).Update("active", false).Error)
	}
	return vendor
}

// CreateTestProject inserts a project
func CreateTestProject(t *testing.T, db *gorm.DB, name string) *domain.Project {
	t.Helper()
	project := &domain.Project{ID: uuid.New(), Name: name, Status: "activo"}
	require.NoError(t, db.Create(project).Error)
	return project
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
