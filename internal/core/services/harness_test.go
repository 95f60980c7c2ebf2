package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/core/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var docSeq atomic.Uint64

// setupTestDB opens a per-test in-memory database and migrates the schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, fullName, username string, role domain.Role) *models.User {
	t.Helper()

	user := &models.User{
		FullName: fullName,
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     string(role),
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedDocument(t *testing.T, db *gorm.DB, uploadedBy uint, contentType string, sizeBytes int64) *models.Document {
	t.Helper()

	seq := docSeq.Add(1)
	doc := &models.Document{
		OwnerType:   string(domain.OwnerCustomer),
		OwnerID:     uploadedBy,
		FileName:    fmt.Sprintf("upload-%d.bin", seq),
		ContentType: contentType,
		Category:    "document",
		SizeBytes:   sizeBytes,
		StorageKey:  fmt.Sprintf("test/%d/%d", uploadedBy, seq),
		UploadedBy:  uploadedBy,
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

func seedOffer(t *testing.T, db *gorm.DB, customerID uint, status domain.OfferStatus, validUntil time.Time) *models.Offer {
	t.Helper()

	offer := &models.Offer{
		CustomerID:   customerID,
		CoverageType: string(domain.CoverageVehicle),
		Status:       string(status),
		ValidUntil:   validUntil,
		Version:      1,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

func seedPolicy(t *testing.T, db *gorm.DB, offerID uint, start, end time.Time) *models.Policy {
	t.Helper()

	seq := docSeq.Add(1)
	policy := &models.Policy{
		OfferID:      offerID,
		PolicyNumber: fmt.Sprintf("POL-TEST-%06d", seq),
		Premium:      500,
		StartDate:    start,
		EndDate:      end,
	}
	require.NoError(t, db.Create(policy).Error)
	return policy
}
