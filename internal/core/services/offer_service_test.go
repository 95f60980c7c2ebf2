package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOfferService(db *gorm.DB) *OfferService {
	return NewOfferService(
		repositories.NewOfferRepository(db),
		repositories.NewDocumentRepository(db),
		repositories.NewUserRepository(db),
		nil,
	)
}

func TestOfferService_Create_AttachesReferencedDocuments(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	report := seedDocument(t, db, customer.ID, "application/pdf", 2048)

	offer, err := svc.Create(ctx, &CreateOfferInput{
		CoverageType: string(domain.CoverageVehicle),
		Description:  "Family car",
		UnderwritingData: map[string]string{
			"vehicle_type":     "car",
			"accident_history": strconv.FormatUint(uint64(report.ID), 10),
		},
	}, customer.ID)
	require.NoError(t, err)

	assert.Equal(t, string(domain.OfferPending), offer.Status)
	assert.Equal(t, uint(1), offer.Version)
	assert.False(t, offer.CustomerApproved)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, OfferValidityDays), offer.ValidUntil, time.Minute)

	// The referenced document now belongs to the offer
	var attached models.Document
	require.NoError(t, db.First(&attached, report.ID).Error)
	assert.Equal(t, string(domain.OwnerOffer), attached.OwnerType)
	assert.Equal(t, offer.ID, attached.OwnerID)
	assert.True(t, attached.Finalized)
}

func TestOfferService_Create_RejectsUnknownChoice(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	report := seedDocument(t, db, customer.ID, "application/pdf", 2048)

	_, err := svc.Create(context.Background(), &CreateOfferInput{
		CoverageType: string(domain.CoverageVehicle),
		UnderwritingData: map[string]string{
			"vehicle_type":     "submarine",
			"accident_history": strconv.FormatUint(uint64(report.ID), 10),
		},
	}, customer.ID)
	require.Error(t, err)

	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "vehicle_type", ve.Field)
}

func TestOfferService_Create_RejectsForeignDocument(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)
	report := seedDocument(t, db, other.ID, "application/pdf", 2048)

	_, err := svc.Create(context.Background(), &CreateOfferInput{
		CoverageType: string(domain.CoverageVehicle),
		UnderwritingData: map[string]string{
			"vehicle_type":     "car",
			"accident_history": strconv.FormatUint(uint64(report.ID), 10),
		},
	}, customer.ID)
	require.Error(t, err)

	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "accident_history", ve.Field)
}

func TestOfferService_Create_RejectsWrongContentType(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	photo := seedDocument(t, db, customer.ID, "image/png", 2048)

	_, err := svc.Create(context.Background(), &CreateOfferInput{
		CoverageType: string(domain.CoverageVehicle),
		UnderwritingData: map[string]string{
			"vehicle_type":     "car",
			"accident_history": strconv.FormatUint(uint64(photo.ID), 10),
		},
	}, customer.ID)
	require.Error(t, err)

	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "accident_history", ve.Field)
}

func TestOfferService_Price_ComputesAndApproves(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	offer := seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, 30))

	priced, err := svc.Price(ctx, offer.ID, &PriceOfferInput{
		BasePrice:    800,
		DiscountRate: 0,
		CoverageTier: int(domain.TierBasic),
		Status:       string(domain.OfferApproved),
		ReviewerNote: "Clean record",
	}, agent.ID)
	require.NoError(t, err)

	assert.InDelta(t, 800.0, priced.FinalPrice, 0.001)
	assert.Equal(t, string(domain.OfferApproved), priced.Status)
	require.NotNil(t, priced.ReviewerID)
	assert.Equal(t, agent.ID, *priced.ReviewerID)

	var stored models.Offer
	require.NoError(t, db.First(&stored, offer.ID).Error)
	assert.Equal(t, uint(2), stored.Version)
	assert.InDelta(t, 800.0, stored.FinalPrice, 0.001)
}

func TestOfferService_Price_LockedAfterCustomerApproval(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	offer := seedOffer(t, db, customer.ID, domain.OfferApproved, time.Now().AddDate(0, 0, 30))
	require.NoError(t, db.Model(offer).Update("customer_approved", true).Error)

	_, err := svc.Price(context.Background(), offer.ID, &PriceOfferInput{BasePrice: 900}, agent.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOfferService_Price_ExpiredPendingBecomesExpired(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	offer := seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, -1))

	_, err := svc.Price(context.Background(), offer.ID, &PriceOfferInput{BasePrice: 500}, agent.ID)
	assert.ErrorIs(t, err, domain.ErrIneligible)

	var stored models.Offer
	require.NoError(t, db.First(&stored, offer.ID).Error)
	assert.Equal(t, string(domain.OfferExpired), stored.Status)
}

func TestOfferService_Price_TerminalStatusBlocked(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	offer := seedOffer(t, db, customer.ID, domain.OfferRejected, time.Now().AddDate(0, 0, 30))

	_, err := svc.Price(context.Background(), offer.ID, &PriceOfferInput{BasePrice: 500}, agent.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOfferService_GetByID_ReconcilesExpiry(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	offer := seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, -2))

	got, err := svc.GetByID(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferExpired), got.Status)

	var stored models.Offer
	require.NoError(t, db.First(&stored, offer.ID).Error)
	assert.Equal(t, string(domain.OfferExpired), stored.Status)
	assert.Equal(t, uint(2), stored.Version)
}

func TestOfferService_Delete_OwnershipAndLock(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)
	offer := seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, 30))

	err := svc.Delete(ctx, offer.ID, other.ID, string(domain.RoleCustomer))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, db.Model(offer).Update("customer_approved", true).Error)
	err = svc.Delete(ctx, offer.ID, customer.ID, string(domain.RoleCustomer))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	require.NoError(t, db.Model(offer).Update("customer_approved", false).Error)
	require.NoError(t, svc.Delete(ctx, offer.ID, customer.ID, string(domain.RoleCustomer)))

	_, err = svc.GetByID(ctx, offer.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOfferService_ListPaged_ReturnsPageAndTotal(t *testing.T) {
	db := setupTestDB(t)
	svc := newOfferService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	for i := 0; i < 3; i++ {
		seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, 30))
	}

	page, total, err := svc.ListPaged(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	rest, total, err := svc.ListPaged(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rest, 1)
}

func TestOfferRepository_UpdateVersioned_StaleCopyConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewOfferRepository(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	seeded := seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, 30))

	first, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)

	first.Description = "winner"
	require.NoError(t, repo.UpdateVersioned(ctx, first))
	assert.Equal(t, uint(2), first.Version)

	stale.Description = "loser"
	err = repo.UpdateVersioned(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, uint(1), stale.Version)

	fresh, err := repo.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "winner", fresh.Description)
}
