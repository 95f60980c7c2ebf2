package services

import (
	"context"
	"testing"
	"time"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQueryService(db *gorm.DB) *QueryService {
	return NewQueryService(
		newOfferService(db),
		repositories.NewClaimRepository(db),
		repositories.NewPolicyRepository(db),
		repositories.NewDocumentRepository(db),
		repositories.NewUserRepository(db),
	)
}

func seedPricedOffer(t *testing.T, db *gorm.DB, customerID uint, coverageType string, finalPrice float64) *models.Offer {
	t.Helper()

	offer := &models.Offer{
		CustomerID:   customerID,
		CoverageType: coverageType,
		BasePrice:    finalPrice,
		FinalPrice:   finalPrice,
		Status:       string(domain.OfferApproved),
		ValidUntil:   time.Now().AddDate(0, 0, 30),
		Version:      1,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

func TestQueryService_List_UnknownCollection(t *testing.T) {
	db := setupTestDB(t)
	svc := newQueryService(db)

	_, err := svc.List(context.Background(), &QueryInput{Collection: "invoices"})
	require.Error(t, err)

	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "collection", ve.Field)
}

func TestQueryService_List_SearchFiltersOffersByCustomerName(t *testing.T) {
	db := setupTestDB(t)
	svc := newQueryService(db)

	alice := seedUser(t, db, "Alice Brown", "alice", domain.RoleCustomer)
	bob := seedUser(t, db, "Bob Stone", "bob", domain.RoleCustomer)
	seedPricedOffer(t, db, alice.ID, string(domain.CoverageVehicle), 100)
	seedPricedOffer(t, db, bob.ID, string(domain.CoverageProperty), 200)

	out, err := svc.List(context.Background(), &QueryInput{
		Collection: "offers",
		SearchTerm: "ALICE",
	})
	require.NoError(t, err)

	records, ok := out.([]*models.OfferResponse)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, alice.ID, records[0].CustomerID)
}

func TestQueryService_List_SortOffersByFinalPriceDesc(t *testing.T) {
	db := setupTestDB(t)
	svc := newQueryService(db)

	customer := seedUser(t, db, "Alice Brown", "alice", domain.RoleCustomer)
	seedPricedOffer(t, db, customer.ID, string(domain.CoverageVehicle), 100)
	seedPricedOffer(t, db, customer.ID, string(domain.CoverageProperty), 300)
	seedPricedOffer(t, db, customer.ID, string(domain.CoverageTravel), 200)

	out, err := svc.List(context.Background(), &QueryInput{
		Collection: "offers",
		SortKey:    "final_price",
		SortDir:    "desc",
	})
	require.NoError(t, err)

	records, ok := out.([]*models.OfferResponse)
	require.True(t, ok)
	require.Len(t, records, 3)
	assert.Equal(t, 300.0, records[0].FinalPrice)
	assert.Equal(t, 200.0, records[1].FinalPrice)
	assert.Equal(t, 100.0, records[2].FinalPrice)
}

func TestQueryService_List_CustomerScopedToOwnOffers(t *testing.T) {
	db := setupTestDB(t)
	svc := newQueryService(db)

	alice := seedUser(t, db, "Alice Brown", "alice", domain.RoleCustomer)
	bob := seedUser(t, db, "Bob Stone", "bob", domain.RoleCustomer)
	mine := seedPricedOffer(t, db, alice.ID, string(domain.CoverageVehicle), 100)
	seedPricedOffer(t, db, bob.ID, string(domain.CoverageProperty), 200)

	out, err := svc.List(context.Background(), &QueryInput{
		Collection: "offers",
		CustomerID: &alice.ID,
	})
	require.NoError(t, err)

	records, ok := out.([]*models.OfferResponse)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, mine.ID, records[0].ID)
}

func TestQueryService_List_UsersCollectionsSplitByRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newQueryService(db)
	ctx := context.Background()

	seedUser(t, db, "Alice Brown", "alice", domain.RoleCustomer)
	seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)

	out, err := svc.List(ctx, &QueryInput{Collection: "customers"})
	require.NoError(t, err)
	customers, ok := out.([]*models.UserResponse)
	require.True(t, ok)
	require.Len(t, customers, 1)
	assert.Equal(t, "alice", customers[0].Username)

	out, err = svc.List(ctx, &QueryInput{Collection: "agents"})
	require.NoError(t, err)
	agents, ok := out.([]*models.UserResponse)
	require.True(t, ok)
	require.Len(t, agents, 1)
	assert.Equal(t, "zeynep", agents[0].Username)
}

func TestQueryService_List_DocumentsScopedToCustomerUploads(t *testing.T) {
	db := setupTestDB(t)
	svc := newQueryService(db)

	alice := seedUser(t, db, "Alice Brown", "alice", domain.RoleCustomer)
	bob := seedUser(t, db, "Bob Stone", "bob", domain.RoleCustomer)
	mine := seedDocument(t, db, alice.ID, "application/pdf", 1024)
	attached := seedDocument(t, db, alice.ID, "application/pdf", 1024)
	seedDocument(t, db, bob.ID, "application/pdf", 1024)

	// An upload re-homed to an offer stays in the uploader's view
	offer := seedPricedOffer(t, db, alice.ID, string(domain.CoverageVehicle), 100)
	require.NoError(t, db.Model(attached).Updates(map[string]interface{}{
		"owner_type": string(domain.OwnerOffer),
		"owner_id":   offer.ID,
		"finalized":  true,
	}).Error)

	out, err := svc.List(context.Background(), &QueryInput{
		Collection: "documents",
		CustomerID: &alice.ID,
	})
	require.NoError(t, err)

	records, ok := out.([]*models.DocumentResponse)
	require.True(t, ok)
	require.Len(t, records, 2)
	ids := []uint{records[0].ID, records[1].ID}
	assert.Contains(t, ids, mine.ID)
	assert.Contains(t, ids, attached.ID)
}
