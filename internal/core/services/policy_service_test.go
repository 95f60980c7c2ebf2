package services

import (
	"context"
	"testing"
	"time"

	"brokersure/internal/adapters/payment"
	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPolicyService(db *gorm.DB) *PolicyService {
	return NewPolicyService(
		db,
		repositories.NewPolicyRepository(db),
		payment.NewSandboxProvider(""),
		nil,
	)
}

func seedApprovedOffer(t *testing.T, db *gorm.DB, customerID uint, finalPrice float64, requestedStart *time.Time) *models.Offer {
	t.Helper()

	offer := &models.Offer{
		CustomerID:         customerID,
		CoverageType:       string(domain.CoverageVehicle),
		BasePrice:          finalPrice,
		FinalPrice:         finalPrice,
		Status:             string(domain.OfferApproved),
		RequestedStartDate: requestedStart,
		ValidUntil:         time.Now().AddDate(0, 0, 30),
		Version:            2,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

func TestPolicyService_Issue_EndToEnd(t *testing.T) {
	db := setupTestDB(t)
	svc := newPolicyService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	requested := time.Now().AddDate(0, 0, 10).Truncate(24 * time.Hour)
	offer := seedApprovedOffer(t, db, customer.ID, 800, &requested)

	policy, err := svc.Issue(ctx, offer.ID, customer.ID, &PayOfferInput{CardToken: "tok_visa"})
	require.NoError(t, err)

	assert.InDelta(t, 800.0, policy.Premium, 0.001)
	assert.NotEmpty(t, policy.PolicyNumber)
	assert.WithinDuration(t, requested, policy.StartDate, time.Second)
	assert.WithinDuration(t, requested.AddDate(0, 12, 0), policy.EndDate, time.Second)

	// The offer is locked and points at the policy
	var stored models.Offer
	require.NoError(t, db.First(&stored, offer.ID).Error)
	assert.True(t, stored.CustomerApproved)
	require.NotNil(t, stored.PolicyID)
	assert.Equal(t, policy.ID, *stored.PolicyID)
	assert.Equal(t, offer.Version+1, stored.Version)

	// Exactly one certificate document was created for the policy
	var certCount int64
	require.NoError(t, db.Model(&models.Document{}).
		Where("owner_type = ? AND owner_id = ?", string(domain.OwnerPolicy), policy.ID).
		Count(&certCount).Error)
	assert.Equal(t, int64(1), certCount)
}

func TestPolicyService_Issue_SecondPaymentConflicts(t *testing.T) {
	db := setupTestDB(t)
	svc := newPolicyService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	offer := seedApprovedOffer(t, db, customer.ID, 500, nil)

	_, err := svc.Issue(ctx, offer.ID, customer.ID, &PayOfferInput{CardToken: "tok_visa"})
	require.NoError(t, err)

	_, err = svc.Issue(ctx, offer.ID, customer.ID, &PayOfferInput{CardToken: "tok_visa"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	var policyCount int64
	require.NoError(t, db.Model(&models.Policy{}).
		Where("offer_id = ?", offer.ID).
		Count(&policyCount).Error)
	assert.Equal(t, int64(1), policyCount)
}

func TestPolicyService_Issue_DeclinedChargeLeavesNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := newPolicyService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	offer := seedApprovedOffer(t, db, customer.ID, 500, nil)

	_, err := svc.Issue(ctx, offer.ID, customer.ID, &PayOfferInput{CardToken: "tok_declined"})
	assert.ErrorIs(t, err, domain.ErrDeclined)

	// The rollback also undoes the pre-charge approval flip
	var stored models.Offer
	require.NoError(t, db.First(&stored, offer.ID).Error)
	assert.False(t, stored.CustomerApproved)
	assert.Nil(t, stored.PolicyID)
	assert.Equal(t, offer.Version, stored.Version)

	var policyCount int64
	require.NoError(t, db.Model(&models.Policy{}).Count(&policyCount).Error)
	assert.Equal(t, int64(0), policyCount)
}

// recordingProvider captures charge attempts so tests can assert whether and
// how the gateway was called.
type recordingProvider struct {
	requests []*payment.ChargeRequest
}

func (p *recordingProvider) Charge(ctx context.Context, req *payment.ChargeRequest) (*payment.Confirmation, error) {
	p.requests = append(p.requests, req)
	return &payment.Confirmation{Reference: "rec-1", Amount: req.Amount, ChargedAt: time.Now()}, nil
}

func TestPolicyService_Issue_ChargesOnceAfterLockingTheOffer(t *testing.T) {
	db := setupTestDB(t)
	provider := &recordingProvider{}
	svc := NewPolicyService(db, repositories.NewPolicyRepository(db), provider, nil)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	offer := seedApprovedOffer(t, db, customer.ID, 800, nil)

	_, err := svc.Issue(ctx, offer.ID, customer.ID, &PayOfferInput{CardToken: "tok_visa"})
	require.NoError(t, err)

	require.Len(t, provider.requests, 1)
	assert.InDelta(t, 800.0, provider.requests[0].Amount, 0.001)
	assert.Equal(t, offer.ID, provider.requests[0].OfferID)
}

func TestPolicyService_Issue_NoChargeWhenOfferNotPayable(t *testing.T) {
	db := setupTestDB(t)
	provider := &recordingProvider{}
	svc := NewPolicyService(db, repositories.NewPolicyRepository(db), provider, nil)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)

	// Already issued: the conflict is detected before the gateway is touched
	issued := seedApprovedOffer(t, db, customer.ID, 500, nil)
	require.NoError(t, db.Model(issued).Update("customer_approved", true).Error)
	_, err := svc.Issue(ctx, issued.ID, customer.ID, &PayOfferInput{CardToken: "tok_visa"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Not yet approved by a reviewer
	pending := seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, 30))
	_, err = svc.Issue(ctx, pending.ID, customer.ID, &PayOfferInput{CardToken: "tok_visa"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Empty(t, provider.requests)
}

func TestPolicyService_Issue_RequiresApprovedOffer(t *testing.T) {
	db := setupTestDB(t)
	svc := newPolicyService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	offer := seedOffer(t, db, customer.ID, domain.OfferPending, time.Now().AddDate(0, 0, 30))

	_, err := svc.Issue(context.Background(), offer.ID, customer.ID, &PayOfferInput{CardToken: "tok_visa"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPolicyService_Issue_OtherCustomerForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := newPolicyService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)
	offer := seedApprovedOffer(t, db, customer.ID, 500, nil)

	_, err := svc.Issue(context.Background(), offer.ID, other.ID, &PayOfferInput{CardToken: "tok_visa"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPolicyService_GetByCustomer_ScopesByOfferOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := newPolicyService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)

	offerA := seedApprovedOffer(t, db, customer.ID, 500, nil)
	offerB := seedApprovedOffer(t, db, other.ID, 700, nil)
	seedPolicy(t, db, offerA.ID, time.Now(), time.Now().AddDate(1, 0, 0))
	seedPolicy(t, db, offerB.ID, time.Now(), time.Now().AddDate(1, 0, 0))

	mine, err := svc.GetByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, offerA.ID, mine[0].OfferID)
}
