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

func newClaimService(db *gorm.DB) *ClaimService {
	return NewClaimService(
		repositories.NewClaimRepository(db),
		repositories.NewPolicyRepository(db),
		repositories.NewDocumentRepository(db),
		nil,
	)
}

// seedActivePolicy issues a policy covering roughly the past month through
// next year for a fresh approved offer of the customer.
func seedActivePolicy(t *testing.T, db *gorm.DB, customerID uint) *models.Policy {
	t.Helper()
	offer := seedApprovedOffer(t, db, customerID, 500, nil)
	return seedPolicy(t, db, offer.ID, time.Now().AddDate(0, -1, 0), time.Now().AddDate(1, 0, 0))
}

func TestClaimService_File_Valid(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	policy := seedActivePolicy(t, db, customer.ID)
	evidence := seedDocument(t, db, customer.ID, "image/jpeg", 4096)

	claim, err := svc.File(ctx, &FileClaimInput{
		PolicyID:            policy.ID,
		IncidentType:        "collision",
		Description:         "Rear-ended at a junction",
		IncidentDate:        time.Now().AddDate(0, 0, -5).Format("2006-01-02"),
		EvidenceDocumentIDs: []uint{evidence.ID},
	}, customer.ID)
	require.NoError(t, err)

	assert.Equal(t, string(domain.ClaimPending), claim.Status)
	assert.Equal(t, uint(1), claim.Version)
	assert.Nil(t, claim.ApprovedAmount)

	var attached models.Document
	require.NoError(t, db.First(&attached, evidence.ID).Error)
	assert.Equal(t, string(domain.OwnerClaim), attached.OwnerType)
	assert.Equal(t, claim.ID, attached.OwnerID)
}

func TestClaimService_File_ExpiredPolicyIneligible(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	offer := seedApprovedOffer(t, db, customer.ID, 500, nil)
	policy := seedPolicy(t, db, offer.ID, time.Now().AddDate(-1, -1, 0), time.Now().AddDate(0, 0, -1))

	_, err := svc.File(context.Background(), &FileClaimInput{
		PolicyID:     policy.ID,
		IncidentType: "collision",
		Description:  "Late report",
		IncidentDate: time.Now().AddDate(0, 0, -10).Format("2006-01-02"),
	}, customer.ID)
	assert.ErrorIs(t, err, domain.ErrIneligible)
}

func TestClaimService_File_IncidentOutsideCoverageWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	policy := seedActivePolicy(t, db, customer.ID)

	// Incident before the policy started
	_, err := svc.File(context.Background(), &FileClaimInput{
		PolicyID:     policy.ID,
		IncidentType: "collision",
		Description:  "Old damage",
		IncidentDate: time.Now().AddDate(0, -3, 0).Format("2006-01-02"),
	}, customer.ID)
	assert.ErrorIs(t, err, domain.ErrIneligible)
}

func TestClaimService_File_FutureIncidentRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	policy := seedActivePolicy(t, db, customer.ID)

	_, err := svc.File(context.Background(), &FileClaimInput{
		PolicyID:     policy.ID,
		IncidentType: "collision",
		Description:  "Premonition",
		IncidentDate: time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
	}, customer.ID)
	require.Error(t, err)

	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "incident_date", ve.Field)
}

func TestClaimService_File_OtherUserForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)
	policy := seedActivePolicy(t, db, customer.ID)

	_, err := svc.File(context.Background(), &FileClaimInput{
		PolicyID:     policy.ID,
		IncidentType: "collision",
		Description:  "Not my policy",
		IncidentDate: time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
	}, other.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func fileTestClaim(t *testing.T, db *gorm.DB, svc *ClaimService, customerID uint) *models.Claim {
	t.Helper()
	policy := seedActivePolicy(t, db, customerID)
	claim, err := svc.File(context.Background(), &FileClaimInput{
		PolicyID:     policy.ID,
		IncidentType: "collision",
		Description:  "Rear-ended at a junction",
		IncidentDate: time.Now().AddDate(0, 0, -5).Format("2006-01-02"),
	}, customerID)
	require.NoError(t, err)
	return claim
}

func TestClaimService_Resolve_ApproveRequiresAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	claim := fileTestClaim(t, db, svc, customer.ID)

	_, err := svc.Resolve(ctx, claim.ID, &ResolveClaimInput{
		Status: string(domain.ClaimApproved),
	}, agent.ID)
	require.Error(t, err)
	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "approved_amount", ve.Field)

	negative := -10.0
	_, err = svc.Resolve(ctx, claim.ID, &ResolveClaimInput{
		Status:         string(domain.ClaimApproved),
		ApprovedAmount: &negative,
	}, agent.ID)
	require.Error(t, err)

	amount := 1500.0
	resolved, err := svc.Resolve(ctx, claim.ID, &ResolveClaimInput{
		Status:         string(domain.ClaimApproved),
		ApprovedAmount: &amount,
		ReviewerNotes:  "Repair invoice checks out",
	}, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.ClaimApproved), resolved.Status)
	require.NotNil(t, resolved.ApprovedAmount)
	assert.InDelta(t, 1500.0, *resolved.ApprovedAmount, 0.001)
	require.NotNil(t, resolved.ReviewerID)
	assert.Equal(t, agent.ID, *resolved.ReviewerID)
}

func TestClaimService_Resolve_RejectMustNotCarryAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	claim := fileTestClaim(t, db, svc, customer.ID)

	amount := 100.0
	_, err := svc.Resolve(ctx, claim.ID, &ResolveClaimInput{
		Status:         string(domain.ClaimRejected),
		ApprovedAmount: &amount,
	}, agent.ID)
	require.Error(t, err)
	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "approved_amount", ve.Field)

	resolved, err := svc.Resolve(ctx, claim.ID, &ResolveClaimInput{
		Status:        string(domain.ClaimRejected),
		ReviewerNotes: "Outside policy terms",
	}, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.ClaimRejected), resolved.Status)
	assert.Nil(t, resolved.ApprovedAmount)
}

func TestClaimService_Resolve_TerminalOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	claim := fileTestClaim(t, db, svc, customer.ID)

	_, err := svc.Resolve(ctx, claim.ID, &ResolveClaimInput{Status: string(domain.ClaimRejected)}, agent.ID)
	require.NoError(t, err)

	amount := 500.0
	_, err = svc.Resolve(ctx, claim.ID, &ResolveClaimInput{
		Status:         string(domain.ClaimApproved),
		ApprovedAmount: &amount,
	}, agent.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestClaimService_Update_OnlyWhilePending(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)
	agent := seedUser(t, db, "Zeynep Demir", "zeynep", domain.RoleAgent)
	claim := fileTestClaim(t, db, svc, customer.ID)

	_, err := svc.Update(ctx, claim.ID, &UpdateClaimInput{Description: "nope"}, other.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.Update(ctx, claim.ID, &UpdateClaimInput{Description: "Updated account of events"}, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated account of events", updated.Description)

	_, err = svc.Resolve(ctx, claim.ID, &ResolveClaimInput{Status: string(domain.ClaimRejected)}, agent.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, claim.ID, &UpdateClaimInput{Description: "too late"}, customer.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestClaimService_Update_AddsEvidenceWhilePending(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)
	claim := fileTestClaim(t, db, svc, customer.ID)

	lateEvidence := seedDocument(t, db, customer.ID, "image/jpeg", 4096)
	_, err := svc.Update(ctx, claim.ID, &UpdateClaimInput{
		AddEvidenceDocumentIDs: []uint{lateEvidence.ID},
	}, customer.ID)
	require.NoError(t, err)

	var attached models.Document
	require.NoError(t, db.First(&attached, lateEvidence.ID).Error)
	assert.Equal(t, string(domain.OwnerClaim), attached.OwnerType)
	assert.Equal(t, claim.ID, attached.OwnerID)
	assert.True(t, attached.Finalized)

	// Someone else's upload cannot be added
	foreign := seedDocument(t, db, other.ID, "image/jpeg", 4096)
	_, err = svc.Update(ctx, claim.ID, &UpdateClaimInput{
		AddEvidenceDocumentIDs: []uint{foreign.ID},
	}, customer.ID)
	require.Error(t, err)
	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "evidence_document_ids", ve.Field)
}

func TestClaimService_Update_RemovesEvidenceWhilePending(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	policy := seedActivePolicy(t, db, customer.ID)
	evidence := seedDocument(t, db, customer.ID, "image/jpeg", 4096)

	claim, err := svc.File(ctx, &FileClaimInput{
		PolicyID:            policy.ID,
		IncidentType:        "collision",
		Description:         "Rear-ended at a junction",
		IncidentDate:        time.Now().AddDate(0, 0, -5).Format("2006-01-02"),
		EvidenceDocumentIDs: []uint{evidence.ID},
	}, customer.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, claim.ID, &UpdateClaimInput{
		RemoveEvidenceDocumentID: &evidence.ID,
	}, customer.ID)
	require.NoError(t, err)

	// The document is handed back to its uploader
	var detached models.Document
	require.NoError(t, db.First(&detached, evidence.ID).Error)
	assert.Equal(t, string(domain.OwnerCustomer), detached.OwnerType)
	assert.Equal(t, customer.ID, detached.OwnerID)

	// A document not attached to the claim cannot be removed
	stray := seedDocument(t, db, customer.ID, "image/jpeg", 4096)
	_, err = svc.Update(ctx, claim.ID, &UpdateClaimInput{
		RemoveEvidenceDocumentID: &stray.ID,
	}, customer.ID)
	require.Error(t, err)
	ve, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "remove_evidence_document_id", ve.Field)
}

func TestClaimService_Delete_FilerOrAdminWhilePending(t *testing.T) {
	db := setupTestDB(t)
	svc := newClaimService(db)
	ctx := context.Background()

	customer := seedUser(t, db, "Ayşe Yılmaz", "ayse", domain.RoleCustomer)
	other := seedUser(t, db, "Mehmet Kaya", "mehmet", domain.RoleCustomer)
	claim := fileTestClaim(t, db, svc, customer.ID)

	err := svc.Delete(ctx, claim.ID, other.ID, string(domain.RoleCustomer))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, claim.ID, customer.ID, string(domain.RoleCustomer)))

	_, err = svc.GetByID(ctx, claim.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
