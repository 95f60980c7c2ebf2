package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/core/domain"

	"gorm.io/gorm"
)

// ClaimService handles the claim lifecycle: filed by the holder against an
// unexpired policy, editable while PENDING, resolved once by a reviewer.
type ClaimService struct {
	claimRepo     *repositories.ClaimRepository
	policyRepo    *repositories.PolicyRepository
	documentRepo  *repositories.DocumentRepository
	notifyService *NotificationService
}

// NewClaimService creates a new claim service
func NewClaimService(
	claimRepo *repositories.ClaimRepository,
	policyRepo *repositories.PolicyRepository,
	documentRepo *repositories.DocumentRepository,
	notifyService *NotificationService,
) *ClaimService {
	return &ClaimService{
		claimRepo:     claimRepo,
		policyRepo:    policyRepo,
		documentRepo:  documentRepo,
		notifyService: notifyService,
	}
}

// FileClaimInput represents file claim input
type FileClaimInput struct {
	PolicyID            uint   `json:"policy_id" validate:"required"`
	IncidentType        string `json:"incident_type" validate:"required"`
	Description         string `json:"description" validate:"required"`
	IncidentDate        string `json:"incident_date" validate:"required"`
	EvidenceDocumentIDs []uint `json:"evidence_document_ids,omitempty"`
}

// File registers a new claim. The policy must belong to the filer and the
// incident must fall inside the coverage window; a claim against an expired
// policy is ineligible.
func (s *ClaimService) File(ctx context.Context, input *FileClaimInput, filerID uint) (*models.Claim, error) {
	policy, err := s.policyRepo.GetByID(ctx, input.PolicyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if policy.Offer == nil || policy.Offer.CustomerID != filerID {
		return nil, domain.ErrForbidden
	}
	if policy.IsExpired(time.Now()) {
		return nil, fmt.Errorf("%w: policy coverage has ended", domain.ErrIneligible)
	}

	incidentDate, err := time.Parse("2006-01-02", input.IncidentDate)
	if err != nil {
		return nil, domain.NewValidationError("incident_date", "invalid date format, use YYYY-MM-DD")
	}
	if incidentDate.After(time.Now()) {
		return nil, domain.NewValidationError("incident_date", "must not be in the future")
	}
	if incidentDate.Before(policy.StartDate) || incidentDate.After(policy.EndDate) {
		return nil, fmt.Errorf("%w: incident is outside the coverage window", domain.ErrIneligible)
	}

	// Evidence documents must exist and belong to the filer
	if err := s.checkEvidence(ctx, input.EvidenceDocumentIDs, filerID); err != nil {
		return nil, err
	}

	claim := &models.Claim{
		PolicyID:     policy.ID,
		FiledBy:      filerID,
		IncidentType: input.IncidentType,
		Description:  input.Description,
		IncidentDate: incidentDate,
		Status:       string(domain.ClaimPending),
		Version:      1,
	}

	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, err
	}

	s.attachEvidence(ctx, claim, input.EvidenceDocumentIDs)

	log.Printf("✅ Claim filed: id=%d policy=%s by=%d", claim.ID, policy.PolicyNumber, filerID)
	return claim, nil
}

// GetByID gets a claim by ID
func (s *ClaimService) GetByID(ctx context.Context, id uint) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return claim, nil
}

// GetByFiler gets claims filed by a user
func (s *ClaimService) GetByFiler(ctx context.Context, userID uint) ([]*models.Claim, error) {
	return s.claimRepo.GetByFiler(ctx, userID)
}

// List returns all claims
func (s *ClaimService) List(ctx context.Context) ([]*models.Claim, error) {
	return s.claimRepo.List(ctx)
}

// ListPaged returns one page of claims plus the total count
func (s *ClaimService) ListPaged(ctx context.Context, offset, limit int) ([]*models.Claim, int64, error) {
	return s.claimRepo.ListPaged(ctx, offset, limit)
}

// UpdateClaimInput represents update claim input
type UpdateClaimInput struct {
	IncidentType             string `json:"incident_type,omitempty"`
	Description              string `json:"description,omitempty"`
	IncidentDate             string `json:"incident_date,omitempty"`
	AddEvidenceDocumentIDs   []uint `json:"add_evidence_document_ids,omitempty"`
	RemoveEvidenceDocumentID *uint  `json:"remove_evidence_document_id,omitempty"`
}

// Update amends a claim. Only the filer may amend, and only while PENDING.
// Evidence can be grown or shrunk here: added documents go through the same
// ownership checks as File, a removed document is handed back to the filer.
func (s *ClaimService) Update(ctx context.Context, claimID uint, input *UpdateClaimInput, requesterID uint) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if claim.FiledBy != requesterID {
		return nil, domain.ErrForbidden
	}
	if domain.ClaimStatus(claim.Status).IsTerminal() {
		return nil, fmt.Errorf("%w: claim is already resolved", domain.ErrInvalidState)
	}

	if input.IncidentType != "" {
		claim.IncidentType = input.IncidentType
	}
	if input.Description != "" {
		claim.Description = input.Description
	}
	if input.IncidentDate != "" {
		incidentDate, err := time.Parse("2006-01-02", input.IncidentDate)
		if err != nil {
			return nil, domain.NewValidationError("incident_date", "invalid date format, use YYYY-MM-DD")
		}
		if incidentDate.After(time.Now()) {
			return nil, domain.NewValidationError("incident_date", "must not be in the future")
		}
		claim.IncidentDate = incidentDate
	}

	if err := s.checkEvidence(ctx, input.AddEvidenceDocumentIDs, requesterID); err != nil {
		return nil, err
	}
	if input.RemoveEvidenceDocumentID != nil {
		if err := s.detachEvidence(ctx, claim, *input.RemoveEvidenceDocumentID); err != nil {
			return nil, err
		}
	}

	if err := s.claimRepo.UpdateVersioned(ctx, claim); err != nil {
		return nil, err
	}

	s.attachEvidence(ctx, claim, input.AddEvidenceDocumentIDs)
	return claim, nil
}

// checkEvidence verifies evidence documents exist and belong to the filer.
func (s *ClaimService) checkEvidence(ctx context.Context, docIDs []uint, filerID uint) error {
	if len(docIDs) == 0 {
		return nil
	}
	docs, err := s.documentRepo.GetByIDs(ctx, docIDs)
	if err != nil {
		return err
	}
	if len(docs) != len(docIDs) {
		return domain.NewValidationError("evidence_document_ids", "one or more documents do not exist")
	}
	for _, doc := range docs {
		if doc.UploadedBy != filerID {
			return domain.NewValidationError("evidence_document_ids", "document belongs to another user")
		}
	}
	return nil
}

// attachEvidence re-homes checked documents to the claim.
func (s *ClaimService) attachEvidence(ctx context.Context, claim *models.Claim, docIDs []uint) {
	for _, docID := range docIDs {
		doc, err := s.documentRepo.GetByID(ctx, docID)
		if err != nil {
			continue
		}
		doc.OwnerType = string(domain.OwnerClaim)
		doc.OwnerID = claim.ID
		doc.Finalized = true
		if err := s.documentRepo.Update(ctx, doc); err != nil {
			log.Printf("❌ Failed to attach document %d to claim %d: %v", docID, claim.ID, err)
		}
	}
}

// detachEvidence hands a claim's evidence document back to its uploader.
func (s *ClaimService) detachEvidence(ctx context.Context, claim *models.Claim, docID uint) error {
	doc, err := s.documentRepo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewValidationError("remove_evidence_document_id", "document does not exist")
		}
		return err
	}
	if doc.OwnerType != string(domain.OwnerClaim) || doc.OwnerID != claim.ID {
		return domain.NewValidationError("remove_evidence_document_id", "document is not attached to this claim")
	}

	doc.OwnerType = string(domain.OwnerCustomer)
	doc.OwnerID = doc.UploadedBy
	return s.documentRepo.Update(ctx, doc)
}

// Delete withdraws a claim. Only the filer (or an admin) may withdraw, and
// only while PENDING.
func (s *ClaimService) Delete(ctx context.Context, claimID uint, requesterID uint, requesterRole string) error {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if claim.FiledBy != requesterID && requesterRole != string(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	if domain.ClaimStatus(claim.Status).IsTerminal() {
		return fmt.Errorf("%w: claim is already resolved", domain.ErrInvalidState)
	}

	if err := s.claimRepo.Delete(ctx, claimID); err != nil {
		return err
	}

	log.Printf("✅ Claim withdrawn: id=%d by=%d", claimID, requesterID)
	return nil
}

// ResolveClaimInput represents the reviewer's decision
type ResolveClaimInput struct {
	Status         string   `json:"status" validate:"required"`
	ApprovedAmount *float64 `json:"approved_amount,omitempty"`
	ReviewerNotes  string   `json:"reviewer_notes,omitempty"`
}

// Resolve decides a pending claim. APPROVED must carry a non-negative
// amount, REJECTED must carry none; either outcome is terminal.
func (s *ClaimService) Resolve(ctx context.Context, claimID uint, input *ResolveClaimInput, reviewerID uint) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if domain.ClaimStatus(claim.Status).IsTerminal() {
		return nil, fmt.Errorf("%w: claim is already resolved", domain.ErrInvalidState)
	}

	next := domain.ClaimStatus(input.Status)
	switch next {
	case domain.ClaimApproved:
		if input.ApprovedAmount == nil {
			return nil, domain.NewValidationError("approved_amount", "required when approving a claim")
		}
		if *input.ApprovedAmount < 0 {
			return nil, domain.NewValidationError("approved_amount", "must not be negative")
		}
		claim.ApprovedAmount = input.ApprovedAmount
	case domain.ClaimRejected:
		if input.ApprovedAmount != nil {
			return nil, domain.NewValidationError("approved_amount", "must be empty when rejecting a claim")
		}
		claim.ApprovedAmount = nil
	default:
		return nil, domain.NewValidationError("status", "must be APPROVED or REJECTED")
	}

	claim.Status = string(next)
	claim.ReviewerNotes = input.ReviewerNotes
	claim.ReviewerID = &reviewerID

	if err := s.claimRepo.UpdateVersioned(ctx, claim); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		s.notifyService.NotifyClaimResolved(claim)
	}

	log.Printf("✅ Claim resolved: id=%d status=%s reviewer=%d", claim.ID, claim.Status, reviewerID)
	return claim, nil
}
