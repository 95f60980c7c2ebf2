package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OfferValidityDays is the window a pending offer stays actionable.
const OfferValidityDays = 30

// OfferService drives an offer from request through review to a bindable
// quote. Issuance itself lives in PolicyService; once CustomerApproved is
// set the offer is locked against every mutation here.
type OfferService struct {
	offerRepo     *repositories.OfferRepository
	documentRepo  *repositories.DocumentRepository
	userRepo      repositories.UserRepository
	notifyService *NotificationService
}

// NewOfferService creates a new offer service
func NewOfferService(
	offerRepo *repositories.OfferRepository,
	documentRepo *repositories.DocumentRepository,
	userRepo repositories.UserRepository,
	notifyService *NotificationService,
) *OfferService {
	return &OfferService{
		offerRepo:     offerRepo,
		documentRepo:  documentRepo,
		userRepo:      userRepo,
		notifyService: notifyService,
	}
}

// CreateOfferInput represents create offer input
type CreateOfferInput struct {
	CoverageType       string            `json:"coverage_type" validate:"required"`
	Description        string            `json:"description,omitempty"`
	RequestedStartDate string            `json:"requested_start_date,omitempty"`
	UnderwritingData   map[string]string `json:"underwriting_data" validate:"required"`
}

// Create files a new coverage request. The underwriting data must satisfy
// the schema of the coverage type; file answers must reference documents the
// requester uploaded. The offer starts PENDING with a zero price and a
// 30-day validity window.
func (s *OfferService) Create(ctx context.Context, input *CreateOfferInput, customerID uint) (*models.Offer, error) {
	coverageType := domain.CoverageType(input.CoverageType)
	if !coverageType.IsValid() {
		return nil, domain.NewValidationError("coverage_type", "unknown coverage type: "+input.CoverageType)
	}

	// Schema validation: required fields, choice membership, no extra keys
	if err := domain.ValidateSubmission(coverageType, input.UnderwritingData); err != nil {
		return nil, err
	}

	// Cross-check the documents behind file answers
	docIDs, err := s.checkUnderwritingFiles(ctx, coverageType, input.UnderwritingData, customerID)
	if err != nil {
		return nil, err
	}

	var requestedStart *time.Time
	if input.RequestedStartDate != "" {
		parsed, err := time.Parse("2006-01-02", input.RequestedStartDate)
		if err != nil {
			return nil, domain.NewValidationError("requested_start_date", "invalid date format, use YYYY-MM-DD")
		}
		requestedStart = &parsed
	}

	data := make(datatypes.JSONMap, len(input.UnderwritingData))
	for k, v := range input.UnderwritingData {
		data[k] = v
	}

	offer := &models.Offer{
		CustomerID:         customerID,
		CoverageType:       string(coverageType),
		Description:        input.Description,
		Status:             string(domain.OfferPending),
		RequestedStartDate: requestedStart,
		ValidUntil:         time.Now().AddDate(0, 0, OfferValidityDays),
		UnderwritingData:   data,
		Version:            1,
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	// Attach the referenced documents to the offer
	for _, docID := range docIDs {
		doc, err := s.documentRepo.GetByID(ctx, docID)
		if err != nil {
			continue
		}
		doc.OwnerType = string(domain.OwnerOffer)
		doc.OwnerID = offer.ID
		doc.Finalized = true
		if err := s.documentRepo.Update(ctx, doc); err != nil {
			log.Printf("❌ Failed to attach document %d to offer %d: %v", docID, offer.ID, err)
		}
	}

	// Notify reviewers
	if s.notifyService != nil {
		customer, err := s.userRepo.GetByID(ctx, customerID)
		customerName := ""
		if err == nil {
			customerName = customer.FullName
		}
		s.notifyService.NotifyNewOffer(offer, customerName)
	}

	log.Printf("✅ Offer created: id=%d type=%s customer=%d", offer.ID, offer.CoverageType, customerID)
	return offer, nil
}

// checkUnderwritingFiles verifies each file answer references an existing
// document uploaded by the requester whose content type and size satisfy the
// field constraints. Returns the referenced document IDs.
func (s *OfferService) checkUnderwritingFiles(ctx context.Context, t domain.CoverageType, data map[string]string, customerID uint) ([]uint, error) {
	fields, err := domain.FieldsFor(t)
	if err != nil {
		return nil, err
	}

	var docIDs []uint
	for _, f := range fields {
		if f.Kind != domain.FieldFile {
			continue
		}
		value, ok := data[f.Key]
		if !ok || value == "" {
			continue // required presence already checked by ValidateSubmission
		}

		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError(f.Key, "must reference an uploaded document ID")
		}

		doc, err := s.documentRepo.GetByID(ctx, uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NewValidationError(f.Key, "referenced document does not exist")
			}
			return nil, err
		}

		if doc.UploadedBy != customerID {
			return nil, domain.NewValidationError(f.Key, "referenced document belongs to another user")
		}
		if !acceptedType(f.AcceptedTypes, doc.ContentType) {
			return nil, domain.NewValidationError(f.Key, "document content type not accepted: "+doc.ContentType)
		}
		if f.MaxSizeBytes > 0 && doc.SizeBytes > f.MaxSizeBytes {
			return nil, domain.NewValidationError(f.Key, "document exceeds the maximum allowed size")
		}

		docIDs = append(docIDs, doc.ID)
	}
	return docIDs, nil
}

func acceptedType(accepted []string, contentType string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if a == contentType {
			return true
		}
	}
	return false
}

// GetByID gets an offer, reconciling expiry at read time
func (s *OfferService) GetByID(ctx context.Context, id uint) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s.reconcileExpiry(ctx, offer), nil
}

// GetByCustomer gets offers belonging to a customer
func (s *OfferService) GetByCustomer(ctx context.Context, customerID uint) ([]*models.Offer, error) {
	offers, err := s.offerRepo.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i, o := range offers {
		offers[i] = s.reconcileExpiry(ctx, o)
	}
	return offers, nil
}

// List returns all offers, expiry reconciled
func (s *OfferService) List(ctx context.Context) ([]*models.Offer, error) {
	offers, err := s.offerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, o := range offers {
		offers[i] = s.reconcileExpiry(ctx, o)
	}
	return offers, nil
}

// ListPaged returns one page of offers plus the total count, expiry
// reconciled
func (s *OfferService) ListPaged(ctx context.Context, offset, limit int) ([]*models.Offer, int64, error) {
	offers, total, err := s.offerRepo.ListPaged(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	for i, o := range offers {
		offers[i] = s.reconcileExpiry(ctx, o)
	}
	return offers, total, nil
}

// reconcileExpiry flips a PENDING offer whose window has passed to EXPIRED
// before returning it. A lost version race means someone else already moved
// the row; the fresh read wins either way.
func (s *OfferService) reconcileExpiry(ctx context.Context, offer *models.Offer) *models.Offer {
	if offer.Status != string(domain.OfferPending) || !offer.IsExpired(time.Now()) {
		return offer
	}

	offer.Status = string(domain.OfferExpired)
	if err := s.offerRepo.UpdateVersioned(ctx, offer); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			if fresh, ferr := s.offerRepo.GetByID(ctx, offer.ID); ferr == nil {
				return fresh
			}
		}
		offer.Status = string(domain.OfferPending)
	}
	return offer
}

// PriceOfferInput represents the reviewer's pricing decision
type PriceOfferInput struct {
	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	DiscountRate float64 `json:"discount_rate" validate:"gte=0,lte=100"`
	CoverageTier int     `json:"coverage_tier"`
	Status       string  `json:"status,omitempty"`
	ReviewerNote string  `json:"reviewer_note,omitempty"`
}

// Price applies a reviewer's pricing decision. The final price is always
// recomputed from base price, tier and discount; the optional status change
// must follow the transition table. An offer the customer already approved
// is immutable, and a pending offer past its window expires instead of
// being priced.
func (s *OfferService) Price(ctx context.Context, offerID uint, input *PriceOfferInput, reviewerID uint) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if offer.CustomerApproved {
		return nil, fmt.Errorf("%w: offer is locked after customer approval", domain.ErrInvalidState)
	}

	current := domain.OfferStatus(offer.Status)
	if current == domain.OfferRejected || current == domain.OfferExpired {
		return nil, fmt.Errorf("%w: offer is %s", domain.ErrInvalidState, offer.Status)
	}

	// Expiry wins over the reviewer's action
	if current == domain.OfferPending && offer.IsExpired(time.Now()) {
		s.reconcileExpiry(ctx, offer)
		return nil, fmt.Errorf("%w: offer validity window has passed", domain.ErrIneligible)
	}

	if input.Status != "" && input.Status != offer.Status {
		next := domain.OfferStatus(input.Status)
		if !next.IsValid() {
			return nil, domain.NewValidationError("status", "unknown status: "+input.Status)
		}
		if !current.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: cannot move %s to %s", domain.ErrInvalidState, current, next)
		}
		offer.Status = string(next)
	}

	finalPrice, err := domain.ComputeFinalPrice(input.BasePrice, domain.CoverageTier(input.CoverageTier), input.DiscountRate)
	if err != nil {
		return nil, err
	}

	offer.BasePrice = input.BasePrice
	offer.DiscountRate = input.DiscountRate
	offer.CoverageTier = input.CoverageTier
	offer.FinalPrice = finalPrice
	offer.ReviewerID = &reviewerID
	offer.ReviewerNote = input.ReviewerNote

	if err := s.offerRepo.UpdateVersioned(ctx, offer); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		s.notifyService.NotifyOfferPriced(offer)
	}

	log.Printf("✅ Offer priced: id=%d final=%.2f status=%s reviewer=%d", offer.ID, offer.FinalPrice, offer.Status, reviewerID)
	return offer, nil
}

// Delete withdraws an offer. Only the owner (or an admin) may withdraw, and
// never after the customer approved it.
func (s *OfferService) Delete(ctx context.Context, offerID uint, requesterID uint, requesterRole string) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if offer.CustomerID != requesterID && requesterRole != string(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	if offer.CustomerApproved {
		return fmt.Errorf("%w: offer is locked after customer approval", domain.ErrInvalidState)
	}

	if err := s.offerRepo.Delete(ctx, offerID); err != nil {
		return err
	}

	log.Printf("✅ Offer withdrawn: id=%d by=%d", offerID, requesterID)
	return nil
}
