package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"brokersure/internal/adapters/payment"
	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/adapters/storage"
	"brokersure/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PolicyService issues and serves policies. Issue is the single path that
// turns an approved offer into a policy; it runs inside one transaction so a
// declined charge or a lost version race leaves no partial state behind.
type PolicyService struct {
	db            *gorm.DB
	policyRepo    *repositories.PolicyRepository
	provider      payment.Provider
	notifyService *NotificationService
}

// NewPolicyService creates a new policy service
func NewPolicyService(
	db *gorm.DB,
	policyRepo *repositories.PolicyRepository,
	provider payment.Provider,
	notifyService *NotificationService,
) *PolicyService {
	return &PolicyService{
		db:            db,
		policyRepo:    policyRepo,
		provider:      provider,
		notifyService: notifyService,
	}
}

// PayOfferInput represents the customer's payment submission
type PayOfferInput struct {
	CardToken string `json:"card_token" validate:"required"`
}

// Issue charges the customer and issues the policy for an approved offer.
// Preconditions: the offer belongs to the caller, was APPROVED by a reviewer
// and not yet approved by the customer. The offer row is locked via the
// version-guarded approval flip before the charge runs, so a confirmed
// charge always commits with its Policy; a second call finds the approval
// flag already set and returns ErrConflict, a declined charge rolls the
// whole transaction back.
func (s *PolicyService) Issue(ctx context.Context, offerID uint, customerID uint, input *PayOfferInput) (*models.Policy, error) {
	var issued *models.Policy

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.First(&offer, offerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if offer.CustomerID != customerID {
			return domain.ErrForbidden
		}
		if offer.CustomerApproved {
			return fmt.Errorf("%w: offer is already paid and issued", domain.ErrConflict)
		}
		if offer.Status != string(domain.OfferApproved) {
			return fmt.Errorf("%w: only an approved offer can be paid", domain.ErrInvalidState)
		}

		// Lock the offer before charging: the version-guarded flip takes the
		// row's write lock, so a concurrent reviewer write or second payment
		// either serializes behind this transaction or fails here, never
		// after the charge was captured. A decline rolls the flip back.
		res := tx.Model(&models.Offer{}).
			Where("id = ? AND version = ?", offer.ID, offer.Version).
			Updates(map[string]interface{}{
				"customer_approved": true,
				"version":           offer.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}

		conf, err := s.provider.Charge(ctx, &payment.ChargeRequest{
			OfferID:     offer.ID,
			CustomerID:  customerID,
			Amount:      offer.FinalPrice,
			Currency:    "EUR",
			CardToken:   input.CardToken,
			Description: fmt.Sprintf("Premium for %s coverage, offer #%d", offer.CoverageType, offer.ID),
		})
		if err != nil {
			return err
		}

		start := time.Now()
		if offer.RequestedStartDate != nil {
			start = *offer.RequestedStartDate
		}
		termMonths := domain.CoverageType(offer.CoverageType).TermMonths()

		policy := &models.Policy{
			OfferID:      offer.ID,
			PolicyNumber: generatePolicyNumber(),
			Premium:      offer.FinalPrice,
			StartDate:    start,
			EndDate:      start.AddDate(0, termMonths, 0),
		}
		if err := tx.Create(policy).Error; err != nil {
			return err
		}

		// Certificate placeholder; the renderer fills the object in later.
		certificate := &models.Document{
			OwnerType:   string(domain.OwnerPolicy),
			OwnerID:     policy.ID,
			FileName:    policy.PolicyNumber + ".pdf",
			ContentType: "application/pdf",
			Category:    "certificate",
			StorageKey:  storage.ObjectKey(string(domain.OwnerPolicy), policy.ID, policy.PolicyNumber+".pdf"),
			UploadedBy:  customerID,
		}
		if err := tx.Create(certificate).Error; err != nil {
			return err
		}

		// The row is already locked and flipped; just point it at the policy.
		if err := tx.Model(&models.Offer{}).
			Where("id = ?", offer.ID).
			Update("policy_id", policy.ID).Error; err != nil {
			return err
		}

		log.Printf("✅ Policy issued: %s offer=%d premium=%.2f ref=%s",
			policy.PolicyNumber, offer.ID, policy.Premium, conf.Reference)

		issued = policy
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		s.notifyService.NotifyPolicyIssued(issued)
	}
	return issued, nil
}

// generatePolicyNumber builds a unique human-readable policy number.
func generatePolicyNumber() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:10]
	return fmt.Sprintf("POL-%d-%s", time.Now().Year(), short)
}

// GetByID gets a policy by ID
func (s *PolicyService) GetByID(ctx context.Context, id uint) (*models.Policy, error) {
	policy, err := s.policyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return policy, nil
}

// GetByCustomer gets policies whose originating offer belongs to a customer
func (s *PolicyService) GetByCustomer(ctx context.Context, customerID uint) ([]*models.Policy, error) {
	return s.policyRepo.GetByCustomer(ctx, customerID)
}

// List returns all policies
func (s *PolicyService) List(ctx context.Context) ([]*models.Policy, error) {
	return s.policyRepo.List(ctx)
}

// ListPaged returns one page of policies plus the total count
func (s *PolicyService) ListPaged(ctx context.Context, offset, limit int) ([]*models.Policy, int64, error) {
	return s.policyRepo.ListPaged(ctx, offset, limit)
}
