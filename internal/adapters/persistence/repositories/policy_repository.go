package repositories

import (
	"context"

	"brokersure/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// PolicyRepository handles policy data access
type PolicyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Create creates a new policy
func (r *PolicyRepository) Create(ctx context.Context, policy *models.Policy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

// GetByID gets a policy by ID with its originating offer
func (r *PolicyRepository) GetByID(ctx context.Context, id uint) (*models.Policy, error) {
	var policy models.Policy
	err := r.db.WithContext(ctx).
		Preload("Offer").
		First(&policy, id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByOfferID gets the policy issued for an offer, if any
func (r *PolicyRepository) GetByOfferID(ctx context.Context, offerID uint) (*models.Policy, error) {
	var policy models.Policy
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByCustomer gets policies whose originating offer belongs to a customer
func (r *PolicyRepository) GetByCustomer(ctx context.Context, customerID uint) ([]*models.Policy, error) {
	var policies []*models.Policy
	err := r.db.WithContext(ctx).
		Preload("Offer").
		Joins("JOIN offers ON offers.id = policies.offer_id").
		Where("offers.customer_id = ?", customerID).
		Order("policies.created_at DESC").
		Find(&policies).Error
	return policies, err
}

// List returns all policies with their offers, newest first
func (r *PolicyRepository) List(ctx context.Context) ([]*models.Policy, error) {
	var policies []*models.Policy
	err := r.db.WithContext(ctx).
		Preload("Offer").
		Order("created_at DESC").
		Find(&policies).Error
	return policies, err
}

// ListPaged returns one page of policies plus the total count, newest first
func (r *PolicyRepository) ListPaged(ctx context.Context, offset, limit int) ([]*models.Policy, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Policy{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var policies []*models.Policy
	err := r.db.WithContext(ctx).
		Preload("Offer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&policies).Error
	return policies, total, err
}
