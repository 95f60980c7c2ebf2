package repositories

import (
	"context"
	"time"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/core/domain"

	"gorm.io/gorm"
)

// OfferRepository handles offer data access
type OfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create creates a new offer
func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

// GetByID gets an offer by ID with relations
func (r *OfferRepository) GetByID(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Reviewer").
		Preload("Policy").
		First(&offer, id).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetByCustomer gets offers belonging to a customer
func (r *OfferRepository) GetByCustomer(ctx context.Context, customerID uint) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Preload("Policy").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

// List returns all offers with relations, newest first
func (r *OfferRepository) List(ctx context.Context) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Reviewer").
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

// ListPaged returns one page of offers plus the total count, newest first
func (r *OfferRepository) ListPaged(ctx context.Context, offset, limit int) ([]*models.Offer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Offer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var offers []*models.Offer
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Reviewer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&offers).Error
	return offers, total, err
}

// UpdateVersioned saves the offer guarded by its optimistic version. The
// caller passes the offer as it was read; a concurrent writer bumps the
// version and this write then affects zero rows, surfacing ErrConflict.
func (r *OfferRepository) UpdateVersioned(ctx context.Context, offer *models.Offer) error {
	readVersion := offer.Version
	offer.Version = readVersion + 1

	res := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND version = ?", offer.ID, readVersion).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(offer)
	if res.Error != nil {
		offer.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		offer.Version = readVersion
		return domain.ErrConflict
	}
	return nil
}

// Delete soft deletes an offer
func (r *OfferRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Offer{}, id).Error
}

// ExpirePending flips PENDING offers whose window has passed to EXPIRED.
// Used by the nightly sweep; readers derive the same answer before it runs.
func (r *OfferRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("status = ? AND valid_until < ?", domain.OfferPending, now).
		Updates(map[string]interface{}{
			"status":  domain.OfferExpired,
			"version": gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}
