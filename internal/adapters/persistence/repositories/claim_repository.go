package repositories

import (
	"context"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/core/domain"

	"gorm.io/gorm"
)

// ClaimRepository handles claim data access
type ClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create creates a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

// GetByID gets a claim by ID with relations
func (r *ClaimRepository) GetByID(ctx context.Context, id uint) (*models.Claim, error) {
	var claim models.Claim
	err := r.db.WithContext(ctx).
		Preload("Policy").
		Preload("Filer").
		Preload("Reviewer").
		First(&claim, id).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetByFiler gets claims filed by a user
func (r *ClaimRepository) GetByFiler(ctx context.Context, userID uint) ([]*models.Claim, error) {
	var claims []*models.Claim
	err := r.db.WithContext(ctx).
		Preload("Policy").
		Where("filed_by = ?", userID).
		Order("created_at DESC").
		Find(&claims).Error
	return claims, err
}

// List returns all claims with relations, newest first
func (r *ClaimRepository) List(ctx context.Context) ([]*models.Claim, error) {
	var claims []*models.Claim
	err := r.db.WithContext(ctx).
		Preload("Policy").
		Preload("Filer").
		Order("created_at DESC").
		Find(&claims).Error
	return claims, err
}

// ListPaged returns one page of claims plus the total count, newest first
func (r *ClaimRepository) ListPaged(ctx context.Context, offset, limit int) ([]*models.Claim, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Claim{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []*models.Claim
	err := r.db.WithContext(ctx).
		Preload("Policy").
		Preload("Filer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&claims).Error
	return claims, total, err
}

// UpdateVersioned saves the claim guarded by its optimistic version.
func (r *ClaimRepository) UpdateVersioned(ctx context.Context, claim *models.Claim) error {
	readVersion := claim.Version
	claim.Version = readVersion + 1

	res := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ? AND version = ?", claim.ID, readVersion).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(claim)
	if res.Error != nil {
		claim.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		claim.Version = readVersion
		return domain.ErrConflict
	}
	return nil
}

// Delete soft deletes a claim
func (r *ClaimRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Claim{}, id).Error
}
