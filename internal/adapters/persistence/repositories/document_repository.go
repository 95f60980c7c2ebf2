package repositories

import (
	"context"

	"brokersure/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DocumentRepository handles document metadata access
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByID gets a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByIDs gets multiple documents at once (underwriting cross-checks)
func (r *DocumentRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Document, error) {
	var docs []*models.Document
	if len(ids) == 0 {
		return docs, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&docs).Error
	return docs, err
}

// ListByOwner gets documents attached to one aggregate
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerType string, ownerID uint) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// ListByUploader gets every document a user uploaded, regardless of which
// aggregate it was later attached to
func (r *DocumentRepository) ListByUploader(ctx context.Context, userID uint) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).
		Where("uploaded_by = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// List returns all document records, newest first
func (r *DocumentRepository) List(ctx context.Context) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

// Update saves a document record
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// Delete removes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, id).Error
}
