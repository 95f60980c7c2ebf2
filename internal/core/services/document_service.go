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
	"brokersure/internal/adapters/storage"
	"brokersure/internal/core/domain"

	"gorm.io/gorm"
)

// documentCategories maps an upload category to its accepted content types.
var documentCategories = map[string][]string{
	"document": {"application/pdf"},
	"photo":    {"image/jpeg", "image/png"},
}

// DocumentService manages uploaded file metadata. Bytes never pass through
// the service: clients PUT against a presigned URL, then finalize the
// record. Documents start owned by the uploader and are re-homed to an
// offer, claim or policy when attached.
type DocumentService struct {
	documentRepo *repositories.DocumentRepository
	store        storage.DocumentStore
}

// NewDocumentService creates a new document service
func NewDocumentService(documentRepo *repositories.DocumentRepository, store storage.DocumentStore) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		store:        store,
	}
}

// PresignInput represents a presign request for one upload
type PresignInput struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Category    string `json:"category" validate:"required"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,gt=0"`
}

// PresignOutput carries the upload URL and the created metadata record
type PresignOutput struct {
	Document  *models.DocumentResponse `json:"document"`
	UploadURL string                   `json:"upload_url"`
	ExpiresIn int64                    `json:"expires_in_seconds"`
}

// Presign validates the declared upload and returns a presigned PUT URL
// pinned to the declared content type, together with the pending metadata
// record. The record stays unfinalized until the client confirms the PUT.
func (s *DocumentService) Presign(ctx context.Context, input *PresignInput, uploaderID uint) (*PresignOutput, error) {
	accepted, ok := documentCategories[input.Category]
	if !ok {
		return nil, domain.NewValidationError("category", "must be 'document' or 'photo'")
	}
	if !acceptedType(accepted, input.ContentType) {
		return nil, domain.NewValidationError("content_type", "not accepted for category "+input.Category)
	}
	if input.SizeBytes <= 0 {
		return nil, domain.NewValidationError("size_bytes", "must be positive")
	}
	if input.SizeBytes > domain.MaxUploadSizeBytes {
		return nil, domain.NewValidationError("size_bytes", "exceeds the maximum allowed size")
	}

	doc := &models.Document{
		OwnerType:   string(domain.OwnerCustomer),
		OwnerID:     uploaderID,
		FileName:    input.FileName,
		ContentType: input.ContentType,
		Category:    input.Category,
		SizeBytes:   input.SizeBytes,
		StorageKey:  storage.ObjectKey(string(domain.OwnerCustomer), uploaderID, input.FileName),
		UploadedBy:  uploaderID,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	url, ttl, err := s.store.PresignUpload(ctx, doc.StorageKey, doc.ContentType, map[string]string{
		"uploaded-by": strconv.FormatUint(uint64(uploaderID), 10),
	})
	if err != nil {
		// The metadata row without an upload URL is useless; best effort cleanup.
		if derr := s.documentRepo.Delete(ctx, doc.ID); derr != nil {
			log.Printf("❌ Failed to clean up document %d after presign error: %v", doc.ID, derr)
		}
		return nil, err
	}

	return &PresignOutput{
		Document:  doc.ToResponse(),
		UploadURL: url,
		ExpiresIn: int64(ttl / time.Second),
	}, nil
}

// Finalize confirms the client completed its upload. Only the uploader may
// finalize, and only once.
func (s *DocumentService) Finalize(ctx context.Context, docID uint, uploaderID uint) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if doc.UploadedBy != uploaderID {
		return nil, domain.ErrForbidden
	}
	if doc.Finalized {
		return nil, fmt.Errorf("%w: document is already finalized", domain.ErrInvalidState)
	}

	doc.Finalized = true
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DownloadOutput carries a document record and its short-lived fetch URL
type DownloadOutput struct {
	Document    *models.DocumentResponse `json:"document"`
	DownloadURL string                   `json:"download_url"`
}

// GetDownload returns a document and a presigned download URL. Customers
// may only fetch their own uploads; agents and admins may fetch any.
func (s *DocumentService) GetDownload(ctx context.Context, docID uint, requesterID uint, requesterRole string) (*DownloadOutput, error) {
	doc, err := s.documentRepo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if requesterRole == string(domain.RoleCustomer) && doc.UploadedBy != requesterID {
		return nil, domain.ErrForbidden
	}

	url, err := s.store.PresignDownload(ctx, doc.StorageKey)
	if err != nil {
		return nil, err
	}

	return &DownloadOutput{
		Document:    doc.ToResponse(),
		DownloadURL: url,
	}, nil
}

// ListByOwner lists documents attached to one aggregate
func (s *DocumentService) ListByOwner(ctx context.Context, ownerType string, ownerID uint) ([]*models.Document, error) {
	owner := domain.DocumentOwner(ownerType)
	if !owner.IsValid() {
		return nil, domain.NewValidationError("owner_type", "unknown owner type: "+ownerType)
	}
	return s.documentRepo.ListByOwner(ctx, string(owner), ownerID)
}
