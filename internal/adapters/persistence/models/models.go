package models

import (
	"time"

	"brokersure/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"size:100;not null" json:"full_name"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'CUSTOMER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Offer / Policy / Claim Tables
// ============================================================

// Offer represents a coverage request moving through review and payment.
// FinalPrice is always derived from BasePrice/CoverageTier/DiscountRate and
// never written from client input. Version backs optimistic locking.
type Offer struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	CustomerID         uint              `gorm:"not null;index" json:"customer_id"`
	ReviewerID         *uint             `json:"reviewer_id"`
	CoverageType       string            `gorm:"size:20;not null;index" json:"coverage_type"`
	Description        string            `gorm:"type:text" json:"description"`
	BasePrice          float64           `gorm:"type:decimal(15,2);not null;default:0" json:"base_price"`
	DiscountRate       float64           `gorm:"type:decimal(5,2);not null;default:0" json:"discount_rate"`
	CoverageTier       int               `gorm:"not null;default:0" json:"coverage_tier"`
	FinalPrice         float64           `gorm:"type:decimal(15,2);not null;default:0" json:"final_price"`
	Status             string            `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CustomerApproved   bool              `gorm:"default:false" json:"customer_approved"`
	RequestedStartDate *time.Time        `json:"requested_start_date"`
	ValidUntil         time.Time         `gorm:"not null" json:"valid_until"`
	UnderwritingData   datatypes.JSONMap `json:"underwriting_data"`
	ReviewerNote       string            `gorm:"type:text" json:"reviewer_note"`
	PolicyID           *uint             `json:"policy_id"`
	Version            uint              `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relations
	Customer *User   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Reviewer *User   `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Policy   *Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
}

func (Offer) TableName() string {
	return "offers"
}

// IsExpired reports whether the offer window has passed. A PENDING offer
// past ValidUntil must be treated as EXPIRED by readers even before the
// sweep reconciles the stored row.
func (o *Offer) IsExpired(now time.Time) bool {
	return now.After(o.ValidUntil)
}

// UnderwritingStrings flattens the JSON blob into the string map the
// underwriting schema validator works on.
func (o *Offer) UnderwritingStrings() map[string]string {
	out := make(map[string]string, len(o.UnderwritingData))
	for k, v := range o.UnderwritingData {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// OfferResponse DTO
type OfferResponse struct {
	ID                 uint              `json:"id"`
	CustomerID         uint              `json:"customer_id"`
	CustomerName       string            `json:"customer_name,omitempty"`
	ReviewerID         *uint             `json:"reviewer_id"`
	ReviewerName       string            `json:"reviewer_name,omitempty"`
	CoverageType       string            `json:"coverage_type"`
	Department         string            `json:"department"`
	Description        string            `json:"description"`
	BasePrice          float64           `json:"base_price"`
	DiscountRate       float64           `json:"discount_rate"`
	CoverageTier       int               `json:"coverage_tier"`
	FinalPrice         float64           `json:"final_price"`
	Status             string            `json:"status"`
	CustomerApproved   bool              `json:"customer_approved"`
	Partition          string            `json:"partition,omitempty"`
	RequestedStartDate *time.Time        `json:"requested_start_date"`
	ValidUntil         time.Time         `json:"valid_until"`
	UnderwritingData   datatypes.JSONMap `json:"underwriting_data"`
	ReviewerNote       string            `json:"reviewer_note,omitempty"`
	PolicyID           *uint             `json:"policy_id"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (o *Offer) ToResponse() *OfferResponse {
	resp := &OfferResponse{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		ReviewerID:         o.ReviewerID,
		CoverageType:       o.CoverageType,
		Department:         domain.CoverageType(o.CoverageType).Department(),
		Description:        o.Description,
		BasePrice:          o.BasePrice,
		DiscountRate:       o.DiscountRate,
		CoverageTier:       o.CoverageTier,
		FinalPrice:         o.FinalPrice,
		Status:             o.Status,
		CustomerApproved:   o.CustomerApproved,
		RequestedStartDate: o.RequestedStartDate,
		ValidUntil:         o.ValidUntil,
		UnderwritingData:   o.UnderwritingData,
		ReviewerNote:       o.ReviewerNote,
		PolicyID:           o.PolicyID,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}

	// Canonical derived partition instead of ad hoc status string checks.
	if o.CustomerApproved {
		resp.Partition = "issued"
	} else if o.Status == string(domain.OfferApproved) {
		resp.Partition = "awaiting_payment"
	}

	if o.Customer != nil {
		resp.CustomerName = o.Customer.FullName
	}
	if o.Reviewer != nil {
		resp.ReviewerName = o.Reviewer.FullName
	}

	return resp
}

// Policy represents an issued policy, created exactly once per offer.
type Policy struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OfferID      uint      `gorm:"not null;uniqueIndex" json:"offer_id"`
	PolicyNumber string    `gorm:"size:50;uniqueIndex;not null" json:"policy_number"`
	Premium      float64   `gorm:"type:decimal(15,2);not null" json:"premium"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Offer *Offer `gorm:"foreignKey:OfferID" json:"offer,omitempty"`
}

func (Policy) TableName() string {
	return "policies"
}

// IsExpired reports whether the policy term has ended.
func (p *Policy) IsExpired(now time.Time) bool {
	return now.After(p.EndDate)
}

// PolicyResponse DTO
type PolicyResponse struct {
	ID           uint      `json:"id"`
	OfferID      uint      `json:"offer_id"`
	PolicyNumber string    `json:"policy_number"`
	Premium      float64   `json:"premium"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       string    `json:"status"`
	CoverageType string    `json:"coverage_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *Policy) ToResponse() *PolicyResponse {
	status := "ACTIVE"
	if p.IsExpired(time.Now()) {
		status = "EXPIRED"
	}

	resp := &PolicyResponse{
		ID:           p.ID,
		OfferID:      p.OfferID,
		PolicyNumber: p.PolicyNumber,
		Premium:      p.Premium,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       status,
		CreatedAt:    p.CreatedAt,
	}

	if p.Offer != nil {
		resp.CoverageType = p.Offer.CoverageType
	}

	return resp
}

// Claim represents a post-issuance incident report against a policy.
// ApprovedAmount is set if and only if Status is APPROVED.
type Claim struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PolicyID       uint           `gorm:"not null;index" json:"policy_id"`
	FiledBy        uint           `gorm:"not null;index" json:"filed_by"`
	IncidentType   string         `gorm:"size:100;not null" json:"incident_type"`
	Description    string         `gorm:"type:text" json:"description"`
	IncidentDate   time.Time      `gorm:"not null" json:"incident_date"`
	Status         string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ApprovedAmount *float64       `gorm:"type:decimal(15,2)" json:"approved_amount"`
	ReviewerNotes  string         `gorm:"type:text" json:"reviewer_notes"`
	ReviewerID     *uint          `json:"reviewer_id"`
	Version        uint           `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Policy   *Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
	Filer    *User   `gorm:"foreignKey:FiledBy" json:"filer,omitempty"`
	Reviewer *User   `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (Claim) TableName() string {
	return "claims"
}

// ClaimResponse DTO
type ClaimResponse struct {
	ID             uint      `json:"id"`
	PolicyID       uint      `json:"policy_id"`
	PolicyNumber   string    `json:"policy_number,omitempty"`
	FiledBy        uint      `json:"filed_by"`
	FilerName      string    `json:"filer_name,omitempty"`
	IncidentType   string    `json:"incident_type"`
	Description    string    `json:"description"`
	IncidentDate   time.Time `json:"incident_date"`
	Status         string    `json:"status"`
	ApprovedAmount *float64  `json:"approved_amount"`
	ReviewerNotes  string    `json:"reviewer_notes,omitempty"`
	ReviewerID     *uint     `json:"reviewer_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (cl *Claim) ToResponse() *ClaimResponse {
	resp := &ClaimResponse{
		ID:             cl.ID,
		PolicyID:       cl.PolicyID,
		FiledBy:        cl.FiledBy,
		IncidentType:   cl.IncidentType,
		Description:    cl.Description,
		IncidentDate:   cl.IncidentDate,
		Status:         cl.Status,
		ApprovedAmount: cl.ApprovedAmount,
		ReviewerNotes:  cl.ReviewerNotes,
		ReviewerID:     cl.ReviewerID,
		CreatedAt:      cl.CreatedAt,
		UpdatedAt:      cl.UpdatedAt,
	}

	if cl.Policy != nil {
		resp.PolicyNumber = cl.Policy.PolicyNumber
	}
	if cl.Filer != nil {
		resp.FilerName = cl.Filer.FullName
	}

	return resp
}

// Document represents uploaded file metadata; bytes live in the object store.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerType   string    `gorm:"size:20;not null;index:idx_documents_owner" json:"owner_type"`
	OwnerID     uint      `gorm:"not null;index:idx_documents_owner" json:"owner_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	Category    string    `gorm:"size:30;not null" json:"category"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	StorageKey  string    `gorm:"size:512;uniqueIndex;not null" json:"-"`
	UploadedBy  uint      `gorm:"not null" json:"uploaded_by"`
	Finalized   bool      `gorm:"default:false" json:"finalized"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentResponse DTO
type DocumentResponse struct {
	ID          uint      `json:"id"`
	OwnerType   string    `json:"owner_type"`
	OwnerID     uint      `json:"owner_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Category    string    `json:"category"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uint      `json:"uploaded_by"`
	Finalized   bool      `json:"finalized"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d *Document) ToResponse() *DocumentResponse {
	return &DocumentResponse{
		ID:          d.ID,
		OwnerType:   d.OwnerType,
		OwnerID:     d.OwnerID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Category:    d.Category,
		SizeBytes:   d.SizeBytes,
		UploadedBy:  d.UploadedBy,
		Finalized:   d.Finalized,
		CreatedAt:   d.CreatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Policy{},
		&Offer{},
		&Claim{},
		&Document{},
	)
}
