package services

import (
	"context"
	"time"

	"brokersure/internal/adapters/persistence/models"
	"brokersure/internal/adapters/persistence/repositories"
	"brokersure/internal/core/domain"
	"brokersure/internal/pkg/recordquery"
)

// QueryService serves every list view through the shared record query
// engine. Each collection contributes only its field selectors; search,
// normalization and stable sorting live in recordquery.
type QueryService struct {
	offerService *OfferService
	claimRepo    *repositories.ClaimRepository
	policyRepo   *repositories.PolicyRepository
	documentRepo *repositories.DocumentRepository
	userRepo     repositories.UserRepository
}

// NewQueryService creates a new query service
func NewQueryService(
	offerService *OfferService,
	claimRepo *repositories.ClaimRepository,
	policyRepo *repositories.PolicyRepository,
	documentRepo *repositories.DocumentRepository,
	userRepo repositories.UserRepository,
) *QueryService {
	return &QueryService{
		offerService: offerService,
		claimRepo:    claimRepo,
		policyRepo:   policyRepo,
		documentRepo: documentRepo,
		userRepo:     userRepo,
	}
}

// QueryInput represents one list query
type QueryInput struct {
	Collection string
	SearchTerm string
	SortKey    string
	SortDir    string
	// CustomerID scopes the query to one customer's records. nil means the
	// caller (agent/admin) sees everything.
	CustomerID *uint
}

// List runs a query against one collection and returns response DTOs.
func (s *QueryService) List(ctx context.Context, input *QueryInput) (interface{}, error) {
	dir := recordquery.ParseDirection(input.SortDir)

	switch input.Collection {
	case "offers":
		return s.queryOffers(ctx, input, dir)
	case "customers":
		return s.queryUsers(ctx, string(domain.RoleCustomer), input, dir)
	case "agents":
		return s.queryUsers(ctx, string(domain.RoleAgent), input, dir)
	case "claims":
		return s.queryClaims(ctx, input, dir)
	case "policies":
		return s.queryPolicies(ctx, input, dir)
	case "documents":
		return s.queryDocuments(ctx, input, dir)
	default:
		return nil, domain.NewValidationError("collection", "unknown collection: "+input.Collection)
	}
}

func (s *QueryService) queryOffers(ctx context.Context, input *QueryInput, dir recordquery.Direction) ([]*models.OfferResponse, error) {
	var offers []*models.Offer
	var err error
	if input.CustomerID != nil {
		offers, err = s.offerService.GetByCustomer(ctx, *input.CustomerID)
	} else {
		offers, err = s.offerService.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	records := make([]*models.OfferResponse, 0, len(offers))
	for _, o := range offers {
		records = append(records, o.ToResponse())
	}

	fields := recordquery.Fields[*models.OfferResponse]{
		Search: []func(*models.OfferResponse) string{
			func(r *models.OfferResponse) string { return r.CustomerName },
			func(r *models.OfferResponse) string { return r.CoverageType },
			func(r *models.OfferResponse) string { return r.Status },
			func(r *models.OfferResponse) string { return r.Partition },
			func(r *models.OfferResponse) string { return r.Description },
		},
		Dates: []func(*models.OfferResponse) time.Time{
			func(r *models.OfferResponse) time.Time { return r.CreatedAt },
			func(r *models.OfferResponse) time.Time { return r.ValidUntil },
		},
		Sort: map[string]func(*models.OfferResponse) any{
			"id":            func(r *models.OfferResponse) any { return r.ID },
			"customer_name": func(r *models.OfferResponse) any { return r.CustomerName },
			"coverage_type": func(r *models.OfferResponse) any { return r.CoverageType },
			"status":        func(r *models.OfferResponse) any { return r.Status },
			"base_price":    func(r *models.OfferResponse) any { return r.BasePrice },
			"final_price":   func(r *models.OfferResponse) any { return r.FinalPrice },
			"valid_until":   func(r *models.OfferResponse) any { return r.ValidUntil },
			"created_at":    func(r *models.OfferResponse) any { return r.CreatedAt },
		},
	}

	return recordquery.Run(records, fields, input.SearchTerm, input.SortKey, dir), nil
}

func (s *QueryService) queryUsers(ctx context.Context, role string, input *QueryInput, dir recordquery.Direction) ([]*models.UserResponse, error) {
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, err
	}

	records := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		records = append(records, u.ToResponse())
	}

	fields := recordquery.Fields[*models.UserResponse]{
		Search: []func(*models.UserResponse) string{
			func(r *models.UserResponse) string { return r.FullName },
			func(r *models.UserResponse) string { return r.Username },
			func(r *models.UserResponse) string { return r.Email },
		},
		Dates: []func(*models.UserResponse) time.Time{
			func(r *models.UserResponse) time.Time { return r.CreatedAt },
		},
		Sort: map[string]func(*models.UserResponse) any{
			"id":         func(r *models.UserResponse) any { return r.ID },
			"full_name":  func(r *models.UserResponse) any { return r.FullName },
			"username":   func(r *models.UserResponse) any { return r.Username },
			"email":      func(r *models.UserResponse) any { return r.Email },
			"is_active":  func(r *models.UserResponse) any { return r.IsActive },
			"created_at": func(r *models.UserResponse) any { return r.CreatedAt },
		},
	}

	return recordquery.Run(records, fields, input.SearchTerm, input.SortKey, dir), nil
}

func (s *QueryService) queryClaims(ctx context.Context, input *QueryInput, dir recordquery.Direction) ([]*models.ClaimResponse, error) {
	var claims []*models.Claim
	var err error
	if input.CustomerID != nil {
		claims, err = s.claimRepo.GetByFiler(ctx, *input.CustomerID)
	} else {
		claims, err = s.claimRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	records := make([]*models.ClaimResponse, 0, len(claims))
	for _, c := range claims {
		records = append(records, c.ToResponse())
	}

	fields := recordquery.Fields[*models.ClaimResponse]{
		Search: []func(*models.ClaimResponse) string{
			func(r *models.ClaimResponse) string { return r.PolicyNumber },
			func(r *models.ClaimResponse) string { return r.FilerName },
			func(r *models.ClaimResponse) string { return r.IncidentType },
			func(r *models.ClaimResponse) string { return r.Status },
			func(r *models.ClaimResponse) string { return r.Description },
		},
		Dates: []func(*models.ClaimResponse) time.Time{
			func(r *models.ClaimResponse) time.Time { return r.IncidentDate },
			func(r *models.ClaimResponse) time.Time { return r.CreatedAt },
		},
		Sort: map[string]func(*models.ClaimResponse) any{
			"id":              func(r *models.ClaimResponse) any { return r.ID },
			"policy_number":   func(r *models.ClaimResponse) any { return r.PolicyNumber },
			"incident_type":   func(r *models.ClaimResponse) any { return r.IncidentType },
			"status":          func(r *models.ClaimResponse) any { return r.Status },
			"approved_amount": func(r *models.ClaimResponse) any { return r.ApprovedAmount },
			"incident_date":   func(r *models.ClaimResponse) any { return r.IncidentDate },
			"created_at":      func(r *models.ClaimResponse) any { return r.CreatedAt },
		},
	}

	return recordquery.Run(records, fields, input.SearchTerm, input.SortKey, dir), nil
}

func (s *QueryService) queryPolicies(ctx context.Context, input *QueryInput, dir recordquery.Direction) ([]*models.PolicyResponse, error) {
	var policies []*models.Policy
	var err error
	if input.CustomerID != nil {
		policies, err = s.policyRepo.GetByCustomer(ctx, *input.CustomerID)
	} else {
		policies, err = s.policyRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	records := make([]*models.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		records = append(records, p.ToResponse())
	}

	fields := recordquery.Fields[*models.PolicyResponse]{
		Search: []func(*models.PolicyResponse) string{
			func(r *models.PolicyResponse) string { return r.PolicyNumber },
			func(r *models.PolicyResponse) string { return r.CoverageType },
			func(r *models.PolicyResponse) string { return r.Status },
		},
		Dates: []func(*models.PolicyResponse) time.Time{
			func(r *models.PolicyResponse) time.Time { return r.StartDate },
			func(r *models.PolicyResponse) time.Time { return r.EndDate },
			func(r *models.PolicyResponse) time.Time { return r.CreatedAt },
		},
		Sort: map[string]func(*models.PolicyResponse) any{
			"id":            func(r *models.PolicyResponse) any { return r.ID },
			"policy_number": func(r *models.PolicyResponse) any { return r.PolicyNumber },
			"premium":       func(r *models.PolicyResponse) any { return r.Premium },
			"status":        func(r *models.PolicyResponse) any { return r.Status },
			"start_date":    func(r *models.PolicyResponse) any { return r.StartDate },
			"end_date":      func(r *models.PolicyResponse) any { return r.EndDate },
			"created_at":    func(r *models.PolicyResponse) any { return r.CreatedAt },
		},
	}

	return recordquery.Run(records, fields, input.SearchTerm, input.SortKey, dir), nil
}

func (s *QueryService) queryDocuments(ctx context.Context, input *QueryInput, dir recordquery.Direction) ([]*models.DocumentResponse, error) {
	// Scope by uploader, not owner: an upload stays in the customer's view
	// after it is re-homed to an offer or claim.
	var docs []*models.Document
	var err error
	if input.CustomerID != nil {
		docs, err = s.documentRepo.ListByUploader(ctx, *input.CustomerID)
	} else {
		docs, err = s.documentRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	records := make([]*models.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.ToResponse())
	}

	fields := recordquery.Fields[*models.DocumentResponse]{
		Search: []func(*models.DocumentResponse) string{
			func(r *models.DocumentResponse) string { return r.FileName },
			func(r *models.DocumentResponse) string { return r.ContentType },
			func(r *models.DocumentResponse) string { return r.Category },
			func(r *models.DocumentResponse) string { return r.OwnerType },
		},
		Dates: []func(*models.DocumentResponse) time.Time{
			func(r *models.DocumentResponse) time.Time { return r.CreatedAt },
		},
		Sort: map[string]func(*models.DocumentResponse) any{
			"id":         func(r *models.DocumentResponse) any { return r.ID },
			"file_name":  func(r *models.DocumentResponse) any { return r.FileName },
			"size_bytes": func(r *models.DocumentResponse) any { return r.SizeBytes },
			"owner_type": func(r *models.DocumentResponse) any { return r.OwnerType },
			"created_at": func(r *models.DocumentResponse) any { return r.CreatedAt },
		},
	}

	return recordquery.Run(records, fields, input.SearchTerm, input.SortKey, dir), nil
}
