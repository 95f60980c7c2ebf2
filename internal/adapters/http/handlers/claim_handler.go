package handlers

import (
	"brokersure/internal/core/domain"
	"brokersure/internal/core/services"
	"brokersure/internal/pkg/pagination"
	"brokersure/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClaimHandler handles claim endpoints
type ClaimHandler struct {
	claimService *services.ClaimService
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// File handles filing a new claim
// @Summary File a claim
// @Description File a claim against one of the caller's unexpired policies
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.FileClaimInput true "Claim data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /claims [post]
func (h *ClaimHandler) File(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.FileClaimInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.PolicyID == 0 {
		return response.BadRequest(c, "Policy ID is required")
	}
	if input.IncidentType == "" {
		return response.BadRequest(c, "Incident type is required")
	}
	if input.Description == "" {
		return response.BadRequest(c, "Description is required")
	}
	if input.IncidentDate == "" {
		return response.BadRequest(c, "Incident date is required")
	}

	claim, err := h.claimService.File(c.Context(), &input, userID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Claim filed successfully", claim.ToResponse())
}

// GetMy handles listing the caller's own claims
// @Summary List my claims
// @Description List claims filed by the authenticated customer
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /claims/my [get]
func (h *ClaimHandler) GetMy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	claims, err := h.claimService.GetByFiler(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list claims")
	}

	records := make([]interface{}, 0, len(claims))
	for _, cl := range claims {
		records = append(records, cl.ToResponse())
	}
	return response.Success(c, "Claims retrieved successfully", records)
}

// List handles listing all claims (agent/admin)
// @Summary List all claims
// @Description List claims page by page
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /claims [get]
func (h *ClaimHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	claims, total, err := h.claimService.ListPaged(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list claims")
	}

	records := make([]interface{}, 0, len(claims))
	for _, cl := range claims {
		records = append(records, cl.ToResponse())
	}
	return response.Success(c, "Claims retrieved successfully", fiber.Map{
		"claims": records,
		"meta":   pagination.GetMeta(params, total),
	})
}

// GetByID handles fetching one claim
// @Summary Get claim
// @Description Get one claim by ID; customers can only fetch their own
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param id path int true "Claim ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /claims/{id} [get]
func (h *ClaimHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid claim ID")
	}

	claim, err := h.claimService.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromDomainError(c, err)
	}

	if role == string(domain.RoleCustomer) && claim.FiledBy != userID {
		return response.Forbidden(c, "You don't have permission to access this claim")
	}

	return response.Success(c, "Claim retrieved successfully", claim.ToResponse())
}

// Update handles amending a pending claim
// @Summary Update claim
// @Description Amend a pending claim; resolved claims are immutable
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Claim ID"
// @Param body body services.UpdateClaimInput true "Claim changes"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /claims/{id} [put]
func (h *ClaimHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid claim ID")
	}

	var input services.UpdateClaimInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim, err := h.claimService.Update(c.Context(), uint(id), &input, userID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Claim updated successfully", claim.ToResponse())
}

// Delete handles withdrawing a pending claim
// @Summary Withdraw claim
// @Description Withdraw a pending claim; resolved claims cannot be withdrawn
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param id path int true "Claim ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /claims/{id} [delete]
func (h *ClaimHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid claim ID")
	}

	if err := h.claimService.Delete(c.Context(), uint(id), userID, role); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Claim withdrawn successfully", nil)
}

// Resolve handles the reviewer's decision
// @Summary Resolve claim
// @Description Approve (with amount) or reject a pending claim
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Claim ID"
// @Param body body services.ResolveClaimInput true "Resolution"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /claims/{id}/resolve [put]
func (h *ClaimHandler) Resolve(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid claim ID")
	}

	var input services.ResolveClaimInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	claim, err := h.claimService.Resolve(c.Context(), uint(id), &input, reviewerID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Claim resolved successfully", claim.ToResponse())
}
