package handlers

import (
	"brokersure/internal/core/domain"
	"brokersure/internal/core/services"
	"brokersure/internal/pkg/pagination"
	"brokersure/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PolicyHandler handles policy endpoints, including offer payment
type PolicyHandler struct {
	policyService *services.PolicyService
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policyService *services.PolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: policyService}
}

// PayOffer handles the customer paying an approved offer
// @Summary Pay an approved offer
// @Description Charge the customer and issue the policy; repeat payment conflicts
// @Tags Policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer ID"
// @Param body body services.PayOfferInput true "Payment data"
// @Success 201 {object} response.Response
// @Failure 402 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /offers/{id}/pay [post]
func (h *PolicyHandler) PayOffer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid offer ID")
	}

	var input services.PayOfferInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.CardToken == "" {
		return response.BadRequest(c, "Card token is required")
	}

	policy, err := h.policyService.Issue(c.Context(), uint(id), userID, &input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Policy issued successfully", policy.ToResponse())
}

// GetMy handles listing the caller's own policies
// @Summary List my policies
// @Description List policies issued for the authenticated customer's offers
// @Tags Policies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /policies/my [get]
func (h *PolicyHandler) GetMy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	policies, err := h.policyService.GetByCustomer(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list policies")
	}

	records := make([]interface{}, 0, len(policies))
	for _, p := range policies {
		records = append(records, p.ToResponse())
	}
	return response.Success(c, "Policies retrieved successfully", records)
}

// List handles listing all policies (agent/admin)
// @Summary List all policies
// @Description List issued policies page by page
// @Tags Policies
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /policies [get]
func (h *PolicyHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	policies, total, err := h.policyService.ListPaged(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list policies")
	}

	records := make([]interface{}, 0, len(policies))
	for _, p := range policies {
		records = append(records, p.ToResponse())
	}
	return response.Success(c, "Policies retrieved successfully", fiber.Map{
		"policies": records,
		"meta":     pagination.GetMeta(params, total),
	})
}

// GetByID handles fetching one policy
// @Summary Get policy
// @Description Get one policy by ID; customers can only fetch their own
// @Tags Policies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Policy ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /policies/{id} [get]
func (h *PolicyHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid policy ID")
	}

	policy, err := h.policyService.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromDomainError(c, err)
	}

	if role == string(domain.RoleCustomer) {
		if policy.Offer == nil || policy.Offer.CustomerID != userID {
			return response.Forbidden(c, "You don't have permission to access this policy")
		}
	}

	return response.Success(c, "Policy retrieved successfully", policy.ToResponse())
}
