package handlers

import (
	"brokersure/internal/core/domain"
	"brokersure/internal/core/services"
	"brokersure/internal/pkg/pagination"
	"brokersure/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OfferHandler handles offer endpoints
type OfferHandler struct {
	offerService *services.OfferService
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offerService *services.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// Create handles offer creation
// @Summary Create coverage request
// @Description File a new coverage request with underwriting data
// @Tags Offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateOfferInput true "Offer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /offers [post]
func (h *OfferHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateOfferInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.CoverageType == "" {
		return response.BadRequest(c, "Coverage type is required")
	}

	offer, err := h.offerService.Create(c.Context(), &input, userID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Offer created successfully", offer.ToResponse())
}

// GetMy handles listing the caller's own offers
// @Summary List my offers
// @Description List offers belonging to the authenticated customer
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /offers/my [get]
func (h *OfferHandler) GetMy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	offers, err := h.offerService.GetByCustomer(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list offers")
	}

	records := make([]interface{}, 0, len(offers))
	for _, o := range offers {
		records = append(records, o.ToResponse())
	}
	return response.Success(c, "Offers retrieved successfully", records)
}

// List handles listing all offers (agent/admin)
// @Summary List all offers
// @Description List offers page by page
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /offers [get]
func (h *OfferHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	offers, total, err := h.offerService.ListPaged(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list offers")
	}

	records := make([]interface{}, 0, len(offers))
	for _, o := range offers {
		records = append(records, o.ToResponse())
	}
	return response.Success(c, "Offers retrieved successfully", fiber.Map{
		"offers": records,
		"meta":   pagination.GetMeta(params, total),
	})
}

// GetByID handles fetching one offer
// @Summary Get offer
// @Description Get one offer by ID; customers can only fetch their own
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /offers/{id} [get]
func (h *OfferHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid offer ID")
	}

	offer, err := h.offerService.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromDomainError(c, err)
	}

	if role == string(domain.RoleCustomer) && offer.CustomerID != userID {
		return response.Forbidden(c, "You don't have permission to access this offer")
	}

	return response.Success(c, "Offer retrieved successfully", offer.ToResponse())
}

// Price handles the reviewer's pricing decision
// @Summary Price an offer
// @Description Set base price, tier and discount; optionally approve or reject
// @Tags Offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer ID"
// @Param body body services.PriceOfferInput true "Pricing decision"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /offers/{id}/price [put]
func (h *OfferHandler) Price(c *fiber.Ctx) error {
	reviewerID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid offer ID")
	}

	var input services.PriceOfferInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	offer, err := h.offerService.Price(c.Context(), uint(id), &input, reviewerID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Offer priced successfully", offer.ToResponse())
}

// Delete handles offer withdrawal
// @Summary Withdraw offer
// @Description Withdraw an offer; impossible once the customer approved it
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offer ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /offers/{id} [delete]
func (h *OfferHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid offer ID")
	}

	if err := h.offerService.Delete(c.Context(), uint(id), userID, role); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Offer withdrawn successfully", nil)
}
