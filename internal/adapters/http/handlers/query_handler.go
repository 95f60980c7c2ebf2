package handlers

import (
	"brokersure/internal/core/domain"
	"brokersure/internal/core/services"
	"brokersure/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// QueryHandler exposes the record query engine over every collection
type QueryHandler struct {
	queryService *services.QueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// List runs a search + sort query against one collection
// @Summary Query a collection
// @Description Search and sort offers, customers, agents, claims, policies or documents. Customers see only their own records.
// @Tags Query
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param search query string false "Case-insensitive search term"
// @Param sort_key query string false "Sort key"
// @Param sort_dir query string false "asc or desc"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /query/{collection} [get]
func (h *QueryHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	input := &services.QueryInput{
		Collection: c.Params("collection"),
		SearchTerm: c.Query("search"),
		SortKey:    c.Query("sort_key"),
		SortDir:    c.Query("sort_dir"),
	}

	// Customers only ever see their own records
	if role == string(domain.RoleCustomer) {
		switch input.Collection {
		case "offers", "claims", "policies", "documents":
			input.CustomerID = &userID
		default:
			return response.Forbidden(c, "You don't have permission to query this collection")
		}
	}

	records, err := h.queryService.List(c.Context(), input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Query executed successfully", records)
}
