package handlers

import (
	"brokersure/internal/core/domain"
	"brokersure/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler serves the closed coverage type catalogue and the
// per-type underwriting schemas. All of it is code-level data, so these
// endpoints never touch the database.
type ReferenceHandler struct{}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// coverageTypeEntry is one row of the coverage type catalogue
type coverageTypeEntry struct {
	Type       string `json:"type"`
	Department string `json:"department"`
	TermMonths int    `json:"term_months"`
}

// ListCoverageTypes returns the coverage type catalogue
// @Summary List coverage types
// @Description List the sold coverage types with department and default term
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Response
// @Router /coverage-types [get]
func (h *ReferenceHandler) ListCoverageTypes(c *fiber.Ctx) error {
	types := domain.AllCoverageTypes()
	entries := make([]coverageTypeEntry, 0, len(types))
	for _, t := range types {
		entries = append(entries, coverageTypeEntry{
			Type:       string(t),
			Department: t.Department(),
			TermMonths: t.TermMonths(),
		})
	}
	return response.Success(c, "Coverage types retrieved successfully", entries)
}

// GetSchema returns the underwriting schema for one coverage type
// @Summary Get underwriting schema
// @Description Get the ordered underwriting field set for a coverage type
// @Tags Reference
// @Produce json
// @Param type path string true "Coverage type"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /coverage-types/{type}/schema [get]
func (h *ReferenceHandler) GetSchema(c *fiber.Ctx) error {
	t := domain.CoverageType(c.Params("type"))

	fields, err := domain.FieldsFor(t)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Underwriting schema retrieved successfully", fiber.Map{
		"coverage_type": string(t),
		"department":    t.Department(),
		"fields":        fields,
	})
}
