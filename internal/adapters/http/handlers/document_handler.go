package handlers

import (
	"brokersure/internal/core/services"
	"brokersure/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler handles document upload/download endpoints
type DocumentHandler struct {
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Presign handles the upload presign request
// @Summary Presign an upload
// @Description Validate the declared file and return a presigned PUT URL
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PresignInput true "Upload declaration"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /documents/presign [post]
func (h *DocumentHandler) Presign(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.PresignInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.FileName == "" {
		return response.BadRequest(c, "File name is required")
	}
	if input.ContentType == "" {
		return response.BadRequest(c, "Content type is required")
	}

	out, err := h.documentService.Presign(c.Context(), &input, userID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Upload URL created", out)
}

// Finalize handles the upload confirmation
// @Summary Finalize an upload
// @Description Confirm the client completed the PUT against the presigned URL
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /documents/{id}/finalize [post]
func (h *DocumentHandler) Finalize(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid document ID")
	}

	doc, err := h.documentService.Finalize(c.Context(), uint(id), userID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Document finalized", doc.ToResponse())
}

// GetByID handles fetching document metadata plus a download URL
// @Summary Get document
// @Description Get document metadata and a short-lived download URL
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid document ID")
	}

	out, err := h.documentService.GetDownload(c.Context(), uint(id), userID, role)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Document retrieved successfully", out)
}
