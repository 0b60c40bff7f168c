package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmadist-core/internal/application/assembly"
	"github.com/jhoicas/pharmadist-core/internal/application/dto"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

// DocumentHandler maneja las peticiones HTTP de documentos comerciales (protegido).
type DocumentHandler struct {
	svc *assembly.Service
	log *logger.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(svc *assembly.Service, log *logger.Logger) *DocumentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentHandler{svc: svc, log: log.Component("http")}
}

// Create godoc
// @Summary      Ensamblar documento nuevo
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DocumentDraft  true  "register, doc_date, party_id o supplier_id, rows"
// @Success      201   {object}  dto.AssembledDocument
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.DocumentDraft
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.DocumentID = ""
	out, err := h.svc.AssembleDocument(c.Context(), RequestContext(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update reemplaza cabecera y líneas de un documento existente; conserva el número.
// @Summary      Editar documento
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del documento"
// @Param        body  body  dto.DocumentDraft  true  "borrador completo"
// @Success      200   {object}  dto.AssembledDocument
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.DocumentDraft
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.DocumentID = c.Params("id")
	out, err := h.svc.AssembleDocument(c.Context(), RequestContext(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento con líneas y lotes
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.GetDocument(c.Context(), RequestContext(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// SetEnabled godoc
// @Summary      Habilitar o deshabilitar documento
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del documento"
// @Param        body  body  dto.SetEnabledRequest  true  "enabled"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/enabled [patch]
func (h *DocumentHandler) SetEnabled(c *fiber.Ctx) error {
	var in dto.SetEnabledRequest
	if err := c.BodyParser(&in); err != nil || in.Enabled == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se requiere enabled"})
	}
	out, err := h.svc.SetEnabled(c.Context(), RequestContext(c), c.Params("id"), *in.Enabled)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// TaxPreview godoc
// @Summary      Vista previa de impuestos (no guarda ni consume numeración)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TaxPreviewRequest  true  "regime, rows, cost_factors"
// @Success      200   {object}  dto.TaxPreview
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/tax-preview [post]
func (h *DocumentHandler) TaxPreview(c *fiber.Ctx) error {
	var in dto.TaxPreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.svc.ComputeTaxPreview(c.Context(), RequestContext(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

func (h *DocumentHandler) fail(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).
			Int64("company_id", GetCompanyID(c)).Msg("petición fallida")
	}
	return c.Status(status).JSON(body)
}
