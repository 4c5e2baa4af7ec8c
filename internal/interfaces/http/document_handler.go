package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// DocumentHandler pedidos y órdenes de producción: cada cambio pasa por el motor de transiciones.
type DocumentHandler struct {
	uc *ledger.DocumentUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *ledger.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido u orden de producción
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "document_id, document_type, status, lines"
// @Success      201   {object}  dto.TransitionResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  InsufficientStockResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /ledger/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Modificar líneas y/o estado
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        type  path  string                     true  "order | production"
// @Param        id    path  string                     true  "documento"
// @Param        body  body  dto.UpdateDocumentRequest  true  "status y/o lines"
// @Success      200   {object}  dto.TransitionResultDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  InsufficientStockResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /ledger/documents/{type}/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDocumentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("type"), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        type  path  string                   true  "order | production"
// @Param        id    path  string                   true  "documento"
// @Param        body  body  dto.ChangeStatusRequest  true  "status"
// @Success      200   {object}  dto.TransitionResultDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  InsufficientStockResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /ledger/documents/{type}/{id}/status [patch]
func (h *DocumentHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), GetUserID(c), c.Params("type"), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener documento con sus salidas vigentes
// @Tags         documents
// @Produce      json
// @Param        type  path  string  true  "order | production"
// @Param        id    path  string  true  "documento"
// @Success      200  {object}  dto.DocumentDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /ledger/documents/{type}/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("type"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Statuses godoc
// @Summary      Catálogo de estados del tipo de documento
// @Tags         documents
// @Produce      json
// @Param        type  path  string  true  "order | production"
// @Success      200  {array}  inventory.Status
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /ledger/statuses/{type} [get]
func (h *DocumentHandler) Statuses(c *fiber.Ctx) error {
	list, err := h.uc.Statuses(c.Params("type"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
