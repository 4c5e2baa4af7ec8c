package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// SkuHandler catálogo de materias primas.
type SkuHandler struct {
	uc *ledger.SkuUseCase
}

// NewSkuHandler construye el handler.
func NewSkuHandler(uc *ledger.SkuUseCase) *SkuHandler {
	return &SkuHandler{uc: uc}
}

// Create godoc
// @Summary      Crear SKU
// @Tags         skus
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSkuRequest  true  "kode, nama, satuan"
// @Success      201   {object}  dto.SkuDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /ledger/skus [post]
func (h *SkuHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSkuRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Modificar SKU (solo si no tiene movimientos)
// @Tags         skus
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "SKU"
// @Param        body  body  dto.UpdateSkuRequest  true  "kode, nama, satuan"
// @Success      200   {object}  dto.SkuDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /ledger/skus/{id} [put]
func (h *SkuHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSkuRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar SKUs
// @Tags         skus
// @Produce      json
// @Param        limit   query  int  false  "máximo 100, por defecto 20"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.SkuPageDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /ledger/skus [get]
func (h *SkuHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: describe(err)})
	}
	out, err := h.uc.Page(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
