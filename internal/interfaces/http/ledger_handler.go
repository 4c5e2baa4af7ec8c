package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// LedgerHandler consultas de disponibilidad, validación de reservas y recepción de compras.
type LedgerHandler struct {
	validation  *ledger.ValidationUseCase
	projections *ledger.ProjectionUseCase
	procurement *ledger.ProcurementUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(validation *ledger.ValidationUseCase, projections *ledger.ProjectionUseCase, procurement *ledger.ProcurementUseCase) *LedgerHandler {
	return &LedgerHandler{validation: validation, projections: projections, procurement: procurement}
}

// Validate godoc
// @Summary      Validar disponibilidad para una reserva
// @Description  No escribe nada. Con document_id se descuenta lo que el documento ya consume.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateRequest  true  "líneas a validar"
// @Success      200   {object}  dto.ValidasiKetersediaanDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /ledger/validate [post]
func (h *LedgerHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.validation.Validate(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Disponibilidad por SKU
// @Tags         ledger
// @Produce      json
// @Param        sku_id  query  string  false  "Filtrar por SKU. Vacío = todos."
// @Success      200  {array}   dto.BeratTersediaDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /ledger/availability [get]
func (h *LedgerHandler) Availability(c *fiber.Ctx) error {
	list, err := h.projections.AvailabilityList(c.UserContext(), c.Query("sku_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Forecast godoc
// @Summary      Predicción de agotamiento
// @Tags         ledger
// @Produce      json
// @Param        sku_id  path  string  true  "SKU"
// @Success      200  {object}  dto.PrediksiKehabisanDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /ledger/forecast/{sku_id} [get]
func (h *LedgerHandler) Forecast(c *fiber.Ctx) error {
	out, err := h.projections.Forecast(c.UserContext(), c.Params("sku_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de disponibilidad
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  dto.RingkasanKetersediaanDTO
// @Router       /ledger/summary [get]
func (h *LedgerHandler) Summary(c *fiber.Ctx) error {
	out, err := h.projections.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Detail godoc
// @Summary      Disponibilidad e historial de un SKU
// @Tags         ledger
// @Produce      json
// @Param        id  path  string  true  "SKU"
// @Success      200  {object}  dto.SkuDetailDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /ledger/skus/{id}/detail [get]
func (h *LedgerHandler) Detail(c *fiber.Ctx) error {
	out, err := h.projections.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Alerts godoc
// @Summary      SKUs con stock bajo
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /ledger/alerts [get]
func (h *LedgerHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.projections.Alerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(alerts),
		"alerts": alerts,
	})
}

// ReceiveProcurement godoc
// @Summary      Registrar recepción de compra
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveProcurementRequest  true  "document_id y líneas (sku_id, quantity, unit_price)"
// @Success      201   {array}   dto.LedgerHistoryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /ledger/procurements [post]
func (h *LedgerHandler) ReceiveProcurement(c *fiber.Ctx) error {
	var in dto.ReceiveProcurementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.procurement.Receive(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
