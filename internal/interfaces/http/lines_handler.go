package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
)

// LinesHandler recibe los avisos del módulo de órdenes cuando cambian sus líneas.
type LinesHandler struct {
	hooks *inventory.DemandLineHooks
	log   zerolog.Logger
}

// NewLinesHandler construye el handler.
func NewLinesHandler(hooks *inventory.DemandLineHooks, log zerolog.Logger) *LinesHandler {
	return &LinesHandler{hooks: hooks, log: log}
}

// Created godoc
// @Summary      Aviso de línea creada
// @Description  Intenta reservar la cantidad de la línea. Si falta stock responde 200 con
//
//	reserved=false y el faltante; la línea no se rechaza.
//
// @Tags         lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lineId  path  string                   true  "ID de la línea"
// @Param        body    body  dto.LineQuantityRequest  true  "quantity"
// @Success      200  {object}  dto.LineReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/lines/{lineId}/created [post]
func (h *LinesHandler) Created(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.LineQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	lineID := pathParam(c, "lineId")
	out, err := h.hooks.OnLineCreated(c.Context(), companyID, lineID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLineReservation(lineID, out))
}

// QuantityChanged godoc
// @Summary      Aviso de cambio de cantidad de una línea
// @Description  Libera todo lo reservado y vuelve a reservar la nueva cantidad.
// @Tags         lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lineId  path  string                   true  "ID de la línea"
// @Param        body    body  dto.LineQuantityRequest  true  "nueva quantity"
// @Success      200  {object}  dto.LineReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/lines/{lineId}/quantity [post]
func (h *LinesHandler) QuantityChanged(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.LineQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	lineID := pathParam(c, "lineId")
	out, err := h.hooks.OnQuantityChanged(c.Context(), companyID, lineID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toLineReservation(lineID, out))
}

// Deleted godoc
// @Summary      Aviso de líneas borradas
// @Tags         lines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LinesDeletedRequest  true  "line_ids"
// @Success      200  {object}  dto.LinesDeletedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/lines/deleted [post]
func (h *LinesHandler) Deleted(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.LinesDeletedRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	n, err := h.hooks.OnLinesDeleted(c.Context(), companyID, in.LineIDs)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LinesDeletedResponse{ClaimsRemoved: n})
}

func toLineReservation(lineID string, out inventory.ReserveOutcome) dto.LineReservationResponse {
	res := dto.LineReservationResponse{
		DemandLineID: lineID,
		Reserved:     out.Reserved,
		Shortfall:    out.Shortfall,
	}
	if out.Claim != nil {
		claim := toClaimResponse(out.Claim)
		res.Claim = &claim
	}
	return res
}
