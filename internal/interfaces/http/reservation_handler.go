package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// ReservationHandler expone el motor de reservas (protegido).
type ReservationHandler struct {
	engine *inventory.ReservationEngine
	log    zerolog.Logger
}

// NewReservationHandler construye el handler.
func NewReservationHandler(engine *inventory.ReservationEngine, log zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{engine: engine, log: log}
}

// Reserve godoc
// @Summary      Reservar stock para una línea de demanda
// @Description  Falla con 409 INSUFFICIENT_STOCK si la cantidad supera lo reservable del repuesto.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "demand_line_id, quantity (> 0)"
// @Success      201   {object}  dto.ReservationClaimResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	claim, err := h.engine.Reserve(c.Context(), companyID, in.DemandLineID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toClaimResponse(claim))
}

// Release godoc
// @Summary      Liberar reservas de una línea
// @Description  Sin quantity libera todo; con quantity libera primero las reservas más antiguas.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReleaseRequest  true  "demand_line_id, quantity opcional"
// @Success      200   {object}  dto.ReleaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.ReleaseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.engine.Release(c.Context(), companyID, in.DemandLineID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReleaseResponse{
		DemandLineID:  in.DemandLineID,
		ClaimsRemoved: res.ClaimsRemoved,
		Released:      res.Released,
	})
}

// Transfer godoc
// @Summary      Transferir stock reservado entre órdenes
// @Description  Elimina todas las reservas de la línea origen y crea una reserva de quantity en la
//
//	línea destino, en una sola transacción.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "from_line_id, to_line_id, quantity (> 0)"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/transfer [post]
func (h *ReservationHandler) Transfer(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.engine.Transfer(c.Context(), companyID, in.FromLineID, in.ToLineID, in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferResponse{
		FromOrderID: res.FromOrderID,
		ToOrderID:   res.ToOrderID,
		Claim:       toClaimResponse(res.Claim),
	})
}

// GetReservable godoc
// @Summary      Cantidad reservable de un repuesto
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        partId  path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.ReservableResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/reservable/{partId} [get]
func (h *ReservationHandler) GetReservable(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	partID := pathParam(c, "partId")
	qty, err := h.engine.GetReservable(c.Context(), companyID, partID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReservableResponse{PartID: partID, Reservable: qty})
}

// GetSources godoc
// @Summary      Líneas de otras órdenes con stock reservado del repuesto
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        partId            path   string  true   "ID del repuesto"
// @Param        exclude_order_id  query  string  false  "Orden a excluir (la que pide prestado)"
// @Success      200  {array}   dto.ReservationSourceDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/sources/{partId} [get]
func (h *ReservationHandler) GetSources(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	sources, err := h.engine.GetReservationSources(c.Context(), companyID, pathParam(c, "partId"), queryParam(c, "exclude_order_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ReservationSourceDTO, 0, len(sources))
	for _, s := range sources {
		out = append(out, dto.ReservationSourceDTO{
			DemandLineID: s.DemandLineID,
			OrderID:      s.OrderID,
			OrderNumber:  s.OrderNumber,
			OrderStatus:  s.OrderStatus,
			PartID:       s.PartID,
			LineQuantity: s.LineQuantity,
			Claimed:      s.Claimed,
		})
	}
	return c.JSON(out)
}

func toClaimResponse(claim *entity.ReservationClaim) dto.ReservationClaimResponse {
	return dto.ReservationClaimResponse{
		ID:           claim.ID,
		DemandLineID: claim.DemandLineID,
		Quantity:     claim.Quantity,
		CreatedAt:    claim.CreatedAt,
	}
}
