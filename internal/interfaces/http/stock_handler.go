package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// StockHandler expone el ledger de stock (protegido).
type StockHandler struct {
	uc  *inventory.StockLedgerUseCase
	log zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockLedgerUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// AppendEvent godoc
// @Summary      Registrar evento de stock
// @Description  Agrega un evento con cantidad con signo (entrada positiva, consumo negativo).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockEventRequest  true  "part_id, quantity (≠ 0), source_type"
// @Success      201   {object}  dto.StockEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/events [post]
func (h *StockHandler) AppendEvent(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.StockEventRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	source := in.SourceType
	if source == "" {
		source = entity.StockSourceManual
	}
	ev, err := h.uc.Append(c.Context(), companyID, inventory.StockEntryInput{
		PartID:      in.PartID,
		Quantity:    in.Quantity,
		SourceType:  source,
		SourceID:    in.SourceID,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockEventResponse(ev))
}

// GetStock godoc
// @Summary      Stock actual de un repuesto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        partId  path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{partId} [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	partID := pathParam(c, "partId")
	qty, err := h.uc.GetStock(c.Context(), companyID, partID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockResponse{PartID: partID, Quantity: qty})
}

// ListEvents godoc
// @Summary      Historial de eventos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        partId  path   string  true   "ID del repuesto"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockEventListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{partId}/events [get]
func (h *StockHandler) ListEvents(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}.Clamp(20, 100)
	events, err := h.uc.ListEvents(c.Context(), companyID, pathParam(c, "partId"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.StockEventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, toStockEventResponse(ev))
	}
	return c.JSON(dto.StockEventListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func toStockEventResponse(ev *entity.StockEvent) dto.StockEventResponse {
	return dto.StockEventResponse{
		ID:          ev.ID,
		PartID:      ev.PartID,
		Quantity:    ev.Quantity,
		SourceType:  ev.SourceType,
		SourceID:    ev.SourceID,
		Description: ev.Description,
		CreatedAt:   ev.CreatedAt,
	}
}
