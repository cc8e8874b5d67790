package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// SupplyHandler expone el ledger de suministro esperado de proveedores (protegido).
type SupplyHandler struct {
	uc  *inventory.SupplyLedgerUseCase
	log zerolog.Logger
}

// NewSupplyHandler construye el handler.
func NewSupplyHandler(uc *inventory.SupplyLedgerUseCase, log zerolog.Logger) *SupplyHandler {
	return &SupplyHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar suministro esperado
// @Tags         supply
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplyRequest  true  "part_id, supplier_id, quantity (> 0)"
// @Success      201   {object}  dto.SupplyEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/supply [post]
func (h *SupplyHandler) Create(c *fiber.Ctx) error {
	return h.append(c, false)
}

// Cancel godoc
// @Summary      Cancelar suministro esperado
// @Description  Registra la negación de la cantidad; el pendiente nunca baja de 0.
// @Tags         supply
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplyRequest  true  "part_id, supplier_id, quantity (> 0)"
// @Success      201   {object}  dto.SupplyEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/supply/cancel [post]
func (h *SupplyHandler) Cancel(c *fiber.Ctx) error {
	return h.append(c, true)
}

func (h *SupplyHandler) append(c *fiber.Ctx, cancel bool) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SupplyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input := inventory.SupplyInput{
		PartID:     in.PartID,
		SupplierID: in.SupplierID,
		Quantity:   in.Quantity,
		Source:     in.Source,
		SourceID:   in.SourceID,
	}
	var (
		ev  *entity.SupplyEvent
		err error
	)
	if cancel {
		ev, err = h.uc.CancelSupply(c.Context(), companyID, input)
	} else {
		ev, err = h.uc.CreateSupply(c.Context(), companyID, input)
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SupplyEventResponse{
		ID:         ev.ID,
		PartID:     ev.PartID,
		SupplierID: ev.SupplierID,
		Quantity:   ev.Quantity,
		Source:     ev.Source,
		SourceID:   ev.SourceID,
		CreatedAt:  ev.CreatedAt,
	})
}

// GetPending godoc
// @Summary      Suministro pendiente de un repuesto
// @Description  Total max(0, Σ eventos) y saldo por proveedor.
// @Tags         supply
// @Security     Bearer
// @Produce      json
// @Param        partId  path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.PendingSupplyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/supply/{partId}/pending [get]
func (h *SupplyHandler) GetPending(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	partID := pathParam(c, "partId")
	total, err := h.uc.GetPendingTotal(c.Context(), companyID, partID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	balances, err := h.uc.GetPendingBySupplier(c.Context(), companyID, partID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	bySupplier := make([]dto.SupplierPendingDTO, 0, len(balances))
	for _, b := range balances {
		bySupplier = append(bySupplier, dto.SupplierPendingDTO{
			SupplierID:  b.SupplierID,
			Pending:     b.Pending(),
			LastEventAt: b.LastEventAt,
		})
	}
	return c.JSON(dto.PendingSupplyResponse{PartID: partID, Total: total, BySupplier: bySupplier})
}
