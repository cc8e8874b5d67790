package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/application/inventory"
)

// ProcurementHandler expone la tabla de compras (protegido).
type ProcurementHandler struct {
	uc  *inventory.ProcurementUseCase
	log zerolog.Logger
}

// NewProcurementHandler construye el handler.
func NewProcurementHandler(uc *inventory.ProcurementUseCase, log zerolog.Logger) *ProcurementHandler {
	return &ProcurementHandler{uc: uc, log: log}
}

// GetTable godoc
// @Summary      Tabla de compras priorizada
// @Description  Repuestos que requieren compra ordenados por urgencia (SUBZERO → NEED_SUPPLY_FOR_ORDER
//
//	→ NEED_SUPPLY_FOR_STOCK). Los repuestos ya cubiertos por pedidos (ORDERED) no aparecen.
//
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int     false  "Límite (default 20, máx 100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Param        search  query  string  false  "Filtro por código o nombre (sin tildes ni mayúsculas)"
// @Success      200  {object}  dto.ProcurementTableResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/procurement [get]
func (h *ProcurementHandler) GetTable(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	table, err := h.uc.GetProcurementTable(c.Context(), companyID, page, queryParam(c, "search"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(table)
}

// ExportPDF godoc
// @Summary      Lista de compras en PDF
// @Tags         procurement
// @Security     Bearer
// @Produce      application/pdf
// @Param        search  query  string  false  "Filtro por código o nombre"
// @Success      200  {file}    binary
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/procurement/pdf [get]
func (h *ProcurementHandler) ExportPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	pdfBytes, err := h.uc.ExportProcurementPDF(c.Context(), companyID, queryParam(c, "search"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	filename := fmt.Sprintf("lista-compras-%s.pdf", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

// SetThreshold godoc
// @Summary      Fijar umbral de reposición de un repuesto
// @Description  Agrega un registro al historial; el último es el vigente. 0/0 quita el control.
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ThresholdRequest  true  "part_id, order_from_quantity, order_up_to_quantity"
// @Success      201   {object}  dto.ThresholdResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/procurement/thresholds [post]
func (h *ProcurementHandler) SetThreshold(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.ThresholdRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.uc.SetThreshold(c.Context(), companyID, inventory.ThresholdInput{
		PartID:    in.PartID,
		OrderFrom: in.OrderFromQuantity,
		OrderUpTo: in.OrderUpToQuantity,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ThresholdResponse{
		ID:                t.ID,
		PartID:            t.PartID,
		OrderFromQuantity: t.OrderFromQuantity,
		OrderUpToQuantity: t.OrderUpToQuantity,
		Controlled:        t.IsControlled(),
		CreatedAt:         t.CreatedAt,
	})
}
