package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/pkg/jwt"
)

// RouterDeps dependencias para montar las rutas.
type RouterDeps struct {
	Stock        *inventory.StockLedgerUseCase
	Supply       *inventory.SupplyLedgerUseCase
	Reservations *inventory.ReservationEngine
	Procurement  *inventory.ProcurementUseCase
	Lines        *inventory.DemandLineHooks
	JWTSecret    string
	JWTIssuer    string
	ServiceName  string
	Log          zerolog.Logger
}

// Router registra las rutas en la app Fiber.
// Rutas públicas: /health.
// Rutas protegidas (JWT): /api/inventory/stock, /supply, /reservations, /lines, /procurement.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	stockHandler := NewStockHandler(deps.Stock, deps.Log)
	supplyHandler := NewSupplyHandler(deps.Supply, deps.Log)
	reservationHandler := NewReservationHandler(deps.Reservations, deps.Log)
	procurementHandler := NewProcurementHandler(deps.Procurement, deps.Log)
	linesHandler := NewLinesHandler(deps.Lines, deps.Log)

	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	invGroup := protected.Group("/inventory")

	stock := invGroup.Group("/stock")
	stock.Post("/events", stockHandler.AppendEvent)
	stock.Get("/:partId/events", stockHandler.ListEvents)
	stock.Get("/:partId", stockHandler.GetStock)

	supply := invGroup.Group("/supply")
	supply.Post("/", supplyHandler.Create)
	supply.Post("/cancel", supplyHandler.Cancel)
	supply.Get("/:partId/pending", supplyHandler.GetPending)

	reservations := invGroup.Group("/reservations")
	reservations.Post("/", reservationHandler.Reserve)
	reservations.Post("/release", reservationHandler.Release)
	reservations.Post("/transfer", reservationHandler.Transfer)
	reservations.Get("/reservable/:partId", reservationHandler.GetReservable)
	reservations.Get("/sources/:partId", reservationHandler.GetSources)

	// Avisos del módulo de órdenes.
	lines := invGroup.Group("/lines")
	lines.Post("/deleted", linesHandler.Deleted)
	lines.Post("/:lineId/created", linesHandler.Created)
	lines.Post("/:lineId/quantity", linesHandler.QuantityChanged)

	procurement := invGroup.Group("/procurement")
	procurement.Get("/", procurementHandler.GetTable)
	procurement.Get("/pdf", procurementHandler.ExportPDF)
	procurement.Post("/thresholds", RequireRole(jwt.RoleAdmin, jwt.RolePurchasing), procurementHandler.SetThreshold)
}
