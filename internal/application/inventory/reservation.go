package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

const instrumentationName = "github.com/jhoicas/taller-inventario/internal/application/inventory"

// StockShortageError detalla un rechazo por stock insuficiente.
// errors.Is(err, domain.ErrInsufficientStock) es true.
type StockShortageError struct {
	PartID     string
	Requested  decimal.Decimal
	Reservable decimal.Decimal
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("%s: repuesto %s, solicitado %s, reservable %s",
		domain.ErrInsufficientStock, e.PartID, e.Requested, e.Reservable)
}

func (e *StockShortageError) Unwrap() error { return domain.ErrInsufficientStock }

// Shortfall cantidad que faltó para cubrir la solicitud.
func (e *StockShortageError) Shortfall() decimal.Decimal {
	if e.Reservable.IsNegative() {
		return e.Requested
	}
	return e.Requested.Sub(e.Reservable)
}

// ReserveOutcome resultado de una reserva "blanda": la falta de stock no es error.
type ReserveOutcome struct {
	Claim     *entity.ReservationClaim
	Reserved  bool
	Shortfall decimal.Decimal
}

// ReleaseResult resultado de una liberación.
type ReleaseResult struct {
	ClaimsRemoved int             // reservas eliminadas por completo
	Released      decimal.Decimal // cantidad efectivamente liberada
}

// TransferResult órdenes afectadas por una transferencia, para notificación posterior.
type TransferResult struct {
	FromOrderID string
	ToOrderID   string
	Claim       *entity.ReservationClaim
}

// ReservationEngine aplica reservas, liberaciones y transferencias de stock entre líneas de demanda
// manteniendo el invariante: al crear una reserva, Σ reservas en órdenes activas ≤ stock del repuesto.
type ReservationEngine struct {
	txRunner        TxRunner
	stockRepo       repository.StockEventRepository
	reservationRepo repository.ReservationRepository
	lineRepo        repository.DemandLineRepository
	partRepo        repository.PartRepository
	notifier        TransferNotifier
	log             zerolog.Logger

	tracer    trace.Tracer
	created   metric.Int64Counter
	rejected  metric.Int64Counter
	transfers metric.Int64Counter
}

// NewReservationEngine construye el motor de reservas. notifier puede ser nil.
func NewReservationEngine(
	txRunner TxRunner,
	stockRepo repository.StockEventRepository,
	reservationRepo repository.ReservationRepository,
	lineRepo repository.DemandLineRepository,
	partRepo repository.PartRepository,
	notifier TransferNotifier,
	log zerolog.Logger,
) *ReservationEngine {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	meter := otel.Meter(instrumentationName)
	return &ReservationEngine{
		txRunner:        txRunner,
		stockRepo:       stockRepo,
		reservationRepo: reservationRepo,
		lineRepo:        lineRepo,
		partRepo:        partRepo,
		notifier:        notifier,
		log:             log,
		tracer:          otel.Tracer(instrumentationName),
		created:         counter(meter, "inventory.reservations.created", "Reservas creadas"),
		rejected:        counter(meter, "inventory.reservations.rejected", "Reservas rechazadas por stock insuficiente"),
		transfers:       counter(meter, "inventory.transfers", "Transferencias de reserva confirmadas"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Reserve reclama qty del stock para la línea. Falla con ErrInsufficientStock (StockShortageError)
// si qty supera lo reservable. La verificación y el alta ocurren en la misma transacción,
// bajo un bloqueo por repuesto.
func (e *ReservationEngine) Reserve(ctx context.Context, companyID, lineID string, qty decimal.Decimal) (*entity.ReservationClaim, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.reserve", trace.WithAttributes(
		attribute.String("company_id", companyID),
		attribute.String("demand_line_id", lineID),
		attribute.String("quantity", qty.String()),
	))
	defer span.End()

	claim, err := e.reserve(ctx, companyID, lineID, qty)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			e.rejected.Add(ctx, 1)
		}
		recordError(span, err)
		return nil, err
	}
	e.created.Add(ctx, 1)
	return claim, nil
}

func (e *ReservationEngine) reserve(ctx context.Context, companyID, lineID string, qty decimal.Decimal) (*entity.ReservationClaim, error) {
	if lineID == "" || !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	line, err := e.getLine(ctx, e.lineRepo, companyID, lineID)
	if err != nil {
		return nil, err
	}

	var claim *entity.ReservationClaim
	err = e.txRunner.RunLocked(ctx, partLockKey(companyID, line.PartID), func(
		stockRepo repository.StockEventRepository,
		reservationRepo repository.ReservationRepository,
		lineRepo repository.DemandLineRepository,
	) error {
		// Releer dentro de la tx: el estado de la orden pudo cambiar.
		current, err := e.getLine(ctx, lineRepo, companyID, lineID)
		if err != nil {
			return err
		}
		if !current.IsEditable() {
			return domain.ErrOrderNotEditable
		}
		reservable, err := reservableFor(ctx, stockRepo, reservationRepo, companyID, current.PartID)
		if err != nil {
			return err
		}
		if qty.GreaterThan(reservable) {
			return &StockShortageError{PartID: current.PartID, Requested: qty, Reservable: reservable}
		}
		claim = &entity.ReservationClaim{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			DemandLineID: lineID,
			Quantity:     qty,
			CreatedAt:    time.Now(),
		}
		return reservationRepo.Create(ctx, claim)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// TryReserve es la variante "blanda" de Reserve: la falta de stock se informa en el resultado
// (Reserved=false, Shortfall) en lugar de como error, para que la línea se cree igual y el
// faltante quede visible en la tabla de compras. Cualquier otro error se propaga.
func (e *ReservationEngine) TryReserve(ctx context.Context, companyID, lineID string, qty decimal.Decimal) (ReserveOutcome, error) {
	claim, err := e.Reserve(ctx, companyID, lineID, qty)
	if err == nil {
		return ReserveOutcome{Claim: claim, Reserved: true, Shortfall: decimal.Zero}, nil
	}
	var shortage *StockShortageError
	if errors.As(err, &shortage) {
		e.log.Warn().
			Str("company_id", companyID).
			Str("demand_line_id", lineID).
			Str("part_id", shortage.PartID).
			Str("requested", shortage.Requested.String()).
			Str("reservable", shortage.Reservable.String()).
			Msg("reserva omitida por stock insuficiente")
		return ReserveOutcome{Reserved: false, Shortfall: shortage.Shortfall()}, nil
	}
	return ReserveOutcome{}, err
}

// Release libera reservas de la línea. qty nil elimina todas; con qty libera primero las reservas
// más antiguas: borra las que caben completas y descuenta el resto de una sola reserva adicional.
// Released nunca supera el total reservado.
func (e *ReservationEngine) Release(ctx context.Context, companyID, lineID string, qty *decimal.Decimal) (ReleaseResult, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.release", trace.WithAttributes(
		attribute.String("company_id", companyID),
		attribute.String("demand_line_id", lineID),
	))
	defer span.End()

	res, err := e.release(ctx, companyID, lineID, qty)
	if err != nil {
		recordError(span, err)
		return ReleaseResult{}, err
	}
	span.SetAttributes(attribute.String("released", res.Released.String()))
	return res, nil
}

func (e *ReservationEngine) release(ctx context.Context, companyID, lineID string, qty *decimal.Decimal) (ReleaseResult, error) {
	if lineID == "" || (qty != nil && !qty.IsPositive()) {
		return ReleaseResult{}, domain.ErrInvalidInput
	}
	line, err := e.getLine(ctx, e.lineRepo, companyID, lineID)
	if err != nil {
		return ReleaseResult{}, err
	}

	var res ReleaseResult
	err = e.txRunner.RunLocked(ctx, partLockKey(companyID, line.PartID), func(
		_ repository.StockEventRepository,
		reservationRepo repository.ReservationRepository,
		_ repository.DemandLineRepository,
	) error {
		if qty == nil {
			claimed, err := reservationRepo.SumByLine(ctx, companyID, lineID)
			if err != nil {
				return err
			}
			n, err := reservationRepo.DeleteByLine(ctx, companyID, lineID)
			if err != nil {
				return err
			}
			res = ReleaseResult{ClaimsRemoved: n, Released: claimed}
			return nil
		}

		claims, err := reservationRepo.ListByLine(ctx, companyID, lineID)
		if err != nil {
			return err
		}
		remaining := *qty
		res.Released = decimal.Zero
		for _, c := range claims {
			if !remaining.IsPositive() {
				break
			}
			if c.Quantity.LessThanOrEqual(remaining) {
				if err := reservationRepo.Delete(ctx, companyID, c.ID); err != nil {
					return err
				}
				remaining = remaining.Sub(c.Quantity)
				res.Released = res.Released.Add(c.Quantity)
				res.ClaimsRemoved++
				continue
			}
			if err := reservationRepo.UpdateQuantity(ctx, companyID, c.ID, c.Quantity.Sub(remaining)); err != nil {
				return err
			}
			res.Released = res.Released.Add(remaining)
			remaining = decimal.Zero
		}
		return nil
	})
	if err != nil {
		return ReleaseResult{}, err
	}
	return res, nil
}

// ReleaseAll elimina todas las reservas de la línea (línea o subárbol borrado).
func (e *ReservationEngine) ReleaseAll(ctx context.Context, companyID, lineID string) (ReleaseResult, error) {
	return e.Release(ctx, companyID, lineID, nil)
}

// ReleaseForLines elimina las reservas de varias líneas en una sola transacción.
// Las líneas que ya no existen se ignoran: el componente de órdenes puede borrarlas antes.
func (e *ReservationEngine) ReleaseForLines(ctx context.Context, companyID string, lineIDs []string) (int, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.release_lines", trace.WithAttributes(
		attribute.String("company_id", companyID),
		attribute.Int("lines", len(lineIDs)),
	))
	defer span.End()

	removed := 0
	err := e.txRunner.Run(ctx, func(
		_ repository.StockEventRepository,
		reservationRepo repository.ReservationRepository,
		_ repository.DemandLineRepository,
	) error {
		for _, id := range lineIDs {
			n, err := reservationRepo.DeleteByLine(ctx, companyID, id)
			if err != nil {
				return err
			}
			removed += n
		}
		return nil
	})
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	return removed, nil
}

// Transfer mueve stock reservado de una línea a otra del mismo repuesto de forma atómica.
// Elimina TODAS las reservas de la línea origen (su faltante queda visible) y crea una única
// reserva de qty en la línea destino.
func (e *ReservationEngine) Transfer(ctx context.Context, companyID, fromLineID, toLineID string, qty decimal.Decimal) (*TransferResult, error) {
	ctx, span := e.tracer.Start(ctx, "inventory.transfer", trace.WithAttributes(
		attribute.String("company_id", companyID),
		attribute.String("from_line_id", fromLineID),
		attribute.String("to_line_id", toLineID),
		attribute.String("quantity", qty.String()),
	))
	defer span.End()

	if fromLineID == "" || toLineID == "" || fromLineID == toLineID || !qty.IsPositive() {
		recordError(span, domain.ErrInvalidInput)
		return nil, domain.ErrInvalidInput
	}

	source, err := e.getLine(ctx, e.lineRepo, companyID, fromLineID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	partID := source.PartID

	// Mismo bloqueo por repuesto que Reserve.
	var result *TransferResult
	err = e.txRunner.RunLocked(ctx, partLockKey(companyID, partID), func(
		_ repository.StockEventRepository,
		reservationRepo repository.ReservationRepository,
		lineRepo repository.DemandLineRepository,
	) error {
		from, err := e.getLine(ctx, lineRepo, companyID, fromLineID)
		if err != nil {
			return err
		}
		to, err := e.getLine(ctx, lineRepo, companyID, toLineID)
		if err != nil {
			return err
		}
		if from.PartID != partID || to.PartID != partID {
			return fmt.Errorf("%w: las líneas referencian repuestos distintos", domain.ErrInvalidInput)
		}
		if !from.IsEditable() || !to.IsEditable() {
			return domain.ErrOrderNotEditable
		}
		claimed, err := reservationRepo.SumByLine(ctx, companyID, fromLineID)
		if err != nil {
			return err
		}
		if claimed.LessThan(qty) {
			return fmt.Errorf("%w: reservado %s, solicitado %s", domain.ErrInsufficientReservation, claimed, qty)
		}

		if _, err := reservationRepo.DeleteByLine(ctx, companyID, fromLineID); err != nil {
			return err
		}
		claim := &entity.ReservationClaim{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			DemandLineID: toLineID,
			Quantity:     qty,
			CreatedAt:    time.Now(),
		}
		if err := reservationRepo.Create(ctx, claim); err != nil {
			return err
		}
		result = &TransferResult{FromOrderID: from.OrderID, ToOrderID: to.OrderID, Claim: claim}
		return nil
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	e.transfers.Add(ctx, 1)

	e.log.Info().
		Str("company_id", companyID).
		Str("from_order_id", result.FromOrderID).
		Str("to_order_id", result.ToOrderID).
		Str("part_id", partID).
		Str("quantity", qty.String()).
		Msg("reserva transferida")

	event := TransferEvent{
		CompanyID:     companyID,
		FromOrderID:   result.FromOrderID,
		ToOrderID:     result.ToOrderID,
		FromLineID:    fromLineID,
		ToLineID:      toLineID,
		PartID:        partID,
		Quantity:      qty,
		TransferredAt: result.Claim.CreatedAt,
	}
	if err := e.notifier.NotifyTransfer(ctx, event); err != nil {
		// La transferencia ya está confirmada; la notificación es best effort.
		e.log.Error().Err(err).
			Str("company_id", companyID).
			Str("from_order_id", result.FromOrderID).
			Str("to_order_id", result.ToOrderID).
			Msg("notificar transferencia")
	}
	return result, nil
}

// GetReservable devuelve stock − Σ reservas en órdenes activas para el repuesto.
func (e *ReservationEngine) GetReservable(ctx context.Context, companyID, partID string) (decimal.Decimal, error) {
	if err := ensurePart(ctx, e.partRepo, companyID, partID); err != nil {
		return decimal.Zero, err
	}
	return reservableFor(ctx, e.stockRepo, e.reservationRepo, companyID, partID)
}

// GetClaimed devuelve Σ reservas de la línea.
func (e *ReservationEngine) GetClaimed(ctx context.Context, companyID, lineID string) (decimal.Decimal, error) {
	if _, err := e.getLine(ctx, e.lineRepo, companyID, lineID); err != nil {
		return decimal.Zero, err
	}
	return e.reservationRepo.SumByLine(ctx, companyID, lineID)
}

// GetReservationSources lista las líneas con reservas en órdenes activas del repuesto, para el flujo
// "tomar prestado de otra orden". excludeOrderID vacío no excluye ninguna orden.
func (e *ReservationEngine) GetReservationSources(ctx context.Context, companyID, partID, excludeOrderID string) ([]repository.ReservationSource, error) {
	if err := ensurePart(ctx, e.partRepo, companyID, partID); err != nil {
		return nil, err
	}
	sources, err := e.reservationRepo.ListActiveSources(ctx, companyID, partID, excludeOrderID)
	if err != nil {
		return nil, err
	}
	if sources == nil {
		sources = []repository.ReservationSource{}
	}
	return sources, nil
}

func (e *ReservationEngine) getLine(ctx context.Context, lineRepo repository.DemandLineRepository, companyID, lineID string) (*entity.DemandLine, error) {
	line, err := lineRepo.GetByID(ctx, companyID, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}
	return line, nil
}

func reservableFor(
	ctx context.Context,
	stockRepo repository.StockEventRepository,
	reservationRepo repository.ReservationRepository,
	companyID, partID string,
) (decimal.Decimal, error) {
	stock, err := stockRepo.SumByPart(ctx, companyID, partID)
	if err != nil {
		return decimal.Zero, err
	}
	reserved, err := reservationRepo.SumActiveByPart(ctx, companyID, partID)
	if err != nil {
		return decimal.Zero, err
	}
	return stock.Sub(reserved), nil
}

func partLockKey(companyID, partID string) string {
	return "reserve:" + companyID + ":" + partID
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
