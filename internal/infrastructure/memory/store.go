// Package memory implementa los puertos de inventario en memoria. Se usa en tests y con
// STORE_DRIVER=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// Operaciones con fallo inyectable (SetFault).
const (
	OpStockAppend       = "stock.append"
	OpSupplyAppend      = "supply.append"
	OpReservationCreate = "reservations.create"
	OpReservationDelete = "reservations.delete"
	OpReservationUpdate = "reservations.update"
	OpThresholdAppend   = "thresholds.append"
)

type claimRow struct {
	claim entity.ReservationClaim
	seq   int64
}

type thresholdRow struct {
	threshold entity.AvailabilityThreshold
	seq       int64
}

type state struct {
	parts      map[string]entity.Part
	orders     map[string]entity.Order
	lines      map[string]entity.DemandLine // OrderNumber/OrderStatus se completan al leer
	stock      []entity.StockEvent
	supply     []entity.SupplyEvent
	claims     []claimRow
	thresholds []thresholdRow
	seq        int64
}

func newState() *state {
	return &state{
		parts:  make(map[string]entity.Part),
		orders: make(map[string]entity.Order),
		lines:  make(map[string]entity.DemandLine),
	}
}

// clone copia lo mutable. Los ledgers solo crecen: basta con limitar la capacidad para que
// un append sobre la copia no pise el original.
func (s *state) clone() *state {
	c := &state{
		parts:      make(map[string]entity.Part, len(s.parts)),
		orders:     make(map[string]entity.Order, len(s.orders)),
		lines:      make(map[string]entity.DemandLine, len(s.lines)),
		stock:      s.stock[:len(s.stock):len(s.stock)],
		supply:     s.supply[:len(s.supply):len(s.supply)],
		claims:     append([]claimRow(nil), s.claims...),
		thresholds: s.thresholds[:len(s.thresholds):len(s.thresholds)],
		seq:        s.seq,
	}
	for k, v := range s.parts {
		c.parts[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	return c
}

func (s *state) nextSeq() int64 {
	s.seq++
	return s.seq
}

// lineWithOrder devuelve la línea con número y estado de su orden.
func (s *state) lineWithOrder(companyID, lineID string) (entity.DemandLine, bool) {
	l, ok := s.lines[lineID]
	if !ok || l.CompanyID != companyID {
		return entity.DemandLine{}, false
	}
	if o, ok := s.orders[l.OrderID]; ok {
		l.OrderNumber = o.Number
		l.OrderStatus = o.Status
	}
	return l, true
}

func (s *state) lineIsActive(companyID, lineID string) (entity.DemandLine, bool) {
	l, ok := s.lineWithOrder(companyID, lineID)
	if !ok || !entity.IsActiveOrderStatus(l.OrderStatus) {
		return entity.DemandLine{}, false
	}
	return l, true
}

func (s *state) claimedByLine(companyID string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range s.claims {
		if r.claim.CompanyID == companyID {
			out[r.claim.DemandLineID] = out[r.claim.DemandLineID].Add(r.claim.Quantity)
		}
	}
	return out
}

// db acceso al estado: el Store directamente o una transacción en curso.
type db interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
	fault(op string) error
}

// Store base de datos en memoria. Las escrituras se serializan; una transacción trabaja sobre
// una copia que reemplaza al estado solo si la función termina sin error.
type Store struct {
	txMu   sync.Mutex // un escritor o transacción a la vez
	mu     sync.RWMutex
	st     *state
	faults map[string]error
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{st: newState(), faults: make(map[string]error)}
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) fault(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faults[op]
}

// SetFault hace que la operación op falle con err (nil la restablece).
func (s *Store) SetFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// AddPart registra un repuesto del catálogo.
func (s *Store) AddPart(p entity.Part) {
	_ = s.write(func(st *state) error {
		st.parts[p.ID] = p
		return nil
	})
}

// AddOrder registra una orden.
func (s *Store) AddOrder(o entity.Order) {
	_ = s.write(func(st *state) error {
		st.orders[o.ID] = o
		return nil
	})
}

// SetOrderStatus cambia el estado de una orden existente.
func (s *Store) SetOrderStatus(companyID, orderID, status string) error {
	return s.write(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok || o.CompanyID != companyID {
			return domain.ErrNotFound
		}
		o.Status = status
		st.orders[orderID] = o
		return nil
	})
}

// AddLine registra una línea de demanda.
func (s *Store) AddLine(l entity.DemandLine) {
	l.OrderNumber, l.OrderStatus = "", ""
	_ = s.write(func(st *state) error {
		st.lines[l.ID] = l
		return nil
	})
}

// SetLineQuantity cambia la cantidad solicitada de una línea.
func (s *Store) SetLineQuantity(companyID, lineID string, qty decimal.Decimal) error {
	return s.write(func(st *state) error {
		l, ok := st.lines[lineID]
		if !ok || l.CompanyID != companyID {
			return domain.ErrNotFound
		}
		l.Quantity = qty
		st.lines[lineID] = l
		return nil
	})
}

// DeleteLine borra una línea (sus reservas las libera DemandLineHooks).
func (s *Store) DeleteLine(companyID, lineID string) error {
	return s.write(func(st *state) error {
		l, ok := st.lines[lineID]
		if !ok || l.CompanyID != companyID {
			return domain.ErrNotFound
		}
		delete(st.lines, lineID)
		return nil
	})
}

// txView estado de trabajo de una transacción; solo lo usa la goroutine que la ejecuta.
type txView struct {
	store *Store
	st    *state
}

func (t *txView) read(fn func(st *state) error) error  { return fn(t.st) }
func (t *txView) write(fn func(st *state) error) error { return fn(t.st) }
func (t *txView) fault(op string) error                { return t.store.fault(op) }

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones sobre el Store. Como solo corre una transacción a la vez, RunLocked
// ya queda serializado frente a cualquier otra escritura.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn sobre una copia del estado y la confirma si no hay error.
func (r *TxRunner) Run(ctx context.Context, fn inventory.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	view := &txView{store: s, st: work}
	if err := fn(&StockEventRepo{db: view}, &ReservationRepo{db: view}, &DemandLineRepo{db: view}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// RunLocked equivale a Run; lockKey no agrega nada porque las transacciones ya son exclusivas.
func (r *TxRunner) RunLocked(ctx context.Context, _ string, fn inventory.TxFunc) error {
	return r.Run(ctx, fn)
}
