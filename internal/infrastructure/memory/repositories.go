package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain"
	"github.com/jhoicas/taller-inventario/internal/domain/entity"
	"github.com/jhoicas/taller-inventario/internal/domain/repository"
)

var (
	_ repository.StockEventRepository  = (*StockEventRepo)(nil)
	_ repository.SupplyEventRepository = (*SupplyEventRepo)(nil)
	_ repository.ReservationRepository = (*ReservationRepo)(nil)
	_ repository.DemandLineRepository  = (*DemandLineRepo)(nil)
	_ repository.ThresholdRepository   = (*ThresholdRepo)(nil)
	_ repository.PartRepository        = (*PartRepo)(nil)
)

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ── Stock ─────────────────────────────────────────────────────────────────────

// StockEventRepo ledger de stock en memoria.
type StockEventRepo struct {
	db db
}

// NewStockEventRepository construye el repositorio sobre el Store.
func NewStockEventRepository(store *Store) *StockEventRepo {
	return &StockEventRepo{db: store}
}

func (r *StockEventRepo) Append(_ context.Context, event *entity.StockEvent) error {
	if err := r.db.fault(OpStockAppend); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		st.nextSeq()
		st.stock = append(st.stock, *event)
		return nil
	})
}

func (r *StockEventRepo) SumByPart(_ context.Context, companyID, partID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.db.read(func(st *state) error {
		for _, e := range st.stock {
			if e.CompanyID == companyID && e.PartID == partID {
				sum = sum.Add(e.Quantity)
			}
		}
		return nil
	})
	return sum, err
}

func (r *StockEventRepo) SumByParts(_ context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	want := idSet(partIDs)
	out := make(map[string]decimal.Decimal)
	err := r.db.read(func(st *state) error {
		for _, e := range st.stock {
			if _, ok := want[e.PartID]; ok && e.CompanyID == companyID {
				out[e.PartID] = out[e.PartID].Add(e.Quantity)
			}
		}
		return nil
	})
	return out, err
}

// ListByPart devuelve los eventos más recientes primero.
func (r *StockEventRepo) ListByPart(_ context.Context, companyID, partID string, limit, offset int) ([]*entity.StockEvent, error) {
	var list []*entity.StockEvent
	err := r.db.read(func(st *state) error {
		for i := len(st.stock) - 1; i >= 0; i-- {
			e := st.stock[i]
			if e.CompanyID == companyID && e.PartID == partID {
				list = append(list, &e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Supply ────────────────────────────────────────────────────────────────────

// SupplyEventRepo ledger de suministro en memoria.
type SupplyEventRepo struct {
	db db
}

// NewSupplyEventRepository construye el repositorio sobre el Store.
func NewSupplyEventRepository(store *Store) *SupplyEventRepo {
	return &SupplyEventRepo{db: store}
}

func (r *SupplyEventRepo) Append(_ context.Context, event *entity.SupplyEvent) error {
	if err := r.db.fault(OpSupplyAppend); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		st.nextSeq()
		st.supply = append(st.supply, *event)
		return nil
	})
}

type supplyKey struct{ part, supplier string }

func (r *SupplyEventRepo) balances(companyID string, want map[string]struct{}) ([]entity.SupplyBalance, error) {
	idx := make(map[supplyKey]int)
	var out []entity.SupplyBalance
	err := r.db.read(func(st *state) error {
		for _, e := range st.supply {
			if e.CompanyID != companyID {
				continue
			}
			if want != nil {
				if _, ok := want[e.PartID]; !ok {
					continue
				}
			}
			k := supplyKey{e.PartID, e.SupplierID}
			i, ok := idx[k]
			if !ok {
				idx[k] = len(out)
				out = append(out, entity.SupplyBalance{PartID: e.PartID, SupplierID: e.SupplierID, Balance: decimal.Zero})
				i = len(out) - 1
			}
			out[i].Balance = out[i].Balance.Add(e.Quantity)
			if e.CreatedAt.After(out[i].LastEventAt) {
				out[i].LastEventAt = e.CreatedAt
			}
		}
		return nil
	})
	return out, err
}

func (r *SupplyEventRepo) BalancesByParts(_ context.Context, companyID string, partIDs []string) ([]entity.SupplyBalance, error) {
	return r.balances(companyID, idSet(partIDs))
}

func (r *SupplyEventRepo) PartsWithPositiveBalance(_ context.Context, companyID string) ([]string, error) {
	all, err := r.balances(companyID, nil)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, b := range all {
		if b.Balance.IsPositive() && !seen[b.PartID] {
			seen[b.PartID] = true
			out = append(out, b.PartID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ── Reservas ──────────────────────────────────────────────────────────────────

// ReservationRepo ledger de reservas en memoria.
type ReservationRepo struct {
	db db
}

// NewReservationRepository construye el repositorio sobre el Store.
func NewReservationRepository(store *Store) *ReservationRepo {
	return &ReservationRepo{db: store}
}

func (r *ReservationRepo) Create(_ context.Context, claim *entity.ReservationClaim) error {
	if err := r.db.fault(OpReservationCreate); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		st.claims = append(st.claims, claimRow{claim: *claim, seq: st.nextSeq()})
		return nil
	})
}

// ListByLine orden FIFO: created_at y luego orden de alta.
func (r *ReservationRepo) ListByLine(_ context.Context, companyID, lineID string) ([]*entity.ReservationClaim, error) {
	var rows []claimRow
	err := r.db.read(func(st *state) error {
		for _, c := range st.claims {
			if c.claim.CompanyID == companyID && c.claim.DemandLineID == lineID {
				rows = append(rows, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].claim.CreatedAt.Equal(rows[j].claim.CreatedAt) {
			return rows[i].claim.CreatedAt.Before(rows[j].claim.CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]*entity.ReservationClaim, len(rows))
	for i := range rows {
		c := rows[i].claim
		out[i] = &c
	}
	return out, nil
}

func (r *ReservationRepo) UpdateQuantity(_ context.Context, companyID, claimID string, quantity decimal.Decimal) error {
	if err := r.db.fault(OpReservationUpdate); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		for i := range st.claims {
			if st.claims[i].claim.ID == claimID && st.claims[i].claim.CompanyID == companyID {
				st.claims[i].claim.Quantity = quantity
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *ReservationRepo) Delete(_ context.Context, companyID, claimID string) error {
	if err := r.db.fault(OpReservationDelete); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		n := removeClaims(st, func(c entity.ReservationClaim) bool {
			return c.ID == claimID && c.CompanyID == companyID
		})
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *ReservationRepo) DeleteByLine(_ context.Context, companyID, lineID string) (int, error) {
	if err := r.db.fault(OpReservationDelete); err != nil {
		return 0, err
	}
	var n int
	err := r.db.write(func(st *state) error {
		n = removeClaims(st, func(c entity.ReservationClaim) bool {
			return c.DemandLineID == lineID && c.CompanyID == companyID
		})
		return nil
	})
	return n, err
}

// removeClaims arma un slice nuevo: el anterior puede estar compartido con otra copia del estado.
func removeClaims(st *state, match func(entity.ReservationClaim) bool) int {
	kept := make([]claimRow, 0, len(st.claims))
	for _, c := range st.claims {
		if !match(c.claim) {
			kept = append(kept, c)
		}
	}
	n := len(st.claims) - len(kept)
	st.claims = kept
	return n
}

func (r *ReservationRepo) SumByLine(_ context.Context, companyID, lineID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.db.read(func(st *state) error {
		for _, c := range st.claims {
			if c.claim.CompanyID == companyID && c.claim.DemandLineID == lineID {
				sum = sum.Add(c.claim.Quantity)
			}
		}
		return nil
	})
	return sum, err
}

func (r *ReservationRepo) SumActiveByPart(ctx context.Context, companyID, partID string) (decimal.Decimal, error) {
	sums, err := r.SumActiveByParts(ctx, companyID, []string{partID})
	if err != nil {
		return decimal.Zero, err
	}
	if v, ok := sums[partID]; ok {
		return v, nil
	}
	return decimal.Zero, nil
}

func (r *ReservationRepo) SumActiveByParts(_ context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	want := idSet(partIDs)
	out := make(map[string]decimal.Decimal)
	err := r.db.read(func(st *state) error {
		for _, c := range st.claims {
			if c.claim.CompanyID != companyID {
				continue
			}
			l, ok := st.lineIsActive(companyID, c.claim.DemandLineID)
			if !ok {
				continue
			}
			if _, ok := want[l.PartID]; ok {
				out[l.PartID] = out[l.PartID].Add(c.claim.Quantity)
			}
		}
		return nil
	})
	return out, err
}

func (r *ReservationRepo) ListActiveSources(_ context.Context, companyID, partID, excludeOrderID string) ([]repository.ReservationSource, error) {
	var out []repository.ReservationSource
	err := r.db.read(func(st *state) error {
		for lineID, claimed := range st.claimedByLine(companyID) {
			if !claimed.IsPositive() {
				continue
			}
			l, ok := st.lineIsActive(companyID, lineID)
			if !ok || l.PartID != partID || (excludeOrderID != "" && l.OrderID == excludeOrderID) {
				continue
			}
			out = append(out, repository.ReservationSource{
				DemandLineID: l.ID,
				OrderID:      l.OrderID,
				OrderNumber:  l.OrderNumber,
				OrderStatus:  l.OrderStatus,
				PartID:       l.PartID,
				LineQuantity: l.Quantity,
				Claimed:      claimed,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderNumber != out[j].OrderNumber {
			return out[i].OrderNumber < out[j].OrderNumber
		}
		return out[i].DemandLineID < out[j].DemandLineID
	})
	return out, err
}

// ── Líneas de demanda ─────────────────────────────────────────────────────────

// DemandLineRepo lectura de líneas de orden en memoria.
type DemandLineRepo struct {
	db db
}

// NewDemandLineRepository construye el repositorio sobre el Store.
func NewDemandLineRepository(store *Store) *DemandLineRepo {
	return &DemandLineRepo{db: store}
}

func (r *DemandLineRepo) GetByID(_ context.Context, companyID, lineID string) (*entity.DemandLine, error) {
	var line *entity.DemandLine
	err := r.db.read(func(st *state) error {
		if l, ok := st.lineWithOrder(companyID, lineID); ok {
			line = &l
		}
		return nil
	})
	return line, err
}

func (r *DemandLineRepo) DemandActiveByParts(_ context.Context, companyID string, partIDs []string) (map[string]decimal.Decimal, error) {
	want := idSet(partIDs)
	out := make(map[string]decimal.Decimal)
	err := r.db.read(func(st *state) error {
		for id := range st.lines {
			l, ok := st.lineIsActive(companyID, id)
			if !ok {
				continue
			}
			if _, ok := want[l.PartID]; ok {
				out[l.PartID] = out[l.PartID].Add(l.Quantity)
			}
		}
		return nil
	})
	return out, err
}

func (r *DemandLineRepo) ActivePartIDs(_ context.Context, companyID string) ([]string, error) {
	seen := make(map[string]bool)
	out := []string{}
	err := r.db.read(func(st *state) error {
		for id := range st.lines {
			l, ok := st.lineIsActive(companyID, id)
			if ok && !seen[l.PartID] {
				seen[l.PartID] = true
				out = append(out, l.PartID)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// ── Umbrales ──────────────────────────────────────────────────────────────────

// ThresholdRepo historial de umbrales en memoria.
type ThresholdRepo struct {
	db db
}

// NewThresholdRepository construye el repositorio sobre el Store.
func NewThresholdRepository(store *Store) *ThresholdRepo {
	return &ThresholdRepo{db: store}
}

func (r *ThresholdRepo) Append(_ context.Context, threshold *entity.AvailabilityThreshold) error {
	if err := r.db.fault(OpThresholdAppend); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		st.thresholds = append(st.thresholds, thresholdRow{threshold: *threshold, seq: st.nextSeq()})
		return nil
	})
}

func (r *ThresholdRepo) current(companyID string, want map[string]struct{}) (map[string]*entity.AvailabilityThreshold, error) {
	latest := make(map[string]thresholdRow)
	err := r.db.read(func(st *state) error {
		for _, row := range st.thresholds {
			t := row.threshold
			if t.CompanyID != companyID {
				continue
			}
			if want != nil {
				if _, ok := want[t.PartID]; !ok {
					continue
				}
			}
			prev, ok := latest[t.PartID]
			if !ok || t.CreatedAt.After(prev.threshold.CreatedAt) ||
				(t.CreatedAt.Equal(prev.threshold.CreatedAt) && row.seq > prev.seq) {
				latest[t.PartID] = row
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]*entity.AvailabilityThreshold, len(latest))
	for partID, row := range latest {
		t := row.threshold
		out[partID] = &t
	}
	return out, nil
}

func (r *ThresholdRepo) CurrentByParts(_ context.Context, companyID string, partIDs []string) (map[string]*entity.AvailabilityThreshold, error) {
	return r.current(companyID, idSet(partIDs))
}

func (r *ThresholdRepo) ControlledPartIDs(_ context.Context, companyID string) ([]string, error) {
	all, err := r.current(companyID, nil)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for partID, t := range all {
		if t.IsControlled() {
			out = append(out, partID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ── Repuestos ─────────────────────────────────────────────────────────────────

// PartRepo catálogo de repuestos en memoria.
type PartRepo struct {
	db db
}

// NewPartRepository construye el repositorio sobre el Store.
func NewPartRepository(store *Store) *PartRepo {
	return &PartRepo{db: store}
}

func (r *PartRepo) GetByID(_ context.Context, companyID, partID string) (*entity.Part, error) {
	var part *entity.Part
	err := r.db.read(func(st *state) error {
		if p, ok := st.parts[partID]; ok && p.CompanyID == companyID {
			part = &p
		}
		return nil
	})
	return part, err
}

// ListByIDs devuelve los repuestos existentes ordenados por código.
func (r *PartRepo) ListByIDs(_ context.Context, companyID string, partIDs []string) ([]*entity.Part, error) {
	var out []*entity.Part
	err := r.db.read(func(st *state) error {
		for id := range idSet(partIDs) {
			if p, ok := st.parts[id]; ok && p.CompanyID == companyID {
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}
