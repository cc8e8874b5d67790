package repository

import (
	"context"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// ThresholdRepository historial de umbrales de disponibilidad (solo inserción).
type ThresholdRepository interface {
	Append(ctx context.Context, threshold *entity.AvailabilityThreshold) error
	// CurrentByParts devuelve el registro más reciente por repuesto (controlado o no).
	CurrentByParts(ctx context.Context, companyID string, partIDs []string) (map[string]*entity.AvailabilityThreshold, error)
	// ControlledPartIDs repuestos cuyo umbral vigente está controlado.
	ControlledPartIDs(ctx context.Context, companyID string) ([]string, error)
}
