package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-inventario/internal/domain/entity"
)

// Seed catálogo y órdenes para levantar la API en memoria (STORE_DRIVER=memory).
// En producción estos datos los mantienen los componentes de catálogo y órdenes.
type Seed struct {
	CompanyID string `json:"company_id"`
	Parts     []struct {
		ID   string `json:"id"`
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"parts"`
	Orders []struct {
		ID     string `json:"id"`
		Number string `json:"number"`
		Status string `json:"status"`
		Lines  []struct {
			ID       string          `json:"id"`
			PartID   string          `json:"part_id"`
			Quantity decimal.Decimal `json:"quantity"`
		} `json:"lines"`
	} `json:"orders"`
}

// LoadSeedFile carga un archivo JSON con el formato de Seed.
func (s *Store) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir seed: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}

// LoadSeed registra repuestos, órdenes y líneas. Devuelve error si el JSON es inválido
// o si una línea referencia un repuesto que no está en el seed.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decodificar seed: %w", err)
	}
	if seed.CompanyID == "" {
		return fmt.Errorf("seed sin company_id")
	}

	known := make(map[string]bool, len(seed.Parts))
	for _, p := range seed.Parts {
		s.AddPart(entity.Part{ID: p.ID, CompanyID: seed.CompanyID, Code: p.Code, Name: p.Name})
		known[p.ID] = true
	}
	now := time.Now()
	for _, o := range seed.Orders {
		status := o.Status
		if status == "" {
			status = entity.OrderStatusDraft
		}
		s.AddOrder(entity.Order{ID: o.ID, CompanyID: seed.CompanyID, Number: o.Number, Status: status})
		for _, l := range o.Lines {
			if !known[l.PartID] {
				return fmt.Errorf("seed: la línea %s referencia el repuesto desconocido %s", l.ID, l.PartID)
			}
			s.AddLine(entity.DemandLine{
				ID:        l.ID,
				CompanyID: seed.CompanyID,
				OrderID:   o.ID,
				PartID:    l.PartID,
				Quantity:  l.Quantity,
				CreatedAt: now,
			})
		}
	}
	return nil
}
