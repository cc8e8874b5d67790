package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	"github.com/jhoicas/taller-inventario/internal/domain"
)

func errorResponseFor(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, zerolog.Nop(), err) })

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, testErr)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWriteError_Mensajes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "sentinel sin envolver",
			err:        domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "recurso no encontrado",
		},
		{
			name:       "envuelto por infraestructura oculta la operación",
			err:        fmt.Errorf("create reservation: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "recurso no encontrado",
		},
		{
			name:       "conflicto de constraint",
			err:        fmt.Errorf("append stock event: %w", domain.ErrConflict),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
			wantMsg:    "conflicto con el estado actual",
		},
		{
			name:       "detalle de negocio",
			err:        fmt.Errorf("%w: reservado 2, solicitado 3", domain.ErrInsufficientReservation),
			wantStatus: http.StatusConflict,
			wantCode:   "INSUFFICIENT_RESERVATION",
			wantMsg:    "reserva insuficiente: reservado 2, solicitado 3",
		},
		{
			name:       "detalle de validación",
			err:        fmt.Errorf("%w: las líneas referencian repuestos distintos", domain.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
			wantMsg:    "entrada inválida: las líneas referencian repuestos distintos",
		},
		{
			name:       "error interno",
			err:        errors.New("dial tcp 10.0.0.5:5432: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
			wantMsg:    "error interno del servidor",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponseFor(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}
