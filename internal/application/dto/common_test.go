package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
)

func TestPageRequest_Clamp(t *testing.T) {
	tests := []struct {
		name string
		in   dto.PageRequest
		want dto.PageRequest
	}{
		{"valores por defecto", dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{"límite negativo", dto.PageRequest{Limit: -5, Offset: 3}, dto.PageRequest{Limit: 20, Offset: 3}},
		{"recorta al máximo", dto.PageRequest{Limit: 500}, dto.PageRequest{Limit: 100}},
		{"offset negativo", dto.PageRequest{Limit: 10, Offset: -1}, dto.PageRequest{Limit: 10}},
		{"sin cambios", dto.PageRequest{Limit: 50, Offset: 40}, dto.PageRequest{Limit: 50, Offset: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp(20, 100))
		})
	}
}
