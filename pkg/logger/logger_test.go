package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""), "vacío = info")
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"), "desconocido = info")
}

func TestComponentFields(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(Config{Level: "info", Service: "taller-inventario"}, &buf)

	log := l.Component("reservations")
	log.Info().Str("part_id", "p-1").Msg("reserva creada")
	log.Debug().Msg("no debe salir")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), "una sola línea JSON")
	assert.Equal(t, "taller-inventario", line["service"])
	assert.Equal(t, "reservations", line["component"])
	assert.Equal(t, "p-1", line["part_id"])
	assert.Equal(t, "reserva creada", line["message"])
}
