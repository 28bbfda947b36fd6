package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDeriveEstado(t *testing.T) {
	tests := []struct {
		name        string
		stored      *string
		comentarios *string
		want        Estado
	}{
		{"stored status wins", strPtr("confirmada"), nil, EstadoConfirmada},
		{"stored status wins over marker", strPtr("completada"), strPtr(CancellationNote), EstadoCompletada},
		{"stored status is case insensitive", strPtr(" Cancelada "), nil, EstadoCancelada},
		{"legacy spelling", strPtr("en_proceso"), nil, EstadoEnProgreso},
		{"unknown stored status is pending", strPtr("archivada"), nil, EstadoPendiente},
		{"marker without stored status", nil, strPtr("[CANCELADA] por teléfono"), EstadoCancelada},
		{"blank stored status falls back to marker", strPtr("  "), strPtr("x [CANCELADA]"), EstadoCancelada},
		{"nothing stored", nil, nil, EstadoPendiente},
		{"plain comments", nil, strPtr("Llamar antes"), EstadoPendiente},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveEstado(tt.stored, tt.comentarios))
		})
	}
}

func TestParseEstado(t *testing.T) {
	for _, e := range Estados {
		got, ok := ParseEstado(string(e))
		assert.True(t, ok)
		assert.Equal(t, e, got)
	}

	got, ok := ParseEstado("EN_PROCESO")
	assert.True(t, ok)
	assert.Equal(t, EstadoEnProgreso, got)

	_, ok = ParseEstado("borrada")
	assert.False(t, ok)
}

func TestStoredValues(t *testing.T) {
	assert.ElementsMatch(t, []string{"en_progreso", "en_proceso"}, EstadoEnProgreso.StoredValues())
	assert.Equal(t, []string{"pendiente"}, EstadoPendiente.StoredValues())
}

func TestWithCancellationNote(t *testing.T) {
	assert.Equal(t, CancellationNote, WithCancellationNote(nil))
	assert.Equal(t, CancellationNote, WithCancellationNote(strPtr("   ")))
	assert.Equal(t, CancellationNote+"\nTocar timbre", WithCancellationNote(strPtr("Tocar timbre")))

	s := &Solicitud{Comentarios: strPtr(WithCancellationNote(strPtr("hola")))}
	assert.Equal(t, EstadoCancelada, s.EstadoActual())
}

func TestUserHasRole(t *testing.T) {
	u := &User{Role: RoleManager}
	assert.True(t, u.HasRole(RoleAdmin, RoleManager))
	assert.False(t, u.HasRole(RoleAdmin))
	assert.False(t, u.HasRole())
}
