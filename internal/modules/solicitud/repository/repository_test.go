package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ==================== DryRun helpers ====================

type capturedQuery struct {
	sql  string
	vars []interface{}
}

// dryRunDB builds statements against the postgres dialect without a server
// and records the last query.
func dryRunDB(t *testing.T) (*gorm.DB, *capturedQuery) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=cuidadopro dbname=cuidadopro sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	captured := &capturedQuery{}
	err = db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		captured.sql = tx.Statement.SQL.String()
		captured.vars = append([]interface{}(nil), tx.Statement.Vars...)
	})
	require.NoError(t, err)
	return db, captured
}

func estadoQuery(t *testing.T, filter Filter) *capturedQuery {
	t.Helper()
	db, captured := dryRunDB(t)
	_, err := NewSolicitudRepository(db).FindAll(context.Background(), filter)
	require.NoError(t, err)
	return captured
}

func strPtr(s string) *string { return &s }

// ==================== Estado filter SQL ====================

func TestWhereEstadoSQL(t *testing.T) {
	marker := "%" + entity.CancellationMarker + "%"

	tests := []struct {
		estado   entity.Estado
		fragment string
		vars     []interface{}
	}{
		{
			estado:   entity.EstadoConfirmada,
			fragment: "LOWER(TRIM(COALESCE(estado, ''))) IN ($1)",
			vars:     []interface{}{"confirmada"},
		},
		{
			estado:   entity.EstadoEnProgreso,
			fragment: "LOWER(TRIM(COALESCE(estado, ''))) IN ($1,$2)",
			vars:     []interface{}{"en_progreso", "en_proceso"},
		},
		{
			estado:   entity.EstadoCompletada,
			fragment: "LOWER(TRIM(COALESCE(estado, ''))) IN ($1)",
			vars:     []interface{}{"completada"},
		},
		{
			estado:   entity.EstadoCancelada,
			fragment: "LOWER(TRIM(COALESCE(estado, ''))) IN ($1) OR (LOWER(TRIM(COALESCE(estado, ''))) = '' AND COALESCE(comentarios, '') LIKE $2)",
			vars:     []interface{}{"cancelada", marker},
		},
		{
			estado:   entity.EstadoPendiente,
			fragment: "(LOWER(TRIM(COALESCE(estado, ''))) = '' AND COALESCE(comentarios, '') LIKE $1) IS FALSE",
			vars:     []interface{}{marker, "confirmada", "en_progreso", "en_proceso", "completada", "cancelada"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.estado), func(t *testing.T) {
			q := estadoQuery(t, Filter{Estado: tt.estado})

			assert.Contains(t, q.sql, tt.fragment)
			assert.Contains(t, q.sql, "ORDER BY fecha DESC")
			assert.ElementsMatch(t, tt.vars, q.vars)
		})
	}
}

func TestWhereEstadoPendingExcludesEveryOtherStatus(t *testing.T) {
	q := estadoQuery(t, Filter{Estado: entity.EstadoPendiente})

	assert.Contains(t, q.sql, "LOWER(TRIM(COALESCE(estado, ''))) NOT IN ($2,$3,$4,$5,$6)")
	assert.NotContains(t, q.vars, "pendiente")
}

func TestWhereEstadoCombinesWithTipoServicio(t *testing.T) {
	q := estadoQuery(t, Filter{TipoServicio: "curaciones", Estado: entity.EstadoCancelada, Limit: 10, Offset: 20})

	assert.Contains(t, q.sql, "tipo_servicio = $1 AND (LOWER(TRIM(COALESCE(estado, ''))) IN ($2) OR")
	assert.Contains(t, q.sql, "LIMIT")
	assert.Contains(t, q.sql, "OFFSET")
	assert.Equal(t, "curaciones", q.vars[0])
}

func TestNoEstadoFilter(t *testing.T) {
	q := estadoQuery(t, Filter{})

	assert.NotContains(t, q.sql, "estado")
	assert.Empty(t, q.vars)
}

// ==================== Agreement with DeriveEstado ====================

// filterMatches evaluates the predicate whereEstado emits for one row, built
// from the same value lists the query binds.
func filterMatches(e entity.Estado, stored, comentarios *string) bool {
	norm := ""
	if stored != nil {
		norm = strings.ToLower(strings.TrimSpace(*stored))
	}
	marked := comentarios != nil && strings.Contains(*comentarios, entity.CancellationMarker)

	switch e {
	case entity.EstadoPendiente:
		return !(norm == "" && marked) && (norm == "" || !contains(knownStoredValues(entity.EstadoPendiente), norm))
	case entity.EstadoCancelada:
		return contains(e.StoredValues(), norm) || (norm == "" && marked)
	default:
		return contains(e.StoredValues(), norm)
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func TestWhereEstadoAgreesWithDeriveEstado(t *testing.T) {
	rows := []struct {
		name        string
		stored      *string
		comentarios *string
	}{
		{"legacy without status", nil, nil},
		{"pendiente", strPtr("pendiente"), nil},
		{"confirmada", strPtr("confirmada"), nil},
		{"en_progreso", strPtr("en_progreso"), nil},
		{"legacy en_proceso", strPtr("en_proceso"), nil},
		{"padded mixed case", strPtr(" Completada "), nil},
		{"cancelada", strPtr("cancelada"), nil},
		{"unknown status", strPtr("archivada"), nil},
		{"blank with marker", strPtr(""), strPtr(entity.CancellationNote)},
		{"null with marker", nil, strPtr("Llamar antes\n" + entity.CancellationNote)},
		{"blank without marker", strPtr("   "), strPtr("sin novedades")},
		{"status wins over marker", strPtr("confirmada"), strPtr(entity.CancellationNote)},
	}

	for _, row := range rows {
		t.Run(row.name, func(t *testing.T) {
			derived := entity.DeriveEstado(row.stored, row.comentarios)

			matched := 0
			for _, e := range entity.Estados {
				if filterMatches(e, row.stored, row.comentarios) {
					matched++
					assert.Equal(t, derived, e)
				}
			}
			assert.Equal(t, 1, matched, "row must match exactly one status filter")
		})
	}
}
