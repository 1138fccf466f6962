package gasdb

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `{"Fecha":"15/10/2024 0:00:00","ListaEESSPrecio":[{"IDEESS":"1","Rótulo":"Repsol Centro","Localidad":"Madrid","Provincia":"Madrid","Latitud":"40,4168","Longitud (WGS84)":"-3,7038"}],"ResultadoConsulta":"OK"}`

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(context.Background(), filepath.Join(t.TempDir(), "test.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetPrices(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	date := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)

	ok, err := s.HasDate(ctx, date)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetPrices(ctx, date)
	assert.ErrorIs(t, err, ErrNoData)

	require.NoError(t, s.SavePrices(ctx, date, []byte(snapshot)))

	ok, err = s.HasDate(ctx, date)
	require.NoError(t, err)
	assert.True(t, ok)

	prices, err := s.GetPrices(ctx, date)
	require.NoError(t, err)
	require.Len(t, prices.ListaEESSPrecio, 1)
	assert.Equal(t, "Repsol Centro", prices.ListaEESSPrecio[0].Rotulo)

	cached, err := s.GetPrices(ctx, date)
	require.NoError(t, err)
	assert.Same(t, prices, cached)
}

func TestSavePricesReplacesDay(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	date := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SavePrices(ctx, date, []byte(snapshot)))
	_, err := s.GetPrices(ctx, date)
	require.NoError(t, err)

	require.NoError(t, s.SavePrices(ctx, date, []byte(`{"ListaEESSPrecio":[]}`)))
	prices, err := s.GetPrices(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, prices.ListaEESSPrecio)
}

func TestGetPricesRejectsBadSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	date := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SavePrices(ctx, date, []byte(`{"ResultadoConsulta":"OK"}`)))
	_, err := s.GetPrices(ctx, date)
	assert.Error(t, err)
}

func TestDatesAndCleanup(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	last, err := s.GetLastUpdateDate(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	old := today.AddDate(0, 0, -40)
	older := today.AddDate(0, 0, -41)
	for _, d := range []time.Time{today, old, older} {
		require.NoError(t, s.SavePrices(ctx, d, []byte(snapshot)))
	}

	dates, err := s.GetAllDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, older.Format(dateLayout), dates[0].Format(dateLayout))

	last, err = s.GetLastUpdateDate(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, today.Format(dateLayout), last.Format(dateLayout))

	deleted, err := s.DeleteOldRecords(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	dates, err = s.GetAllDates(ctx)
	require.NoError(t, err)
	assert.Len(t, dates, 1)
}
