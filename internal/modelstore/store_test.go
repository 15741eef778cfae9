// internal/modelstore/store_test.go
package modelstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func sampleModel(productID int) *domain.TrainedModel {
	mape := 0.12
	return &domain.TrainedModel{
		ProductID:    productID,
		Coefficients: []float64{1.5, 0.25, -0.001},
		Samples:      90,
		Metrics:      domain.ModelMetrics{MAE: 2.345, MAPE: &mape, SMAPE: 0.4},
		ModelType:    "poly2-least-squares",
		TrainedAt:    time.Date(2026, 8, 1, 3, 30, 0, 0, time.UTC),
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)
	model := sampleModel(7)

	require.NoError(t, store.Save(model))
	assert.True(t, store.Exists(7))

	loaded, err := store.Load(7)
	require.NoError(t, err)
	assert.Equal(t, model, loaded)
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	first := sampleModel(7)
	require.NoError(t, store.Save(first))

	second := sampleModel(7)
	second.Samples = 180
	second.Coefficients = []float64{9, 8, 7}
	require.NoError(t, store.Save(second))

	loaded, err := store.Load(7)
	require.NoError(t, err)
	assert.Equal(t, 180, loaded.Samples)
	assert.Equal(t, []float64{9, 8, 7}, loaded.Coefficients)
}

func TestLoadMissingModel(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(404)
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.False(t, store.Exists(404))
}

func TestLoadCorruptModel(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "product_9.json"), []byte("{not json"), 0644))

	_, err = store.Load(9)
	var loadErr *domain.ModelLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, 9, loadErr.ProductID)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleModel(3)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "product_3.json", entries[0].Name())
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(sampleModel(5)))

	require.NoError(t, store.Delete(5))
	assert.False(t, store.Exists(5))

	// Deleting an absent model is not an error.
	require.NoError(t, store.Delete(5))
}
