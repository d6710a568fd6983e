package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/forecast"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/optimizer"
)

type fakeStore struct {
	products map[string][]string
	stock    map[string]int64
	err      error
}

func (s *fakeStore) GetProductsByCategory(category string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products[category], nil
}

func (s *fakeStore) GetProductStock(name string, year, month int32) (int64, error) {
	return s.stock[name], nil
}

type fakeForecaster map[string]int64

func (f fakeForecaster) PredictSingleItem(productName string, year, month, holidays int32) (int64, error) {
	d, ok := f[productName]
	if !ok {
		return 0, forecast.ErrUnknownProduct
	}
	return d, nil
}

func newTestProcessor(store Store, maxWorkers int) *Processor {
	forecaster := fakeForecaster{"Cola": 300, "Juice": 120, "Water": 0}
	p := NewProcessor(store, forecaster, domain.DefaultRoutes, optimizer.DefaultParameters(), maxWorkers)
	p.seed = func() uint64 { return 42 }
	return p
}

func testStore() *fakeStore {
	return &fakeStore{
		products: map[string][]string{"Beverages": {"Cola", "Juice", "Water", "Mystery"}},
		stock:    map[string]int64{"Cola": 50, "Juice": 10, "Water": 5},
	}
}

var testJob = &domain.OptimizationJob{Category: "Beverages", Year: 2024, Month: 7, Holidays: 1, Email: "a@example.com"}

func TestProcess(t *testing.T) {
	p := newTestProcessor(testStore(), 2)

	report, err := p.Process(context.Background(), testJob)
	require.NoError(t, err)

	assert.Equal(t, "Beverages", report.Category)
	require.Len(t, report.Outcomes, 3)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0], "Mystery")

	// 保持商品顺序
	assert.Equal(t, "Cola", report.Outcomes[0].Product)
	assert.Equal(t, "Juice", report.Outcomes[1].Product)
	assert.Equal(t, "Water", report.Outcomes[2].Product)

	cola := report.Outcomes[0]
	assert.Equal(t, int64(300), cola.PredictedDemand)
	assert.Equal(t, int64(50), cola.CurrentStock)
	assert.GreaterOrEqual(t, cola.ReorderPoint, int64(0))
	assert.LessOrEqual(t, cola.ReorderPoint, int64(300))
	assert.GreaterOrEqual(t, cola.EstimatedCost, 0.0)

	water := report.Outcomes[2]
	assert.Equal(t, optimizer.NoRoute, water.OptimalRoute)
	assert.Equal(t, 0.0, water.EstimatedCost)
}

func TestProcessDeterministicAcrossWorkerCounts(t *testing.T) {
	serial, err := newTestProcessor(testStore(), 1).Process(context.Background(), testJob)
	require.NoError(t, err)

	parallel, err := newTestProcessor(testStore(), 4).Process(context.Background(), testJob)
	require.NoError(t, err)

	assert.Equal(t, serial.Outcomes, parallel.Outcomes)
}

func TestProcessFailuresKeepProductOrder(t *testing.T) {
	store := &fakeStore{
		products: map[string][]string{"Beverages": {"Unknown3", "Cola", "Unknown1", "Unknown2"}},
		stock:    map[string]int64{"Cola": 50},
	}

	for range 5 {
		report, err := newTestProcessor(store, 4).Process(context.Background(), testJob)
		require.NoError(t, err)

		require.Len(t, report.Failures, 3)
		assert.Contains(t, report.Failures[0], "Unknown3")
		assert.Contains(t, report.Failures[1], "Unknown1")
		assert.Contains(t, report.Failures[2], "Unknown2")
	}
}

func TestProcessStoreError(t *testing.T) {
	store := testStore()
	store.err = errors.New("db down")

	_, err := newTestProcessor(store, 2).Process(context.Background(), testJob)
	assert.ErrorIs(t, err, store.err)
}

func TestProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProcessor(testStore(), 2).Process(ctx, testJob)
	assert.ErrorIs(t, err, context.Canceled)
}
