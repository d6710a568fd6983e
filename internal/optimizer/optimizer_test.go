package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
)

func TestNewRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		parameters *Parameters
		routes     []domain.Route
		nilRNG     bool
	}{
		{name: "empty population", parameters: &Parameters{PopulationSize: 0, Generations: 1, MutationRate: 0.1}, routes: domain.DefaultRoutes},
		{name: "no generations", parameters: &Parameters{PopulationSize: 4, Generations: 0, MutationRate: 0.1}, routes: domain.DefaultRoutes},
		{name: "mutation rate above one", parameters: &Parameters{PopulationSize: 4, Generations: 1, MutationRate: 1.5}, routes: domain.DefaultRoutes},
		{name: "empty route catalog", routes: nil},
		{name: "zero lead time", routes: []domain.Route{{ID: 1, Name: "Teleport", FixedCost: 1, LeadTimeDays: 0}}},
		{name: "nil rng", routes: domain.DefaultRoutes, nilRNG: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := newTestRNG(1)
			if tt.nilRNG {
				rng = nil
			}
			_, err := New(tt.parameters, tt.routes, rng)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestOptimizeDegenerateDemand(t *testing.T) {
	o := newTestOptimizer(t, nil, 1)

	for _, demand := range []float64{0, -1, -300} {
		res, err := o.Optimize("Widget", demand, 50)
		require.NoError(t, err)
		assert.Equal(t, &Result{
			ProductName:   "Widget",
			Policy:        Policy{ReorderPoint: 0, SafetyStock: 0},
			RouteName:     NoRoute,
			EstimatedCost: 0,
		}, res)
	}
}

func TestOptimizeRejectsInvalidInput(t *testing.T) {
	o := newTestOptimizer(t, nil, 1)

	_, err := o.Optimize("Widget", 300, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = o.Optimize("Widget", math.NaN(), 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = o.Optimize("Widget", math.Inf(1), 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOptimizeRejectsDemandAboveCeiling(t *testing.T) {
	o := newTestOptimizer(t, nil, 1)

	for _, demand := range []float64{1e19, math.MaxFloat64, MaxPredictedDemand + 1} {
		require.NotPanics(t, func() {
			_, err := o.Optimize("Widget", demand, 0)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// 很小的正需求仍然是合法输入
	result, err := o.Optimize("Widget", 0.4, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Policy.ReorderPoint)
	assert.Equal(t, 0, result.Policy.SafetyStock)
}

func TestOptimizeEndToEnd(t *testing.T) {
	routeNames := make([]string, len(domain.DefaultRoutes))
	for i, route := range domain.DefaultRoutes {
		routeNames[i] = route.Name
	}

	for seed := uint64(1); seed <= 8; seed++ {
		o := newTestOptimizer(t, nil, seed)

		res, err := o.Optimize("Widget", 300, 50)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.Policy.ReorderPoint, 0)
		assert.LessOrEqual(t, res.Policy.ReorderPoint, 300)
		assert.GreaterOrEqual(t, res.Policy.SafetyStock, 0)
		assert.LessOrEqual(t, res.Policy.SafetyStock, 150)
		assert.Contains(t, routeNames, res.RouteName)
		assert.Equal(t, domain.DefaultRoutes[res.Policy.RouteIndex].Name, res.RouteName)
		assert.False(t, math.IsNaN(res.EstimatedCost) || math.IsInf(res.EstimatedCost, 0))
		assert.GreaterOrEqual(t, res.EstimatedCost, 0.0)
	}
}

func TestOptimizeMinimalConfiguration(t *testing.T) {
	o := newTestOptimizer(t, &Parameters{PopulationSize: 1, Generations: 1, MutationRate: 0.1}, 9)

	res, err := o.Optimize("Widget", 300, 50)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Policy.ReorderPoint, 300)
	assert.LessOrEqual(t, res.Policy.SafetyStock, 150)
	assert.GreaterOrEqual(t, res.EstimatedCost, 0.0)
}

func TestOptimizeDeterministicWithSameSeed(t *testing.T) {
	first, err := newTestOptimizer(t, nil, 123).Optimize("Widget", 300, 50)
	require.NoError(t, err)

	second, err := newTestOptimizer(t, nil, 123).Optimize("Widget", 300, 50)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
