package optimizer

import (
	"math"
	"math/rand/v2"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"gonum.org/v1/gonum/stat/distuv"
)

// Simulator 对一个策略做 30 天的离散事件仿真，不在调用之间保存任何状态
type Simulator struct {
	routes []domain.Route
}

func NewSimulator(routes []domain.Route) *Simulator {
	return &Simulator{routes: routes}
}

// Evaluate 计算策略在给定需求预测与当前库存下的期望成本。
// 到货时补充的是整月的预测需求，而下单触发条件只看 ReorderPoint，不看 SafetyStock。
// policy.RouteIndex 必须是合法的下标。
func (s *Simulator) Evaluate(policy Policy, predictedMonthlyDemand float64, currentStock int, rng *rand.Rand) SimulationResult {
	if predictedMonthlyDemand <= 0 {
		return SimulationResult{}
	}

	route := s.routes[policy.RouteIndex]

	dailyMean := predictedMonthlyDemand / SimulationDays
	demand := distuv.Normal{
		Mu:    dailyMean,
		Sigma: DemandStdDevRatio * dailyMean,
		Src:   rng,
	}

	stock := float64(currentStock)
	orderInFlight := false
	daysUntilArrival := int32(0)
	ordersPlaced := 0
	stockSum := 0.0
	stockoutUnits := 0.0

	for day := 0; day < SimulationDays; day++ {
		dailyDemand := math.Max(0, math.Round(demand.Rand()))

		// 满足当日需求
		if stock >= dailyDemand {
			stock -= dailyDemand
		} else {
			stockoutUnits += dailyDemand - stock
			stock = 0
		}

		// 在途订单到货
		if orderInFlight {
			daysUntilArrival--
			if daysUntilArrival == 0 {
				stock += predictedMonthlyDemand
				orderInFlight = false
			}
		}

		// 低于再订货点则下单
		if !orderInFlight && stock <= float64(policy.ReorderPoint) {
			orderInFlight = true
			daysUntilArrival = route.LeadTimeDays
			ordersPlaced++
		}

		stockSum += stock
	}

	avgStock := stockSum / SimulationDays
	totalCost := avgStock*HoldingCostPerUnit +
		float64(ordersPlaced)*route.FixedCost +
		stockoutUnits*StockoutCostPerUnit

	return SimulationResult{
		AvgStock:      avgStock,
		OrdersPlaced:  ordersPlaced,
		StockoutUnits: stockoutUnits,
		TotalCost:     totalCost,
	}
}
