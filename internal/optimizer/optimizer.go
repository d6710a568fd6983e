package optimizer

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
)

// Optimizer 用遗传算法搜索 (再订货点, 安全库存, 运输方式) 策略。
// 一个 Optimizer 持有自己的随机数生成器，不能在多个 goroutine 之间共享。
type Optimizer struct {
	parameters *Parameters
	routes     []domain.Route
	simulator  *Simulator
	rng        *rand.Rand
}

func New(parameters *Parameters, routes []domain.Route, rng *rand.Rand) (*Optimizer, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: 运输方式目录为空", ErrInvalidInput)
	}
	for _, route := range routes {
		if route.LeadTimeDays < 1 {
			return nil, fmt.Errorf("%w: 运输方式 %s 的交货期必须至少为 1 天", ErrInvalidInput, route.Name)
		}
		if route.FixedCost < 0 {
			return nil, fmt.Errorf("%w: 运输方式 %s 的固定费用不能为负", ErrInvalidInput, route.Name)
		}
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: 随机数生成器未初始化", ErrInvalidInput)
	}

	return &Optimizer{
		parameters: parameters,
		routes:     routes,
		simulator:  NewSimulator(routes),
		rng:        rng,
	}, nil
}

// Optimize 返回最终种群中排名第一的策略，以及对它重新仿真一次得到的成本。
// 需求预测不大于 0 时直接返回全零策略。
func (o *Optimizer) Optimize(productName string, predictedDemand float64, currentStock int) (*Result, error) {
	if math.IsNaN(predictedDemand) || math.IsInf(predictedDemand, 0) {
		return nil, fmt.Errorf("%w: 需求预测必须是有限值", ErrInvalidInput)
	}
	if predictedDemand > MaxPredictedDemand {
		return nil, fmt.Errorf("%w: 需求预测不能超过 %d", ErrInvalidInput, MaxPredictedDemand)
	}
	if currentStock < 0 {
		return nil, fmt.Errorf("%w: 当前库存不能为负", ErrInvalidInput)
	}

	if predictedDemand <= 0 {
		return &Result{
			ProductName:   productName,
			Policy:        Policy{},
			RouteName:     NoRoute,
			EstimatedCost: 0,
		}, nil
	}

	// 生成初始种群
	pop := make([]Policy, o.parameters.PopulationSize)
	for i := range pop {
		pop[i] = o.randomInitPolicy(predictedDemand)
	}

	// 迭代
	for gen := 0; gen < int(o.parameters.Generations); gen++ {
		pop = o.nextGeneration(pop, predictedDemand, currentStock)
		slog.Debug("完成一代进化", "product", productName, "generation", gen, "leader", pop[0])
	}

	best := pop[0]
	cost := o.simulator.Evaluate(best, predictedDemand, currentStock, o.rng).TotalCost

	return &Result{
		ProductName:   productName,
		Policy:        best,
		RouteName:     o.routes[best.RouteIndex].Name,
		EstimatedCost: cost,
	}, nil
}
