package optimizer

import (
	"slices"
)

// randomInitPolicy 在搜索空间内均匀随机生成一个策略
func (o *Optimizer) randomInitPolicy(predictedDemand float64) Policy {
	maxReorderPoint, maxSafetyStock := searchBounds(predictedDemand)

	return Policy{
		ReorderPoint: o.rng.IntN(maxReorderPoint + 1),
		SafetyStock:  o.rng.IntN(maxSafetyStock + 1),
		RouteIndex:   o.rng.IntN(len(o.routes)),
	}
}

// evaluate 对种群中的每个策略做一次仿真，成本越低越好
func (o *Optimizer) evaluate(pop []Policy, predictedDemand float64, currentStock int) []individual {
	scored := make([]individual, len(pop))
	for i, policy := range pop {
		scored[i] = individual{
			policy: policy,
			cost:   o.simulator.Evaluate(policy, predictedDemand, currentStock, o.rng).TotalCost,
		}
	}
	return scored
}

// selectSurvivors 截断选择：按成本升序稳定排序后保留前一半（至少保留一个）
func selectSurvivors(scored []individual) []Policy {
	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, func(a, b individual) int {
		switch {
		case a.cost < b.cost:
			return -1
		case a.cost > b.cost:
			return 1
		default:
			return 0
		}
	})

	count := max(1, len(sorted)/2)
	survivors := make([]Policy, count)
	for i := range survivors {
		survivors[i] = sorted[i].policy
	}
	return survivors
}

// crossover 交换 SafetyStock 基因，(ReorderPoint, RouteIndex) 作为整体从同一个父本继承
func (o *Optimizer) crossover(a, b Policy) Policy {
	if o.rng.Float64() < 0.5 {
		return Policy{ReorderPoint: a.ReorderPoint, SafetyStock: b.SafetyStock, RouteIndex: a.RouteIndex}
	}
	return Policy{ReorderPoint: b.ReorderPoint, SafetyStock: a.SafetyStock, RouteIndex: b.RouteIndex}
}

// mutate 每个基因独立地以 MutationRate 的概率变异
func (o *Optimizer) mutate(p Policy, predictedDemand float64) Policy {
	maxReorderPoint, maxSafetyStock := searchBounds(predictedDemand)

	// 除了不小于 0，还限制在初始化的上界以内，保证策略始终在搜索空间中
	if o.rng.Float64() < o.parameters.MutationRate {
		p.ReorderPoint = clamp(p.ReorderPoint+o.rng.IntN(21)-10, 0, maxReorderPoint)
	}
	if o.rng.Float64() < o.parameters.MutationRate {
		p.SafetyStock = clamp(p.SafetyStock+o.rng.IntN(11)-5, 0, maxSafetyStock)
	}
	if o.rng.Float64() < o.parameters.MutationRate {
		p.RouteIndex = o.rng.IntN(len(o.routes))
	}
	return p
}

// nextGeneration 完成一代的评估、选择、交叉与变异，返回的种群大小与输入相同
func (o *Optimizer) nextGeneration(pop []Policy, predictedDemand float64, currentStock int) []Policy {
	survivors := selectSurvivors(o.evaluate(pop, predictedDemand, currentStock))

	next := make([]Policy, 0, len(pop))
	next = append(next, survivors...)

	for len(next) < len(pop) {
		a := survivors[o.rng.IntN(len(survivors))]
		b := survivors[o.rng.IntN(len(survivors))]
		next = append(next, o.mutate(o.crossover(a, b), predictedDemand))
	}

	return next
}
