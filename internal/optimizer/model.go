package optimizer

import (
	"errors"
	"fmt"
	"math"
)

const (
	SimulationDays      = 30
	DemandStdDevRatio   = 0.2
	HoldingCostPerUnit  = 0.5
	StockoutCostPerUnit = 20.0

	// NoRoute 为需求预测不大于 0 时返回的运输方式名称
	NoRoute = "None"

	// MaxPredictedDemand 为可接受的需求预测上限，搜索空间的上界需要能用 int 表示
	MaxPredictedDemand = math.MaxInt32
)

var ErrInvalidInput = errors.New("输入参数非法")

// Policy: 一个候选的库存策略（即一个个体的基因）
type Policy struct {
	ReorderPoint int `json:"reorderPoint"`
	SafetyStock  int `json:"safetyStock"`
	RouteIndex   int `json:"routeIndex"`
}

type SimulationResult struct {
	AvgStock      float64 `json:"avgStock"`
	OrdersPlaced  int     `json:"ordersPlaced"`
	StockoutUnits float64 `json:"stockoutUnits"`
	TotalCost     float64 `json:"totalCost"`
}

// individual 为种群中的一个个体及其本代的成本
type individual struct {
	policy Policy
	cost   float64
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	Generations    int32   // 迭代次数
	MutationRate   float64 // 每个基因的变异概率
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: 20,
		Generations:    10,
		MutationRate:   0.1,
	}
}

func (p *Parameters) Validate() error {
	if p.PopulationSize < 1 {
		return fmt.Errorf("%w: 种群大小必须大于 0", ErrInvalidInput)
	}
	if p.Generations < 1 {
		return fmt.Errorf("%w: 迭代次数必须大于 0", ErrInvalidInput)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("%w: 变异概率必须在 [0, 1] 之间", ErrInvalidInput)
	}
	return nil
}

type Result struct {
	ProductName   string  `json:"product"`
	Policy        Policy  `json:"policy"`
	RouteName     string  `json:"optimalRoute"`
	EstimatedCost float64 `json:"estimatedCost"`
}
