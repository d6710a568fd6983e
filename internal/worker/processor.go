package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/optimizer"
	"golang.org/x/sync/errgroup"
)

type Store interface {
	GetProductsByCategory(category string) ([]string, error)
	GetProductStock(name string, year, month int32) (int64, error)
}

type Forecaster interface {
	PredictSingleItem(productName string, year, month, holidays int32) (int64, error)
}

// Processor 对一个类别下的所有商品并发地运行库存策略优化
type Processor struct {
	store      Store
	forecaster Forecaster
	routes     []domain.Route
	parameters *optimizer.Parameters
	maxWorkers int

	// 每个任务的随机种子，测试中可以替换为固定值
	seed func() uint64
}

func NewProcessor(store Store, forecaster Forecaster, routes []domain.Route, parameters *optimizer.Parameters, maxWorkers int) *Processor {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	return &Processor{
		store:      store,
		forecaster: forecaster,
		routes:     routes,
		parameters: parameters,
		maxWorkers: maxWorkers,
		seed:       rand.Uint64,
	}
}

// Process 返回邮件所需的报告数据。单个商品的失败记录在 Failures 中，不会中断整个任务。
func (p *Processor) Process(ctx context.Context, job *domain.OptimizationJob) (*domain.OptimizationReportMailData, error) {
	products, err := p.store.GetProductsByCategory(job.Category)
	if err != nil {
		return nil, fmt.Errorf("无法获取类别 %s 下的商品: %w", job.Category, err)
	}

	outcomes := make([]*domain.OptimizationOutcome, len(products))
	failures := make([]string, len(products))

	seed := p.seed()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	for i, name := range products {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			// 每个 goroutine 使用自己的随机数生成器
			rng := rand.New(rand.NewPCG(seed, uint64(i)))

			outcome, err := p.optimizeProduct(name, job, rng)
			if err != nil {
				slog.Warn("商品优化失败", "product", name, "error", err)
				failures[i] = fmt.Sprintf("%s: %v", name, err)
				return nil
			}

			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &domain.OptimizationReportMailData{
		Category: job.Category,
		Year:     job.Year,
		Month:    job.Month,
		Outcomes: make([]domain.OptimizationOutcome, 0, len(products)),
		Failures: make([]string, 0),
	}
	// 结果和失败都按商品顺序排列
	for i, o := range outcomes {
		if o != nil {
			report.Outcomes = append(report.Outcomes, *o)
		}
		if failures[i] != "" {
			report.Failures = append(report.Failures, failures[i])
		}
	}

	return report, nil
}

func (p *Processor) optimizeProduct(name string, job *domain.OptimizationJob, rng *rand.Rand) (*domain.OptimizationOutcome, error) {
	predicted, err := p.forecaster.PredictSingleItem(name, job.Year, job.Month, job.Holidays)
	if err != nil {
		return nil, err
	}

	stock, err := p.store.GetProductStock(name, job.Year, job.Month)
	if err != nil {
		return nil, err
	}

	opt, err := optimizer.New(p.parameters, p.routes, rng)
	if err != nil {
		return nil, err
	}

	result, err := opt.Optimize(name, float64(predicted), int(stock))
	if err != nil {
		return nil, err
	}

	return &domain.OptimizationOutcome{
		Product:         name,
		PredictedDemand: predicted,
		CurrentStock:    stock,
		ReorderPoint:    int64(result.Policy.ReorderPoint),
		SafetyStock:     int64(result.Policy.SafetyStock),
		OptimalRoute:    result.RouteName,
		EstimatedCost:   result.EstimatedCost,
	}, nil
}
