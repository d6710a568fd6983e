package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/utils"
)

type productPeriodRequest struct {
	Product string `json:"product" validate:"required"`
	periodRequest
}

// demandAndStock 检查商品是否存在，并返回需求预测和当前库存。出错时已经写好响应，返回 false。
func (h *Handler) demandAndStock(w http.ResponseWriter, r *http.Request, req *productPeriodRequest) (int64, int64, bool) {
	if _, err := h.repository.GetProductByName(req.Product); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "商品不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return 0, 0, false
	}

	predicted, err := h.forecaster.PredictSingleItem(req.Product, req.Year, req.Month, req.Holidays)
	if h.forecastError(w, r, err) {
		return 0, 0, false
	}

	stock, err := h.repository.GetProductStock(req.Product, req.Year, req.Month)
	if err != nil {
		h.internalServerError(w, r, err)
		return 0, 0, false
	}

	return predicted, stock, true
}

func (h *Handler) CalculateReorder(w http.ResponseWriter, r *http.Request) {
	var req productPeriodRequest

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	predicted, stock, ok := h.demandAndStock(w, r, &req)
	if !ok {
		return
	}

	reorderAmount := utils.ReorderAmount(predicted, stock)

	supplierAvailable, err := h.repository.CheckSupplierAvailable(req.Product)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	msg := "下单成功"
	if !supplierAvailable {
		msg = "供应商暂无该商品"
	}

	h.successResponse(w, r, msg, map[string]any{
		"product":           req.Product,
		"predictedDemand":   predicted,
		"remainingStock":    stock,
		"reorderAmount":     reorderAmount,
		"supplierAvailable": supplierAvailable,
	})
}

func (h *Handler) OptimizeSupply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		productPeriodRequest
		PopulationSize *int32   `json:"populationSize" validate:"omitempty,min=1,max=1000"`
		Generations    *int32   `json:"generations" validate:"omitempty,min=1,max=1000"`
		MutationRate   *float64 `json:"mutationRate" validate:"omitempty,min=0,max=1"`
		Seed           *uint64  `json:"seed"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	predicted, stock, ok := h.demandAndStock(w, r, &req.productPeriodRequest)
	if !ok {
		return
	}

	// 默认参数来自配置，请求中的参数优先
	params := &optimizer.Parameters{
		PopulationSize: h.config.Optimizer.PopulationSize,
		Generations:    h.config.Optimizer.Generations,
		MutationRate:   h.config.Optimizer.MutationRate,
	}
	if req.PopulationSize != nil {
		params.PopulationSize = *req.PopulationSize
	}
	if req.Generations != nil {
		params.Generations = *req.Generations
	}
	if req.MutationRate != nil {
		params.MutationRate = *req.MutationRate
	}

	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewPCG(*req.Seed, *req.Seed))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	opt, err := optimizer.New(params, h.routes, rng)
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrInvalidInput):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 限制同时运行的优化数量
	if err := h.optimizerSem.Acquire(r.Context(), 1); err != nil {
		h.errorResponse(w, r, "请求已取消")
		return
	}
	result, err := opt.Optimize(req.Product, float64(predicted), int(stock))
	h.optimizerSem.Release(1)
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrInvalidInput):
			h.badRequest(w, r, err)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "优化完成", map[string]any{
		"product":         result.ProductName,
		"policy":          result.Policy,
		"optimalRoute":    result.RouteName,
		"estimatedCost":   result.EstimatedCost,
		"predictedDemand": predicted,
		"currentStock":    stock,
	})
}

// SubmitBatchOptimization 将整个类别的优化任务投递到消息队列，结果由 worker 通过邮件发送
func (h *Handler) SubmitBatchOptimization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category" validate:"required"`
		Email    string `json:"email" validate:"omitempty,email"`
		periodRequest
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	products, err := h.repository.GetProductsByCategory(req.Category)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(products) == 0 {
		h.errorResponse(w, r, "该类别下没有商品")
		return
	}

	// 没有指定邮箱时发给自己
	if req.Email == "" {
		me, err := h.currentUser(r)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		req.Email = me.Email
	}

	job := domain.OptimizationJob{
		Category: req.Category,
		Year:     req.Year,
		Month:    req.Month,
		Holidays: req.Holidays,
		Email:    req.Email,
	}

	body, err := json.Marshal(job)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.jobChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "优化任务已提交，结果将通过邮件发送", job)
}
