package handler

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/forecast"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/utils"
)

// 分析和补货请求共用的时间段
type periodRequest struct {
	Year     int32 `json:"year" validate:"required,min=1900,max=2100"`
	Month    int32 `json:"month" validate:"required,min=1,max=12"`
	Holidays int32 `json:"holidays" validate:"min=0,max=31"`
}

// forecastError 将需求预测的错误转换为响应，返回 false 表示没有错误
func (h *Handler) forecastError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, forecast.ErrUnknownProduct),
		errors.Is(err, forecast.ErrNotTrained),
		errors.Is(err, forecast.ErrInvalidMonth):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
	return true
}

func (h *Handler) AnalyzeDemand(w http.ResponseWriter, r *http.Request) {
	var req periodRequest

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 月度汇总
	totalSold, err := h.repository.GetTotalUnitsSold(req.Year, req.Month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	salesData := domain.SalesSummary{
		TotalSold: totalSold,
		Trend:     utils.GenerateDailyTrend(totalSold, rng),
	}

	categories, err := h.repository.GetCategories()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	productAnalysis := make([]domain.ProductAnalysis, 0)
	for _, category := range categories {
		products, err := h.repository.GetProductsByCategory(category)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		for _, name := range products {
			predicted, err := h.forecaster.PredictSingleItem(name, req.Year, req.Month, req.Holidays)
			if err != nil {
				if errors.Is(err, forecast.ErrUnknownProduct) {
					// 模型训练之后新增的商品
					slog.Warn("商品没有参与模型训练，跳过", "product", name)
					continue
				}
				h.forecastError(w, r, err)
				return
			}

			stock, err := h.repository.GetProductStock(name, req.Year, req.Month)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}

			product, err := h.repository.GetProductByName(name)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}

			productAnalysis = append(productAnalysis, domain.ProductAnalysis{
				Category:        category,
				Product:         name,
				Stock:           stock,
				PredictedDemand: predicted,
				ReorderAmount:   utils.ReorderAmount(predicted, stock),
				Price:           product.Price,
				Cost:            utils.UnitCost(product.Price),
			})
		}
	}

	h.successResponse(w, r, "需求分析成功", map[string]any{
		"salesData":       salesData,
		"productAnalysis": productAnalysis,
	})
}
