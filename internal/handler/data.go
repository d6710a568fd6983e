package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repository.GetCategories()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取商品类别成功", categories)
}

func (h *Handler) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := h.repository.GetProductsByCategory(category)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取商品列表成功", products)
}

func (h *Handler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取运输方式成功", h.routes)
}
