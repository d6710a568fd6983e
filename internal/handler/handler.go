package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"golang.org/x/sync/semaphore"
)

// Store 是 handler 需要的数据访问接口，由 repository.Repository 实现
type Store interface {
	GetUserByID(id int64) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	CreateUser(user *domain.User) error
	UpdateUser(user *domain.User) error
	GetCategories() ([]string, error)
	GetProductsByCategory(category string) ([]string, error)
	GetProductByName(name string) (*domain.Product, error)
	GetProductStock(name string, year, month int32) (int64, error)
	GetTotalUnitsSold(year, month int32) (int64, error)
	CheckSupplierAvailable(name string) (bool, error)
}

type Forecaster interface {
	PredictSingleItem(productName string, year, month, holidays int32) (int64, error)
}

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   Store
	forecaster   Forecaster
	translator   ut.Translator
	jobChannel   Publisher
	routes       []domain.Route
	optimizerSem *semaphore.Weighted

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo Store, forecaster Forecaster, jobCh Publisher, routes []domain.Route) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	maxConcurrent := cfg.Optimizer.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		forecaster:   forecaster,
		translator:   trans,
		jobChannel:   jobCh,
		routes:       routes,
		optimizerSem: semaphore.NewWeighted(maxConcurrent),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})
		r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/users", h.CreateUser)

		r.Route("/data", func(r chi.Router) {
			r.Get("/categories", h.GetCategories)
			r.Get("/products/{category}", h.GetProductsByCategory)
			r.Get("/routes", h.GetRoutes)
		})

		r.Post("/analysis/demand", h.AnalyzeDemand)

		r.Route("/supply", func(r chi.Router) {
			r.Post("/reorder", h.CalculateReorder)
			r.Post("/optimize", h.OptimizeSupply)
			r.Post("/optimize/batch", h.SubmitBatchOptimization)
		})
	})
}
