package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/config"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/forecast"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	users    map[string]*domain.User
	products map[string]*domain.Product
	stock    map[string]int64
	total    int64
	supplier map[string]bool
	created  []*domain.User
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	supplierID := int64(1)
	return &fakeStore{
		users: map[string]*domain.User{
			"admin":   {ID: 1, Username: "admin", PasswordHash: string(hash), FullName: "管理员", Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true},
			"planner": {ID: 2, Username: "planner", PasswordHash: string(hash), FullName: "计划员", Email: "planner@example.com", Role: domain.RolePlanner, IsActive: true},
			"retired": {ID: 3, Username: "retired", PasswordHash: string(hash), FullName: "离职", Email: "retired@example.com", Role: domain.RolePlanner, IsActive: false},
		},
		products: map[string]*domain.Product{
			"Cola":  {ID: 1, Name: "Cola", Category: "Beverages", Price: 2.5, Season: "Summer", SupplierID: &supplierID},
			"Bread": {ID: 2, Name: "Bread", Category: "Bakery", Price: 1.2, Season: "Winter"},
			"Ghost": {ID: 3, Name: "Ghost", Category: "Bakery", Price: 1.0, Season: "Winter"},
		},
		stock:    map[string]int64{"Cola": 40, "Bread": 300, "Ghost": 0},
		total:    3000,
		supplier: map[string]bool{"Cola": true},
	}
}

func (s *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) GetUserByUsername(username string) (*domain.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *fakeStore) CreateUser(user *domain.User) error {
	user.ID = int64(len(s.users) + len(s.created) + 1)
	user.IsActive = true
	s.created = append(s.created, user)
	return nil
}

func (s *fakeStore) UpdateUser(user *domain.User) error {
	return nil
}

func (s *fakeStore) GetCategories() ([]string, error) {
	return []string{"Bakery", "Beverages"}, nil
}

func (s *fakeStore) GetProductsByCategory(category string) ([]string, error) {
	names := []string{}
	for _, name := range []string{"Bread", "Cola", "Ghost"} {
		if s.products[name].Category == category {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *fakeStore) GetProductByName(name string) (*domain.Product, error) {
	p, ok := s.products[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (s *fakeStore) GetProductStock(name string, year, month int32) (int64, error) {
	return s.stock[name], nil
}

func (s *fakeStore) GetTotalUnitsSold(year, month int32) (int64, error) {
	return s.total, nil
}

func (s *fakeStore) CheckSupplierAvailable(name string) (bool, error) {
	return s.supplier[name], nil
}

// Ghost 没有参与训练
type fakeForecaster struct {
	demand     map[string]int64
	notTrained bool
}

func (f *fakeForecaster) PredictSingleItem(productName string, year, month, holidays int32) (int64, error) {
	if f.notTrained {
		return 0, forecast.ErrNotTrained
	}
	d, ok := f.demand[productName]
	if !ok {
		return 0, forecast.ErrUnknownProduct
	}
	return d, nil
}

type fakePublisher struct {
	key  string
	msgs []amqp.Publishing
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.key = key
	p.msgs = append(p.msgs, msg)
	return nil
}

type testEnv struct {
	handler    *Handler
	store      *fakeStore
	forecaster *fakeForecaster
	publisher  *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.RabbitMQ.Queue = "optimization_queue"
	cfg.RabbitMQ.PublishTimeout = 1
	cfg.Optimizer.PopulationSize = 20
	cfg.Optimizer.Generations = 10
	cfg.Optimizer.MutationRate = 0.1
	cfg.Optimizer.MaxConcurrent = 2

	env := &testEnv{
		store:      newFakeStore(t),
		forecaster: &fakeForecaster{demand: map[string]int64{"Cola": 100, "Bread": 0}},
		publisher:  &fakePublisher{},
	}

	h, err := NewHandler(cfg, env.store, env.forecaster, env.publisher, domain.DefaultRoutes)
	require.NoError(t, err)
	h.RegisterRoutes()
	env.handler = h

	return env
}

func (e *testEnv) tokenCookie(t *testing.T, username string) *http.Cookie {
	t.Helper()

	user := e.store.users[username]
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})
	ss, err := token.SignedString([]byte(e.handler.config.JWT.Secret))
	require.NoError(t, err)

	return &http.Cookie{Name: tokenCookieName, Value: ss}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.handler.Mux.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}
