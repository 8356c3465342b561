package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/payment"
	"github.com/mreynaud/go-storefront/internal/repository/memory"
	"github.com/mreynaud/go-storefront/internal/service"
	"github.com/mreynaud/go-storefront/internal/session"
)

type nopPublisher struct{}

func (nopPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	return nil
}

type testEnv struct {
	mux   *http.ServeMux
	store *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	sessions := session.NewMemoryStore()

	catalogSvc := service.NewCatalogService(store.Products())
	accountSvc := service.NewAccountService(store.Users(), sessions)
	checkoutSvc := service.NewCheckoutService(
		store.Products(), store.Checkout(), sessions,
		payment.NewDevGateway(), nopPublisher{}, "http://localhost:8080",
	)
	orderSvc := service.NewOrderService(store.Orders(), store.Products())
	reviewSvc := service.NewReviewService(store.Reviews(), store.Products())

	h := NewHandler(catalogSvc, accountSvc, checkoutSvc, orderSvc, reviewSvc, sessions)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	return &testEnv{mux: mux, store: store}
}

func (e *testEnv) addProduct(t *testing.T, id string, price float64, stock int) {
	t.Helper()
	err := e.store.Products().Create(context.Background(), &entity.Product{
		ID: id, Name: "Product " + id, Price: price, Stock: stock,
	})
	require.NoError(t, err)
}

// do issues a request bound to a fixed session cookie and returns the
// recorded response.
func (e *testEnv) do(t *testing.T, method, target, sid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, reader)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestListAndGetProducts(t *testing.T) {
	e := newTestEnv(t)
	e.addProduct(t, "p1", 9.99, 5)

	rec := e.do(t, http.MethodGet, "/api/products", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]entity.Product](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)

	rec = e.do(t, http.MethodGet, "/api/products/p1", "s1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/products/ghost", "s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartEndpoints(t *testing.T) {
	e := newTestEnv(t)
	e.addProduct(t, "p1", 2.50, 5)

	rec := e.do(t, http.MethodPost, "/api/cart/items", "s1", map[string]string{"product_id": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/cart/items", "s1", map[string]string{"product_id": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cart", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[struct {
		Lines []entity.CartLine `json:"lines"`
		Total float64           `json:"total"`
	}](t, rec)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 5.00, cart.Total)

	// Another session sees its own, empty cart.
	rec = e.do(t, http.MethodGet, "/api/cart", "s2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	other := decode[struct {
		Lines []entity.CartLine `json:"lines"`
	}](t, rec)
	assert.Empty(t, other.Lines)

	rec = e.do(t, http.MethodDelete, "/api/cart/items/p1", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	removed := decode[map[string]int](t, rec)
	assert.Equal(t, 1, removed["items"])
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/cart/items", "s1", map[string]string{"product_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/cart/items", "s1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFullCheckoutFlow(t *testing.T) {
	e := newTestEnv(t)
	e.addProduct(t, "p1", 9.99, 5)

	rec := e.do(t, http.MethodPost, "/api/register", "s1", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/login", "s1", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 2; i++ {
		rec = e.do(t, http.MethodPost, "/api/cart/items", "s1", map[string]string{"product_id": "p1"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/checkout", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	redirect := decode[map[string]string](t, rec)["redirect_url"]
	require.NotEmpty(t, redirect)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	successPath := u.RequestURI()

	rec = e.do(t, http.MethodGet, successPath, "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[entity.CheckoutResult](t, rec)
	require.NotNil(t, result.Order)
	assert.Equal(t, 19.98, result.Order.TotalPrice)

	// The token is spent; replaying the callback fails.
	rec = e.do(t, http.MethodGet, successPath, "s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/orders", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]entity.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, result.Order.ID, orders[0].ID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/checkout", "s1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutSuccessRequiresToken(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/checkout/success", "s1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/checkout/success?token=unknown", "s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesGated(t *testing.T) {
	e := newTestEnv(t)
	body := map[string]any{"name": "Thing", "price": 1.0}

	rec := e.do(t, http.MethodPost, "/api/admin/products", "s1", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/register", "s1", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/login", "s1", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/admin/products", "s1", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewEndpoints(t *testing.T) {
	e := newTestEnv(t)
	e.addProduct(t, "p1", 1.00, 1)

	rec := e.do(t, http.MethodPost, "/api/products/p1/reviews", "s1", map[string]any{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/register", "s1", map[string]string{"username": "carol", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/login", "s1", map[string]string{"username": "carol", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/products/p1/reviews", "s1", map[string]any{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/products/p1/reviews", "s1", map[string]any{"rating": 5, "comment": "great"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/products/p1/reviews", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decode[[]entity.Review](t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, "carol", reviews[0].Username)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestOrdersRequireLogin(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/orders", "s1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/register", "s1", map[string]string{"username": "dave", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/register", "s2", map[string]string{"username": "dave", "password": "pw"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
