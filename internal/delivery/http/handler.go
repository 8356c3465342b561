package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/service"
	"github.com/mreynaud/go-storefront/internal/session"
)

// Handler handles HTTP requests for the storefront.
type Handler struct {
	catalog  *service.CatalogService
	accounts *service.AccountService
	checkout *service.CheckoutService
	orders   *service.OrderService
	reviews  *service.ReviewService
	sessions session.Store
}

func NewHandler(
	catalog *service.CatalogService,
	accounts *service.AccountService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	reviews *service.ReviewService,
	sessions session.Store,
) *Handler {
	return &Handler{
		catalog:  catalog,
		accounts: accounts,
		checkout: checkout,
		orders:   orders,
		reviews:  reviews,
		sessions: sessions,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.handleListReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.handleAddReview)

	mux.HandleFunc("POST /api/admin/products", h.handleCreateProduct)
	mux.HandleFunc("PUT /api/admin/products/{id}", h.handleUpdateProduct)
	mux.HandleFunc("DELETE /api/admin/products/{id}", h.handleDeleteProduct)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.handleRemoveCartItem)

	mux.HandleFunc("POST /api/checkout", h.handleCartCheckout)
	mux.HandleFunc("POST /api/checkout/direct", h.handleDirectCheckout)
	mux.HandleFunc("GET /api/checkout/success", h.handleCheckoutSuccess)
	mux.HandleFunc("GET /api/checkout/cancel", h.handleCheckoutCancel)

	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/logout", h.handleLogout)

	mux.HandleFunc("GET /api/orders", h.handleListOrders)
}

// --- catalog ---

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// --- admin ---

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.accounts.CurrentUser(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var p entity.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.catalog.CreateProduct(r.Context(), actor, &p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.accounts.CurrentUser(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var p entity.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = r.PathValue("id")

	if err := h.catalog.UpdateProduct(r.Context(), actor, &p); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.accounts.CurrentUser(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), actor, r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- cart ---

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)
	cart, err := h.sessions.Cart(r.Context(), sid)
	if err != nil {
		h.writeError(w, err)
		return
	}

	lines, total, err := h.catalog.LinesForCart(r.Context(), cart)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": lines,
		"total": total,
	})
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	// Reject ids that never existed; deletions after this point are handled
	// permissively by the reconciler.
	if _, err := h.catalog.Product(r.Context(), req.ProductID); err != nil {
		h.writeError(w, err)
		return
	}

	sid := h.sessionID(w, r)
	cart, err := h.sessions.Cart(r.Context(), sid)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.sessions.SetCart(r.Context(), sid, cart.Add(req.ProductID)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": len(cart) + 1})
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)
	cart, err := h.sessions.Cart(r.Context(), sid)
	if err != nil {
		h.writeError(w, err)
		return
	}

	updated := cart.Remove(r.PathValue("id"))
	if err := h.sessions.SetCart(r.Context(), sid, updated); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": len(updated)})
}

// --- checkout ---

func (h *Handler) handleCartCheckout(w http.ResponseWriter, r *http.Request) {
	redirectURL, err := h.checkout.BeginCartCheckout(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": redirectURL})
}

type directCheckoutRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleDirectCheckout(w http.ResponseWriter, r *http.Request) {
	var req directCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	redirectURL, err := h.checkout.BeginDirectCheckout(r.Context(), h.sessionID(w, r), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": redirectURL})
}

func (h *Handler) handleCheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	result, err := h.checkout.CompleteCheckout(r.Context(), h.sessionID(w, r), token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCheckoutCancel(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.checkout.CancelCheckout(r.Context(), h.sessionID(w, r), token); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// --- accounts ---

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Login(r.Context(), h.sessionID(w, r), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), h.sessionID(w, r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- orders ---

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.CurrentUser(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeError(w, entity.ErrUnauthenticated)
		return
	}

	orders, err := h.orders.OrdersForUser(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// --- reviews ---

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) handleAddReview(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.CurrentUser(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviews.Add(r.Context(), user, r.PathValue("id"), req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ForProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors to status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrUnauthenticated), errors.Is(err, entity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, entity.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, entity.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidRating),
		errors.Is(err, entity.ErrEmptyCart),
		errors.Is(err, entity.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
