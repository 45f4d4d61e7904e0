package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/metrics"
	"github.com/prn-tf/shopcore/internal/service"
)

// CartHandler serves cart mutation routes.
type CartHandler struct {
	carts   *service.CartService
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *service.CartService, m *metrics.Metrics, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		metrics: m,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// RegisterRoutes registers cart routes.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.handleList)
	r.Post("/cart/items/{itemId}", h.handleAdd)
	r.Delete("/cart/{id}", h.handleRemove)
}

type cartItemResponse struct {
	ID       int64 `json:"id"`
	UserID   int64 `json:"user_id"`
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

func toCartItemResponse(ci *domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:       ci.ID,
		UserID:   ci.UserID,
		ItemID:   ci.ItemID,
		Quantity: ci.Quantity,
	}
}

func (h *CartHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	entries, err := h.carts.Contents(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]cartItemResponse, len(entries))
	for i, e := range entries {
		out[i] = toCartItemResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid item id")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	entry, err := h.carts.AddToCart(r.Context(), sess, itemID)
	h.metrics.RecordMutation("add_to_cart", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartItemResponse(entry))
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	cartItemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid cart item id")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	entry, err := h.carts.RemoveFromCart(r.Context(), sess, cartItemID)
	h.metrics.RecordMutation("remove_from_cart", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartItemResponse(entry))
}
