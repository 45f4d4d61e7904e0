package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/auth"
	"github.com/prn-tf/shopcore/internal/domain"
	"github.com/prn-tf/shopcore/internal/metrics"
	"github.com/prn-tf/shopcore/internal/repository"
	"github.com/prn-tf/shopcore/internal/service"
)

// ItemHandler serves catalog item mutation routes.
type ItemHandler struct {
	items   *service.ItemService
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items *service.ItemService, m *metrics.Metrics, logger zerolog.Logger) *ItemHandler {
	return &ItemHandler{
		items:   items,
		metrics: m,
		logger:  logger.With().Str("handler", "item").Logger(),
	}
}

// RegisterRoutes registers item routes.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/items", h.handleCreate)
	r.Patch("/items/{id}", h.handleUpdate)
	r.Delete("/items/{id}", h.handleDelete)
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	LargeImage  string `json:"large_image"`
	Price       int64  `json:"price"`
}

type itemResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	LargeImage  string `json:"large_image"`
	Price       int64  `json:"price"`
	OwnerID     int64  `json:"owner_id"`
}

func toItemResponse(it *domain.Item) itemResponse {
	return itemResponse{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Image:       it.Image,
		LargeImage:  it.LargeImage,
		Price:       it.Price,
		OwnerID:     it.OwnerID,
	}
}

func (h *ItemHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "title is required")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	item, err := h.items.Create(r.Context(), sess, service.CreateItemInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		LargeImage:  req.LargeImage,
		Price:       req.Price,
	})
	h.metrics.RecordMutation("create_item", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// updateItemRequest carries only the updatable fields; id and owner are
// not part of the payload and cannot be changed through this route.
type updateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	LargeImage  *string `json:"large_image"`
	Price       *int64  `json:"price"`
}

func (h *ItemHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	item, err := h.items.Update(r.Context(), itemID, repository.ItemUpdate{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		LargeImage:  req.LargeImage,
		Price:       req.Price,
	})
	h.metrics.RecordMutation("update_item", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid item id")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	item, err := h.items.Delete(r.Context(), sess, itemID)
	h.metrics.RecordMutation("delete_item", outcomeFor(err))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}
