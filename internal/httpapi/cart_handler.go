package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/troywoldridge/legendary-reference-impl/internal/cart"
)

type CartHandler struct {
	service *cart.Service
	timeout time.Duration
}

func NewCartHandler(service *cart.Service, timeout time.Duration) *CartHandler {
	return &CartHandler{
		service: service,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int32 `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	c, err := h.service.Get(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}

	c, err := h.service.AddItem(ctx, sessionID, productID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "product_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.service.UpdateQuantity(ctx, sessionID, productID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "product_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}

	c, err := h.service.RemoveItem(ctx, sessionID, productID)
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	if err := h.service.Clear(ctx, sessionID); err != nil {
		respondError(w, http.StatusInternalServerError, "cart_error", "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", "item not in cart")
	default:
		respondError(w, http.StatusInternalServerError, "cart_error", "cart operation failed")
	}
}
