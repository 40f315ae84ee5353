package httpapi

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/troywoldridge/legendary-reference-impl/internal/checkout"
)

type CheckoutHandler struct {
	service     *checkout.Service
	maxBodySize int64
}

func NewCheckoutHandler(service *checkout.Service, maxBodySize int64) *CheckoutHandler {
	return &CheckoutHandler{
		service:     service,
		maxBodySize: maxBodySize,
	}
}

type CheckoutIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amountCents"`
}

// POST /api/v1/checkout/intent
//
// The server, never the client, decides the amount charged: the body only
// names products, quantities and bounded adjustments, and everything is
// re-priced from the catalog before the gateway sees a number.
func (h *CheckoutHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	req, err := checkout.ParseCheckoutRequest(body)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	result, err := h.service.CreateIntent(r.Context(), req)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutIntentResponse{
		ClientSecret: result.ClientSecret,
		AmountCents:  result.AmountCents,
	})
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Code:    "validation_failed",
			Details: vErr.Issues,
		})
		return
	}

	if errors.Is(err, checkout.ErrInvalidProduct) {
		respondError(w, http.StatusBadRequest, "invalid_product", "Invalid product in cart")
		return
	}

	var catErr *checkout.CatalogUnavailableError
	if errors.As(err, &catErr) {
		log.Printf("checkout: catalog unavailable: %v", err)
		respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", "catalog temporarily unavailable, retry later")
		return
	}

	var gwErr *checkout.GatewayError
	if errors.As(err, &gwErr) {
		log.Printf("checkout: gateway failure: %v", err)
		respondError(w, http.StatusBadGateway, "gateway_error", "payment gateway rejected the request")
		return
	}

	log.Printf("checkout: unexpected error: %v", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
