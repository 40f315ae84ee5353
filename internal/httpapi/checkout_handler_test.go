package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troywoldridge/legendary-reference-impl/internal/checkout"
	"github.com/troywoldridge/legendary-reference-impl/internal/domain"
	"github.com/troywoldridge/legendary-reference-impl/internal/payment"
)

type catalogMock struct {
	pricing map[uuid.UUID]domain.ProductPricing
	err     error
}

func (m *catalogMock) GetPricing(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductPricing, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make(map[uuid.UUID]domain.ProductPricing)
	for _, id := range ids {
		if p, ok := m.pricing[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

type gatewayMock struct {
	intent *payment.Intent
	err    error
	calls  int
	amount int64
}

func (m *gatewayMock) CreateIntent(_ context.Context, amountCents int64, _ string, _ map[string]string) (*payment.Intent, error) {
	m.calls++
	m.amount = amountCents
	if m.err != nil {
		return nil, m.err
	}
	return m.intent, nil
}

func newCheckoutHandler(catalog *catalogMock, gateway *gatewayMock) *CheckoutHandler {
	svc := checkout.NewService(catalog, gateway, 5*time.Second, 5*time.Second)
	return NewCheckoutHandler(svc, 1<<20)
}

func postIntent(t *testing.T, handler *CheckoutHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout/intent", bytes.NewBufferString(body))
	handler.CreateIntent(recorder, request)
	return recorder
}

func TestCreateIntent_Success(t *testing.T) {
	productID := uuid.New()
	catalog := &catalogMock{pricing: map[uuid.UUID]domain.ProductPricing{
		productID: {PriceCents: 1299, Status: domain.ProductStatusActive},
	}}
	gateway := &gatewayMock{intent: &payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}}
	handler := newCheckoutHandler(catalog, gateway)

	body := fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":2}],"shippingCents":599}`, productID)
	recorder := postIntent(t, handler, body)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp CheckoutIntentResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, int64(3197), resp.AmountCents)
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, int64(3197), gateway.amount)
}

func TestCreateIntent_ValidationFailure(t *testing.T) {
	handler := newCheckoutHandler(&catalogMock{}, &gatewayMock{})

	body := fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":100}]}`, uuid.New())
	recorder := postIntent(t, handler, body)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "validation_failed", resp.Code)
	assert.NotEmpty(t, resp.Details)
}

func TestCreateIntent_InvalidProduct(t *testing.T) {
	productID := uuid.New()
	catalog := &catalogMock{pricing: map[uuid.UUID]domain.ProductPricing{
		productID: {PriceCents: 1299, Status: domain.ProductStatusDraft},
	}}
	gateway := &gatewayMock{intent: &payment.Intent{ID: "pi", ClientSecret: "sec"}}
	handler := newCheckoutHandler(catalog, gateway)

	body := fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":2}],"shippingCents":599}`, productID)
	recorder := postIntent(t, handler, body)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "invalid_product", resp.Code)
	assert.Equal(t, 0, gateway.calls, "gateway must not be called for an invalid cart")
}

func TestCreateIntent_CatalogUnavailable(t *testing.T) {
	catalog := &catalogMock{err: errors.New("dial tcp: connection refused")}
	gateway := &gatewayMock{intent: &payment.Intent{ID: "pi", ClientSecret: "sec"}}
	handler := newCheckoutHandler(catalog, gateway)

	body := fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":1}]}`, uuid.New())
	recorder := postIntent(t, handler, body)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, 0, gateway.calls)
}

func TestCreateIntent_GatewayFailure(t *testing.T) {
	productID := uuid.New()
	catalog := &catalogMock{pricing: map[uuid.UUID]domain.ProductPricing{
		productID: {PriceCents: 1000, Status: domain.ProductStatusActive},
	}}
	gateway := &gatewayMock{err: errors.New("gateway rejected request (400 amount_too_small)")}
	handler := newCheckoutHandler(catalog, gateway)

	body := fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":1}]}`, productID)
	recorder := postIntent(t, handler, body)

	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "gateway_error", resp.Code)
}

func TestCreateIntent_BodyTooLarge(t *testing.T) {
	handler := NewCheckoutHandler(
		checkout.NewService(&catalogMock{}, &gatewayMock{}, time.Second, time.Second), 16)

	recorder := postIntent(t, handler, `{"lines":[{"productId":"x","quantity":1}]}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
