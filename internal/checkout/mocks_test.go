package checkout

import (
	"context"

	"github.com/google/uuid"

	"github.com/troywoldridge/legendary-reference-impl/internal/domain"
	"github.com/troywoldridge/legendary-reference-impl/internal/payment"
)

// MockCatalog implements CatalogSource for testing
type MockCatalog struct {
	Pricing   map[uuid.UUID]domain.ProductPricing
	Err       error
	Calls     int
	LookupIDs []uuid.UUID // captures the ids passed to the last lookup
}

func (m *MockCatalog) GetPricing(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductPricing, error) {
	m.Calls++
	m.LookupIDs = ids
	if m.Err != nil {
		return nil, m.Err
	}
	result := make(map[uuid.UUID]domain.ProductPricing, len(ids))
	for _, id := range ids {
		if p, ok := m.Pricing[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

// MockGateway implements PaymentGateway for testing
type MockGateway struct {
	Intent   *payment.Intent
	Err      error
	Calls    int
	Amount   int64
	Currency string
	Metadata map[string]string
}

func (m *MockGateway) CreateIntent(_ context.Context, amountCents int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	m.Calls++
	m.Amount = amountCents
	m.Currency = currency
	m.Metadata = metadata
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Intent, nil
}
