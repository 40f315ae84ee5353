package checkout

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/troywoldridge/legendary-reference-impl/internal/domain"
	"github.com/troywoldridge/legendary-reference-impl/internal/payment"
)

// CatalogSource provides the authoritative price and status for a set of
// product ids. Ids that do not exist are simply absent from the result.
type CatalogSource interface {
	GetPricing(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductPricing, error)
}

// PaymentGateway turns a validated charge amount into a client-usable
// payment handle. The metadata bag is informational only.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*payment.Intent, error)
}

// PricedTotal is the audit breakdown of a computed charge amount.
type PricedTotal struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	TaxCents      int64 `json:"taxCents"`
	CreditsCents  int64 `json:"creditsCents"`
	AmountCents   int64 `json:"amountCents"`
}

// IntentResult is the outcome of a successful checkout: the server-computed
// amount and the gateway's opaque client handle.
type IntentResult struct {
	AmountCents  int64
	ClientSecret string
	IntentID     string
	Breakdown    PricedTotal
}

type Service struct {
	catalog        CatalogSource
	gateway        PaymentGateway
	lookupTimeout  time.Duration
	gatewayTimeout time.Duration
}

func NewService(catalog CatalogSource, gateway PaymentGateway, lookupTimeout, gatewayTimeout time.Duration) *Service {
	return &Service{
		catalog:        catalog,
		gateway:        gateway,
		lookupTimeout:  lookupTimeout,
		gatewayTimeout: gatewayTimeout,
	}
}

// CreateIntent re-prices a validated checkout request from catalog data and
// creates a payment intent for the result. The client-supplied payload
// never contributes a price; only quantities and adjustment fields that
// already passed validation. One catalog read, one gateway write, in that
// order, and the gateway is never called when any line fails the validity
// gate.
func (s *Service) CreateIntent(ctx context.Context, req *CheckoutRequest) (*IntentResult, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	pricing, err := s.catalog.GetPricing(lookupCtx, distinctProductIDs(req.Lines))
	if err != nil {
		return nil, &CatalogUnavailableError{Err: err}
	}

	var subtotal int64
	for _, line := range req.Lines {
		p, ok := pricing[line.ProductID]
		if !ok || !p.Sellable() {
			return nil, ErrInvalidProduct
		}
		subtotal += p.PriceCents * int64(line.Quantity)
	}

	// Sum everything first, then clamp once. Per-term clamping would
	// change results when credits exceed the running total.
	amount := clampNonNegative(subtotal + req.ShippingCents + req.TaxCents - req.CreditsCents)

	breakdown := PricedTotal{
		SubtotalCents: subtotal,
		ShippingCents: req.ShippingCents,
		TaxCents:      req.TaxCents,
		CreditsCents:  req.CreditsCents,
		AmountCents:   amount,
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	intent, err := s.gateway.CreateIntent(gatewayCtx, amount, "usd", map[string]string{
		"subtotalCents": strconv.FormatInt(subtotal, 10),
		"shippingCents": strconv.FormatInt(req.ShippingCents, 10),
		"taxCents":      strconv.FormatInt(req.TaxCents, 10),
		"creditsCents":  strconv.FormatInt(req.CreditsCents, 10),
	})
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	return &IntentResult{
		AmountCents:  amount,
		ClientSecret: intent.ClientSecret,
		IntentID:     intent.ID,
		Breakdown:    breakdown,
	}, nil
}

// distinctProductIDs dedupes ids for the catalog lookup itself. Duplicate
// lines still contribute to the subtotal independently.
func distinctProductIDs(lines []CartLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

func clampNonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
