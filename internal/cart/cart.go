// Package cart holds the storefront's demo cart: ephemeral, session-scoped
// state that drives the cart page. Checkout never trusts it; submitted
// lines are always re-priced from the catalog.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
)

type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

type Cart struct {
	SessionID string    `json:"session_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists carts keyed by session id.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Set(ctx context.Context, sessionID string, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}
