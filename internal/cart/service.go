package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the session's cart, or an empty cart when none exists yet.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		return &Cart{SessionID: sessionID, Items: []Item{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

// AddItem adds quantity of a product, merging with an existing line for the
// same product. The merged quantity is capped at MaxQuantity.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int32) (*Cart, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			if c.Items[i].Quantity > MaxQuantity {
				c.Items[i].Quantity = MaxQuantity
			}
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	}

	return s.save(ctx, sessionID, c)
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int32) (*Cart, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return s.save(ctx, sessionID, c)
		}
	}

	return nil, ErrItemNotFound
}

func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return s.save(ctx, sessionID, c)
		}
	}

	return nil, ErrItemNotFound
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, sessionID string, c *Cart) (*Cart, error) {
	c.SessionID = sessionID
	c.UpdatedAt = time.Now().UTC()
	if err := s.store.Set(ctx, sessionID, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return c, nil
}
