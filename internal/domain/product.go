package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID             uuid.UUID     `json:"id"`
	CategoryID     *uuid.UUID    `json:"categoryId"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	Description    *string       `json:"description"`
	Brand          string        `json:"brand"`
	PriceCents     int64         `json:"priceCents"`
	CompareAtCents *int64        `json:"compareAtCents"`
	Quantity       int32         `json:"quantity"`
	Status         ProductStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	ImageRef  string    `json:"-"`
	Alt       *string   `json:"alt"`
	SortOrder int32     `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductPricing is the trusted per-product projection used to re-price a
// checkout request. It is fetched fresh per request and never cached.
type ProductPricing struct {
	PriceCents int64
	Status     ProductStatus
}

func (p ProductPricing) Sellable() bool {
	return p.Status == ProductStatusActive
}
