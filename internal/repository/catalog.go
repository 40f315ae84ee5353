package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/troywoldridge/legendary-reference-impl/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

const (
	SortNewest    = "new"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"

	// Listing queries accept "all" on top of the three product statuses.
	StatusFilterAll = "all"
)

type ListQuery struct {
	Search string
	Status string
	Sort   string
	Page   int
	Limit  int
}

type ProductListItem struct {
	ID              uuid.UUID            `json:"id"`
	Title           string               `json:"title"`
	Slug            string               `json:"slug"`
	PriceCents      int64                `json:"priceCents"`
	CompareAtCents  *int64               `json:"compareAtCents"`
	Status          domain.ProductStatus `json:"status"`
	Quantity        int32                `json:"quantity"`
	CreatedAt       time.Time            `json:"createdAt"`
	ImageCount      int                  `json:"imageCount"`
	PrimaryImageRef *string              `json:"-"`
	PrimaryAlt      *string              `json:"primaryAlt"`
}

type ProductDetail struct {
	Product domain.Product
	Images  []domain.ProductImage
}

type FeedProduct struct {
	ID         uuid.UUID
	Title      string
	Slug       string
	PriceCents int64
	Quantity   int32
	Brand      string
	ImageRef   *string
}

// CatalogStore is the read surface the HTTP layer and the checkout core
// consume. The checkout core only ever uses GetPricing.
type CatalogStore interface {
	ListProducts(ctx context.Context, q ListQuery) ([]ProductListItem, int, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	GetPricing(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductPricing, error)
	ListFeedProducts(ctx context.Context) ([]FeedProduct, error)
}

func (r *Repository) ListProducts(ctx context.Context, q ListQuery) ([]ProductListItem, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if q.Status != StatusFilterAll {
		args = append(args, q.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}

	orderBy := "ORDER BY created_at DESC"
	switch q.Sort {
	case SortPriceAsc:
		orderBy = "ORDER BY price_cents ASC"
	case SortPriceDesc:
		orderBy = "ORDER BY price_cents DESC"
	}

	countQuery := "SELECT count(*) FROM products " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	query := fmt.Sprintf(`
		SELECT p.id, p.title, p.slug, p.price_cents, p.compare_at_cents,
		       p.status, p.quantity, p.created_at,
		       (SELECT count(*)::int FROM product_images i WHERE i.product_id = p.id) AS image_count,
		       (SELECT i.cf_image_id FROM product_images i WHERE i.product_id = p.id
		        ORDER BY i.sort_order ASC LIMIT 1) AS primary_image,
		       (SELECT i.alt FROM product_images i WHERE i.product_id = p.id
		        ORDER BY i.sort_order ASC LIMIT 1) AS primary_alt
		FROM products p
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var items []ProductListItem
	for rows.Next() {
		var item ProductListItem
		err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Slug,
			&item.PriceCents,
			&item.CompareAtCents,
			&item.Status,
			&item.Quantity,
			&item.CreatedAt,
			&item.ImageCount,
			&item.PrimaryImageRef,
			&item.PrimaryAlt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return items, total, nil
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	query := `
		SELECT id, category_id, title, slug, description, brand, price_cents,
		       compare_at_cents, quantity, status, created_at, updated_at
		FROM products
		WHERE slug = $1
	`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&p.ID,
		&p.CategoryID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.Brand,
		&p.PriceCents,
		&p.CompareAtCents,
		&p.Quantity,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	imgQuery := `
		SELECT id, product_id, cf_image_id, alt, sort_order, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order ASC
	`

	rows, err := r.db.QueryContext(ctx, imgQuery, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageRef, &img.Alt, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &ProductDetail{Product: p, Images: images}, nil
}

// GetPricing fetches the trusted price and status for a set of product ids
// in a single batched query. Ids with no matching row are absent from the
// returned map; the caller decides what absence means.
func (r *Repository) GetPricing(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProductPricing, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]domain.ProductPricing{}, nil
	}

	textIDs := make([]string, len(ids))
	for i, id := range ids {
		textIDs[i] = id.String()
	}

	query := `
		SELECT id, price_cents, status
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(textIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing: %w", err)
	}
	defer rows.Close()

	pricing := make(map[uuid.UUID]domain.ProductPricing, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var p domain.ProductPricing
		if err := rows.Scan(&id, &p.PriceCents, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan pricing: %w", err)
		}
		pricing[id] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return pricing, nil
}

func (r *Repository) ListFeedProducts(ctx context.Context) ([]FeedProduct, error) {
	query := `
		SELECT p.id, p.title, p.slug, p.price_cents, p.quantity, p.brand,
		       (SELECT i.cf_image_id FROM product_images i WHERE i.product_id = p.id
		        ORDER BY i.sort_order ASC LIMIT 1) AS primary_image
		FROM products p
		WHERE p.status = 'active'
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed products: %w", err)
	}
	defer rows.Close()

	var products []FeedProduct
	for rows.Next() {
		var p FeedProduct
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.PriceCents, &p.Quantity, &p.Brand, &p.ImageRef); err != nil {
			return nil, fmt.Errorf("failed to scan feed product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}
