package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/troywoldridge/legendary-reference-impl/internal/images"
	"github.com/troywoldridge/legendary-reference-impl/internal/repository"
)

type ProductHandler struct {
	catalog repository.CatalogStore
	images  *images.Resolver
	admin   *AdminGate
	timeout time.Duration
}

func NewProductHandler(catalog repository.CatalogStore, resolver *images.Resolver, admin *AdminGate, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		images:  resolver,
		admin:   admin,
		timeout: timeout,
	}
}

type ProductListItemDTO struct {
	repository.ProductListItem
	PrimaryImageURL *string `json:"primaryImageUrl"`
}

type ProductListResponse struct {
	Items []ProductListItemDTO `json:"items"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
	Total int                  `json:"total"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	query := repository.ListQuery{
		Search: strings.TrimSpace(q.Get("q")),
		Status: parseStatusFilter(q.Get("status")),
		Sort:   parseSort(q.Get("sort")),
		Page:   toInt(q.Get("page"), 1, 9999),
		Limit:  toInt(q.Get("limit"), 24, 100),
	}

	// Only admins may see anything other than the active catalog.
	if query.Status != "active" {
		if _, authed, allowed := h.admin.Allowed(r.Context()); !authed {
			respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		} else if !allowed {
			respondError(w, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
	}

	items, total, err := h.catalog.ListProducts(ctx, query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "catalog_error", "failed to list products")
		return
	}

	dtos := make([]ProductListItemDTO, len(items))
	for i, item := range items {
		dto := ProductListItemDTO{ProductListItem: item}
		if item.PrimaryImageRef != nil {
			if url := h.images.URL(*item.PrimaryImageRef, "productTile"); url != "" {
				dto.PrimaryImageURL = &url
			}
		}
		dtos[i] = dto
	}

	respondJSON(w, http.StatusOK, ProductListResponse{
		Items: dtos,
		Page:  query.Page,
		Limit: query.Limit,
		Total: total,
	})
}

type ProductImageDTO struct {
	ID        string  `json:"id"`
	Alt       *string `json:"alt"`
	SortOrder int32   `json:"sortOrder"`
	URL       string  `json:"url"`
}

type ProductDetailResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Slug           string  `json:"slug"`
	Description    *string `json:"description"`
	Brand          string  `json:"brand"`
	PriceCents     int64   `json:"priceCents"`
	CompareAtCents *int64  `json:"compareAtCents"`
	Quantity       int32   `json:"quantity"`
	Status         string  `json:"status"`

	Images []ProductImageDTO `json:"images"`
}

// GET /api/v1/products/{slug}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	slug := chi.URLParam(r, "slug")

	detail, err := h.catalog.GetProductBySlug(ctx, slug)
	if errors.Is(err, repository.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "catalog_error", "failed to load product")
		return
	}

	imgs := make([]ProductImageDTO, len(detail.Images))
	for i, img := range detail.Images {
		imgs[i] = ProductImageDTO{
			ID:        img.ID.String(),
			Alt:       img.Alt,
			SortOrder: img.SortOrder,
			URL:       h.images.URL(img.ImageRef, ""),
		}
	}

	p := detail.Product
	respondJSON(w, http.StatusOK, ProductDetailResponse{
		ID:             p.ID.String(),
		Title:          p.Title,
		Slug:           p.Slug,
		Description:    p.Description,
		Brand:          p.Brand,
		PriceCents:     p.PriceCents,
		CompareAtCents: p.CompareAtCents,
		Quantity:       p.Quantity,
		Status:         string(p.Status),
		Images:         imgs,
	})
}

func toInt(v string, fallback, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

func parseStatusFilter(v string) string {
	switch s := strings.ToLower(strings.TrimSpace(v)); s {
	case "draft", "active", "archived", repository.StatusFilterAll:
		return s
	default:
		return "active"
	}
}

func parseSort(v string) string {
	switch s := strings.ToLower(strings.TrimSpace(v)); s {
	case repository.SortPriceAsc, repository.SortPriceDesc, repository.SortNewest:
		return s
	default:
		return repository.SortNewest
	}
}
