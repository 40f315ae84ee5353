// Package feed renders the tab-separated product feed consumed by the
// shopping-ad aggregator.
package feed

import (
	"fmt"
	"io"
	"strings"

	"github.com/troywoldridge/legendary-reference-impl/internal/images"
	"github.com/troywoldridge/legendary-reference-impl/internal/repository"
)

const ContentType = "text/tab-separated-values; charset=utf-8"

const defaultBrand = "Legendary Collectibles"

// The aggregator mandates this column order.
var columns = []string{
	"id",
	"title",
	"description",
	"link",
	"image_link",
	"availability",
	"price",
	"brand",
	"condition",
}

type Writer struct {
	siteURL string
	images  *images.Resolver
}

func NewWriter(siteURL string, resolver *images.Resolver) *Writer {
	return &Writer{
		siteURL: strings.TrimRight(siteURL, "/"),
		images:  resolver,
	}
}

// WriteTSV writes the header row plus one row per product.
func (f *Writer) WriteTSV(w io.Writer, products []repository.FeedProduct) error {
	if _, err := io.WriteString(w, strings.Join(columns, "\t")); err != nil {
		return fmt.Errorf("failed to write feed header: %w", err)
	}

	for _, p := range products {
		if _, err := io.WriteString(w, "\n"+f.row(p)); err != nil {
			return fmt.Errorf("failed to write feed row: %w", err)
		}
	}

	return nil
}

func (f *Writer) row(p repository.FeedProduct) string {
	link := f.siteURL + "/products/" + p.Slug

	var img string
	if p.ImageRef != nil {
		img = f.images.URL(*p.ImageRef, "")
	}

	availability := "out of stock"
	if p.Quantity > 0 {
		availability = "in stock"
	}

	price := fmt.Sprintf("%.2f USD", float64(p.PriceCents)/100)

	brand := p.Brand
	if brand == "" {
		brand = defaultBrand
	}

	return strings.Join([]string{
		p.ID.String(),
		tsvEscape(p.Title),
		tsvEscape("Public-safe demo product listing."),
		link,
		img,
		availability,
		price,
		tsvEscape(brand),
		"new",
	}, "\t")
}

// tsvEscape flattens tabs and newlines to spaces so a value can never
// break the row or column structure.
func tsvEscape(v string) string {
	v = strings.ReplaceAll(v, "\t", " ")
	v = strings.ReplaceAll(v, "\r\n", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(v)
}
