package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/troywoldridge/legendary-reference-impl/internal/feed"
	"github.com/troywoldridge/legendary-reference-impl/internal/repository"
)

type FeedHandler struct {
	catalog repository.CatalogStore
	writer  *feed.Writer
	timeout time.Duration
}

func NewFeedHandler(catalog repository.CatalogStore, writer *feed.Writer, timeout time.Duration) *FeedHandler {
	return &FeedHandler{
		catalog: catalog,
		writer:  writer,
		timeout: timeout,
	}
}

// GET /google/merchant-feed
func (h *FeedHandler) MerchantFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListFeedProducts(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "catalog_error", "failed to build feed")
		return
	}

	w.Header().Set("Content-Type", feed.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	if err := h.writer.WriteTSV(w, products); err != nil {
		log.Printf("failed to write merchant feed: %v", err)
	}
}
