// Package images resolves stored image references to public URLs. A
// reference can be a local asset path, a full URL, or a Cloudflare Images
// id that needs the account's delivery base prepended.
package images

import (
	"fmt"
	"strings"
)

const DefaultVariant = "public"

type Resolver struct {
	DeliveryBase string
	Variant      string
}

func NewResolver(deliveryBase, variant string) *Resolver {
	if variant == "" {
		variant = DefaultVariant
	}
	return &Resolver{
		DeliveryBase: strings.TrimRight(deliveryBase, "/"),
		Variant:      variant,
	}
}

// URL resolves ref to a servable URL, or "" when it cannot be resolved.
// variant overrides the resolver default when non-empty.
func (r *Resolver) URL(ref, variant string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	// Local public asset path
	if strings.HasPrefix(ref, "/") {
		return ref
	}

	// Full URL stored in the database
	if strings.HasPrefix(strings.ToLower(ref), "http://") ||
		strings.HasPrefix(strings.ToLower(ref), "https://") {
		return ref
	}

	// Otherwise treat as a Cloudflare Images id
	if r.DeliveryBase == "" {
		return ""
	}
	if variant == "" {
		variant = r.Variant
	}
	return fmt.Sprintf("%s/%s/%s", r.DeliveryBase, ref, variant)
}
