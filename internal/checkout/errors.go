package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProduct is returned when any cart line references a product
// that does not exist or is not in active status. The check is
// all-or-nothing: one bad line rejects the whole request before any
// gateway call is made. A missing row and an inactive row are deliberately
// indistinguishable to the client.
var ErrInvalidProduct = errors.New("cart contains an invalid or inactive product")

// FieldIssue describes a single validation failure on the request payload.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a malformed or out-of-bounds checkout request.
// The client can correct the payload and resubmit.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid checkout request"
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		if issue.Field == "" {
			parts[i] = issue.Message
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Message)
	}
	return "invalid checkout request: " + strings.Join(parts, "; ")
}

// CatalogUnavailableError wraps a failed or timed-out catalog lookup.
// Transient; retry policy belongs to the caller, never to this package.
type CatalogUnavailableError struct {
	Err error
}

func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("catalog unavailable: %v", e.Err)
}

func (e *CatalogUnavailableError) Unwrap() error { return e.Err }

// GatewayError wraps a payment-gateway rejection or failure. The gateway's
// error is carried verbatim so the caller can tell it apart from earlier
// validation failures.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
