package checkout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 99

	// Upper bound, in cents, for each of shipping, tax and credits.
	MaxAdjustmentCents = 50000
)

// CartLine is one requested purchase line. Duplicate product ids across
// lines are allowed and are never coalesced; each line is priced on its own.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int32
}

// CheckoutRequest is a checkout payload that has passed validation. All
// monetary fields are non-negative minor-currency units.
type CheckoutRequest struct {
	Lines         []CartLine
	ShippingCents int64
	TaxCents      int64
	CreditsCents  int64
}

type rawLine struct {
	ProductID *string      `json:"productId"`
	Quantity  *json.Number `json:"quantity"`
}

type rawCheckoutRequest struct {
	Lines         *[]rawLine   `json:"lines"`
	ShippingCents *json.Number `json:"shippingCents"`
	TaxCents      *json.Number `json:"taxCents"`
	CreditsCents  *json.Number `json:"creditsCents"`
}

// ParseCheckoutRequest parses and validates an untrusted checkout payload.
// It is a pure parse-and-check: no defaults beyond the three adjustment
// fields (absent means 0), and an absent lines array is an error, not an
// empty cart. On failure it returns a *ValidationError listing the
// offending fields.
func ParseCheckoutRequest(body []byte) (*CheckoutRequest, error) {
	var raw rawCheckoutRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{Issues: []FieldIssue{decodeIssue(err)}}
	}

	var issues []FieldIssue

	req := &CheckoutRequest{}

	if raw.Lines == nil {
		issues = append(issues, FieldIssue{Field: "lines", Message: "required"})
	} else if len(*raw.Lines) == 0 {
		issues = append(issues, FieldIssue{Field: "lines", Message: "must contain at least one line"})
	} else {
		req.Lines = make([]CartLine, 0, len(*raw.Lines))
		for i, l := range *raw.Lines {
			line, lineIssues := validateLine(i, l)
			if len(lineIssues) > 0 {
				issues = append(issues, lineIssues...)
				continue
			}
			req.Lines = append(req.Lines, line)
		}
	}

	req.ShippingCents, issues = validateAdjustment("shippingCents", raw.ShippingCents, issues)
	req.TaxCents, issues = validateAdjustment("taxCents", raw.TaxCents, issues)
	req.CreditsCents, issues = validateAdjustment("creditsCents", raw.CreditsCents, issues)

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return req, nil
}

func validateLine(i int, l rawLine) (CartLine, []FieldIssue) {
	var issues []FieldIssue
	var line CartLine

	if l.ProductID == nil {
		issues = append(issues, FieldIssue{
			Field:   fmt.Sprintf("lines[%d].productId", i),
			Message: "required",
		})
	} else {
		id, err := uuid.Parse(*l.ProductID)
		if err != nil {
			issues = append(issues, FieldIssue{
				Field:   fmt.Sprintf("lines[%d].productId", i),
				Message: "must be a UUID",
			})
		} else {
			line.ProductID = id
		}
	}

	if l.Quantity == nil {
		issues = append(issues, FieldIssue{
			Field:   fmt.Sprintf("lines[%d].quantity", i),
			Message: "required",
		})
		return line, issues
	}

	qty, err := l.Quantity.Int64()
	if err != nil {
		issues = append(issues, FieldIssue{
			Field:   fmt.Sprintf("lines[%d].quantity", i),
			Message: "must be an integer",
		})
		return line, issues
	}
	if qty < MinLineQuantity || qty > MaxLineQuantity {
		issues = append(issues, FieldIssue{
			Field:   fmt.Sprintf("lines[%d].quantity", i),
			Message: fmt.Sprintf("must be between %d and %d", MinLineQuantity, MaxLineQuantity),
		})
		return line, issues
	}

	line.Quantity = int32(qty)
	return line, issues
}

func validateAdjustment(field string, n *json.Number, issues []FieldIssue) (int64, []FieldIssue) {
	if n == nil {
		return 0, issues
	}
	v, err := n.Int64()
	if err != nil {
		return 0, append(issues, FieldIssue{Field: field, Message: "must be an integer"})
	}
	if v < 0 {
		return 0, append(issues, FieldIssue{Field: field, Message: "must not be negative"})
	}
	if v > MaxAdjustmentCents {
		return 0, append(issues, FieldIssue{
			Field:   field,
			Message: fmt.Sprintf("must not exceed %d", MaxAdjustmentCents),
		})
	}
	return v, issues
}

func decodeIssue(err error) FieldIssue {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return FieldIssue{Message: "payload must be a JSON object"}
		}
		return FieldIssue{Field: typeErr.Field, Message: "has wrong type"}
	}
	return FieldIssue{Message: "body is not valid JSON"}
}
