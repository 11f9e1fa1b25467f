// Package query translates optional, untrusted filter input into an
// opaque retrieval spec consumed only by the store adapter. Filter
// values never reach a query string verbatim; the store binds them as
// parameters.
package query

import (
	"fmt"
	"strings"

	"finsights/internal/core"
)

// Spec is a bounded, validated description of a filtered retrieval.
// Empty Category/Merchant mean "no constraint".
type Spec struct {
	Category string
	Merchant string
	Limit    int
}

// Build validates and normalizes a filter request.
//
// The limit check duplicates the store adapter's own validation on
// purpose; both layers reject out-of-range limits. Empty or
// whitespace-only filter values normalize to absent, since an empty
// substring pattern would otherwise match every row.
func Build(category, merchant string, limit int) (Spec, error) {
	if err := core.ValidateLimit(limit); err != nil {
		return Spec{}, fmt.Errorf("build query: %w", err)
	}
	return Spec{
		Category: normalizeFilter(category),
		Merchant: normalizeFilter(merchant),
		Limit:    limit,
	}, nil
}

// HasCategory reports whether the spec constrains the category column.
func (s Spec) HasCategory() bool { return s.Category != "" }

// HasMerchant reports whether the spec constrains the merchant column.
func (s Spec) HasMerchant() bool { return s.Merchant != "" }

func normalizeFilter(v string) string {
	return strings.TrimSpace(v)
}
