// Package billing holds the pure financial rules of invoices and quotations:
// line-item aggregation, GST decomposition, settlement and document codes.
package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"crmcore/internal/domain"
)

// currencyPlaces is the minor-unit precision of all stored amounts.
const currencyPlaces = 2

// ValidateItem checks a single line item. index is used for the field path.
func ValidateItem(index int, item *domain.LineItem) error {
	field := fmt.Sprintf("items[%d]", index)
	if strings.TrimSpace(item.Description) == "" {
		return domain.NewValidationError(field+".description", "is required")
	}
	if item.Quantity < 1 {
		return domain.NewValidationError(field+".quantity", "must be a positive integer")
	}
	if item.UnitPrice.IsNegative() {
		return domain.NewValidationError(field+".unit_price", "must not be negative")
	}
	if !item.UnitPrice.Equal(item.UnitPrice.Round(currencyPlaces)) {
		return domain.NewValidationError(field+".unit_price", fmt.Sprintf("must have at most %d decimal places", currencyPlaces))
	}
	return nil
}

// AggregateItems returns the taxable subtotal Σ(quantity × unit price) rounded to
// currency precision. Any invalid item rejects the whole list.
func AggregateItems(items []domain.LineItem) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i := range items {
		if err := ValidateItem(i, &items[i]); err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(items[i].LineTotal())
	}
	return sum.Round(currencyPlaces), nil
}
