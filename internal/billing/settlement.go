package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"crmcore/internal/domain"
)

// IsSettled reports whether the recorded payments equal the document total exactly.
func IsSettled(doc *domain.Document) bool {
	return doc.PaidAmount.Equal(doc.Total)
}

// Remaining returns the unpaid balance of a document.
func Remaining(doc *domain.Document) decimal.Decimal {
	return doc.Total.Sub(doc.PaidAmount)
}

// CheckPayment validates amount against the document's remaining balance.
func CheckPayment(doc *domain.Document, amount decimal.Decimal) error {
	if doc.Type != domain.DocumentTypeInvoice {
		return domain.ErrNotPayable
	}
	if !amount.IsPositive() {
		return domain.NewValidationError("amount", "must be greater than zero")
	}
	if !amount.Equal(amount.Round(currencyPlaces)) {
		return domain.NewValidationError("amount", fmt.Sprintf("must have at most %d decimal places", currencyPlaces))
	}
	if amount.GreaterThan(Remaining(doc)) {
		return fmt.Errorf("%w: remaining %s, requested %s",
			domain.ErrOverpayment, Remaining(doc).StringFixed(currencyPlaces), amount.StringFixed(currencyPlaces))
	}
	return nil
}
