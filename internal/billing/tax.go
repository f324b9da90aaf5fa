package billing

import (
	"strings"

	"github.com/shopspring/decimal"

	"crmcore/internal/domain"
)

// DefaultHomeJurisdiction is the seller's state.
const DefaultHomeJurisdiction = "Delhi"

var (
	// The effective GST rate is always 18%; only its split changes.
	cgstRate = decimal.RequireFromString("0.09")
	sgstRate = decimal.RequireFromString("0.09")
	igstRate = decimal.RequireFromString("0.18")
)

// TaxCalculator splits GST into CGST+SGST for intrastate supply and IGST otherwise.
type TaxCalculator struct {
	HomeJurisdiction string
}

// NewTaxCalculator creates a TaxCalculator for the given seller jurisdiction.
func NewTaxCalculator(home string) *TaxCalculator {
	if strings.TrimSpace(home) == "" {
		home = DefaultHomeJurisdiction
	}
	return &TaxCalculator{HomeJurisdiction: home}
}

// IsIntrastate reports whether the customer shares the seller's jurisdiction.
// An empty customer jurisdiction never matches and is treated as interstate.
func (c *TaxCalculator) IsIntrastate(customerJurisdiction string) bool {
	customer := normalizeJurisdiction(customerJurisdiction)
	if customer == "" {
		return false
	}
	return customer == normalizeJurisdiction(c.HomeJurisdiction)
}

// Compute returns the totals for a taxable amount.
func (c *TaxCalculator) Compute(taxable decimal.Decimal, customerJurisdiction string) domain.FinancialTotals {
	taxable = taxable.Round(currencyPlaces)
	totals := domain.FinancialTotals{
		Taxable: taxable,
		CGST:    decimal.Zero,
		SGST:    decimal.Zero,
		IGST:    decimal.Zero,
	}
	if c.IsIntrastate(customerJurisdiction) {
		totals.CGST = taxable.Mul(cgstRate).Round(currencyPlaces)
		totals.SGST = taxable.Mul(sgstRate).Round(currencyPlaces)
	} else {
		totals.IGST = taxable.Mul(igstRate).Round(currencyPlaces)
	}
	totals.Total = totals.Taxable.Add(totals.CGST).Add(totals.SGST).Add(totals.IGST)
	return totals
}

// Totals aggregates items and computes the tax split in one step.
func (c *TaxCalculator) Totals(items []domain.LineItem, customerJurisdiction string) (domain.FinancialTotals, error) {
	taxable, err := AggregateItems(items)
	if err != nil {
		return domain.FinancialTotals{}, err
	}
	return c.Compute(taxable, customerJurisdiction), nil
}

func normalizeJurisdiction(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
