package billing_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmcore/internal/billing"
	"crmcore/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{Description: "Consulting", Quantity: 2, UnitPrice: dec("500"), HSNCode: "998311"},
		{Description: "Setup", Quantity: 1, UnitPrice: dec("1000"), HSNCode: "998313"},
	}
}

func TestAggregateItems_Sum(t *testing.T) {
	taxable, err := billing.AggregateItems(sampleItems())
	require.NoError(t, err)
	assert.True(t, dec("2000").Equal(taxable), "got %s", taxable)
}

func TestAggregateItems_Empty(t *testing.T) {
	taxable, err := billing.AggregateItems(nil)
	require.NoError(t, err)
	assert.True(t, taxable.IsZero())
}

func TestAggregateItems_MinorUnitPrice(t *testing.T) {
	items := []domain.LineItem{
		{Description: "Widget", Quantity: 3, UnitPrice: dec("33.33")},
	}
	taxable, err := billing.AggregateItems(items)
	require.NoError(t, err)
	assert.Equal(t, "99.99", taxable.StringFixed(2))
}

func TestAggregateItems_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		item  domain.LineItem
		field string
	}{
		{"zero quantity", domain.LineItem{Description: "x", Quantity: 0, UnitPrice: dec("1")}, "items[1].quantity"},
		{"negative quantity", domain.LineItem{Description: "x", Quantity: -2, UnitPrice: dec("1")}, "items[1].quantity"},
		{"negative price", domain.LineItem{Description: "x", Quantity: 1, UnitPrice: dec("-0.01")}, "items[1].unit_price"},
		{"sub-cent price", domain.LineItem{Description: "x", Quantity: 3, UnitPrice: dec("33.335")}, "items[1].unit_price"},
		{"missing description", domain.LineItem{Description: "  ", Quantity: 1, UnitPrice: dec("1")}, "items[1].description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []domain.LineItem{sampleItems()[0], tt.item}
			_, err := billing.AggregateItems(items)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestAggregateItems_FreePriceAllowed(t *testing.T) {
	items := []domain.LineItem{{Description: "Complimentary", Quantity: 4, UnitPrice: decimal.Zero}}
	taxable, err := billing.AggregateItems(items)
	require.NoError(t, err)
	assert.True(t, taxable.IsZero())
}

func TestTaxCalculator_Intrastate(t *testing.T) {
	calc := billing.NewTaxCalculator("Delhi")

	totals, err := calc.Totals(sampleItems(), "Delhi")
	require.NoError(t, err)

	assert.Equal(t, "2000.00", totals.Taxable.StringFixed(2))
	assert.Equal(t, "180.00", totals.CGST.StringFixed(2))
	assert.Equal(t, "180.00", totals.SGST.StringFixed(2))
	assert.True(t, totals.IGST.IsZero())
	assert.Equal(t, "2360.00", totals.Total.StringFixed(2))
}

func TestTaxCalculator_Interstate(t *testing.T) {
	calc := billing.NewTaxCalculator("Delhi")

	totals, err := calc.Totals(sampleItems(), "Maharashtra")
	require.NoError(t, err)

	assert.True(t, totals.CGST.IsZero())
	assert.True(t, totals.SGST.IsZero())
	assert.Equal(t, "360.00", totals.IGST.StringFixed(2))
	assert.Equal(t, "2360.00", totals.Total.StringFixed(2))
}

func TestTaxCalculator_JurisdictionNormalization(t *testing.T) {
	calc := billing.NewTaxCalculator("Delhi")

	assert.True(t, calc.IsIntrastate("  delhi "))
	assert.True(t, calc.IsIntrastate("DELHI"))
	assert.False(t, calc.IsIntrastate("New Delhi"))
	assert.False(t, calc.IsIntrastate(""))
	assert.False(t, calc.IsIntrastate("   "))
}

func TestTaxCalculator_EmptyJurisdictionIsInterstate(t *testing.T) {
	calc := billing.NewTaxCalculator("Delhi")

	totals := calc.Compute(dec("1000"), "")

	assert.True(t, totals.CGST.IsZero())
	assert.Equal(t, "180.00", totals.IGST.StringFixed(2))
}

func TestTaxCalculator_DefaultHome(t *testing.T) {
	calc := billing.NewTaxCalculator("")
	assert.Equal(t, billing.DefaultHomeJurisdiction, calc.HomeJurisdiction)
}

func TestTaxCalculator_ZeroTaxable(t *testing.T) {
	calc := billing.NewTaxCalculator("Delhi")

	for _, state := range []string{"Delhi", "Goa"} {
		totals := calc.Compute(decimal.Zero, state)
		assert.True(t, totals.CGST.IsZero())
		assert.True(t, totals.SGST.IsZero())
		assert.True(t, totals.IGST.IsZero())
		assert.True(t, totals.Total.IsZero())
	}
}

// Randomized check of the 18% effective rate and mutual exclusivity of the split.
func TestTaxCalculator_EffectiveRateAndExclusivity(t *testing.T) {
	calc := billing.NewTaxCalculator("Delhi")
	rng := rand.New(rand.NewSource(42))
	epsilon := dec("0.01")
	rate := dec("1.18")
	states := []string{"Delhi", "delhi", "Karnataka", "", "Tamil Nadu"}

	for i := 0; i < 500; i++ {
		taxable := decimal.New(rng.Int63n(10_000_000), -2)
		totals := calc.Compute(taxable, states[i%len(states)])

		expected := taxable.Mul(rate)
		assert.True(t, totals.Total.Sub(expected).Abs().LessThanOrEqual(epsilon),
			"taxable=%s total=%s expected=%s", taxable, totals.Total, expected)

		sum := totals.Taxable.Add(totals.CGST).Add(totals.SGST).Add(totals.IGST)
		assert.True(t, totals.Total.Equal(sum))

		split := totals.CGST.IsPositive() && totals.SGST.IsPositive() && totals.IGST.IsZero()
		integrated := totals.CGST.IsZero() && totals.SGST.IsZero() && totals.IGST.IsPositive()
		allZero := totals.CGST.IsZero() && totals.SGST.IsZero() && totals.IGST.IsZero()
		assert.True(t, split || integrated || allZero, "taxable=%s totals=%+v", taxable, totals)
		if allZero {
			// Each component rounds to zero below 0.03 taxable (IGST) or 0.06 (CGST/SGST).
			assert.True(t, taxable.LessThan(dec("0.06")), "taxable=%s totals=%+v", taxable, totals)
		}
	}
}

func TestTaxCalculator_TinyTaxableRoundsTaxToZero(t *testing.T) {
	calc := billing.NewTaxCalculator("Delhi")

	for _, state := range []string{"Delhi", "Goa"} {
		totals := calc.Compute(dec("0.01"), state)
		assert.True(t, totals.CGST.IsZero())
		assert.True(t, totals.SGST.IsZero())
		assert.True(t, totals.IGST.IsZero())
		assert.Equal(t, "0.01", totals.Total.StringFixed(2))
	}

	totals := calc.Compute(dec("0.03"), "Goa")
	assert.Equal(t, "0.01", totals.IGST.StringFixed(2))
}

func TestAggregateItems_MatchesLineTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(6)
		items := make([]domain.LineItem, n)
		expected := decimal.Zero
		for j := range items {
			items[j] = domain.LineItem{
				Description: "item",
				Quantity:    rng.Intn(20) + 1,
				UnitPrice:   decimal.New(rng.Int63n(1_000_000), -2),
			}
			expected = expected.Add(items[j].UnitPrice.Mul(decimal.NewFromInt(int64(items[j].Quantity))))
		}
		taxable, err := billing.AggregateItems(items)
		require.NoError(t, err)
		assert.Equal(t, expected.StringFixed(2), taxable.StringFixed(2))
	}
}
