package calculation

import (
	"errors"
	"testing"

	"devis-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(qty, price float64) models.QuoteItem {
	return models.QuoteItem{Kind: models.KindItem, Quantity: qty, UnitPrice: price}
}

func TestItemTotal_NonItemRowsAreZero(t *testing.T) {
	for _, kind := range []models.ItemKind{models.KindSubheading, models.KindText, models.KindSpacer, models.KindPageBreak} {
		row := models.QuoteItem{Kind: kind, Quantity: 3, UnitPrice: 10, Total: 30}
		assert.Zero(t, ItemTotal(row), "kind %s", kind)
	}
	assert.Equal(t, 30.0, ItemTotal(item(3, 10)))
}

func TestSectionTotal_WithoutLineItemsIsZero(t *testing.T) {
	section := models.QuoteSection{Items: []models.QuoteItem{
		{Kind: models.KindSubheading, Description: "Gros oeuvre"},
		{Kind: models.KindText, Description: "Note", Total: 99},
	}}
	assert.Zero(t, SectionTotal(section))
	assert.Zero(t, SectionTotal(models.QuoteSection{}))
}

func TestQuoteSubtotal_IndependentOfSectionOrder(t *testing.T) {
	a := models.QuoteSection{ID: "a", Items: []models.QuoteItem{item(2, 50.25)}}
	b := models.QuoteSection{ID: "b", Items: []models.QuoteItem{item(1, 100), item(0.5, 12)}}
	c := models.QuoteSection{ID: "c", Items: []models.QuoteItem{{Kind: models.KindSpacer}}}

	forward := QuoteSubtotal([]models.QuoteSection{a, b, c})
	backward := QuoteSubtotal([]models.QuoteSection{c, b, a})

	assert.Equal(t, SectionTotal(a)+SectionTotal(b)+SectionTotal(c), forward)
	assert.InDelta(t, forward, backward, 1e-9)
	assert.Zero(t, QuoteSubtotal(nil))
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		discount float64
		kind     models.DiscountKind
		want     float64
	}{
		{"zero percentage", 250, 0, models.DiscountPercentage, 250},
		{"zero fixed", 250, 0, models.DiscountFixed, 250},
		{"full percentage", 250, 100, models.DiscountPercentage, 0},
		{"ten percent", 200, 10, models.DiscountPercentage, 180},
		{"fixed", 200, 30, models.DiscountFixed, 170},
		{"fixed clamped", 200, 300, models.DiscountFixed, 0},
		{"empty kind is percentage", 200, 10, "", 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ApplyDiscount(tt.amount, tt.discount, tt.kind), 1e-9)
		})
	}
}

func TestDiscountAmount_FixedNeverExceedsBase(t *testing.T) {
	for _, d := range []float64{0, 1, 99.99, 100, 100.01, 1e6} {
		assert.LessOrEqual(t, DiscountAmount(100, d, models.DiscountFixed), 100.0)
	}
	assert.Equal(t, 20.0, DiscountAmount(200, 10, models.DiscountPercentage))
	assert.Zero(t, DiscountAmount(200, 0, models.DiscountFixed))
}

func TestTotalTTC(t *testing.T) {
	assert.Equal(t, 1200.0, TotalTTC(1000, 20))
	assert.Equal(t, 200.0, Tax(1000, 20))
	assert.Equal(t, 1055.0, TotalTTC(1000, 5.5))
}

func TestMargin(t *testing.T) {
	m := Margin(800, 20)
	assert.InDelta(t, 1000, m.SellingPrice, 1e-9)
	assert.InDelta(t, 200, m.Profit, 1e-9)
	assert.Equal(t, 800.0, m.Cost)

	none := Margin(800, 0)
	assert.Equal(t, MarginBreakdown{Cost: 800, Profit: 0, SellingPrice: 800}, none)
}

func TestQuoteTotals_EndToEnd(t *testing.T) {
	q := models.Quote{
		Sections: models.SectionList{{
			ID:    "s1",
			Title: "Maçonnerie",
			Items: []models.QuoteItem{item(2, 50), item(1, 100)},
		}},
		Discount:     10,
		DiscountType: models.DiscountPercentage,
	}
	rate := 20.0
	q.TaxRate = &rate

	got := QuoteTotals(q)

	assert.Equal(t, 200.0, got.Subtotal)
	assert.Equal(t, 20.0, got.DiscountAmount)
	assert.Equal(t, 180.0, got.TotalHT)
	assert.Equal(t, 36.0, got.TaxAmount)
	assert.Equal(t, 216.0, got.TotalTTC)
	assert.Nil(t, got.Margin)
}

func TestQuoteTotals_DefaultsAndMargin(t *testing.T) {
	q := models.Quote{
		Sections: models.SectionList{{Items: []models.QuoteItem{item(1, 800)}}},
		Margin:   20,
	}
	got := QuoteTotals(q)

	assert.Equal(t, models.DefaultTaxRate, got.TaxRate)
	assert.Equal(t, 960.0, got.TotalTTC)
	require.NotNil(t, got.Margin)
	assert.InDelta(t, 1000, got.Margin.SellingPrice, 1e-9)
}

func TestQuoteTotals_ZeroTaxRateIsHonoured(t *testing.T) {
	zero := 0.0
	q := models.Quote{
		Sections: models.SectionList{{Items: []models.QuoteItem{item(1, 500)}}},
		TaxRate:  &zero,
	}
	assert.Equal(t, 500.0, QuoteTotals(q).TotalTTC)
}

func TestQuoteTotals_EdgeCases(t *testing.T) {
	empty := QuoteTotals(models.Quote{})
	assert.Zero(t, empty.Subtotal)
	assert.Zero(t, empty.TotalTTC)

	full := QuoteTotals(models.Quote{
		Sections: models.SectionList{{Items: []models.QuoteItem{item(3, 33.33)}}},
		Discount: 100,
	})
	assert.Zero(t, full.TotalHT)
	assert.Zero(t, full.TotalTTC)
}

func TestUpdateQuoteTotals_RoundsAndIsIdempotent(t *testing.T) {
	q := models.Quote{
		Sections: models.SectionList{{
			ID: "s1",
			Items: []models.QuoteItem{
				item(3, 33.333),
				{Kind: models.KindSubheading, Total: 50},
			},
		}},
		Discount:     7.5,
		DiscountType: models.DiscountPercentage,
	}

	once := UpdateQuoteTotals(q)
	twice := UpdateQuoteTotals(once)

	assert.Equal(t, 92.5, once.TotalHT)
	assert.Equal(t, 111.0, once.TotalTTC)
	assert.Equal(t, once.TotalHT, twice.TotalHT)
	assert.Equal(t, once.TotalTTC, twice.TotalTTC)
	assert.Zero(t, once.Sections[0].Items[1].Total)
	assert.InDelta(t, 99.999, once.Sections[0].Items[0].Total, 1e-9)

	// input untouched
	assert.Zero(t, q.TotalHT)
	assert.Equal(t, 50.0, q.Sections[0].Items[1].Total)
}

func TestValidateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		discount float64
		kind     models.DiscountKind
		total    float64
		valid    bool
		reason   string
	}{
		{"negative", -1, models.DiscountPercentage, 100, false, ReasonNegativeDiscount},
		{"over 100 percent", 101, models.DiscountPercentage, 100, false, ReasonPercentOver100},
		{"fixed above total", 50, models.DiscountFixed, 40, false, ReasonExceedsTotal},
		{"fixed within total", 50, models.DiscountFixed, 100, true, ""},
		{"exactly 100 percent", 100, models.DiscountPercentage, 10, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateDiscount(tt.discount, tt.kind, tt.total)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.reason, got.Reason)
			if tt.valid {
				assert.NoError(t, got.Err())
			} else {
				assert.True(t, errors.Is(got.Err(), ErrInvalidDiscount))
			}
		})
	}
}

func TestMarkupAndProfitMargin(t *testing.T) {
	assert.Equal(t, 25.0, Markup(800, 1000))
	assert.Zero(t, Markup(0, 1000))
	assert.Equal(t, 20.0, ProfitMarginPct(800, 1000))
	assert.Zero(t, ProfitMarginPct(800, 0))
	assert.InDelta(t, 1000, BreakEven(800, 20), 1e-9)
}

func TestWeightedAverage(t *testing.T) {
	assert.InDelta(t, 16.0, WeightedAverage([]float64{20, 10}, []float64{60, 40}), 1e-9)
	assert.Zero(t, WeightedAverage([]float64{1, 2}, []float64{1}))
	assert.Zero(t, WeightedAverage(nil, nil))
	assert.Zero(t, WeightedAverage([]float64{5}, []float64{0}))
}

func TestPercentageAndAverage(t *testing.T) {
	assert.Equal(t, 25.0, Percentage(1, 4))
	assert.Zero(t, Percentage(1, 0))
	assert.Equal(t, 2.0, Average([]float64{1, 2, 3}))
	assert.Zero(t, Average(nil))
	assert.Equal(t, 6.0, Sum(1, 2, 3))
}
