// Package calculation holds all monetary arithmetic for quotes and invoices
// so that the editor, reports and exports agree on every figure.
//
// Values are float64 and intermediate results are never rounded; rounding to
// cents happens once, in UpdateQuoteTotals.
package calculation

import (
	"devis-backend/models"
	"devis-backend/utils"
)

// ItemTotal is quantity × unit price for a line item and 0 for every other row kind.
func ItemTotal(item models.QuoteItem) float64 {
	if item.Kind != models.KindItem {
		return 0
	}
	return item.Quantity * item.UnitPrice
}

// RefreshItem returns the item with its cached Total recomputed.
func RefreshItem(item models.QuoteItem) models.QuoteItem {
	item.Total = ItemTotal(item)
	return item
}

func SectionTotal(section models.QuoteSection) float64 {
	var total float64
	for _, it := range section.Items {
		total += ItemTotal(it)
	}
	return total
}

// QuoteSubtotal is the pre-discount, pre-tax sum of all sections.
func QuoteSubtotal(sections []models.QuoteSection) float64 {
	var total float64
	for _, s := range sections {
		total += SectionTotal(s)
	}
	return total
}

// DiscountAmount returns the money taken off amount. A fixed discount never
// exceeds amount.
func DiscountAmount(amount, discount float64, kind models.DiscountKind) float64 {
	if discount == 0 {
		return 0
	}
	if kind == models.DiscountFixed {
		if discount < amount {
			return discount
		}
		return amount
	}
	return amount * (discount / 100)
}

// ApplyDiscount returns amount minus the discount. Only the fixed kind is
// clamped at 0.
func ApplyDiscount(amount, discount float64, kind models.DiscountKind) float64 {
	if discount == 0 {
		return amount
	}
	if kind == models.DiscountFixed {
		result := amount - discount
		if result < 0 {
			return 0
		}
		return result
	}
	return amount - amount*(discount/100)
}

// Tax is the VAT on a pre-tax amount; rate is a percentage.
func Tax(amountHT, rate float64) float64 {
	return amountHT * (rate / 100)
}

func TotalTTC(amountHT, rate float64) float64 {
	return amountHT + Tax(amountHT, rate)
}

// MarginBreakdown splits a selling price into cost and profit.
type MarginBreakdown struct {
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
	SellingPrice float64 `json:"selling_price"`
}

// Margin treats marginPct as margin on selling price, not markup on cost:
// sellingPrice = totalHT / (1 - marginPct/100). Callers keep marginPct below 100.
func Margin(totalHT, marginPct float64) MarginBreakdown {
	if marginPct == 0 {
		return MarginBreakdown{Cost: totalHT, SellingPrice: totalHT}
	}
	selling := totalHT / (1 - marginPct/100)
	return MarginBreakdown{
		Cost:         totalHT,
		Profit:       selling - totalHT,
		SellingPrice: selling,
	}
}

// Totals is the full breakdown of a quote.
type Totals struct {
	Subtotal       float64          `json:"subtotal"`
	DiscountAmount float64          `json:"discount_amount"`
	TotalHT        float64          `json:"total_ht"`
	TaxRate        float64          `json:"tax_rate"`
	TaxAmount      float64          `json:"tax_amount"`
	TotalTTC       float64          `json:"total_ttc"`
	Margin         *MarginBreakdown `json:"margin,omitempty"`
}

// QuoteTotals composes subtotal, discount, tax and optional margin.
func QuoteTotals(q models.Quote) Totals {
	subtotal := QuoteSubtotal(q.Sections)
	discount := DiscountAmount(subtotal, q.Discount, q.EffectiveDiscountType())
	totalHT := subtotal - discount
	rate := q.EffectiveTaxRate()
	tax := Tax(totalHT, rate)

	t := Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TotalHT:        totalHT,
		TaxRate:        rate,
		TaxAmount:      tax,
		TotalTTC:       totalHT + tax,
	}
	if q.Margin > 0 {
		m := Margin(totalHT, q.Margin)
		t.Margin = &m
	}
	return t
}

// UpdateQuoteTotals returns a deep copy of q with every line total refreshed
// and TotalHT/TotalTTC replaced by the computed values rounded to cents.
func UpdateQuoteTotals(q models.Quote) models.Quote {
	out := q.Clone()
	for i := range out.Sections {
		for j := range out.Sections[i].Items {
			out.Sections[i].Items[j] = RefreshItem(out.Sections[i].Items[j])
		}
	}
	t := QuoteTotals(out)
	out.TotalHT = Round(t.TotalHT)
	out.TotalTTC = Round(t.TotalTTC)
	return out
}

// Round rounds to 2 decimals by multiplying by 100, rounding and dividing back.
func Round(amount float64) float64 {
	return utils.Round2(amount)
}

// Percentage is part/total × 100, 0 when total is 0.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// Markup is the markup on cost, 0 when cost is 0.
func Markup(cost, sellingPrice float64) float64 {
	if cost == 0 {
		return 0
	}
	return (sellingPrice - cost) / cost * 100
}

// ProfitMarginPct is the margin on selling price, 0 when sellingPrice is 0.
func ProfitMarginPct(cost, sellingPrice float64) float64 {
	if sellingPrice == 0 {
		return 0
	}
	return (sellingPrice - cost) / sellingPrice * 100
}

// BreakEven is the selling price giving the desired margin on cost.
func BreakEven(cost, marginPct float64) float64 {
	return cost / (1 - marginPct/100)
}

func Sum(amounts ...float64) float64 {
	var total float64
	for _, a := range amounts {
		total += a
	}
	return total
}

func Average(amounts []float64) float64 {
	if len(amounts) == 0 {
		return 0
	}
	return Sum(amounts...) / float64(len(amounts))
}

// WeightedAverage returns Σ(value·weight)/Σweight, or 0 when the slices
// differ in length, are empty or the weights sum to 0.
func WeightedAverage(values, weights []float64) float64 {
	if len(values) != len(weights) || len(values) == 0 {
		return 0
	}
	totalWeight := Sum(weights...)
	if totalWeight == 0 {
		return 0
	}
	var weighted float64
	for i, v := range values {
		weighted += v * weights[i]
	}
	return weighted / totalWeight
}
