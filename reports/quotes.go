package reports

import (
	"fmt"
	"sort"
	"time"

	"devis-backend/models"
)

type QuoteMetrics struct {
	TotalQuotes       int     `json:"total_quotes"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageQuoteValue float64 `json:"average_quote_value"`
	MedianQuoteValue  float64 `json:"median_quote_value"`
	HighestQuoteValue float64 `json:"highest_quote_value"`
	LowestQuoteValue  float64 `json:"lowest_quote_value"`
	ConversionRate    float64 `json:"conversion_rate"`
	AcceptanceRate    float64 `json:"acceptance_rate"`
}

// Metrics summarises the quotes in range. The median is the element at
// index n/2 of the ascending values, the upper middle for even n.
func Metrics(quotes []models.Quote, r DateRange) QuoteMetrics {
	filtered := FilterByRange(quotes, r)
	if len(filtered) == 0 {
		return QuoteMetrics{}
	}

	values := make([]float64, len(filtered))
	var accepted, sent int
	for i, q := range filtered {
		values[i] = q.TotalHT
		if isAccepted(q.Status) {
			accepted++
		}
		if isSentOrLater(q.Status) {
			sent++
		}
	}
	sort.Float64s(values)

	total := sumHT(filtered)
	n := len(values)
	return QuoteMetrics{
		TotalQuotes:       n,
		TotalRevenue:      total,
		AverageQuoteValue: total / float64(n),
		MedianQuoteValue:  values[n/2],
		HighestQuoteValue: values[n-1],
		LowestQuoteValue:  values[0],
		ConversionRate:    ratio(float64(accepted), float64(n)),
		AcceptanceRate:    ratio(float64(accepted), float64(sent)),
	}
}

type StatusStats struct {
	Status       models.QuoteStatus `json:"status"`
	Count        int                `json:"count"`
	TotalValue   float64            `json:"total_value"`
	Percentage   float64            `json:"percentage"`
	AverageValue float64            `json:"average_value"`
}

// StatusStatistics groups the quotes in range by status, in first-seen order.
func StatusStatistics(quotes []models.Quote, r DateRange) []StatusStats {
	filtered := FilterByRange(quotes, r)
	g := groupBy(filtered, func(q models.Quote) (models.QuoteStatus, bool) { return q.Status, true })

	out := make([]StatusStats, 0, len(g.keys))
	for _, status := range g.keys {
		qs := g.items[status]
		total := sumHT(qs)
		out = append(out, StatusStats{
			Status:       status,
			Count:        len(qs),
			TotalValue:   total,
			Percentage:   ratio(float64(len(qs)), float64(len(filtered))),
			AverageValue: total / float64(len(qs)),
		})
	}
	return out
}

type ConversionFunnel struct {
	Draft                  int     `json:"draft"`
	Sent                   int     `json:"sent"`
	Accepted               int     `json:"accepted"`
	Invoiced               int     `json:"invoiced"`
	Total                  int     `json:"total"`
	DraftToSentRate        float64 `json:"draft_to_sent_rate"`
	SentToAcceptedRate     float64 `json:"sent_to_accepted_rate"`
	AcceptedToInvoicedRate float64 `json:"accepted_to_invoiced_rate"`
	OverallConversionRate  float64 `json:"overall_conversion_rate"`
}

// Funnel counts the quotes in range per stage. Stages overlap: an invoiced
// quote is counted as sent, accepted and invoiced.
func Funnel(quotes []models.Quote, r DateRange) ConversionFunnel {
	filtered := FilterByRange(quotes, r)
	f := ConversionFunnel{Total: len(filtered)}
	for _, q := range filtered {
		switch q.Status {
		case models.QuoteDraft, models.QuotePending:
			f.Draft++
		case models.QuoteSent, models.QuoteFinalized, models.QuoteAccepted, models.QuoteInvoiced, models.QuoteRejected:
			f.Sent++
		}
		if isAccepted(q.Status) {
			f.Accepted++
		}
		if q.Status == models.QuoteInvoiced {
			f.Invoiced++
		}
	}
	f.DraftToSentRate = ratio(float64(f.Sent), float64(f.Draft+f.Sent))
	f.SentToAcceptedRate = ratio(float64(f.Accepted), float64(f.Sent))
	f.AcceptedToInvoicedRate = ratio(float64(f.Invoiced), float64(f.Accepted))
	f.OverallConversionRate = ratio(float64(f.Accepted), float64(f.Total))
	return f
}

type TemplateStats struct {
	TemplateID        string    `json:"template_id"`
	TemplateName      string    `json:"template_name"`
	UsageCount        int       `json:"usage_count"`
	TotalRevenue      float64   `json:"total_revenue"`
	AverageQuoteValue float64   `json:"average_quote_value"`
	AcceptanceRate    float64   `json:"acceptance_rate"`
	LastUsed          time.Time `json:"last_used"`
}

// TemplateStatistics aggregates the quotes in range per originating
// template, most used first. Templates no longer in the list keep a
// placeholder name.
func TemplateStatistics(quotes []models.Quote, templates []models.QuoteTemplate, r DateRange) []TemplateStats {
	names := make(map[string]string, len(templates))
	for _, t := range templates {
		names[t.ID] = t.Name
	}
	g := groupBy(FilterByRange(quotes, r), func(q models.Quote) (string, bool) {
		return q.TemplateID, q.TemplateID != ""
	})

	out := make([]TemplateStats, 0, len(g.keys))
	for _, id := range g.keys {
		qs := g.items[id]
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("Template %s", id)
		}
		var accepted int
		for _, q := range qs {
			if isAccepted(q.Status) {
				accepted++
			}
		}
		revenue := sumHT(qs)
		n := float64(len(qs))
		out = append(out, TemplateStats{
			TemplateID:        id,
			TemplateName:      name,
			UsageCount:        len(qs),
			TotalRevenue:      revenue,
			AverageQuoteValue: revenue / n,
			AcceptanceRate:    float64(accepted) / n * 100,
			LastUsed:          latestDate(qs),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	return out
}
