package reports

import (
	"math"
	"sort"
	"time"

	"devis-backend/models"
)

// RevenueData is one time bucket.
type RevenueData struct {
	Date         time.Time `json:"date"`
	Period       string    `json:"period"`
	TotalHT      float64   `json:"total_ht"`
	TotalTTC     float64   `json:"total_ttc"`
	Count        int       `json:"count"`
	AverageValue float64   `json:"average_value"`
}

// RevenueByPeriod buckets the quotes in range by granularity, sorted by the
// earliest date of each bucket.
func RevenueByPeriod(quotes []models.Quote, granularity Period, r DateRange) []RevenueData {
	g := groupBy(FilterByRange(quotes, r), func(q models.Quote) (string, bool) {
		return DateKey(q.Date, granularity), true
	})

	out := make([]RevenueData, 0, len(g.keys))
	for _, key := range g.keys {
		qs := g.items[key]
		first := qs[0].Date
		for _, q := range qs[1:] {
			if q.Date.Before(first) {
				first = q.Date
			}
		}
		ht := sumHT(qs)
		out = append(out, RevenueData{
			Date:         first,
			Period:       key,
			TotalHT:      ht,
			TotalTTC:     sumTTC(qs),
			Count:        len(qs),
			AverageValue: ht / float64(len(qs)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type StatusRevenue struct {
	Status     models.QuoteStatus `json:"status"`
	TotalHT    float64            `json:"total_ht"`
	TotalTTC   float64            `json:"total_ttc"`
	Count      int                `json:"count"`
	Percentage float64            `json:"percentage"`
}

// RevenueByStatus groups the quotes in range by status, highest revenue first.
func RevenueByStatus(quotes []models.Quote, r DateRange) []StatusRevenue {
	filtered := FilterByRange(quotes, r)
	total := sumHT(filtered)
	g := groupBy(filtered, func(q models.Quote) (models.QuoteStatus, bool) { return q.Status, true })

	out := make([]StatusRevenue, 0, len(g.keys))
	for _, status := range g.keys {
		qs := g.items[status]
		ht := sumHT(qs)
		out = append(out, StatusRevenue{
			Status:     status,
			TotalHT:    ht,
			TotalTTC:   sumTTC(qs),
			Count:      len(qs),
			Percentage: ratio(ht, total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalHT > out[j].TotalHT })
	return out
}

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// StableThreshold is the change percentage under which a trend is stable.
const StableThreshold = 5.0

type Trend struct {
	Current          float64        `json:"current"`
	Previous         float64        `json:"previous"`
	Change           float64        `json:"change"`
	ChangePercentage float64        `json:"change_percentage"`
	Trend            TrendDirection `json:"trend"`
}

// PreviousRange is the window of the same duration ending at r.Start.
func PreviousRange(r DateRange) DateRange {
	return DateRange{
		Start: r.Start.Add(-r.Duration()),
		End:   r.Start,
		Label: "Previous Period",
	}
}

// RevenueTrend compares revenue in r with the period right before it.
func RevenueTrend(quotes []models.Quote, r DateRange) Trend {
	current := sumHT(FilterByRange(quotes, r))
	previous := sumHT(FilterByRange(quotes, PreviousRange(r)))
	change := current - previous

	var pct float64
	if previous > 0 {
		pct = change / previous * 100
	}

	t := Trend{
		Current:          current,
		Previous:         previous,
		Change:           change,
		ChangePercentage: pct,
	}
	switch {
	case math.Abs(pct) < StableThreshold:
		t.Trend = TrendStable
	case pct > 0:
		t.Trend = TrendUp
	default:
		t.Trend = TrendDown
	}
	return t
}
