package reports

import (
	"sort"
	"time"

	"devis-backend/models"
)

type ClientStats struct {
	ClientID          string            `json:"client_id"`
	ClientName        string            `json:"client_name"`
	ClientType        models.ClientType `json:"client_type"`
	TotalRevenue      float64           `json:"total_revenue"`
	QuoteCount        int               `json:"quote_count"`
	AcceptedCount     int               `json:"accepted_count"`
	RejectedCount     int               `json:"rejected_count"`
	AcceptanceRate    float64           `json:"acceptance_rate"`
	AverageQuoteValue float64           `json:"average_quote_value"`
	LastQuoteDate     time.Time         `json:"last_quote_date"`
	LifetimeValue     float64           `json:"lifetime_value"`
}

// ClientStatistics aggregates the quotes in range per known client,
// highest revenue first. Quotes of unknown clients are ignored.
func ClientStatistics(quotes []models.Quote, clients []models.Client, r DateRange) []ClientStats {
	byID := make(map[string]models.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	g := groupBy(FilterByRange(quotes, r), func(q models.Quote) (string, bool) {
		_, ok := byID[q.ClientID]
		return q.ClientID, ok
	})

	out := make([]ClientStats, 0, len(g.keys))
	for _, id := range g.keys {
		qs := g.items[id]
		c := byID[id]
		revenue := sumHT(qs)
		var accepted, rejected int
		for _, q := range qs {
			if isAccepted(q.Status) {
				accepted++
			}
			if q.Status == models.QuoteRejected {
				rejected++
			}
		}
		n := float64(len(qs))
		out = append(out, ClientStats{
			ClientID:          id,
			ClientName:        c.Name,
			ClientType:        c.Type,
			TotalRevenue:      revenue,
			QuoteCount:        len(qs),
			AcceptedCount:     accepted,
			RejectedCount:     rejected,
			AcceptanceRate:    float64(accepted) / n * 100,
			AverageQuoteValue: revenue / n,
			LastQuoteDate:     latestDate(qs),
			LifetimeValue:     revenue,
		})
	}
	sortByRevenue(out)
	return out
}

type SegmentName string

const (
	SegmentTop    SegmentName = "top"
	SegmentMedium SegmentName = "medium"
	SegmentLow    SegmentName = "low"
)

type ClientSegment struct {
	Segment      SegmentName   `json:"segment"`
	Clients      []ClientStats `json:"clients"`
	TotalRevenue float64       `json:"total_revenue"`
	Count        int           `json:"count"`
}

// SegmentClients splits clients by revenue: the top ceil(20%), the next
// ceil(30%) and the rest. Each tier is sized on the whole population, so
// for very small lists the counts can exceed it and Count of the low tier
// goes negative; member lists are simply cut at the list end.
func SegmentClients(stats []ClientStats) []ClientSegment {
	sorted := append([]ClientStats(nil), stats...)
	sortByRevenue(sorted)

	n := len(sorted)
	top := ceilPercent(n, 20)
	medium := ceilPercent(n, 30)

	return []ClientSegment{
		segment(SegmentTop, sorted, 0, top, top),
		segment(SegmentMedium, sorted, top, top+medium, medium),
		segment(SegmentLow, sorted, top+medium, n, n-top-medium),
	}
}

func segment(name SegmentName, sorted []ClientStats, from, to, count int) ClientSegment {
	from = min(from, len(sorted))
	to = max(min(to, len(sorted)), from)
	members := append([]ClientStats{}, sorted[from:to]...)
	var revenue float64
	for _, c := range members {
		revenue += c.TotalRevenue
	}
	return ClientSegment{
		Segment:      name,
		Clients:      members,
		TotalRevenue: revenue,
		Count:        count,
	}
}

// ceilPercent is ceil(n*pct/100) in integer arithmetic.
func ceilPercent(n, pct int) int {
	return (n*pct + 99) / 100
}

func sortByRevenue(stats []ClientStats) {
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].TotalRevenue > stats[j].TotalRevenue })
}
