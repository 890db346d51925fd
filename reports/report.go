package reports

import (
	"time"

	"devis-backend/models"
)

// TopClientsLimit caps the top client list of a report.
const TopClientsLimit = 10

const notAvailable = "N/A"

type Summary struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalQuotes       int     `json:"total_quotes"`
	AverageQuoteValue float64 `json:"average_quote_value"`
	ConversionRate    float64 `json:"conversion_rate"`
	TopClient         string  `json:"top_client"`
	TopTemplate       string  `json:"top_template"`
}

// Report bundles every aggregate for one date range.
type Report struct {
	DateRange   DateRange `json:"date_range"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`

	RevenueData     []RevenueData   `json:"revenue_data"`
	RevenueByStatus []StatusRevenue `json:"revenue_by_status"`
	RevenueTrend    Trend           `json:"revenue_trend"`

	ClientStats    []ClientStats   `json:"client_stats"`
	ClientSegments []ClientSegment `json:"client_segments"`
	TopClients     []ClientStats   `json:"top_clients"`

	QuoteMetrics     QuoteMetrics     `json:"quote_metrics"`
	StatusStats      []StatusStats    `json:"status_stats"`
	ConversionFunnel ConversionFunnel `json:"conversion_funnel"`

	TemplateStats []TemplateStats `json:"template_stats"`

	TimeStats    []TimeStats  `json:"time_stats"`
	PeakAnalysis PeakAnalysis `json:"peak_analysis"`

	Forecasts     []Projection  `json:"forecasts"`
	GrowthMetrics GrowthMetrics `json:"growth_metrics"`
}

// Input is everything a report is computed from.
type Input struct {
	Quotes      []models.Quote
	Clients     []models.Client
	Templates   []models.QuoteTemplate
	Range       DateRange
	Granularity Period
	Now         time.Time
}

// ComprehensiveReport computes every aggregate for the range. Forecasts and
// growth use all quotes regardless of the range.
func ComprehensiveReport(in Input) Report {
	granularity := in.Granularity
	if granularity == "" || granularity == PeriodCustom {
		granularity = PeriodMonth
	}

	clientStats := ClientStatistics(in.Quotes, in.Clients, in.Range)
	metrics := Metrics(in.Quotes, in.Range)
	templateStats := TemplateStatistics(in.Quotes, in.Templates, in.Range)
	top := clientStats[:min(TopClientsLimit, len(clientStats))]

	summary := Summary{
		TotalRevenue:      metrics.TotalRevenue,
		TotalQuotes:       metrics.TotalQuotes,
		AverageQuoteValue: metrics.AverageQuoteValue,
		ConversionRate:    metrics.ConversionRate,
		TopClient:         notAvailable,
		TopTemplate:       notAvailable,
	}
	if len(top) > 0 {
		summary.TopClient = top[0].ClientName
	}
	if len(templateStats) > 0 {
		summary.TopTemplate = templateStats[0].TemplateName
	}

	return Report{
		DateRange:        in.Range,
		GeneratedAt:      in.Now,
		Summary:          summary,
		RevenueData:      RevenueByPeriod(in.Quotes, granularity, in.Range),
		RevenueByStatus:  RevenueByStatus(in.Quotes, in.Range),
		RevenueTrend:     RevenueTrend(in.Quotes, in.Range),
		ClientStats:      clientStats,
		ClientSegments:   SegmentClients(clientStats),
		TopClients:       append([]ClientStats{}, top...),
		QuoteMetrics:     metrics,
		StatusStats:      StatusStatistics(in.Quotes, in.Range),
		ConversionFunnel: Funnel(in.Quotes, in.Range),
		TemplateStats:    templateStats,
		TimeStats:        MonthlyStats(in.Quotes, in.Range),
		PeakAnalysis:     Peaks(in.Quotes, in.Range),
		Forecasts:        Forecast(in.Quotes, DefaultForecastPeriods),
		GrowthMetrics:    Growth(in.Quotes, in.Now),
	}
}

// Filters narrows the quote list before aggregation. Zero fields match all.
type Filters struct {
	ClientIDs   []string             `json:"client_ids,omitempty"`
	Statuses    []models.QuoteStatus `json:"statuses,omitempty"`
	TemplateIDs []string             `json:"template_ids,omitempty"`
	MinValue    *float64             `json:"min_value,omitempty"`
	MaxValue    *float64             `json:"max_value,omitempty"`
	ClientType  models.ClientType    `json:"client_type,omitempty"`
}

// Apply returns the quotes matching every set filter. Clients are needed
// only to resolve ClientType.
func (f Filters) Apply(quotes []models.Quote, clients []models.Client) []models.Quote {
	clientIDs := toSet(f.ClientIDs)
	templateIDs := toSet(f.TemplateIDs)
	statuses := make(map[models.QuoteStatus]bool, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses[s] = true
	}
	types := make(map[string]models.ClientType, len(clients))
	for _, c := range clients {
		types[c.ID] = c.Type
	}

	out := make([]models.Quote, 0, len(quotes))
	for _, q := range quotes {
		switch {
		case len(clientIDs) > 0 && !clientIDs[q.ClientID]:
		case len(statuses) > 0 && !statuses[q.Status]:
		case len(templateIDs) > 0 && !templateIDs[q.TemplateID]:
		case f.MinValue != nil && q.TotalHT < *f.MinValue:
		case f.MaxValue != nil && q.TotalHT > *f.MaxValue:
		case f.ClientType != "" && types[q.ClientID] != f.ClientType:
		default:
			out = append(out, q)
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
