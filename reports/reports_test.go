package reports

import (
	"testing"
	"time"

	"devis-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func march() DateRange {
	return DateRange{Start: models.Date(2026, time.March, 1), End: models.Date(2026, time.March, 31)}
}

func quote(id string, status models.QuoteStatus, date time.Time, ht float64) models.Quote {
	return models.Quote{ID: id, Status: status, Date: date, TotalHT: ht, TotalTTC: ht * 1.2}
}

// funnelFixture holds ten quotes dated in March 2026 worth 100, 200 ... 1000.
func funnelFixture() []models.Quote {
	statuses := []models.QuoteStatus{
		models.QuoteDraft, models.QuoteDraft, models.QuotePending,
		models.QuoteSent, models.QuoteSent, models.QuoteFinalized,
		models.QuoteAccepted, models.QuoteAccepted, models.QuoteInvoiced,
		models.QuoteRejected,
	}
	quotes := make([]models.Quote, len(statuses))
	for i, s := range statuses {
		quotes[i] = quote(string(rune('a'+i)), s, models.Date(2026, time.March, i+1), float64(100*(i+1)))
	}
	return quotes
}

func TestNewDateRange(t *testing.T) {
	now := time.Date(2026, time.March, 15, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		period Period
		start  time.Time
		label  string
	}{
		{PeriodDay, models.Date(2026, time.March, 15), "Today"},
		{PeriodWeek, models.Date(2026, time.March, 8), "Last 7 Days"},
		{PeriodMonth, models.Date(2026, time.February, 15), "Last 30 Days"},
		{PeriodQuarter, models.Date(2025, time.December, 15), "Last Quarter"},
		{PeriodYear, models.Date(2025, time.March, 15), "Last Year"},
		{"fortnight", models.Date(2026, time.February, 15), "Last 30 Days"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			r, err := NewDateRange(tt.period, nil, nil, now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, models.Date(2026, time.March, 15), r.End)
			assert.Equal(t, tt.label, r.Label)
		})
	}
}

func TestNewDateRange_Custom(t *testing.T) {
	now := time.Now()
	start := models.Date(2026, time.January, 1)
	end := models.Date(2026, time.March, 31)

	r, err := NewDateRange(PeriodCustom, &start, &end, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01 to 2026-03-31", r.Label)

	_, err = NewDateRange(PeriodCustom, &start, nil, now)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = NewDateRange(PeriodCustom, nil, nil, now)
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = NewDateRange(PeriodCustom, &end, &start, now)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestFilterByRange_InclusiveCalendarDates(t *testing.T) {
	quotes := []models.Quote{
		quote("before", models.QuoteDraft, models.Date(2026, time.February, 28), 1),
		quote("first", models.QuoteDraft, time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC), 1),
		quote("last", models.QuoteDraft, models.Date(2026, time.March, 31), 1),
		quote("after", models.QuoteDraft, models.Date(2026, time.April, 1), 1),
	}
	got := FilterByRange(quotes, march())
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "last", got[1].ID)
}

func TestDateKey(t *testing.T) {
	jan4 := models.Date(2026, time.January, 4)
	assert.Equal(t, "2026-01-04", DateKey(jan4, PeriodDay))
	assert.Equal(t, "2026-W2", DateKey(jan4, PeriodWeek))
	assert.Equal(t, "2026-W1", DateKey(models.Date(2026, time.January, 3), PeriodWeek))
	assert.Equal(t, "2026-01", DateKey(jan4, PeriodMonth))
	assert.Equal(t, "2026-Q2", DateKey(models.Date(2026, time.May, 20), PeriodQuarter))
	assert.Equal(t, "2026", DateKey(jan4, PeriodYear))
}

func TestRevenueByPeriod(t *testing.T) {
	quotes := []models.Quote{
		quote("a", models.QuoteSent, models.Date(2026, time.March, 20), 300),
		quote("b", models.QuoteSent, models.Date(2026, time.March, 2), 100),
		quote("c", models.QuoteSent, models.Date(2026, time.February, 10), 50),
		quote("d", models.QuoteSent, models.Date(2025, time.December, 10), 999),
	}
	r := DateRange{Start: models.Date(2026, time.February, 1), End: models.Date(2026, time.March, 31)}

	got := RevenueByPeriod(quotes, PeriodMonth, r)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-02", got[0].Period)
	assert.Equal(t, "2026-03", got[1].Period)
	assert.Equal(t, models.Date(2026, time.March, 2), got[1].Date)
	assert.Equal(t, 400.0, got[1].TotalHT)
	assert.Equal(t, 2, got[1].Count)
	assert.Equal(t, 200.0, got[1].AverageValue)

	assert.Empty(t, RevenueByPeriod(nil, PeriodMonth, r))
}

func TestRevenueByStatus(t *testing.T) {
	quotes := []models.Quote{
		quote("a", models.QuoteSent, models.Date(2026, time.March, 1), 100),
		quote("b", models.QuoteAccepted, models.Date(2026, time.March, 2), 300),
		quote("c", models.QuoteSent, models.Date(2026, time.March, 3), 100),
	}
	got := RevenueByStatus(quotes, march())

	require.Len(t, got, 2)
	assert.Equal(t, models.QuoteAccepted, got[0].Status)
	assert.Equal(t, 60.0, got[0].Percentage)
	assert.Equal(t, models.QuoteSent, got[1].Status)
	assert.Equal(t, 2, got[1].Count)
	assert.Equal(t, 40.0, got[1].Percentage)

	zero := RevenueByStatus([]models.Quote{quote("z", models.QuoteDraft, models.Date(2026, time.March, 1), 0)}, march())
	assert.Zero(t, zero[0].Percentage)
}

func TestRevenueTrend(t *testing.T) {
	previous := quote("prev", models.QuoteSent, models.Date(2026, time.February, 15), 1000)
	tests := []struct {
		name    string
		current float64
		pct     float64
		trend   TrendDirection
	}{
		{"five percent is not stable", 1050, 5, TrendUp},
		{"just under five is stable", 1049, 4.9, TrendStable},
		{"drop", 900, -10, TrendDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes := []models.Quote{previous, quote("cur", models.QuoteSent, models.Date(2026, time.March, 15), tt.current)}
			got := RevenueTrend(quotes, march())
			assert.Equal(t, 1000.0, got.Previous)
			assert.Equal(t, tt.current, got.Current)
			assert.InDelta(t, tt.pct, got.ChangePercentage, 1e-9)
			assert.Equal(t, tt.trend, got.Trend)
		})
	}

	none := RevenueTrend([]models.Quote{quote("cur", models.QuoteSent, models.Date(2026, time.March, 15), 500)}, march())
	assert.Zero(t, none.ChangePercentage)
	assert.Equal(t, TrendStable, none.Trend)
}

func TestPreviousRange(t *testing.T) {
	p := PreviousRange(march())
	assert.Equal(t, models.Date(2026, time.January, 30), p.Start)
	assert.Equal(t, models.Date(2026, time.March, 1), p.End)
}

func TestClientStatistics(t *testing.T) {
	clients := []models.Client{
		{ID: "c1", Name: "Dupont", Type: models.ClientIndividual},
		{ID: "c2", Name: "BTP SARL", Type: models.ClientBusiness},
	}
	quotes := []models.Quote{
		{ID: "1", ClientID: "c1", Status: models.QuoteAccepted, Date: models.Date(2026, time.March, 2), TotalHT: 100},
		{ID: "2", ClientID: "c1", Status: models.QuoteRejected, Date: models.Date(2026, time.March, 9), TotalHT: 300},
		{ID: "3", ClientID: "c2", Status: models.QuoteInvoiced, Date: models.Date(2026, time.March, 5), TotalHT: 1000},
		{ID: "4", ClientID: "ghost", Status: models.QuoteSent, Date: models.Date(2026, time.March, 5), TotalHT: 5000},
	}

	got := ClientStatistics(quotes, clients, march())
	require.Len(t, got, 2)

	assert.Equal(t, "BTP SARL", got[0].ClientName)
	assert.Equal(t, models.ClientBusiness, got[0].ClientType)
	assert.Equal(t, 100.0, got[0].AcceptanceRate)

	dupont := got[1]
	assert.Equal(t, 400.0, dupont.TotalRevenue)
	assert.Equal(t, 400.0, dupont.LifetimeValue)
	assert.Equal(t, 2, dupont.QuoteCount)
	assert.Equal(t, 1, dupont.AcceptedCount)
	assert.Equal(t, 1, dupont.RejectedCount)
	assert.Equal(t, 50.0, dupont.AcceptanceRate)
	assert.Equal(t, 200.0, dupont.AverageQuoteValue)
	assert.Equal(t, models.Date(2026, time.March, 9), dupont.LastQuoteDate)
}

func TestSegmentClients_TenClients(t *testing.T) {
	stats := make([]ClientStats, 10)
	for i := range stats {
		stats[i] = ClientStats{ClientID: string(rune('a' + i)), TotalRevenue: float64((i + 1) * 100)}
	}

	segs := SegmentClients(stats)
	require.Len(t, segs, 3)

	assert.Equal(t, SegmentTop, segs[0].Segment)
	assert.Equal(t, 2, segs[0].Count)
	require.Len(t, segs[0].Clients, 2)
	assert.Equal(t, "j", segs[0].Clients[0].ClientID)
	assert.Equal(t, 1900.0, segs[0].TotalRevenue)

	assert.Equal(t, 3, segs[1].Count)
	assert.Len(t, segs[1].Clients, 3)
	assert.Equal(t, 2100.0, segs[1].TotalRevenue)

	assert.Equal(t, 5, segs[2].Count)
	assert.Len(t, segs[2].Clients, 5)
	assert.Equal(t, 1500.0, segs[2].TotalRevenue)

	// input order untouched
	assert.Equal(t, "a", stats[0].ClientID)
}

func TestSegmentClients_SmallPopulations(t *testing.T) {
	one := SegmentClients([]ClientStats{{ClientID: "a", TotalRevenue: 10}})
	assert.Equal(t, 1, one[0].Count)
	assert.Equal(t, 1, one[1].Count)
	assert.Empty(t, one[1].Clients)
	assert.Equal(t, -1, one[2].Count)
	assert.Empty(t, one[2].Clients)

	two := SegmentClients([]ClientStats{{ClientID: "a", TotalRevenue: 10}, {ClientID: "b", TotalRevenue: 20}})
	assert.Equal(t, []int{1, 1, 0}, []int{two[0].Count, two[1].Count, two[2].Count})
	assert.Equal(t, "b", two[0].Clients[0].ClientID)

	empty := SegmentClients(nil)
	for _, s := range empty {
		assert.Zero(t, s.Count)
		assert.Empty(t, s.Clients)
	}
}

func TestFunnel(t *testing.T) {
	f := Funnel(funnelFixture(), march())

	assert.Equal(t, 3, f.Draft)
	assert.Equal(t, 7, f.Sent)
	assert.Equal(t, 3, f.Accepted)
	assert.Equal(t, 1, f.Invoiced)
	assert.Equal(t, 10, f.Total)
	assert.InDelta(t, 70.0, f.DraftToSentRate, 1e-9)
	assert.InDelta(t, 300.0/7, f.SentToAcceptedRate, 1e-9)
	assert.InDelta(t, 100.0/3, f.AcceptedToInvoicedRate, 1e-9)
	assert.InDelta(t, 30.0, f.OverallConversionRate, 1e-9)
}

func TestFunnel_ZeroDenominators(t *testing.T) {
	f := Funnel([]models.Quote{quote("l", models.QuoteLost, models.Date(2026, time.March, 3), 10)}, march())
	assert.Equal(t, 1, f.Total)
	assert.Zero(t, f.DraftToSentRate)
	assert.Zero(t, f.SentToAcceptedRate)
	assert.Zero(t, f.AcceptedToInvoicedRate)
	assert.Zero(t, f.OverallConversionRate)

	sentOnly := Funnel([]models.Quote{quote("s", models.QuoteSent, models.Date(2026, time.March, 3), 10)}, march())
	assert.Equal(t, 100.0, sentOnly.DraftToSentRate)
}

func TestMetrics(t *testing.T) {
	m := Metrics(funnelFixture(), march())

	assert.Equal(t, 10, m.TotalQuotes)
	assert.Equal(t, 5500.0, m.TotalRevenue)
	assert.Equal(t, 550.0, m.AverageQuoteValue)
	assert.Equal(t, 600.0, m.MedianQuoteValue)
	assert.Equal(t, 1000.0, m.HighestQuoteValue)
	assert.Equal(t, 100.0, m.LowestQuoteValue)
	assert.InDelta(t, 30.0, m.ConversionRate, 1e-9)
	assert.InDelta(t, 50.0, m.AcceptanceRate, 1e-9)

	assert.Equal(t, QuoteMetrics{}, Metrics(nil, march()))

	odd := Metrics([]models.Quote{
		quote("a", models.QuoteDraft, models.Date(2026, time.March, 1), 30),
		quote("b", models.QuoteDraft, models.Date(2026, time.March, 1), 10),
		quote("c", models.QuoteDraft, models.Date(2026, time.March, 1), 20),
	}, march())
	assert.Equal(t, 20.0, odd.MedianQuoteValue)
	assert.Zero(t, odd.AcceptanceRate)
}

func TestStatusStatistics(t *testing.T) {
	got := StatusStatistics(funnelFixture(), march())
	require.Len(t, got, 7)

	assert.Equal(t, models.QuoteDraft, got[0].Status)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 300.0, got[0].TotalValue)
	assert.Equal(t, 20.0, got[0].Percentage)
	assert.Equal(t, 150.0, got[0].AverageValue)
}

func TestTemplateStatistics(t *testing.T) {
	quotes := []models.Quote{
		{ID: "1", TemplateID: "t1", Status: models.QuoteAccepted, Date: models.Date(2026, time.March, 2), TotalHT: 100},
		{ID: "2", TemplateID: "t2", Status: models.QuoteSent, Date: models.Date(2026, time.March, 3), TotalHT: 50},
		{ID: "3", TemplateID: "t2", Status: models.QuoteSent, Date: models.Date(2026, time.March, 8), TotalHT: 150},
		{ID: "4", Status: models.QuoteSent, Date: models.Date(2026, time.March, 8), TotalHT: 150},
	}
	templates := []models.QuoteTemplate{{ID: "t2", Name: "Cuisine"}}

	got := TemplateStatistics(quotes, templates, march())
	require.Len(t, got, 2)
	assert.Equal(t, "Cuisine", got[0].TemplateName)
	assert.Equal(t, 2, got[0].UsageCount)
	assert.Equal(t, 100.0, got[0].AverageQuoteValue)
	assert.Equal(t, models.Date(2026, time.March, 8), got[0].LastUsed)
	assert.Equal(t, "Template t1", got[1].TemplateName)
	assert.Equal(t, 100.0, got[1].AcceptanceRate)
}
