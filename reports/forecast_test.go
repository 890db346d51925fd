package reports

import (
	"testing"
	"time"

	"devis-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast_CompoundGrowth(t *testing.T) {
	quotes := []models.Quote{
		quote("a", models.QuoteSent, models.Date(2026, time.January, 10), 600),
		quote("b", models.QuoteSent, models.Date(2026, time.January, 20), 400),
		quote("c", models.QuoteSent, models.Date(2026, time.February, 3), 1100),
		quote("d", models.QuoteDraft, models.Date(2026, time.March, 30), 1210),
	}

	got := Forecast(quotes, 5)
	require.Len(t, got, 5)

	assert.Equal(t, "2026-04", got[0].Period)
	assert.InDelta(t, 1331, got[0].PredictedRevenue, 1e-6)
	assert.Equal(t, 75, got[0].Confidence)
	assert.Equal(t, TrendUp, got[0].Trend)

	assert.Equal(t, "2026-06", got[2].Period)
	assert.InDelta(t, 1610.51, got[2].PredictedRevenue, 1e-6)
	assert.Equal(t, 45, got[2].Confidence)

	assert.Equal(t, 30, got[3].Confidence)
	assert.Equal(t, 20, got[4].Confidence)
	assert.Equal(t, "2026-08", got[4].Period)
}

func TestForecast_DefaultsAndDegenerateInput(t *testing.T) {
	assert.Empty(t, Forecast(nil, 3))
	single := []models.Quote{
		quote("a", models.QuoteSent, models.Date(2026, time.January, 10), 600),
		quote("b", models.QuoteSent, models.Date(2026, time.January, 11), 600),
	}
	assert.Empty(t, Forecast(single, 3))

	// a zero month is skipped but still counts in the average
	flat := []models.Quote{
		quote("a", models.QuoteSent, models.Date(2025, time.November, 10), 0),
		quote("b", models.QuoteSent, models.Date(2025, time.December, 10), 100),
		quote("c", models.QuoteSent, models.Date(2026, time.January, 10), 100),
	}
	assert.Empty(t, Forecast(flat, 0))
	assert.Empty(t, Forecast(flat, -2))

	got := Forecast(flat, DefaultForecastPeriods)
	require.Len(t, got, DefaultForecastPeriods)
	assert.Equal(t, "2026-02", got[0].Period)
	assert.Equal(t, 100.0, got[0].PredictedRevenue)
	assert.Equal(t, TrendStable, got[0].Trend)

	down := []models.Quote{
		quote("a", models.QuoteSent, models.Date(2026, time.January, 10), 1000),
		quote("b", models.QuoteSent, models.Date(2026, time.February, 10), 500),
	}
	assert.Equal(t, TrendDown, Forecast(down, 1)[0].Trend)
}

func TestGrowth(t *testing.T) {
	now := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		quote("nov", models.QuoteSent, models.Date(2025, time.November, 20), 150),
		quote("feb", models.QuoteSent, models.Date(2026, time.February, 5), 100),
		quote("mar", models.QuoteSent, models.Date(2026, time.March, 10), 200),
		quote("future", models.QuoteSent, models.Date(2026, time.March, 20), 9999),
	}

	g := Growth(quotes, now)
	assert.InDelta(t, 100, g.MonthOverMonth, 1e-9)
	assert.InDelta(t, 100, g.QuarterOverQuarter, 1e-9)
	assert.InDelta(t, 100, g.YearOverYear, 1e-9)
	assert.Equal(t, 450.0, g.ProjectedAnnual)

	assert.Equal(t, GrowthMetrics{}, Growth(nil, now))
}

func TestPeaks(t *testing.T) {
	quotes := []models.Quote{
		quote("a", models.QuoteSent, models.Date(2026, time.March, 2), 100),
		quote("b", models.QuoteSent, models.Date(2026, time.March, 2), 150),
		quote("c", models.QuoteSent, models.Date(2026, time.March, 20), 200),
	}
	p := Peaks(quotes, march())

	assert.Equal(t, "2026-03-02", p.BestDay)
	assert.Equal(t, "2026-W10", p.BestWeek)
	assert.Equal(t, "2026-03", p.BestMonth)
	assert.Equal(t, 450.0, p.PeakRevenue)
	assert.Equal(t, 3, p.PeakQuotes)

	assert.Equal(t, PeakAnalysis{}, Peaks(nil, march()))
}

func TestComprehensiveReport(t *testing.T) {
	quotes := funnelFixture()
	for i := range quotes {
		quotes[i].ClientID = "c1"
	}
	quotes[9].ClientID = "c2"
	quotes[9].TemplateID = "t1"

	rep := ComprehensiveReport(Input{
		Quotes:    quotes,
		Clients:   []models.Client{{ID: "c1", Name: "Dupont"}, {ID: "c2", Name: "Martin"}},
		Templates: []models.QuoteTemplate{{ID: "t1", Name: "Toiture"}},
		Range:     march(),
		Now:       time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, 5500.0, rep.Summary.TotalRevenue)
	assert.Equal(t, 10, rep.Summary.TotalQuotes)
	assert.Equal(t, "Dupont", rep.Summary.TopClient)
	assert.Equal(t, "Toiture", rep.Summary.TopTemplate)
	assert.Len(t, rep.TopClients, 2)
	assert.Len(t, rep.ClientSegments, 3)
	require.Len(t, rep.RevenueData, 1)
	assert.Equal(t, "2026-03", rep.RevenueData[0].Period)
	assert.Equal(t, 7, rep.ConversionFunnel.Sent)
	assert.Empty(t, rep.Forecasts)

	empty := ComprehensiveReport(Input{Range: march()})
	assert.Equal(t, "N/A", empty.Summary.TopClient)
	assert.Equal(t, "N/A", empty.Summary.TopTemplate)
	assert.Empty(t, empty.RevenueData)
	assert.Equal(t, QuoteMetrics{}, empty.QuoteMetrics)
}

func TestFilters_Apply(t *testing.T) {
	clients := []models.Client{
		{ID: "c1", Type: models.ClientIndividual},
		{ID: "c2", Type: models.ClientBusiness},
	}
	quotes := []models.Quote{
		{ID: "1", ClientID: "c1", Status: models.QuoteSent, TotalHT: 100},
		{ID: "2", ClientID: "c2", Status: models.QuoteAccepted, TotalHT: 500, TemplateID: "t"},
		{ID: "3", ClientID: "c2", Status: models.QuoteSent, TotalHT: 900},
	}
	minValue, maxValue := 200.0, 800.0

	assert.Len(t, Filters{}.Apply(quotes, clients), 3)
	assert.Len(t, Filters{ClientType: models.ClientBusiness}.Apply(quotes, clients), 2)
	assert.Len(t, Filters{Statuses: []models.QuoteStatus{models.QuoteSent}}.Apply(quotes, clients), 2)

	got := Filters{MinValue: &minValue, MaxValue: &maxValue}.Apply(quotes, clients)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	assert.Len(t, Filters{TemplateIDs: []string{"t"}, ClientIDs: []string{"c2"}}.Apply(quotes, clients), 1)
}
