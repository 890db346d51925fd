package reports

import (
	"math"
	"sort"
	"time"

	"devis-backend/models"
)

// DefaultForecastPeriods is the number of months projected when none is given.
const DefaultForecastPeriods = 3

// GrowthThreshold is the average monthly growth above which the forecast
// trend is up (and below its negative, down).
const GrowthThreshold = 0.05

type Projection struct {
	Period           string         `json:"period"`
	PredictedRevenue float64        `json:"predicted_revenue"`
	Confidence       int            `json:"confidence"`
	Trend            TrendDirection `json:"trend"`
}

// Forecast projects monthly revenue forward from the last observed month
// using the average month-over-month growth. All quotes are used, whatever
// their date. Less than two months of data or periods <= 0 gives no
// projection.
func Forecast(quotes []models.Quote, periods int) []Projection {
	if periods <= 0 {
		return []Projection{}
	}
	byMonth := make(map[string]float64)
	firstOfMonth := make(map[string]time.Time)
	for _, q := range quotes {
		key := DateKey(q.Date, PeriodMonth)
		byMonth[key] += q.TotalHT
		firstOfMonth[key] = time.Date(q.Date.Year(), q.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if len(byMonth) < 2 {
		return []Projection{}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	var totalGrowth float64
	for i := 1; i < len(months); i++ {
		prev := byMonth[months[i-1]]
		if prev > 0 {
			totalGrowth += (byMonth[months[i]] - prev) / prev
		}
	}
	avg := totalGrowth / float64(len(months)-1)

	trend := TrendStable
	if avg > GrowthThreshold {
		trend = TrendUp
	} else if avg < -GrowthThreshold {
		trend = TrendDown
	}

	lastKey := months[len(months)-1]
	last := byMonth[lastKey]
	lastMonth := firstOfMonth[lastKey]

	out := make([]Projection, 0, periods)
	for i := 1; i <= periods; i++ {
		out = append(out, Projection{
			Period:           DateKey(lastMonth.AddDate(0, i, 0), PeriodMonth),
			PredictedRevenue: last * math.Pow(1+avg, float64(i)),
			Confidence:       max(20, 90-15*i),
			Trend:            trend,
		})
	}
	return out
}

type GrowthMetrics struct {
	MonthOverMonth     float64 `json:"month_over_month"`
	QuarterOverQuarter float64 `json:"quarter_over_quarter"`
	YearOverYear       float64 `json:"year_over_year"`
	ProjectedAnnual    float64 `json:"projected_annual"`
}

// Growth compares the current month, quarter and year to date with the
// whole previous month, quarter and year. ProjectedAnnual is the revenue of
// the last twelve months.
func Growth(quotes []models.Quote, now time.Time) GrowthMetrics {
	today := models.Day(now)
	y, m := today.Year(), today.Month()

	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	quarterStart := time.Date(y, time.Month((int(m)-1)/3*3+1), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)

	revenue := func(from, to time.Time) float64 {
		return sumHT(FilterByRange(quotes, DateRange{Start: from, End: to}))
	}
	growth := func(current, previous float64) float64 {
		if previous <= 0 {
			return 0
		}
		return (current - previous) / previous * 100
	}
	dayBefore := func(t time.Time) time.Time { return t.AddDate(0, 0, -1) }

	return GrowthMetrics{
		MonthOverMonth: growth(
			revenue(monthStart, today),
			revenue(monthStart.AddDate(0, -1, 0), dayBefore(monthStart)),
		),
		QuarterOverQuarter: growth(
			revenue(quarterStart, today),
			revenue(quarterStart.AddDate(0, -3, 0), dayBefore(quarterStart)),
		),
		YearOverYear: growth(
			revenue(yearStart, today),
			revenue(yearStart.AddDate(-1, 0, 0), dayBefore(yearStart)),
		),
		ProjectedAnnual: revenue(monthStart.AddDate(-1, 0, 0), today),
	}
}

type TimeStats struct {
	Period       string  `json:"period"`
	Quotes       int     `json:"quotes"`
	Revenue      float64 `json:"revenue"`
	AverageValue float64 `json:"average_value"`
}

type PeakAnalysis struct {
	BestDay     string  `json:"best_day"`
	BestWeek    string  `json:"best_week"`
	BestMonth   string  `json:"best_month"`
	PeakRevenue float64 `json:"peak_revenue"`
	PeakQuotes  int     `json:"peak_quotes"`
}

// MonthlyStats lists revenue per month for the quotes in range, oldest first.
func MonthlyStats(quotes []models.Quote, r DateRange) []TimeStats {
	data := RevenueByPeriod(quotes, PeriodMonth, r)
	out := make([]TimeStats, 0, len(data))
	for _, d := range data {
		out = append(out, TimeStats{
			Period:       d.Period,
			Quotes:       d.Count,
			Revenue:      d.TotalHT,
			AverageValue: d.AverageValue,
		})
	}
	return out
}

// Peaks finds the day, week and month with the highest revenue in range.
// PeakRevenue and PeakQuotes describe the best month. Ties keep the
// earliest bucket.
func Peaks(quotes []models.Quote, r DateRange) PeakAnalysis {
	var p PeakAnalysis
	if day, ok := best(RevenueByPeriod(quotes, PeriodDay, r)); ok {
		p.BestDay = day.Period
	}
	if week, ok := best(RevenueByPeriod(quotes, PeriodWeek, r)); ok {
		p.BestWeek = week.Period
	}
	if month, ok := best(RevenueByPeriod(quotes, PeriodMonth, r)); ok {
		p.BestMonth = month.Period
		p.PeakRevenue = month.TotalHT
		p.PeakQuotes = month.Count
	}
	return p
}

func best(data []RevenueData) (RevenueData, bool) {
	if len(data) == 0 {
		return RevenueData{}, false
	}
	top := data[0]
	for _, d := range data[1:] {
		if d.TotalHT > top.TotalHT {
			top = d
		}
	}
	return top, true
}
