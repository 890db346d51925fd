// Package reports aggregates quotes and clients into revenue, client,
// conversion and forecast analytics over a date range.
//
// Aggregates read the stored TotalHT/TotalTTC of each quote and never
// recompute them. Every function degrades to zeroed results on empty input;
// only NewDateRange can fail.
package reports

import (
	"errors"
	"fmt"
	"time"

	"devis-backend/models"
)

// ErrInvalidRange is returned for a custom range missing a bound.
var ErrInvalidRange = errors.New("custom date range requires start and end dates")

type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodCustom  Period = "custom"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive window of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Contains reports whether the calendar date of t falls in the range.
func (r DateRange) Contains(t time.Time) bool {
	d := models.Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Duration is the length between the two bounds.
func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// NewDateRange anchors a period keyword at now. Custom ranges need both
// bounds; unknown keywords fall back to the last month.
func NewDateRange(period Period, start, end *time.Time, now time.Time) (DateRange, error) {
	today := models.Day(now)
	r := DateRange{End: today}

	switch period {
	case PeriodDay:
		r.Start = today
		r.Label = "Today"
	case PeriodWeek:
		r.Start = models.Day(now.AddDate(0, 0, -7))
		r.Label = "Last 7 Days"
	case PeriodQuarter:
		r.Start = models.Day(now.AddDate(0, -3, 0))
		r.Label = "Last Quarter"
	case PeriodYear:
		r.Start = models.Day(now.AddDate(-1, 0, 0))
		r.Label = "Last Year"
	case PeriodCustom:
		if start == nil || end == nil || start.IsZero() || end.IsZero() {
			return DateRange{}, ErrInvalidRange
		}
		r.Start = models.Day(*start)
		r.End = models.Day(*end)
		if r.End.Before(r.Start) {
			return DateRange{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange,
				r.End.Format(dateLayout), r.Start.Format(dateLayout))
		}
		r.Label = fmt.Sprintf("%s to %s", r.Start.Format(dateLayout), r.End.Format(dateLayout))
	default:
		r.Start = models.Day(now.AddDate(0, -1, 0))
		r.Label = "Last 30 Days"
	}
	return r, nil
}

// FilterByRange keeps the quotes dated within the range, in input order.
func FilterByRange(quotes []models.Quote, r DateRange) []models.Quote {
	out := make([]models.Quote, 0, len(quotes))
	for _, q := range quotes {
		if r.Contains(q.Date) {
			out = append(out, q)
		}
	}
	return out
}

// DateKey buckets a date for the given granularity: "2006-01-02",
// "2006-W7", "2006-01", "2006-Q1" or "2006".
func DateKey(t time.Time, granularity Period) string {
	switch granularity {
	case PeriodWeek:
		return fmt.Sprintf("%d-W%d", t.Year(), WeekNumber(t))
	case PeriodMonth:
		return t.Format("2006-01")
	case PeriodQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case PeriodYear:
		return fmt.Sprintf("%d", t.Year())
	default:
		return t.Format(dateLayout)
	}
}

// WeekNumber is ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7), Sunday = 0.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	past := t.YearDay() - 1
	return (past + int(jan1.Weekday()) + 1 + 6) / 7
}

func sumHT(quotes []models.Quote) float64 {
	var total float64
	for _, q := range quotes {
		total += q.TotalHT
	}
	return total
}

func sumTTC(quotes []models.Quote) float64 {
	var total float64
	for _, q := range quotes {
		total += q.TotalTTC
	}
	return total
}

func ratio(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

func isAccepted(s models.QuoteStatus) bool {
	return s == models.QuoteAccepted || s == models.QuoteInvoiced
}

func isSentOrLater(s models.QuoteStatus) bool {
	switch s {
	case models.QuoteSent, models.QuoteAccepted, models.QuoteInvoiced, models.QuoteRejected:
		return true
	}
	return false
}

// group keeps keys in first-seen order.
type group[K comparable] struct {
	keys  []K
	items map[K][]models.Quote
}

func groupBy[K comparable](quotes []models.Quote, key func(models.Quote) (K, bool)) group[K] {
	g := group[K]{items: make(map[K][]models.Quote)}
	for _, q := range quotes {
		k, ok := key(q)
		if !ok {
			continue
		}
		if _, seen := g.items[k]; !seen {
			g.keys = append(g.keys, k)
		}
		g.items[k] = append(g.items[k], q)
	}
	return g
}

func latestDate(quotes []models.Quote) time.Time {
	var latest time.Time
	for _, q := range quotes {
		if q.Date.After(latest) {
			latest = q.Date
		}
	}
	return latest
}
