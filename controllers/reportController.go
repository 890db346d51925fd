package controllers

import (
	"strconv"
	"time"

	"devis-backend/database"
	"devis-backend/models"
	"devis-backend/reports"
	"devis-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ReportQuery is the parsed form of the report query string.
type ReportQuery struct {
	Period      reports.Period
	Start       *time.Time
	End         *time.Time
	Granularity reports.Period
	Filters     reports.Filters
}

func parseReportQuery(c *fiber.Ctx) (ReportQuery, error) {
	q := ReportQuery{
		Period:      reports.Period(c.Query("period", string(reports.PeriodMonth))),
		Granularity: reports.Period(c.Query("granularity", string(reports.PeriodMonth))),
	}
	var err error
	if v := c.Query("start"); v != "" {
		if q.Start, err = parseOptionalDate(&v); err != nil {
			return q, err
		}
	}
	if v := c.Query("end"); v != "" {
		if q.End, err = parseOptionalDate(&v); err != nil {
			return q, err
		}
	}

	q.Filters.ClientIDs = utils.SplitList(c.Query("client_ids"))
	q.Filters.TemplateIDs = utils.SplitList(c.Query("template_ids"))
	for _, s := range utils.SplitList(c.Query("statuses")) {
		q.Filters.Statuses = append(q.Filters.Statuses, models.QuoteStatus(s))
	}
	q.Filters.ClientType = models.ClientType(c.Query("client_type"))
	if v := c.Query("min_value"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, "invalid min_value")
		}
		q.Filters.MinValue = &f
	}
	if v := c.Query("max_value"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, "invalid max_value")
		}
		q.Filters.MaxValue = &f
	}
	return q, nil
}

// BuildReport loads the tenant data and computes the report for q.
func BuildReport(store *database.Store, q ReportQuery, now time.Time) (reports.Report, error) {
	r, err := reports.NewDateRange(q.Period, q.Start, q.End, now)
	if err != nil {
		return reports.Report{}, err
	}
	quotes, err := store.Quotes("")
	if err != nil {
		return reports.Report{}, err
	}
	clients, err := store.Clients()
	if err != nil {
		return reports.Report{}, err
	}
	templates, err := store.Templates()
	if err != nil {
		return reports.Report{}, err
	}
	return reports.ComprehensiveReport(reports.Input{
		Quotes:      q.Filters.Apply(quotes, clients),
		Clients:     clients,
		Templates:   templates,
		Range:       r,
		Granularity: q.Granularity,
		Now:         now,
	}), nil
}

// GET /api/reports?period=&start=&end=&granularity=
func GetReport(c *fiber.Ctx) error {
	q, err := parseReportQuery(c)
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	report, err := BuildReport(store, q, clock())
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// GET /api/reports/forecast?periods=
func GetForecast(c *fiber.Ctx) error {
	periods := utils.ParseIntDefault(c.Query("periods"), reports.DefaultForecastPeriods)
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	quotes, err := store.Quotes("")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"forecasts": reports.Forecast(quotes, periods),
		"growth":    reports.Growth(quotes, clock()),
	})
}
