package controllers

import (
	"fmt"
	"strings"

	"devis-backend/calculation"
	"devis-backend/database"
	"devis-backend/middlewares"
	"devis-backend/models"
	"devis-backend/notifications"
	"devis-backend/quoting"
	"devis-backend/versions"

	"github.com/gofiber/fiber/v2"
)

type QuoteCreateDTO struct {
	ClientID string `json:"client_id"`
	Title    string `json:"title" validate:"max=200"`
	SiteName string `json:"site_name" validate:"max=200"`
}

// QuoteUpdateDTO carries the editable fields; nil fields are left unchanged.
type QuoteUpdateDTO struct {
	Title        *string                `json:"title" validate:"omitempty,max=200"`
	ClientID     *string                `json:"client_id"`
	SiteName     *string                `json:"site_name" validate:"omitempty,max=200"`
	Date         *string                `json:"date"`
	ExpiryDate   *string                `json:"expiry_date"`
	VisitDate    *string                `json:"visit_date"`
	StartDate    *string                `json:"start_date"`
	Duration     *string                `json:"duration"`
	Sections     *[]models.QuoteSection `json:"sections" validate:"omitempty,dive"`
	PaymentTerms *string                `json:"payment_terms"`
	Discount     *float64               `json:"discount"`
	DiscountType *string                `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	TaxRate      *float64               `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	Margin       *float64               `json:"margin" validate:"omitempty,gte=0,lt=100"`
	Tags         *[]string              `json:"tags"`
}

type StatusDTO struct {
	Status models.QuoteStatus `json:"status" validate:"required,oneof=draft pending finalized sent accepted rejected invoiced lost"`
	Notes  string             `json:"notes"`
}

type SectionDTO struct {
	Title string `json:"title" validate:"max=200"`
}

// nextQuoteNumber numbers quotes per year: DEV26001, DEV26002, ...
func nextQuoteNumber(store *database.Store, env quoting.Env) (string, error) {
	prefix := quoting.QuoteNumber(env.Now, 0)[:5]
	seq, err := store.NextSequence(&models.Quote{}, prefix)
	if err != nil {
		return "", err
	}
	return quoting.QuoteNumber(env.Now, seq), nil
}

// POST /api/quotes
func CreateQuote(c *fiber.Ctx) error {
	var in QuoteCreateDTO
	if len(c.Body()) > 0 {
		if err := middlewares.BindAndValidate(c, &in); err != nil {
			return err
		}
	}

	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	env, err := tenantEnv(store)
	if err != nil {
		return err
	}
	number, err := nextQuoteNumber(store, env)
	if err != nil {
		return err
	}

	q := quoting.NewQuote(env, number)
	q.CreatedBy = currentUser(c)
	if t := strings.TrimSpace(in.Title); t != "" {
		q.Title = t
	}
	q.SiteName = strings.TrimSpace(in.SiteName)
	if in.ClientID != "" {
		client, err := store.Client(in.ClientID)
		if err != nil {
			return err
		}
		q = quoting.AssignClient(q, client)
	}

	if err := store.SaveQuote(&q); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// GET /api/quotes?status=
func GetQuotes(c *fiber.Ctx) error {
	status := models.QuoteStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "unknown status "+string(status))
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	quotes, err := store.Quotes(status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"quotes": quotes})
}

// GET /api/quotes/:id
func GetQuote(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	q, err := store.Quote(id)
	if err != nil {
		return err
	}
	return c.JSON(q)
}

// PUT /api/quotes/:id applies the edit, recomputes totals and records a
// version when the change is significant.
func UpdateQuote(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in QuoteUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	env, err := tenantEnv(store)
	if err != nil {
		return err
	}
	older, err := store.Quote(id)
	if err != nil {
		return err
	}

	newer, err := applyQuoteUpdate(store, env, older, in)
	if err != nil {
		return err
	}
	newer = calculation.UpdateQuoteTotals(newer)
	now := env.Now
	newer.LastModifiedBy = currentUser(c)
	newer.LastModifiedAt = &now

	if err := saveWithVersion(store, env, older, &newer, currentUser(c)); err != nil {
		return err
	}
	return c.JSON(newer)
}

func applyQuoteUpdate(store *database.Store, env quoting.Env, q models.Quote, in QuoteUpdateDTO) (models.Quote, error) {
	out := q.Clone()
	if in.Title != nil {
		out.Title = strings.TrimSpace(*in.Title)
	}
	if in.SiteName != nil {
		out.SiteName = strings.TrimSpace(*in.SiteName)
	}
	if in.ClientID != nil && *in.ClientID != out.ClientID {
		if *in.ClientID == "" {
			out.ClientID, out.ClientName = "", ""
		} else {
			client, err := store.Client(*in.ClientID)
			if err != nil {
				return q, err
			}
			out = quoting.AssignClient(out, client)
		}
	}
	if in.Date != nil {
		d, err := parseDate(*in.Date)
		if err != nil {
			return q, err
		}
		out.Date = d
	}
	if in.ExpiryDate != nil {
		d, err := parseDate(*in.ExpiryDate)
		if err != nil {
			return q, err
		}
		out.ExpiryDate = d
	}
	if in.VisitDate != nil {
		d, err := parseOptionalDate(in.VisitDate)
		if err != nil {
			return q, err
		}
		out.VisitDate = d
	}
	if in.StartDate != nil {
		d, err := parseOptionalDate(in.StartDate)
		if err != nil {
			return q, err
		}
		out.StartDate = d
	}
	if in.Duration != nil {
		out.Duration = strings.TrimSpace(*in.Duration)
	}
	if in.Sections != nil {
		out.Sections = quoting.EnsureIDs(*in.Sections, env.IDs)
	}
	if in.PaymentTerms != nil {
		out.PaymentTerms = *in.PaymentTerms
	}
	if in.DiscountType != nil {
		out.DiscountType = models.DiscountKind(*in.DiscountType)
	}
	if in.Discount != nil {
		out.Discount = *in.Discount
	}
	if in.TaxRate != nil {
		rate := *in.TaxRate
		out.TaxRate = &rate
	}
	if in.Margin != nil {
		out.Margin = *in.Margin
	}
	if in.Tags != nil {
		out.Tags = append([]string{}, (*in.Tags)...)
	}

	if in.Discount != nil || in.DiscountType != nil || in.Sections != nil {
		subtotal := calculation.QuoteSubtotal(out.Sections)
		if err := calculation.ValidateDiscount(out.Discount, out.EffectiveDiscountType(), subtotal).Err(); err != nil {
			return q, err
		}
	}
	return out, nil
}

// saveWithVersion persists newer and snapshots it when AutoVersion finds a
// significant change, then trims the history.
func saveWithVersion(store *database.Store, env quoting.Env, older models.Quote, newer *models.Quote, author string) error {
	rec := versions.Recorder{IDs: env.IDs, Now: env.Now}
	if v, ok := rec.AutoVersion(older, *newer, author); ok {
		if err := store.CreateVersion(&v); err != nil {
			return err
		}
		newer.CurrentVersion = v.VersionNumber
		all, err := store.Versions(newer.ID)
		if err != nil {
			return err
		}
		_, dropped := versions.Cleanup(all, newer.ID, versions.DefaultKeep)
		if err := store.DeleteVersions(dropped); err != nil {
			return err
		}
	}
	return store.SaveQuote(newer)
}

// DELETE /api/quotes/:id
func DeleteQuote(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.DeleteQuote(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/quotes/:id/duplicate
func DuplicateQuote(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	env, err := tenantEnv(store)
	if err != nil {
		return err
	}
	q, err := store.Quote(id)
	if err != nil {
		return err
	}
	dup := quoting.DuplicateQuote(env, q)
	dup.CreatedBy = currentUser(c)
	if err := store.SaveQuote(&dup); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dup)
}

// POST /api/quotes/:id/sections
func AddSection(c *fiber.Ctx) error {
	var in SectionDTO
	if len(c.Body()) > 0 {
		if err := middlewares.BindAndValidate(c, &in); err != nil {
			return err
		}
	}
	return editSections(c, func(env quoting.Env, q models.Quote) (models.Quote, error) {
		return quoting.AddSection(env, q, in.Title), nil
	})
}

// POST /api/quotes/:id/sections/:sectionId/duplicate
func DuplicateSection(c *fiber.Ctx) error {
	sectionID, err := pathID(c, "sectionId")
	if err != nil {
		return err
	}
	return editSections(c, func(env quoting.Env, q models.Quote) (models.Quote, error) {
		return quoting.DuplicateSection(env, q, sectionID)
	})
}

// DELETE /api/quotes/:id/sections/:sectionId?force=true
// A section with content is kept with 409 unless force is set.
func RemoveSection(c *fiber.Ctx) error {
	sectionID, err := pathID(c, "sectionId")
	if err != nil {
		return err
	}
	force := c.QueryBool("force", false)
	return editSections(c, func(_ quoting.Env, q models.Quote) (models.Quote, error) {
		return quoting.RemoveSection(q, sectionID, force)
	})
}

func editSections(c *fiber.Ctx, edit func(quoting.Env, models.Quote) (models.Quote, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	env, err := tenantEnv(store)
	if err != nil {
		return err
	}
	older, err := store.Quote(id)
	if err != nil {
		return err
	}
	newer, err := edit(env, older)
	if err != nil {
		return err
	}
	now := env.Now
	newer.LastModifiedBy = currentUser(c)
	newer.LastModifiedAt = &now
	if err := saveWithVersion(store, env, older, &newer, currentUser(c)); err != nil {
		return err
	}
	return c.JSON(newer)
}

// PUT /api/quotes/:id/status
func ChangeQuoteStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in StatusDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	env, err := tenantEnv(store)
	if err != nil {
		return err
	}
	older, err := store.Quote(id)
	if err != nil {
		return err
	}
	if older.Status == in.Status {
		return c.JSON(older)
	}

	user := currentUser(c)
	newer := quoting.ChangeStatus(env, older, in.Status, user, strings.TrimSpace(in.Notes))
	if err := saveWithVersion(store, env, older, &newer, user); err != nil {
		return err
	}

	if env.Settings.Notifications.Enabled {
		is := notifications.Issuer{IDs: env.IDs, Now: env.Now}
		if err := store.CreateNotifications(is.ForStatus(newer, user, in.Notes)); err != nil {
			return err
		}
	}
	return c.JSON(newer)
}

// GET /api/quotes/:id/totals
func GetQuoteTotals(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	q, err := store.Quote(id)
	if err != nil {
		return err
	}
	return c.JSON(totalsResponse(q))
}

func totalsResponse(q models.Quote) fiber.Map {
	t := calculation.QuoteTotals(q)
	return fiber.Map{
		"totals": t,
		"formatted": fiber.Map{
			"subtotal":        calculation.FormatCurrency(t.Subtotal, q.Currency),
			"discount_amount": calculation.FormatCurrency(t.DiscountAmount, q.Currency),
			"total_ht":        calculation.FormatCurrency(t.TotalHT, q.Currency),
			"tax_amount":      calculation.FormatCurrency(t.TaxAmount, q.Currency),
			"total_ttc":       calculation.FormatCurrency(t.TotalTTC, q.Currency),
		},
		"tax_label": fmt.Sprintf("TVA %g%%", t.TaxRate),
	}
}
