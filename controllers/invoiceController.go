package controllers

import (
	"strings"

	"devis-backend/calculation"
	"devis-backend/database"
	"devis-backend/middlewares"
	"devis-backend/models"
	"devis-backend/quoting"

	"github.com/gofiber/fiber/v2"
)

type InvoiceCreateDTO struct {
	ClientID string `json:"client_id"`
	SiteName string `json:"site_name"`
}

// InvoiceFromQuoteDTO selects the invoice kind. Percentage applies to deposits.
type InvoiceFromQuoteDTO struct {
	Type       models.InvoiceKind `json:"type" validate:"omitempty,oneof=standard deposit progress final"`
	Percentage float64            `json:"percentage" validate:"gte=0,lte=100"`
}

type InvoiceUpdateDTO struct {
	Status     *string `json:"status" validate:"omitempty,oneof=draft sent cancelled"`
	IssueDate  *string `json:"issue_date"`
	DueDate    *string `json:"due_date"`
	ClientName *string `json:"client_name"`
	SiteName   *string `json:"site_name"`
	Notes      *string `json:"notes"`
}

type PaymentDTO struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Date      string  `json:"date"`
	Method    string  `json:"method" validate:"omitempty,oneof=transfer check cash card other"`
	Reference string  `json:"reference" validate:"max=128"`
	Notes     string  `json:"notes"`
}

func nextInvoiceNumber(store *database.Store, env quoting.Env) (string, error) {
	prefix := quoting.InvoiceNumber(env.Now, 0)[:5]
	seq, err := store.NextSequence(&models.Invoice{}, prefix)
	if err != nil {
		return "", err
	}
	return quoting.InvoiceNumber(env.Now, seq), nil
}

// POST /api/invoices creates a blank draft invoice.
func CreateInvoice(c *fiber.Ctx) error {
	var in InvoiceCreateDTO
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
	number, err := nextInvoiceNumber(store, env)
	if err != nil {
		return err
	}

	inv := quoting.NewInvoice(env, number)
	inv.SiteName = strings.TrimSpace(in.SiteName)
	if in.ClientID != "" {
		client, err := store.Client(in.ClientID)
		if err != nil {
			return err
		}
		inv.ClientID, inv.ClientName = client.ID, client.Name
	}
	if err := store.SaveInvoice(&inv); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// POST /api/quotes/:id/invoice bills a quote. Standard and final invoices
// mark it invoiced; deposit and progress invoices leave its status alone.
func CreateInvoiceFromQuote(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in InvoiceFromQuoteDTO
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
	q, err := store.Quote(id)
	if err != nil {
		return err
	}
	number, err := nextInvoiceNumber(store, env)
	if err != nil {
		return err
	}

	inv, err := quoting.BillQuote(env, q, number, in.Type, in.Percentage)
	if err != nil {
		return err
	}
	if err := store.SaveInvoice(&inv); err != nil {
		return err
	}

	if quoting.ClosesQuote(inv.Kind) {
		invoiced := quoting.MarkInvoiced(q, inv)
		if err := saveWithVersion(store, env, q, &invoiced, currentUser(c)); err != nil {
			return err
		}
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// GET /api/invoices?status=
func GetInvoices(c *fiber.Ctx) error {
	status := models.InvoiceStatus(c.Query("status"))
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	invoices, err := store.Invoices(status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"invoices": invoices})
}

// GET /api/invoices/:id
func GetInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	inv, err := store.Invoice(id)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// PUT /api/invoices/:id edits header fields. Amounts follow the payments.
func UpdateInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in InvoiceUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	inv, err := store.Invoice(id)
	if err != nil {
		return err
	}

	out := inv.Clone()
	if in.Status != nil {
		out.Status = models.InvoiceStatus(*in.Status)
	}
	if in.IssueDate != nil {
		d, err := parseDate(*in.IssueDate)
		if err != nil {
			return err
		}
		out.IssueDate = d
	}
	if in.DueDate != nil {
		d, err := parseDate(*in.DueDate)
		if err != nil {
			return err
		}
		out.DueDate = d
	}
	if in.ClientName != nil {
		out.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.SiteName != nil {
		out.SiteName = strings.TrimSpace(*in.SiteName)
	}
	if in.Notes != nil {
		out.Notes = *in.Notes
	}
	if out.Status != models.InvoiceCancelled {
		out = calculation.ApplyPayments(out)
	}

	if err := store.SaveInvoice(&out); err != nil {
		return err
	}
	return c.JSON(out)
}

// DELETE /api/invoices/:id
func DeleteInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.DeleteInvoice(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/invoices/:id/payments
func AddPayment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in PaymentDTO
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
	inv, err := store.Invoice(id)
	if err != nil {
		return err
	}

	p := models.Payment{
		Amount:    calculation.Round(in.Amount),
		Method:    models.PaymentMethod(in.Method),
		Reference: strings.TrimSpace(in.Reference),
		Notes:     in.Notes,
	}
	if in.Date != "" {
		if p.Date, err = parseDate(in.Date); err != nil {
			return err
		}
	}
	out, err := quoting.AddPayment(env, inv, p)
	if err != nil {
		return err
	}
	if err := store.SaveInvoice(&out); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DELETE /api/invoices/:id/payments/:paymentId
func RemovePayment(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	paymentID, err := pathID(c, "paymentId")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	inv, err := store.Invoice(id)
	if err != nil {
		return err
	}
	out, err := quoting.RemovePayment(inv, paymentID)
	if err != nil {
		return err
	}
	if err := store.SaveInvoice(&out); err != nil {
		return err
	}
	return c.JSON(out)
}
