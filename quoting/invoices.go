package quoting

import (
	"fmt"
	"time"

	"devis-backend/calculation"
	"devis-backend/models"
)

// NewInvoice returns an empty draft invoice issued today.
func NewInvoice(env Env, number string) models.Invoice {
	today := env.today()
	currency := env.Settings.Currency
	if currency == "" {
		currency = calculation.DefaultCurrency
	}
	return models.Invoice{
		ID:        env.IDs.NewID(),
		Number:    number,
		IssueDate: today,
		DueDate:   today.AddDate(0, 0, PaymentTermDays),
		Status:    models.InvoiceDraft,
		Kind:      models.InvoiceStandard,
		Sections:  models.SectionList{},
		Payments:  []models.Payment{},
		Currency:  currency,
	}
}

// InvoiceFromQuote copies a quote into a standard invoice for its full amount.
func InvoiceFromQuote(env Env, q models.Quote, number string) models.Invoice {
	inv := NewInvoice(env, number)
	inv.QuoteID = q.ID
	inv.ClientID = q.ClientID
	inv.ClientName = q.ClientName
	inv.SiteName = q.SiteName
	inv.Sections = models.CloneSectionsFresh(q.Sections, env.IDs)
	inv.TotalHT = q.TotalHT
	inv.TotalTTC = q.TotalTTC
	inv.Discount = q.Discount
	inv.DiscountType = q.DiscountType
	inv.AmountDue = q.TotalTTC
	if q.Currency != "" {
		inv.Currency = q.Currency
	}
	return inv
}

// DepositInvoice bills pct percent of the quote's tax-inclusive total as a
// single lump-sum line. The pre-tax amount is derived from the quote's rate.
func DepositInvoice(env Env, q models.Quote, number string, pct float64) (models.Invoice, error) {
	if pct <= 0 || pct > 100 {
		return models.Invoice{}, ErrInvalidDeposit
	}
	rate := q.EffectiveTaxRate()
	ttc := calculation.Round(q.TotalTTC * pct / 100)
	ht := calculation.Round(ttc / (1 + rate/100))

	inv := InvoiceFromQuote(env, q, number)
	inv.Kind = models.InvoiceDeposit
	inv.Discount = 0
	inv.DiscountType = ""
	inv.TotalHT = ht
	inv.TotalTTC = ttc
	inv.AmountDue = ttc
	inv.Sections = models.SectionList{{
		ID:    env.IDs.NewID(),
		Title: "Acompte",
		Items: []models.QuoteItem{{
			ID:          env.IDs.NewID(),
			Kind:        models.KindItem,
			Description: fmt.Sprintf("Acompte de %s%% sur le devis N° %s", formatPct(pct), q.Number),
			Quantity:    1,
			Unit:        models.UnitLumpSum,
			UnitPrice:   ht,
			VATRate:     rate,
			Total:       ht,
		}},
	}}
	return inv, nil
}

// MarkInvoiced links the quote to its invoice and moves it to invoiced.
// BillQuote builds the invoice of the given kind for q. Deposits bill pct
// percent; progress and final invoices carry the full quote amount.
func BillQuote(env Env, q models.Quote, number string, kind models.InvoiceKind, pct float64) (models.Invoice, error) {
	switch kind {
	case models.InvoiceDeposit:
		return DepositInvoice(env, q, number, pct)
	case models.InvoiceProgress, models.InvoiceFinal:
		inv := InvoiceFromQuote(env, q, number)
		inv.Kind = kind
		return inv, nil
	default:
		return InvoiceFromQuote(env, q, number), nil
	}
}

// ClosesQuote reports whether an invoice of this kind marks its quote invoiced.
func ClosesQuote(kind models.InvoiceKind) bool {
	return kind != models.InvoiceDeposit && kind != models.InvoiceProgress
}

func MarkInvoiced(q models.Quote, inv models.Invoice) models.Quote {
	out := q.Clone()
	out.InvoiceID = inv.ID
	out.Status = models.QuoteInvoiced
	return out
}

// AddPayment records a payment and recomputes the invoice rollup.
func AddPayment(env Env, inv models.Invoice, p models.Payment) (models.Invoice, error) {
	if p.Amount <= 0 {
		return inv, ErrInvalidPayment
	}
	if p.ID == "" {
		p.ID = env.IDs.NewID()
	}
	if p.Date.IsZero() {
		p.Date = env.today()
	} else {
		p.Date = models.Day(p.Date)
	}
	if p.Method == "" {
		p.Method = models.PaymentTransfer
	}
	p.InvoiceID = inv.ID

	out := inv.Clone()
	out.Payments = append(out.Payments, p)
	return calculation.ApplyPayments(out), nil
}

// RemovePayment drops a payment and recomputes the rollup. An invoice left
// with nothing paid goes back to draft.
func RemovePayment(inv models.Invoice, paymentID string) (models.Invoice, error) {
	idx := -1
	for i, p := range inv.Payments {
		if p.ID == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return inv, ErrPaymentNotFound
	}
	out := inv.Clone()
	out.Payments = append(out.Payments[:idx], out.Payments[idx+1:]...)
	out = calculation.ApplyPayments(out)
	if out.AmountPaid <= 0 && (out.Status == models.InvoicePartial || out.Status == models.InvoicePaid) {
		out.Status = models.InvoiceDraft
	}
	return out, nil
}

// MarkOverdue flags unpaid invoices whose due date is before today.
func MarkOverdue(inv models.Invoice, now time.Time) models.Invoice {
	if inv.Status != models.InvoiceSent && inv.Status != models.InvoicePartial {
		return inv
	}
	if !inv.DueDate.Before(models.Day(now)) || inv.AmountDue <= 0 {
		return inv
	}
	out := inv.Clone()
	out.Status = models.InvoiceOverdue
	return out
}

func formatPct(pct float64) string {
	if pct == float64(int64(pct)) {
		return fmt.Sprintf("%d", int64(pct))
	}
	return fmt.Sprintf("%g", pct)
}
