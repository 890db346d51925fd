package calculation

import "devis-backend/models"

// AmountPaid sums the payment amounts.
func AmountPaid(payments []models.Payment) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

// ApplyPayments returns a copy of inv with AmountPaid, AmountDue and Status
// derived from its payment list. A fully covered invoice is paid, a
// partially covered one is partial, otherwise the status is left as is.
func ApplyPayments(inv models.Invoice) models.Invoice {
	out := inv.Clone()
	out.AmountPaid = AmountPaid(out.Payments)
	out.AmountDue = out.TotalTTC - out.AmountPaid
	switch {
	case out.AmountDue <= 0:
		out.Status = models.InvoicePaid
	case out.AmountPaid > 0 && out.AmountPaid < out.TotalTTC:
		out.Status = models.InvoicePartial
	}
	return out
}
