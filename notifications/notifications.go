// Package notifications decides which quotes need an expiry reminder and
// builds the notification records shown to users.
package notifications

import (
	"fmt"
	"sort"
	"time"

	"devis-backend/calculation"
	"devis-backend/models"
)

// DefaultWarningDays is the expiry window used when settings give none.
const DefaultWarningDays = 7

// DefaultRecentCount is how many notifications Recent returns by default.
const DefaultRecentCount = 10

// Issuer stamps new notifications with an id and a timestamp.
type Issuer struct {
	IDs models.IDProvider
	Now time.Time
}

// resolved quotes never expire.
func resolved(s models.QuoteStatus) bool {
	return s == models.QuoteAccepted || s == models.QuoteInvoiced || s == models.QuoteLost
}

// DaysUntil counts calendar days from the day of now to the day of t.
// It is negative once t has passed.
func DaysUntil(t, now time.Time) int {
	return int(models.Day(t).Sub(models.Day(now)).Hours() / 24)
}

// CheckExpiring emits one expiry warning per open quote expiring within
// warningDays, or already expired. It keeps no memory of earlier checks:
// callers deduplicate on Notification.DedupKey.
func (is Issuer) CheckExpiring(quotes []models.Quote, warningDays int) []models.Notification {
	out := []models.Notification{}
	for _, q := range quotes {
		if resolved(q.Status) || q.ExpiryDate.IsZero() {
			continue
		}
		days := DaysUntil(q.ExpiryDate, is.Now)
		if days < 0 || days <= warningDays {
			out = append(out, is.ExpiryWarning(q, days))
		}
	}
	return out
}

// ExpiryWarning builds the reminder for a quote expiring in days (negative
// when already expired).
func (is Issuer) ExpiryWarning(q models.Quote, days int) models.Notification {
	n := is.forQuote(models.NotificationExpiryWarning, q.ID)
	n.DaysUntilExpiry = &days
	if days < 0 {
		n.Expired = true
		n.Title = "Devis expiré"
		n.Message = fmt.Sprintf("Le devis %s pour %s a expiré il y a %d jour(s).", q.Number, q.ClientName, -days)
		return n
	}
	n.Title = "Devis bientôt expiré"
	n.Message = fmt.Sprintf("Le devis %s pour %s expire dans %d jour(s).", q.Number, q.ClientName, days)
	return n
}

func (is Issuer) ApprovalRequest(q models.Quote, submittedBy string) models.Notification {
	n := is.forQuote(models.NotificationApprovalRequest, q.ID)
	n.Title = "Demande d'approbation"
	n.Message = fmt.Sprintf("%s a soumis le devis %s pour approbation.", submittedBy, q.Number)
	return n
}

func (is Issuer) StatusChange(q models.Quote, newStatus models.QuoteStatus) models.Notification {
	n := is.forQuote(models.NotificationStatusChange, q.ID)
	n.Title = "Statut modifié"
	n.Message = fmt.Sprintf("Le devis %s est maintenant \"%s\".", q.Number, newStatus.Label())
	return n
}

func (is Issuer) QuoteAccepted(q models.Quote) models.Notification {
	n := is.forQuote(models.NotificationQuoteAccepted, q.ID)
	n.Title = "Devis accepté"
	n.Message = fmt.Sprintf("Le devis %s pour %s a été accepté !", q.Number, q.ClientName)
	return n
}

func (is Issuer) QuoteRejected(q models.Quote, reason string) models.Notification {
	if reason == "" {
		reason = "Non spécifiée"
	}
	n := is.forQuote(models.NotificationQuoteRejected, q.ID)
	n.Title = "Devis rejeté"
	n.Message = fmt.Sprintf("Le devis %s a été rejeté. Raison: %s", q.Number, reason)
	return n
}

// ForStatus returns the notifications a status change triggers.
func (is Issuer) ForStatus(q models.Quote, user, notes string) []models.Notification {
	switch q.Status {
	case models.QuotePending:
		return []models.Notification{is.ApprovalRequest(q, user)}
	case models.QuoteAccepted:
		return []models.Notification{is.QuoteAccepted(q)}
	case models.QuoteRejected:
		return []models.Notification{is.QuoteRejected(q, notes)}
	default:
		return []models.Notification{is.StatusChange(q, q.Status)}
	}
}

func (is Issuer) PaymentDue(inv models.Invoice) models.Notification {
	n := is.base(models.NotificationPaymentDue)
	n.InvoiceID = inv.ID
	n.Title = "Paiement dû"
	n.Message = fmt.Sprintf("La facture %s (%s) arrive à échéance le %s.",
		inv.Number, calculation.FormatCurrency(inv.AmountDue, inv.Currency), inv.DueDate.Format("02/01/2006"))
	n.ActionURL = "/invoices/" + inv.ID
	return n
}

func (is Issuer) System(title, message string) models.Notification {
	if title == "" {
		title = "Notification système"
	}
	n := is.base(models.NotificationSystem)
	n.Title = title
	n.Message = message
	return n
}

func (is Issuer) base(t models.NotificationType) models.Notification {
	return models.Notification{
		ID:        is.IDs.NewID(),
		Type:      t,
		Timestamp: is.Now,
	}
}

func (is Issuer) forQuote(t models.NotificationType, quoteID string) models.Notification {
	n := is.base(t)
	n.QuoteID = quoteID
	n.ActionURL = "/quotes/" + quoteID
	return n
}

// MarkAsRead returns a copy of the list with one notification read.
func MarkAsRead(list []models.Notification, id string) []models.Notification {
	out := append([]models.Notification(nil), list...)
	for i := range out {
		if out[i].ID == id {
			out[i].Read = true
		}
	}
	return out
}

func MarkAllAsRead(list []models.Notification) []models.Notification {
	out := append([]models.Notification(nil), list...)
	for i := range out {
		out[i].Read = true
	}
	return out
}

func Delete(list []models.Notification, id string) []models.Notification {
	out := make([]models.Notification, 0, len(list))
	for _, n := range list {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func UnreadCount(list []models.Notification) int {
	var count int
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count
}

func FilterByType(list []models.Notification, t models.NotificationType) []models.Notification {
	out := []models.Notification{}
	for _, n := range list {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Recent returns the count newest notifications, newest first.
func Recent(list []models.Notification, count int) []models.Notification {
	if count <= 0 {
		count = DefaultRecentCount
	}
	out := append([]models.Notification(nil), list...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out[:min(count, len(out))]
}

// MergeNew appends the fresh notifications whose dedup key is not already
// present, and returns the merged list with what was actually added.
func MergeNew(existing, fresh []models.Notification) (merged, added []models.Notification) {
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n.DedupKey()] = true
	}
	merged = append([]models.Notification(nil), existing...)
	added = []models.Notification{}
	for _, n := range fresh {
		key := n.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, n)
		added = append(added, n)
	}
	return merged, added
}
