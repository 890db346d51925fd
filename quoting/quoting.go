// Package quoting implements the lifecycle operations of quotes, templates
// and invoices. Every function returns new values and leaves its inputs
// untouched; callers persist the results.
package quoting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"devis-backend/calculation"
	"devis-backend/models"
)

var (
	ErrSectionNotFound   = errors.New("section not found")
	ErrSectionHasContent = errors.New("section has content")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidPayment    = errors.New("payment amount must be positive")
	ErrInvalidDeposit    = errors.New("deposit percentage must be between 0 and 100")
)

// ValidityDays is how long a new quote stays open.
const ValidityDays = 30

// PaymentTermDays is the default delay before an invoice is due.
const PaymentTermDays = 30

// Env carries what lifecycle operations need from the outside world.
type Env struct {
	IDs      models.IDProvider
	Now      time.Time
	Settings models.Settings
}

func (e Env) today() time.Time { return models.Day(e.Now) }

// QuoteNumber formats a quote number from the year and a sequence, e.g. DEV26042.
func QuoteNumber(now time.Time, seq int) string {
	return fmt.Sprintf("DEV%02d%03d", now.Year()%100, seq)
}

// InvoiceNumber formats an invoice number, e.g. FAC26007.
func InvoiceNumber(now time.Time, seq int) string {
	return fmt.Sprintf("FAC%02d%03d", now.Year()%100, seq)
}

// NewQuote returns an empty draft quote dated today and valid for ValidityDays.
func NewQuote(env Env, number string) models.Quote {
	today := env.today()
	rate := env.Settings.DefaultTaxRate
	currency := env.Settings.Currency
	if currency == "" {
		currency = calculation.DefaultCurrency
	}
	return models.Quote{
		ID:           env.IDs.NewID(),
		Number:       number,
		Title:        "Nouveau chantier",
		Status:       models.QuoteDraft,
		Date:         today,
		ExpiryDate:   today.AddDate(0, 0, ValidityDays),
		Currency:     currency,
		PaymentTerms: env.Settings.DefaultPaymentTerms,
		TaxRate:      &rate,
		Sections:     models.SectionList{},
	}
}

// AssignClient copies the client reference and its current name onto the quote.
func AssignClient(q models.Quote, c models.Client) models.Quote {
	out := q.Clone()
	out.ClientID = c.ID
	out.ClientName = c.Name
	return out
}

// DuplicateQuote copies a quote as a new draft dated today. Every section
// and item gets a fresh id.
func DuplicateQuote(env Env, q models.Quote) models.Quote {
	out := q.Clone()
	out.ID = env.IDs.NewID()
	out.Number = q.Number + " (Copie)"
	out.Title = q.Title + " (Copie)"
	out.Status = models.QuoteDraft
	out.Date = env.today()
	out.Sections = models.CloneSectionsFresh(q.Sections, env.IDs)
	out.CurrentVersion = 0
	out.InvoiceID = ""
	out.ApprovalWorkflow = nil
	return out
}

// AddSection appends an empty section.
func AddSection(env Env, q models.Quote, title string) models.Quote {
	if strings.TrimSpace(title) == "" {
		title = "Nouvelle section"
	}
	out := q.Clone()
	out.Sections = append(out.Sections, models.QuoteSection{
		ID:    env.IDs.NewID(),
		Title: title,
		Items: []models.QuoteItem{},
	})
	return out
}

// DuplicateSection inserts a deep copy of the section right after it.
func DuplicateSection(env Env, q models.Quote, sectionID string) (models.Quote, error) {
	idx := sectionIndex(q.Sections, sectionID)
	if idx < 0 {
		return q, ErrSectionNotFound
	}
	dup := models.CloneSection(q.Sections[idx], env.IDs)
	dup.Title = q.Sections[idx].Title + " (Copie)"

	out := q.Clone()
	sections := make(models.SectionList, 0, len(out.Sections)+1)
	sections = append(sections, out.Sections[:idx+1]...)
	sections = append(sections, dup)
	sections = append(sections, out.Sections[idx+1:]...)
	out.Sections = sections
	return calculation.UpdateQuoteTotals(out), nil
}

// RemoveSection deletes a section. A section with content is only removed
// when force is set, mirroring the editor's confirmation.
func RemoveSection(q models.Quote, sectionID string, force bool) (models.Quote, error) {
	idx := sectionIndex(q.Sections, sectionID)
	if idx < 0 {
		return q, ErrSectionNotFound
	}
	if q.Sections[idx].HasContent() && !force {
		return q, ErrSectionHasContent
	}
	out := q.Clone()
	out.Sections = append(out.Sections[:idx], out.Sections[idx+1:]...)
	return calculation.UpdateQuoteTotals(out), nil
}

// NewItem returns a blank row of the given kind with a fresh id.
func NewItem(env Env, kind models.ItemKind) models.QuoteItem {
	it := models.QuoteItem{ID: env.IDs.NewID(), Kind: kind}
	if kind == models.KindItem {
		it.Quantity = 1
		it.Unit = models.UnitPiece
		it.VATRate = env.Settings.DefaultTaxRate
	}
	return it
}

// EnsureIDs gives an id to every section and item that lacks one, for
// sections coming from the client or the drafting assistant.
func EnsureIDs(sections []models.QuoteSection, ids models.IDProvider) models.SectionList {
	out := models.CloneSections(sections)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = ids.NewID()
		}
		for j := range out[i].Items {
			if out[i].Items[j].ID == "" {
				out[i].Items[j].ID = ids.NewID()
			}
		}
	}
	return out
}

// ChangeStatus moves the quote to a new status and records it in the
// approval workflow history.
func ChangeStatus(env Env, q models.Quote, status models.QuoteStatus, user, notes string) models.Quote {
	out := q.Clone()
	out.Status = status
	now := env.Now
	out.LastModifiedBy = user
	out.LastModifiedAt = &now

	wf := out.ApprovalWorkflow
	if wf == nil {
		wf = &models.WorkflowState{}
		out.ApprovalWorkflow = wf
	}
	wf.Status = status
	action := models.ActionModified
	switch status {
	case models.QuotePending:
		action = models.ActionSubmitted
		wf.SubmittedBy = user
		wf.SubmittedAt = &now
	case models.QuoteAccepted, models.QuoteFinalized:
		action = models.ActionApproved
		wf.Approver = user
		wf.ApprovedAt = &now
	case models.QuoteRejected:
		action = models.ActionRejected
		wf.RejectionReason = notes
	}
	wf.History = append(wf.History, models.WorkflowHistoryEntry{
		ID:        env.IDs.NewID(),
		Timestamp: now,
		Action:    action,
		User:      user,
		Notes:     notes,
	})
	return out
}

func sectionIndex(sections []models.QuoteSection, id string) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}
