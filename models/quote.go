package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "draft"
	QuotePending   QuoteStatus = "pending"
	QuoteFinalized QuoteStatus = "finalized"
	QuoteSent      QuoteStatus = "sent"
	QuoteAccepted  QuoteStatus = "accepted"
	QuoteRejected  QuoteStatus = "rejected"
	QuoteInvoiced  QuoteStatus = "invoiced"
	QuoteLost      QuoteStatus = "lost"
)

// QuoteStatuses lists every status in workflow order.
var QuoteStatuses = []QuoteStatus{
	QuoteDraft, QuotePending, QuoteFinalized, QuoteSent,
	QuoteAccepted, QuoteRejected, QuoteInvoiced, QuoteLost,
}

func (s QuoteStatus) Valid() bool {
	for _, v := range QuoteStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Won reports whether the quote counts as business won.
func (s QuoteStatus) Won() bool {
	return s == QuoteAccepted || s == QuoteInvoiced || s == QuoteFinalized
}

// Lost reports whether the quote ended negatively.
func (s QuoteStatus) Lost() bool {
	return s == QuoteRejected || s == QuoteLost
}

var statusLabels = map[QuoteStatus]string{
	QuoteDraft:     "Brouillon",
	QuotePending:   "En attente",
	QuoteFinalized: "Finalisé",
	QuoteSent:      "Envoyé",
	QuoteAccepted:  "Accepté",
	QuoteRejected:  "Rejeté",
	QuoteInvoiced:  "Facturé",
	QuoteLost:      "Perdu",
}

// Label is the French display name used in generated messages.
func (s QuoteStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type ItemKind string

const (
	KindItem       ItemKind = "item"
	KindSubheading ItemKind = "subheading"
	KindText       ItemKind = "text"
	KindSpacer     ItemKind = "spacer"
	KindPageBreak  ItemKind = "pagebreak"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Common unit codes used on line items. Units stay free-form.
const (
	UnitSquareMeter = "m²"
	UnitLinearMeter = "ml"
	UnitPiece       = "ens"
	UnitHour        = "h"
	UnitKilogram    = "kg"
	UnitLitre       = "L"
	UnitLumpSum     = "forfait"
)

// DefaultTaxRate is the VAT percentage applied when a quote has none.
const DefaultTaxRate = 20.0

// QuoteItem is one row of a section. Only KindItem rows carry money.
type QuoteItem struct {
	ID          string   `json:"id"`
	Kind        ItemKind `json:"type" validate:"required,oneof=item subheading text spacer pagebreak"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity" validate:"gte=0"`
	Unit        string   `json:"unit" validate:"max=16"`
	UnitPrice   float64  `json:"unit_price"`
	VATRate     float64  `json:"vat_rate" validate:"gte=0,lte=100"`
	Total       float64  `json:"total"`
}

type QuoteSection struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Items []QuoteItem `json:"items" validate:"dive"`
}

// SectionList is the ordered section list, stored as a JSON column.
type SectionList = datatypes.JSONSlice[QuoteSection]

type WorkflowAction string

const (
	ActionCreated   WorkflowAction = "created"
	ActionSubmitted WorkflowAction = "submitted"
	ActionApproved  WorkflowAction = "approved"
	ActionRejected  WorkflowAction = "rejected"
	ActionModified  WorkflowAction = "modified"
)

type WorkflowHistoryEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    WorkflowAction `json:"action"`
	User      string         `json:"user"`
	Notes     string         `json:"notes,omitempty"`
}

// WorkflowState tracks the approval of a quote.
type WorkflowState struct {
	Status          QuoteStatus            `json:"status"`
	SubmittedBy     string                 `json:"submitted_by,omitempty"`
	SubmittedAt     *time.Time             `json:"submitted_at,omitempty"`
	Approver        string                 `json:"approver,omitempty"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	History         []WorkflowHistoryEntry `json:"history"`
}

// Quote is the root aggregate. TotalHT and TotalTTC are cached values and
// must be recomputed after any change to sections, discount or tax rate.
type Quote struct {
	ID         string      `json:"id" gorm:"primaryKey"`
	Number     string      `json:"number" gorm:"index"`
	ClientID   string      `json:"client_id" gorm:"index"`
	ClientName string      `json:"client_name"`
	SiteName   string      `json:"site_name"`
	Title      string      `json:"title"`
	Status     QuoteStatus `json:"status" gorm:"type:VARCHAR(20);index"`

	Date       time.Time  `json:"date" gorm:"type:date"`
	ExpiryDate time.Time  `json:"expiry_date" gorm:"type:date"`
	VisitDate  *time.Time `json:"visit_date,omitempty" gorm:"type:date"`
	StartDate  *time.Time `json:"start_date,omitempty" gorm:"type:date"`
	Duration   string     `json:"duration,omitempty"`

	Sections     SectionList `json:"sections"`
	Currency     string      `json:"currency" gorm:"size:8"`
	TotalHT      float64     `json:"total_ht" gorm:"type:numeric(12,2)"`
	TotalTTC     float64     `json:"total_ttc" gorm:"type:numeric(12,2)"`
	PaymentTerms string      `json:"payment_terms"`

	Discount     float64      `json:"discount,omitempty"`
	DiscountType DiscountKind `json:"discount_type,omitempty" gorm:"type:VARCHAR(12)"`
	TaxRate      *float64     `json:"tax_rate,omitempty"`
	Margin       float64      `json:"margin,omitempty"`

	TemplateID       string         `json:"template_id,omitempty" gorm:"index"`
	CurrentVersion   int            `json:"current_version,omitempty"`
	ApprovalWorkflow *WorkflowState `json:"approval_workflow,omitempty" gorm:"serializer:json;type:text"`
	InvoiceID        string         `json:"invoice_id,omitempty"`
	Tags             []string       `json:"tags,omitempty" gorm:"serializer:json;type:text"`
	CreatedBy        string         `json:"created_by,omitempty"`
	LastModifiedBy   string         `json:"last_modified_by,omitempty"`
	LastModifiedAt   *time.Time     `json:"last_modified_at,omitempty"`
}

// EffectiveTaxRate returns the quote's VAT percentage, DefaultTaxRate when unset.
func (q Quote) EffectiveTaxRate() float64 {
	if q.TaxRate == nil {
		return DefaultTaxRate
	}
	return *q.TaxRate
}

// EffectiveDiscountType defaults an unset discount kind to percentage.
func (q Quote) EffectiveDiscountType() DiscountKind {
	if q.DiscountType == "" {
		return DiscountPercentage
	}
	return q.DiscountType
}

// HasContent reports whether the section holds anything worth confirming
// before deletion: a non-blank description or a positive total.
func (s QuoteSection) HasContent() bool {
	for _, it := range s.Items {
		if it.Total > 0 || strings.TrimSpace(it.Description) != "" {
			return true
		}
	}
	return false
}
