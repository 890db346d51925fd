package models

import "time"

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePartial   InvoiceStatus = "partial"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

type InvoiceKind string

const (
	InvoiceStandard InvoiceKind = "standard"
	InvoiceDeposit  InvoiceKind = "deposit"
	InvoiceProgress InvoiceKind = "progress"
	InvoiceFinal    InvoiceKind = "final"
)

type PaymentMethod string

const (
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCheck    PaymentMethod = "check"
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentOther    PaymentMethod = "other"
)

// Invoice is derived from a quote or created from scratch. AmountPaid,
// AmountDue and Status follow the payment list and are recomputed by
// calculation.ApplyPayments.
type Invoice struct {
	ID         string        `json:"id" gorm:"primaryKey"`
	Number     string        `json:"number" gorm:"index"`
	QuoteID    string        `json:"quote_id,omitempty" gorm:"index"`
	ClientID   string        `json:"client_id" gorm:"index"`
	ClientName string        `json:"client_name"`
	SiteName   string        `json:"site_name"`
	IssueDate  time.Time     `json:"issue_date" gorm:"type:date"`
	DueDate    time.Time     `json:"due_date" gorm:"type:date"`
	Status     InvoiceStatus `json:"status" gorm:"type:VARCHAR(12);index"`
	Kind       InvoiceKind   `json:"type" gorm:"type:VARCHAR(12)"`

	Sections SectionList `json:"sections"`

	TotalHT      float64      `json:"total_ht" gorm:"type:numeric(12,2)"`
	TotalTTC     float64      `json:"total_ttc" gorm:"type:numeric(12,2)"`
	Discount     float64      `json:"discount,omitempty"`
	DiscountType DiscountKind `json:"discount_type,omitempty" gorm:"type:VARCHAR(12)"`

	// Payments rollup
	Payments   []Payment `json:"payments" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	AmountPaid float64   `json:"amount_paid" gorm:"type:numeric(12,2)"`
	AmountDue  float64   `json:"amount_due" gorm:"type:numeric(12,2)"`

	Notes    string `json:"notes,omitempty"`
	Currency string `json:"currency" gorm:"size:8"`
}

// Payment is linked to its invoice and survives invoice edits.
type Payment struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	InvoiceID string        `json:"-" gorm:"index:idx_payments_invoice_paid_at,priority:1"`
	Amount    float64       `json:"amount" gorm:"type:numeric(12,2)"`
	Date      time.Time     `json:"date" gorm:"type:date;index:idx_payments_invoice_paid_at,priority:2"`
	Method    PaymentMethod `json:"method" gorm:"type:VARCHAR(12)"`
	Reference string        `json:"reference"`
	Notes     string        `json:"notes,omitempty"`
}
