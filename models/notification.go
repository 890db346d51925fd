package models

import "time"

type NotificationType string

const (
	NotificationExpiryWarning   NotificationType = "expiry-warning"
	NotificationApprovalRequest NotificationType = "approval-request"
	NotificationStatusChange    NotificationType = "status-change"
	NotificationSystem          NotificationType = "system"
	NotificationPaymentDue      NotificationType = "payment-due"
	NotificationQuoteAccepted   NotificationType = "quote-accepted"
	NotificationQuoteRejected   NotificationType = "quote-rejected"
)

type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	Type      NotificationType `json:"type" gorm:"type:VARCHAR(24);index"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	QuoteID   string           `json:"quote_id,omitempty" gorm:"index"`
	InvoiceID string           `json:"invoice_id,omitempty"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
	ActionURL string           `json:"action_url,omitempty"`

	// Expiry warnings only.
	Expired         bool `json:"expired,omitempty"`
	DaysUntilExpiry *int `json:"days_until_expiry,omitempty"`
}

// DedupKey identifies a notification for caller-side deduplication: its
// quote, or its invoice for invoice reminders, and its type.
func (n Notification) DedupKey() string {
	subject := n.QuoteID
	if subject == "" {
		subject = n.InvoiceID
	}
	return subject + "-" + string(n.Type)
}
