package calculation

import (
	"testing"

	"devis-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestApplyPayments(t *testing.T) {
	base := models.Invoice{TotalTTC: 1200, Status: models.InvoiceSent}

	tests := []struct {
		name     string
		payments []models.Payment
		paid     float64
		due      float64
		status   models.InvoiceStatus
	}{
		{"no payments keeps status", nil, 0, 1200, models.InvoiceSent},
		{"partial", []models.Payment{{ID: "p1", Amount: 360}}, 360, 840, models.InvoicePartial},
		{"settled in two", []models.Payment{{ID: "p1", Amount: 360}, {ID: "p2", Amount: 840}}, 1200, 0, models.InvoicePaid},
		{"overpaid", []models.Payment{{ID: "p1", Amount: 1500}}, 1500, -300, models.InvoicePaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := base
			inv.Payments = tt.payments
			got := ApplyPayments(inv)
			assert.Equal(t, tt.paid, got.AmountPaid)
			assert.Equal(t, tt.due, got.AmountDue)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestApplyPayments_ZeroTotalIsPaid(t *testing.T) {
	got := ApplyPayments(models.Invoice{Status: models.InvoiceDraft})
	assert.Equal(t, models.InvoicePaid, got.Status)
}

func TestApplyPayments_DoesNotShareInput(t *testing.T) {
	inv := models.Invoice{TotalTTC: 100, Payments: []models.Payment{{ID: "p1", Amount: 10}}}
	got := ApplyPayments(inv)
	got.Payments[0].Amount = 99
	assert.Equal(t, 10.0, inv.Payments[0].Amount)
}
