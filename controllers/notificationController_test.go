package controllers

import (
	"testing"
	"time"

	"devis-backend/database"
	"devis-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.MigrateTenantSchema(db, "t_test"))
	return database.NewStore(db)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedReminders(t *testing.T, store *database.Store) {
	t.Helper()
	quotes := []models.Quote{
		{ID: "q-soon", Number: "DEV26001", Status: models.QuoteSent, ExpiryDate: day(2026, 3, 13)},
		{ID: "q-accepted", Number: "DEV26002", Status: models.QuoteAccepted, ExpiryDate: day(2026, 3, 11)},
		{ID: "q-later", Number: "DEV26003", Status: models.QuoteDraft, ExpiryDate: day(2026, 5, 1)},
		{ID: "q-expired", Number: "DEV26004", Status: models.QuoteSent, ExpiryDate: day(2026, 3, 1)},
	}
	for i := range quotes {
		require.NoError(t, store.SaveQuote(&quotes[i]))
	}
	invoices := []models.Invoice{
		{ID: "i-due", Number: "FAC26001", Status: models.InvoiceSent, DueDate: day(2026, 3, 15), TotalTTC: 100, AmountDue: 100},
		{ID: "i-late", Number: "FAC26002", Status: models.InvoiceSent, DueDate: day(2026, 3, 1), TotalTTC: 50, AmountDue: 50},
		{ID: "i-paid", Number: "FAC26003", Status: models.InvoicePaid, DueDate: day(2026, 3, 12), TotalTTC: 80, AmountPaid: 80},
	}
	for i := range invoices {
		require.NoError(t, store.SaveInvoice(&invoices[i]))
	}
}

func TestRunNotificationCheck_IssuesRemindersOnce(t *testing.T) {
	store := setupStore(t)
	seedReminders(t, store)
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	added, err := RunNotificationCheck(store, &models.SequenceIDs{Prefix: "n"}, now)
	require.NoError(t, err)

	keys := map[string]bool{}
	for _, n := range added {
		keys[n.DedupKey()] = true
	}
	assert.Equal(t, map[string]bool{
		"q-soon-expiry-warning":    true,
		"q-expired-expiry-warning": true,
		"i-due-payment-due":        true,
	}, keys)

	late, err := store.Invoice("i-late")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceOverdue, late.Status)

	stored, err := store.Notifications()
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	again, err := RunNotificationCheck(store, &models.SequenceIDs{Prefix: "m"}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestRunNotificationCheck_DisabledIssuesNothing(t *testing.T) {
	store := setupStore(t)
	seedReminders(t, store)

	settings := models.DefaultSettings()
	settings.Notifications.Enabled = false
	require.NoError(t, store.SaveSettings(&settings))

	added, err := RunNotificationCheck(store, &models.SequenceIDs{Prefix: "n"}, day(2026, 3, 10))
	require.NoError(t, err)
	assert.Empty(t, added)

	inv, err := store.Invoice("i-late")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceSent, inv.Status)
}

func TestRunNotificationCheck_UsesTenantWindow(t *testing.T) {
	store := setupStore(t)
	seedReminders(t, store)

	settings := models.DefaultSettings()
	settings.Notifications.ExpiryWarningDays = 2
	require.NoError(t, store.SaveSettings(&settings))

	added, err := RunNotificationCheck(store, &models.SequenceIDs{Prefix: "n"}, day(2026, 3, 10))
	require.NoError(t, err)

	var keys []string
	for _, n := range added {
		keys = append(keys, n.DedupKey())
	}
	assert.ElementsMatch(t, []string{"q-expired-expiry-warning"}, keys)
}
