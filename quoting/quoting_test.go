package quoting

import (
	"testing"
	"time"

	"devis-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() Env {
	return Env{
		IDs:      &models.SequenceIDs{Prefix: "id"},
		Now:      time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC),
		Settings: models.DefaultSettings(),
	}
}

func sampleQuote() models.Quote {
	rate := 20.0
	return models.Quote{
		ID:         "q1",
		Number:     "DEV26001",
		ClientID:   "c1",
		ClientName: "Dupont",
		Title:      "Salle de bain",
		Status:     models.QuoteSent,
		Date:       models.Date(2026, time.January, 5),
		TaxRate:    &rate,
		Sections: models.SectionList{
			{ID: "s1", Title: "Démolition", Items: []models.QuoteItem{
				{ID: "i1", Kind: models.KindItem, Description: "Dépose carrelage", Quantity: 10, UnitPrice: 25, Total: 250},
			}},
			{ID: "s2", Title: "Vide", Items: []models.QuoteItem{
				{ID: "i2", Kind: models.KindSpacer},
			}},
		},
		TotalHT:  250,
		TotalTTC: 300,
		Currency: "€",
	}
}

func TestNewQuote_Defaults(t *testing.T) {
	env := testEnv()
	q := NewQuote(env, "DEV26001")

	assert.Equal(t, "id-1", q.ID)
	assert.Equal(t, models.QuoteDraft, q.Status)
	assert.Equal(t, models.Date(2026, time.March, 10), q.Date)
	assert.Equal(t, models.Date(2026, time.April, 9), q.ExpiryDate)
	assert.Equal(t, "€", q.Currency)
	assert.Equal(t, models.DefaultPaymentTerms, q.PaymentTerms)
	assert.Equal(t, 20.0, q.EffectiveTaxRate())
	assert.NotNil(t, q.Sections)
	assert.Empty(t, q.Sections)
}

func TestQuoteNumber(t *testing.T) {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "DEV26042", QuoteNumber(now, 42))
	assert.Equal(t, "FAC26007", InvoiceNumber(now, 7))
}

func TestDuplicateQuote_FreshIDsAndNoAliasing(t *testing.T) {
	env := testEnv()
	src := sampleQuote()

	dup := DuplicateQuote(env, src)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "DEV26001 (Copie)", dup.Number)
	assert.Equal(t, "Salle de bain (Copie)", dup.Title)
	assert.Equal(t, models.QuoteDraft, dup.Status)
	require.Len(t, dup.Sections, 2)
	assert.NotEqual(t, "s1", dup.Sections[0].ID)
	assert.NotEqual(t, "i1", dup.Sections[0].Items[0].ID)

	dup.Sections[0].Items[0].Description = "changed"
	*dup.TaxRate = 5.5
	assert.Equal(t, "Dépose carrelage", src.Sections[0].Items[0].Description)
	assert.Equal(t, 20.0, *src.TaxRate)
}

func TestDuplicateSection_InsertsAfterOriginal(t *testing.T) {
	env := testEnv()
	src := sampleQuote()

	out, err := DuplicateSection(env, src, "s1")
	require.NoError(t, err)

	require.Len(t, out.Sections, 3)
	assert.Equal(t, "s1", out.Sections[0].ID)
	assert.Equal(t, "Démolition (Copie)", out.Sections[1].Title)
	assert.NotEqual(t, "s1", out.Sections[1].ID)
	assert.NotEqual(t, "i1", out.Sections[1].Items[0].ID)
	assert.Equal(t, "s2", out.Sections[2].ID)
	assert.Equal(t, 500.0, out.TotalHT)
	assert.Equal(t, 600.0, out.TotalTTC)
	assert.Len(t, src.Sections, 2)

	_, err = DuplicateSection(env, src, "missing")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestRemoveSection_RequiresForceWhenContentPresent(t *testing.T) {
	src := sampleQuote()

	_, err := RemoveSection(src, "s1", false)
	assert.ErrorIs(t, err, ErrSectionHasContent)

	out, err := RemoveSection(src, "s1", true)
	require.NoError(t, err)
	require.Len(t, out.Sections, 1)
	assert.Zero(t, out.TotalHT)

	empty, err := RemoveSection(src, "s2", false)
	require.NoError(t, err)
	assert.Len(t, empty.Sections, 1)
	assert.Equal(t, 250.0, empty.TotalHT)

	assert.Len(t, src.Sections, 2)
}

func TestAddSectionAndNewItem(t *testing.T) {
	env := testEnv()
	q := AddSection(env, sampleQuote(), " ")
	require.Len(t, q.Sections, 3)
	assert.Equal(t, "Nouvelle section", q.Sections[2].Title)

	it := NewItem(env, models.KindItem)
	assert.Equal(t, 1.0, it.Quantity)
	assert.Equal(t, 20.0, it.VATRate)
	text := NewItem(env, models.KindText)
	assert.Zero(t, text.Quantity)
}

func TestEnsureIDs(t *testing.T) {
	env := testEnv()
	in := []models.QuoteSection{{Title: "Gros oeuvre", Items: []models.QuoteItem{{Kind: models.KindItem}, {ID: "keep"}}}}
	out := EnsureIDs(in, env.IDs)

	assert.Equal(t, "id-1", out[0].ID)
	assert.Equal(t, "id-2", out[0].Items[0].ID)
	assert.Equal(t, "keep", out[0].Items[1].ID)
	assert.Empty(t, in[0].ID)
}

func TestChangeStatus_RecordsHistory(t *testing.T) {
	env := testEnv()
	q := ChangeStatus(env, sampleQuote(), models.QuotePending, "alice", "")
	q = ChangeStatus(env, q, models.QuoteRejected, "bob", "trop cher")

	require.NotNil(t, q.ApprovalWorkflow)
	assert.Equal(t, models.QuoteRejected, q.Status)
	assert.Equal(t, "alice", q.ApprovalWorkflow.SubmittedBy)
	assert.Equal(t, "trop cher", q.ApprovalWorkflow.RejectionReason)
	require.Len(t, q.ApprovalWorkflow.History, 2)
	assert.Equal(t, models.ActionSubmitted, q.ApprovalWorkflow.History[0].Action)
	assert.Equal(t, models.ActionRejected, q.ApprovalWorkflow.History[1].Action)
}
