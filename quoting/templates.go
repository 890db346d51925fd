package quoting

import (
	"strings"

	"devis-backend/calculation"
	"devis-backend/models"
)

// SaveAsTemplate turns the sections of a quote into a reusable template.
// Sections and items get fresh ids so the template never aliases the quote.
func SaveAsTemplate(env Env, q models.Quote, name, description, category string, tags []string) models.QuoteTemplate {
	if strings.TrimSpace(name) == "" {
		name = q.Title
	}
	if category == "" {
		category = models.CategoryGeneral
	}
	return models.QuoteTemplate{
		ID:          env.IDs.NewID(),
		Name:        name,
		Description: description,
		Category:    category,
		Sections:    models.CloneSectionsFresh(q.Sections, env.IDs),
		CreatedAt:   env.Now,
		UpdatedAt:   env.Now,
		Tags:        append([]string(nil), tags...),
	}
}

// Instantiate creates a new draft quote from a template and returns it with
// the template's usage counter incremented.
func Instantiate(env Env, tpl models.QuoteTemplate, number string) (models.Quote, models.QuoteTemplate) {
	q := NewQuote(env, number)
	q.Title = tpl.Name
	q.TemplateID = tpl.ID
	q.Sections = models.CloneSectionsFresh(tpl.Sections, env.IDs)
	if q.Sections == nil {
		q.Sections = models.SectionList{}
	}
	q = calculation.UpdateQuoteTotals(q)

	used := tpl
	used.Sections = models.CloneSections(tpl.Sections)
	used.Tags = append([]string(nil), tpl.Tags...)
	used.UsageCount++
	used.UpdatedAt = env.Now
	return q, used
}
