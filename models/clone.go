package models

import "time"

// CloneSections deep-copies a section list, keeping identifiers.
func CloneSections(sections []QuoteSection) SectionList {
	if sections == nil {
		return nil
	}
	out := make(SectionList, len(sections))
	for i, s := range sections {
		out[i] = QuoteSection{
			ID:    s.ID,
			Title: s.Title,
		}
		if s.Items != nil {
			out[i].Items = make([]QuoteItem, len(s.Items))
			copy(out[i].Items, s.Items)
		}
	}
	return out
}

// CloneSectionsFresh deep-copies a section list and assigns a new id to
// every section and item.
func CloneSectionsFresh(sections []QuoteSection, ids IDProvider) SectionList {
	out := CloneSections(sections)
	for i := range out {
		out[i].ID = ids.NewID()
		for j := range out[i].Items {
			out[i].Items[j].ID = ids.NewID()
		}
	}
	return out
}

// CloneSection is CloneSectionsFresh for a single section.
func CloneSection(s QuoteSection, ids IDProvider) QuoteSection {
	return CloneSectionsFresh([]QuoteSection{s}, ids)[0]
}

// Clone returns a deep copy of the quote. No slice, map or pointer is
// shared with the receiver.
func (q Quote) Clone() Quote {
	c := q
	c.Sections = CloneSections(q.Sections)
	c.VisitDate = cloneTime(q.VisitDate)
	c.StartDate = cloneTime(q.StartDate)
	c.LastModifiedAt = cloneTime(q.LastModifiedAt)
	if q.TaxRate != nil {
		rate := *q.TaxRate
		c.TaxRate = &rate
	}
	if q.Tags != nil {
		c.Tags = append([]string(nil), q.Tags...)
	}
	if q.ApprovalWorkflow != nil {
		wf := *q.ApprovalWorkflow
		wf.SubmittedAt = cloneTime(wf.SubmittedAt)
		wf.ApprovedAt = cloneTime(wf.ApprovedAt)
		if wf.History != nil {
			wf.History = append([]WorkflowHistoryEntry(nil), wf.History...)
		}
		c.ApprovalWorkflow = &wf
	}
	return c
}

// Clone returns a deep copy of the invoice including its payments.
func (inv Invoice) Clone() Invoice {
	c := inv
	c.Sections = CloneSections(inv.Sections)
	if inv.Payments != nil {
		c.Payments = append([]Payment(nil), inv.Payments...)
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
