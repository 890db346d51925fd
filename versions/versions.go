// Package versions snapshots quotes and diffs snapshots at section level.
package versions

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"devis-backend/models"
)

// DefaultKeep is the number of versions Cleanup retains per quote.
const DefaultKeep = 10

// NoChanges is the summary of an empty diff.
const NoChanges = "Aucun changement"

// Diff lists the differences from older to newer. Item fields are not
// compared, only section membership, titles and item counts.
func Diff(older, newer models.Quote) models.VersionDiff {
	d := models.VersionDiff{Added: []string{}, Removed: []string{}, Modified: []string{}}

	if older.Title != newer.Title {
		d.Modified = append(d.Modified, fmt.Sprintf("Titre: %q → %q", older.Title, newer.Title))
	}
	if older.ClientName != newer.ClientName {
		d.Modified = append(d.Modified, fmt.Sprintf("Client: %q → %q", older.ClientName, newer.ClientName))
	}
	if older.Status != newer.Status {
		d.Modified = append(d.Modified, fmt.Sprintf("Statut: %q → %q", older.Status.Label(), newer.Status.Label()))
	}
	if older.TotalHT != newer.TotalHT {
		d.Modified = append(d.Modified, fmt.Sprintf("Total HT: %s → %s", amount(older.TotalHT), amount(newer.TotalHT)))
	}

	oldByID := indexSections(older.Sections)
	newByID := indexSections(newer.Sections)

	for _, s := range newer.Sections {
		if _, ok := oldByID[s.ID]; !ok {
			d.Added = append(d.Added, fmt.Sprintf("Section ajoutée: %q", s.Title))
		}
	}
	for _, s := range older.Sections {
		if _, ok := newByID[s.ID]; !ok {
			d.Removed = append(d.Removed, fmt.Sprintf("Section supprimée: %q", s.Title))
		}
	}
	for _, s1 := range older.Sections {
		s2, ok := newByID[s1.ID]
		if !ok {
			continue
		}
		if s1.Title != s2.Title {
			d.Modified = append(d.Modified, fmt.Sprintf("Section renommée: %q → %q", s1.Title, s2.Title))
		}
		if len(s1.Items) != len(s2.Items) {
			d.Modified = append(d.Modified, fmt.Sprintf("Section %q: %d → %d lignes", s1.Title, len(s1.Items), len(s2.Items)))
		}
	}
	return d
}

// ChangeSummary condenses Diff into counts, e.g. "+1 ajouts, 2 modifications".
func ChangeSummary(older, newer models.Quote) string {
	d := Diff(older, newer)
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("+%d ajouts", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("-%d suppressions", n))
	}
	if n := len(d.Modified); n > 0 {
		parts = append(parts, fmt.Sprintf("%d modifications", n))
	}
	if len(parts) == 0 {
		return NoChanges
	}
	return strings.Join(parts, ", ")
}

// Recorder creates versions with its id provider and clock.
type Recorder struct {
	IDs models.IDProvider
	Now time.Time
}

// Create snapshots q as version q.CurrentVersion+1. The snapshot is a deep
// copy; later edits to q do not reach it.
func (r Recorder) Create(q models.Quote, author, changes string) models.QuoteVersion {
	return models.QuoteVersion{
		ID:            r.IDs.NewID(),
		QuoteID:       q.ID,
		VersionNumber: q.CurrentVersion + 1,
		Timestamp:     r.Now,
		Author:        author,
		Changes:       changes,
		Snapshot:      q.Clone(),
	}
}

// AutoVersion snapshots newer when the title, client, status, pre-tax total
// or section count changed. It returns false for edits below that bar.
func (r Recorder) AutoVersion(older, newer models.Quote, author string) (models.QuoteVersion, bool) {
	var changes []string
	if older.Title != newer.Title {
		changes = append(changes, "titre modifié")
	}
	if older.ClientID != newer.ClientID {
		changes = append(changes, "client changé")
	}
	if older.Status != newer.Status {
		changes = append(changes, "statut: "+newer.Status.Label())
	}
	if older.TotalHT != newer.TotalHT {
		changes = append(changes, "montant modifié")
	}
	if len(older.Sections) != len(newer.Sections) {
		changes = append(changes, "sections modifiées")
	}
	if len(changes) == 0 {
		return models.QuoteVersion{}, false
	}
	return r.Create(newer, author, strings.Join(changes, ", ")), true
}

// Restore rebuilds a quote from a snapshot as a draft modified by user.
// The version counter keeps the value it has on the live quote.
func (r Recorder) Restore(v models.QuoteVersion, user string, currentVersion int) models.Quote {
	q := v.Snapshot.Clone()
	now := r.Now
	q.Status = models.QuoteDraft
	q.LastModifiedBy = user
	q.LastModifiedAt = &now
	q.CurrentVersion = currentVersion
	return q
}

// History returns the versions of one quote, newest first.
func History(all []models.QuoteVersion, quoteID string) []models.QuoteVersion {
	out := []models.QuoteVersion{}
	for _, v := range all {
		if v.QuoteID == quoteID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out
}

// Find returns the version with the given number.
func Find(all []models.QuoteVersion, quoteID string, number int) (models.QuoteVersion, bool) {
	for _, v := range all {
		if v.QuoteID == quoteID && v.VersionNumber == number {
			return v, true
		}
	}
	return models.QuoteVersion{}, false
}

// Cleanup keeps the keep newest versions of quoteID and every version of
// other quotes. It also returns the ids it dropped.
func Cleanup(all []models.QuoteVersion, quoteID string, keep int) (kept []models.QuoteVersion, dropped []string) {
	if keep < 0 {
		keep = 0
	}
	history := History(all, quoteID)
	retain := make(map[string]bool, keep)
	for _, v := range history[:min(keep, len(history))] {
		retain[v.ID] = true
	}
	kept = []models.QuoteVersion{}
	for _, v := range all {
		if v.QuoteID != quoteID || retain[v.ID] {
			kept = append(kept, v)
			continue
		}
		dropped = append(dropped, v.ID)
	}
	return kept, dropped
}

type Stats struct {
	TotalVersions int                  `json:"total_versions"`
	FirstVersion  *models.QuoteVersion `json:"first_version"`
	LatestVersion *models.QuoteVersion `json:"latest_version"`
	Authors       []string             `json:"authors"`
}

// Statistics summarises the history of one quote. Authors are listed from
// the newest version back, without repeats.
func Statistics(all []models.QuoteVersion, quoteID string) Stats {
	history := History(all, quoteID)
	if len(history) == 0 {
		return Stats{Authors: []string{}}
	}
	seen := map[string]bool{}
	authors := []string{}
	for _, v := range history {
		if !seen[v.Author] {
			seen[v.Author] = true
			authors = append(authors, v.Author)
		}
	}
	first := history[len(history)-1]
	latest := history[0]
	return Stats{
		TotalVersions: len(history),
		FirstVersion:  &first,
		LatestVersion: &latest,
		Authors:       authors,
	}
}

func indexSections(sections []models.QuoteSection) map[string]models.QuoteSection {
	m := make(map[string]models.QuoteSection, len(sections))
	for _, s := range sections {
		m[s.ID] = s
	}
	return m
}

func amount(v float64) string {
	return fmt.Sprintf("%g", v)
}
