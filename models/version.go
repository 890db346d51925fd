package models

import "time"

// QuoteVersion is an immutable snapshot of a quote.
type QuoteVersion struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	QuoteID       string    `json:"quote_id" gorm:"index:idx_quote_versions_quote_id_number,unique,priority:1"`
	VersionNumber int       `json:"version_number" gorm:"not null;index:idx_quote_versions_quote_id_number,unique,priority:2"`
	Timestamp     time.Time `json:"timestamp"`
	Author        string    `json:"author"`
	Changes       string    `json:"changes"`
	Snapshot      Quote     `json:"snapshot" gorm:"serializer:json;type:text"`
}

// VersionDiff lists human readable changes between two snapshots.
type VersionDiff struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
}

// Empty reports whether no change was detected.
func (d VersionDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}
