package models

import "time"

// Template categories offered by the editor. Category stays free-form.
const (
	CategoryConstruction = "Construction"
	CategoryRenovation   = "Rénovation"
	CategoryPlumbing     = "Plomberie"
	CategoryElectrical   = "Électricité"
	CategoryGeneral      = "General"
	CategoryOther        = "Autre"
)

// QuoteTemplate is a reusable named set of sections.
type QuoteTemplate struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"not null"`
	Description string      `json:"description"`
	Category    string      `json:"category" gorm:"index"`
	Sections    SectionList `json:"sections"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	UsageCount  int         `json:"usage_count"`
	Tags        []string    `json:"tags,omitempty" gorm:"serializer:json;type:text"`
}
