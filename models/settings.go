package models

// CompanyInfo is printed on documents by the rendering layer.
type CompanyInfo struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	Email              string `json:"email" validate:"omitempty,email"`
	Website            string `json:"website,omitempty"`
	Logo               string `json:"logo,omitempty"`
	TaxID              string `json:"tax_id,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

type NotificationSettings struct {
	Enabled            bool `json:"enabled"`
	ExpiryWarningDays  int  `json:"expiry_warning_days" validate:"gte=0,lte=365"`
	EmailNotifications bool `json:"email_notifications"`
}

// Settings holds one row per tenant schema.
type Settings struct {
	ID                  uint                 `json:"-" gorm:"primaryKey"`
	Language            string               `json:"language" validate:"omitempty,oneof=fr en ro"`
	Currency            string               `json:"currency" validate:"required,max=8"`
	DefaultTaxRate      float64              `json:"default_tax_rate" validate:"gte=0,lte=100"`
	DefaultPaymentTerms string               `json:"default_payment_terms"`
	CompanyInfo         CompanyInfo          `json:"company_info" gorm:"serializer:json;type:text"`
	Notifications       NotificationSettings `json:"notifications" gorm:"serializer:json;type:text"`
}

// DefaultPaymentTerms is the schedule proposed on new quotes.
const DefaultPaymentTerms = "30% à l'ouverture du chantier ;\n30% après avoir achevé 35% des travaux ;\nSolde à la réception."

// DefaultSettings returns the settings used before a tenant saves its own.
func DefaultSettings() Settings {
	return Settings{
		Language:            "fr",
		Currency:            "€",
		DefaultTaxRate:      DefaultTaxRate,
		DefaultPaymentTerms: DefaultPaymentTerms,
		Notifications: NotificationSettings{
			Enabled:           true,
			ExpiryWarningDays: 7,
		},
	}
}
