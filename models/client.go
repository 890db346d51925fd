package models

type ClientType string

const (
	ClientIndividual ClientType = "individual"
	ClientBusiness   ClientType = "business"
)

// Client is referenced by id from quotes and invoices; its name is copied
// onto a quote when the quote is created and is not kept in sync.
type Client struct {
	ID      string     `json:"id" gorm:"primaryKey"`
	Name    string     `json:"name" gorm:"not null"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	Address string     `json:"address"`
	Notes   string     `json:"notes,omitempty"`
	Type    ClientType `json:"type" gorm:"type:VARCHAR(16)"`
}
