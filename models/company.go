package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the contractor account. Each company owns one tenant schema.
type Company struct {
	Id          string `json:"id" gorm:"primaryKey"`
	CompanyName string `json:"company_name" gorm:"not null;unique"`
	Address     string `json:"address" gorm:"not null"`
	City        string `json:"city" gorm:"not null"`
	Country     string `json:"country" gorm:"not null"`
	Zip         string `json:"zip" gorm:"not null"`
	Phone       string `json:"phone"`
	Homepage    string `json:"homepage" gorm:"null"`
	UID         string `json:"uid" gorm:"null"`
	UserId      string `json:"-"`
	User        User   `json:"user" gorm:"foreignKey:UserId;references:Id"`
	SchemaName  string `json:"-"`
}

func (company *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if company.Id == "" {
		company.Id = uuid.NewString()
	}
	return
}

// Info converts the account into the block printed on documents.
func (company *Company) Info() CompanyInfo {
	return CompanyInfo{
		Name:    company.CompanyName,
		Address: company.Address + ", " + company.Zip + " " + company.City + ", " + company.Country,
		Phone:   company.Phone,
		Email:   company.User.Email,
		Website: company.Homepage,
		TaxID:   company.UID,
	}
}
