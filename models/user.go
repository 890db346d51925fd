package models

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

type User struct {
	Id         string   `json:"id" gorm:"primaryKey"`
	FirstName  string   `json:"first_name" gorm:"not null"`
	LastName   string   `json:"last_name" gorm:"not null"`
	Password   []byte   `json:"-" gorm:"not null"`
	Email      string   `json:"email" gorm:"unique;not null"`
	Role       UserRole `json:"role" gorm:"type:VARCHAR(16);default:admin"`
	SchemaName string   `json:"-" gorm:"unique;not null"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.Id == "" {
		user.Id = uuid.NewString()
	}
	return
}

func (user *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return nil
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}

// DisplayName is used as the author of versions and workflow entries.
func (user *User) DisplayName() string {
	return user.FirstName + " " + user.LastName
}
