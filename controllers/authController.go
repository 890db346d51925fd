package controllers

import (
	"errors"
	"strings"
	"time"

	"devis-backend/database"
	"devis-backend/middlewares"
	"devis-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type RegisterDTO struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	CompanyName     string `json:"company_name" validate:"required"`
	Address         string `json:"address" validate:"required"`
	City            string `json:"city" validate:"required"`
	Country         string `json:"country" validate:"required"`
	Zip             string `json:"zip" validate:"required"`
	Phone           string `json:"phone"`
	Homepage        string `json:"homepage" validate:"omitempty,url"`
	UID             string `json:"uid"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/registration
func Register(c *fiber.Ctx) error {
	var in RegisterDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	var count int64
	if err := database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	schemaName := database.SchemaName(in.CompanyName)
	if !database.ValidSchema(schemaName) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid company name")
	}

	user := models.User{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      email,
		Role:       models.RoleAdmin,
		SchemaName: schemaName,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return err
	}
	company := models.Company{
		CompanyName: strings.TrimSpace(in.CompanyName),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		Country:     strings.TrimSpace(in.Country),
		Zip:         strings.TrimSpace(in.Zip),
		Phone:       strings.TrimSpace(in.Phone),
		Homepage:    strings.TrimSpace(in.Homepage),
		UID:         strings.TrimSpace(in.UID),
		SchemaName:  schemaName,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not create user")
		}
		company.UserId = user.Id
		if err := tx.Create(&company).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not create company")
		}
		return database.CreateSchema(tx, schemaName)
	})
	if err != nil {
		return err
	}

	if err := database.MigrateTenantSchema(database.DB, schemaName); err != nil {
		zerolog.Ctx(c.UserContext()).Error().Err(err).Str("schema", schemaName).Msg("tenant migration failed")
		return fiber.NewError(fiber.StatusInternalServerError, "could not migrate tenant schema")
	}

	company.User = user
	err = database.InTenant(database.DB, schemaName, func(tx *gorm.DB) error {
		settings := models.DefaultSettings()
		settings.CompanyInfo = company.Info()
		settings.Notifications.ExpiryWarningDays = warningDays
		return database.NewStore(tx).SaveSettings(&settings)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(company)
}

// POST /api/login
func Login(c *fiber.Ctx) error {
	var in LoginDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var user models.User
	err := database.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}
	if err != nil {
		return err
	}
	if err := user.ComparePassword(in.Password); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.SchemaName, user.DisplayName())
	if err != nil {
		return err
	}

	if err := database.MigrateTenantSchema(database.DB, user.SchemaName); err != nil {
		zerolog.Ctx(c.UserContext()).Error().Err(err).Str("schema", user.SchemaName).Msg("tenant migration failed")
		return fiber.NewError(fiber.StatusInternalServerError, "could not migrate tenant schema")
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"schema": user.SchemaName,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.DisplayName(),
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// POST /api/logout
func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
