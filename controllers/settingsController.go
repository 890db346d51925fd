package controllers

import (
	"devis-backend/middlewares"
	"devis-backend/models"
	"devis-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GET /api/settings
func GetSettings(c *fiber.Ctx) error {
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	settings, err := store.Settings()
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

// PUT /api/settings replaces the tenant settings.
func UpdateSettings(c *fiber.Ctx) error {
	var in models.Settings
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)

	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	in.ID = 0
	if err := store.SaveSettings(&in); err != nil {
		return err
	}
	return c.JSON(in)
}
