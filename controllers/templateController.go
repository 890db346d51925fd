package controllers

import (
	"strings"

	"devis-backend/middlewares"
	"devis-backend/quoting"

	"github.com/gofiber/fiber/v2"
)

type TemplateCreateDTO struct {
	QuoteID     string   `json:"quote_id" validate:"required"`
	Name        string   `json:"name" validate:"max=200"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"max=64"`
	Tags        []string `json:"tags"`
}

// POST /api/templates saves the sections of a quote as a template.
func CreateTemplate(c *fiber.Ctx) error {
	var in TemplateCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	env, err := tenantEnv(store)
	if err != nil {
		return err
	}
	q, err := store.Quote(in.QuoteID)
	if err != nil {
		return err
	}
	tpl := quoting.SaveAsTemplate(env, q, strings.TrimSpace(in.Name), strings.TrimSpace(in.Description), strings.TrimSpace(in.Category), in.Tags)
	if err := store.SaveTemplate(&tpl); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tpl)
}

// GET /api/templates?category=
func GetTemplates(c *fiber.Ctx) error {
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	all, err := store.Templates()
	if err != nil {
		return err
	}
	category := c.Query("category")
	if category == "" {
		return c.JSON(fiber.Map{"templates": all})
	}
	filtered := all[:0]
	for _, t := range all {
		if t.Category == category {
			filtered = append(filtered, t)
		}
	}
	return c.JSON(fiber.Map{"templates": filtered})
}

// DELETE /api/templates/:id
func DeleteTemplate(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.DeleteTemplate(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/templates/:id/instantiate creates a draft quote from a template.
func InstantiateTemplate(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	env, err := tenantEnv(store)
	if err != nil {
		return err
	}
	tpl, err := store.Template(id)
	if err != nil {
		return err
	}
	number, err := nextQuoteNumber(store, env)
	if err != nil {
		return err
	}
	q, used := quoting.Instantiate(env, tpl, number)
	q.CreatedBy = currentUser(c)
	if err := store.SaveQuote(&q); err != nil {
		return err
	}
	if err := store.SaveTemplate(&used); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}
