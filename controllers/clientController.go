package controllers

import (
	"devis-backend/middlewares"
	"devis-backend/models"
	"devis-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ClientCreateDTO struct {
	Name    string            `json:"name" validate:"required,min=1"`
	Email   string            `json:"email" validate:"omitempty,email"`
	Phone   string            `json:"phone"`
	Address string            `json:"address"`
	Notes   string            `json:"notes"`
	Type    models.ClientType `json:"type" validate:"omitempty,oneof=individual business"`
}

type ClientUpdateDTO struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
	Type    *string `json:"type" validate:"omitempty,oneof=individual business"`
}

// POST /api/clients
func CreateClient(c *fiber.Ctx) error {
	var in ClientCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)

	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	client := models.Client{
		ID:      ids.NewID(),
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Notes:   in.Notes,
		Type:    in.Type,
	}
	if client.Type == "" {
		client.Type = models.ClientIndividual
	}
	if err := store.SaveClient(&client); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// GET /api/clients
func GetClients(c *fiber.Ctx) error {
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	clients, err := store.Clients()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"clients": clients})
}

// GET /api/clients/:id
func GetClient(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	client, err := store.Client(id)
	if err != nil {
		return err
	}
	return c.JSON(client)
}

// PUT /api/clients/:id updates only the fields present in the body. Quotes
// keep the client name they were created with.
func UpdateClient(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in ClientUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)

	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	client, err := store.UpdateClient(id, utils.PatchMap(&in, nil))
	if err != nil {
		return err
	}
	return c.JSON(client)
}

// DELETE /api/clients/:id
func DeleteClient(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.DeleteClient(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
