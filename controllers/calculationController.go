package controllers

import (
	"devis-backend/calculation"
	"devis-backend/middlewares"
	"devis-backend/models"

	"github.com/gofiber/fiber/v2"
)

type DiscountCheckDTO struct {
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	Total        float64 `json:"total" validate:"gte=0"`
}

type TotalsDTO struct {
	Sections     []models.QuoteSection `json:"sections" validate:"dive"`
	Discount     float64               `json:"discount"`
	DiscountType string                `json:"discount_type" validate:"omitempty,oneof=percentage fixed"`
	TaxRate      *float64              `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	Margin       float64               `json:"margin" validate:"gte=0,lt=100"`
	Currency     string                `json:"currency" validate:"max=8"`
}

// POST /api/calculations/discount/validate always answers 200; the verdict
// is in the body.
func ValidateDiscount(c *fiber.Ctx) error {
	var in DiscountCheckDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	kind := models.DiscountKind(in.DiscountType)
	if kind == "" {
		kind = models.DiscountPercentage
	}
	return c.JSON(calculation.ValidateDiscount(in.Discount, kind, in.Total))
}

// POST /api/calculations/totals computes totals for unsaved sections.
func ComputeTotals(c *fiber.Ctx) error {
	var in TotalsDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	q := models.Quote{
		Sections:     models.SectionList(in.Sections),
		Discount:     in.Discount,
		DiscountType: models.DiscountKind(in.DiscountType),
		TaxRate:      in.TaxRate,
		Margin:       in.Margin,
		Currency:     in.Currency,
	}
	if q.Currency == "" {
		q.Currency = calculation.DefaultCurrency
	}
	return c.JSON(totalsResponse(q))
}
