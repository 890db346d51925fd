package calculation

import (
	"errors"
	"fmt"

	"devis-backend/models"
)

// ErrInvalidDiscount is wrapped by DiscountValidation.Err.
var ErrInvalidDiscount = errors.New("invalid discount")

// DiscountValidation is the data form of a discount check so that callers
// can show the reason inline instead of failing a computation.
type DiscountValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Err returns nil for a valid discount, otherwise an error wrapping ErrInvalidDiscount.
func (v DiscountValidation) Err() error {
	if v.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidDiscount, v.Reason)
}

const (
	ReasonNegativeDiscount = "La réduction ne peut pas être négative"
	ReasonPercentOver100   = "La réduction ne peut pas dépasser 100%"
	ReasonExceedsTotal     = "La réduction ne peut pas dépasser le montant total"
)

// ValidateDiscount checks a discount against the amount it applies to.
func ValidateDiscount(discount float64, kind models.DiscountKind, total float64) DiscountValidation {
	if discount < 0 {
		return DiscountValidation{Reason: ReasonNegativeDiscount}
	}
	if kind == models.DiscountFixed {
		if discount > total {
			return DiscountValidation{Reason: ReasonExceedsTotal}
		}
	} else if discount > 100 {
		return DiscountValidation{Reason: ReasonPercentOver100}
	}
	return DiscountValidation{Valid: true}
}
