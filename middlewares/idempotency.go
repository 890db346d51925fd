package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"devis-backend/database"
	"devis-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Idempotency processes Idempotency-Key for mutating HTTP methods in a schema-safe way.
// It uses its own short transactions pinned to the tenant schema, so a stored
// response survives a rollback of the request transaction.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		schema, _ := c.Locals("schema").(string)
		userID, _ := c.Locals("userID").(string)
		if schema == "" || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "auth context missing"})
		}

		path := c.OriginalURL() // includes query string
		reqHash := requestHash(method, path, c.Body(), schema, userID)

		// ---- Phase 1: read or create the pending record
		var existing models.IdempotencyKey
		err := database.InTenant(database.DB, schema, func(tx *gorm.DB) error {
			err := tx.Where("key = ?", key).First(&existing).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
			}
			rec := models.IdempotencyKey{
				Key:          key,
				RequestHash:  reqHash,
				Method:       method,
				Path:         path,
				TenantSchema: schema,
				UserID:       userID,
			}
			if err := tx.Create(&rec).Error; err != nil {
				// Could be unique race: read again
				if err := tx.Where("key = ?", key).First(&existing).Error; err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
				}
				return nil
			}
			existing = rec
			return nil
		})
		if err != nil {
			return err
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 && existing.ResponseBody != nil {
			c.Set("Idempotent-Replayed", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(existing.ResponseStatus).Send(existing.ResponseBody)
		}

		if err := c.Next(); err != nil {
			return err
		}

		// ---- Phase 2: store the response; failures don't break the response
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			return nil
		}
		blob := append([]byte(nil), c.Response().Body()...)
		now := time.Now().UTC()
		err = database.InTenant(database.DB, schema, func(tx *gorm.DB) error {
			return tx.Model(&models.IdempotencyKey{}).
				Where("key = ?", key).
				Updates(map[string]any{
					"response_status": status,
					"response_body":   blob,
					"completed_at":    &now,
				}).Error
		})
		if err != nil {
			zerolog.Ctx(c.UserContext()).Warn().Err(err).Str("key", key).Msg("idempotency store failed")
		}
		return nil
	}
}

// requestHash is sha256 of method|path|body|schema|user.
func requestHash(method, path string, body []byte, schema, userID string) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(method), []byte(path), body, []byte(schema), []byte(userID)} {
		h.Write(part)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
