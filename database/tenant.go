package database

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"devis-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var schemaPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ErrInvalidSchema is returned for schema names unsafe to interpolate.
var ErrInvalidSchema = errors.New("invalid schema name")

func ValidSchema(schema string) bool {
	return len(schema) <= 63 && schemaPattern.MatchString(schema)
}

// SchemaName derives the tenant schema from a company name.
func SchemaName(company string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(company)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := "t_" + b.String()
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// CreateSchema creates the tenant schema on postgres. SQLite has none.
func CreateSchema(db *gorm.DB, schema string) error {
	if !ValidSchema(schema) {
		return fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}
	if !IsPostgres(db) {
		return nil
	}
	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error; err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	return nil
}

// PinSchema points tx at the tenant schema until the transaction ends.
// It is a no-op on SQLite.
func PinSchema(tx *gorm.DB, schema string) error {
	if !IsPostgres(tx) {
		return nil
	}
	if !ValidSchema(schema) {
		return fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}
	if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
		return fmt.Errorf("set search_path failed: %w", err)
	}
	return nil
}

// GetTenantDB returns a *gorm.DB bound to the request's tenant.
// Prefer the per-request TX opened by middlewares.TenantTx, else fall back to
// a session with search_path set on its connection.
func GetTenantDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}

	schema, _ := c.Locals("schema").(string)
	if strings.TrimSpace(schema) == "" {
		return nil, errors.New("tenant schema missing")
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}

	sess := DB.Session(&gorm.Session{}).WithContext(c.UserContext())
	if !IsPostgres(sess) {
		return sess, nil
	}
	if !ValidSchema(schema) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}
	if err := sess.Exec(`SET search_path = "` + schema + `", public`).Error; err != nil {
		return nil, fmt.Errorf("set search_path failed: %w", err)
	}
	return sess, nil
}

// TenantSchemas lists the schema of every registered account.
func TenantSchemas(db *gorm.DB) ([]string, error) {
	var schemas []string
	if err := db.Model(&models.User{}).Distinct().Order("schema_name").Pluck("schema_name", &schemas).Error; err != nil {
		return nil, fmt.Errorf("list tenant schemas: %w", err)
	}
	return schemas, nil
}

// InTenant runs fn in a transaction pinned to schema.
func InTenant(db *gorm.DB, schema string, fn func(tx *gorm.DB) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := PinSchema(tx, schema); err != nil {
			return err
		}
		return fn(tx)
	})
}
