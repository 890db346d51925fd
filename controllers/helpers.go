package controllers

import (
	"strings"
	"time"

	"devis-backend/database"
	"devis-backend/models"
	"devis-backend/notifications"
	"devis-backend/quoting"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

var clock = func() time.Time { return time.Now().UTC() }

var ids models.IDProvider = models.UUIDs

// warningDays is the expiry window given to new tenants and used when a
// tenant has none configured.
var warningDays = notifications.DefaultWarningDays

// SetExpiryWarningDays overrides the default expiry window.
func SetExpiryWarningDays(days int) {
	if days > 0 {
		warningDays = days
	}
}

// tenantStore wraps the request's tenant transaction.
func tenantStore(c *fiber.Ctx) (*database.Store, error) {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}
	return database.NewStore(db), nil
}

// tenantEnv loads the tenant settings into a quoting environment.
func tenantEnv(store *database.Store) (quoting.Env, error) {
	settings, err := store.Settings()
	if err != nil {
		return quoting.Env{}, err
	}
	return quoting.Env{IDs: ids, Now: clock(), Settings: settings}, nil
}

// currentUser is the name recorded on versions and workflow entries.
func currentUser(c *fiber.Ctx) string {
	if name, _ := c.Locals("userName").(string); strings.TrimSpace(name) != "" {
		return name
	}
	id, _ := c.Locals("userID").(string)
	return id
}

func pathID(c *fiber.Ctx, param string) (string, error) {
	id := strings.TrimSpace(c.Params(param))
	if id == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "missing "+param+" in path")
	}
	return id, nil
}

// parseDate reads a calendar date in YYYY-MM-DD form.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid date "+value+", expected YYYY-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
