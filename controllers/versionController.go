package controllers

import (
	"devis-backend/versions"

	"github.com/gofiber/fiber/v2"
)

// GET /api/quotes/:id/versions
func GetQuoteVersions(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if _, err := store.Quote(id); err != nil {
		return err
	}
	all, err := store.Versions(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"versions":   versions.History(all, id),
		"statistics": versions.Statistics(all, id),
	})
}

// GET /api/quotes/:id/versions/diff?from=&to=
// Without "to" the version is compared with the live quote.
func DiffQuoteVersions(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	from := c.QueryInt("from", 0)
	if from <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "from must be a version number")
	}
	to := c.QueryInt("to", 0)

	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	current, err := store.Quote(id)
	if err != nil {
		return err
	}
	all, err := store.Versions(id)
	if err != nil {
		return err
	}
	older, ok := versions.Find(all, id, from)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "version not found")
	}
	newer := current
	if to > 0 {
		v, ok := versions.Find(all, id, to)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "version not found")
		}
		newer = v.Snapshot
	}

	return c.JSON(fiber.Map{
		"from":    from,
		"to":      to,
		"diff":    versions.Diff(older.Snapshot, newer),
		"summary": versions.ChangeSummary(older.Snapshot, newer),
	})
}

// POST /api/quotes/:id/versions/:versionId/restore
func RestoreQuoteVersion(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	versionID, err := pathID(c, "versionId")
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
	current, err := store.Quote(id)
	if err != nil {
		return err
	}
	v, err := store.Version(versionID)
	if err != nil {
		return err
	}
	if v.QuoteID != id {
		return fiber.NewError(fiber.StatusNotFound, "version not found")
	}

	rec := versions.Recorder{IDs: env.IDs, Now: env.Now}
	restored := rec.Restore(v, currentUser(c), current.CurrentVersion)
	if err := store.SaveQuote(&restored); err != nil {
		return err
	}
	return c.JSON(restored)
}
