package controllers

import (
	"strconv"
	"time"

	"devis-backend/database"
	"devis-backend/models"
	"devis-backend/notifications"
	"devis-backend/quoting"
	"devis-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RunNotificationCheck issues the expiry and payment reminders of one tenant
// that are not already stored, and flags overdue invoices. It is used by the
// check endpoint and by the background notifier.
func RunNotificationCheck(store *database.Store, ids models.IDProvider, now time.Time) ([]models.Notification, error) {
	settings, err := store.Settings()
	if err != nil {
		return nil, err
	}
	if !settings.Notifications.Enabled {
		return []models.Notification{}, nil
	}
	days := settings.Notifications.ExpiryWarningDays
	if days <= 0 {
		days = warningDays
	}
	is := notifications.Issuer{IDs: ids, Now: now}

	quotes, err := store.Quotes("")
	if err != nil {
		return nil, err
	}
	fresh := is.CheckExpiring(quotes, days)

	invoices, err := store.Invoices("")
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		marked := quoting.MarkOverdue(inv, now)
		if marked.Status != inv.Status {
			if err := store.SaveInvoice(&marked); err != nil {
				return nil, err
			}
		}
		if paymentDueSoon(marked, now, days) {
			fresh = append(fresh, is.PaymentDue(marked))
		}
	}

	existing, err := store.Notifications()
	if err != nil {
		return nil, err
	}
	_, added := notifications.MergeNew(existing, fresh)
	if err := store.CreateNotifications(added); err != nil {
		return nil, err
	}
	return added, nil
}

func paymentDueSoon(inv models.Invoice, now time.Time, days int) bool {
	if inv.AmountDue <= 0 {
		return false
	}
	if inv.Status != models.InvoiceSent && inv.Status != models.InvoicePartial {
		return false
	}
	d := notifications.DaysUntil(inv.DueDate, now)
	return d >= 0 && d <= days
}

// GET /api/notifications?type=&unread=true&limit=
func GetNotifications(c *fiber.Ctx) error {
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	list, err := store.Notifications()
	if err != nil {
		return err
	}
	unread := notifications.UnreadCount(list)

	if t := c.Query("type"); t != "" {
		list = notifications.FilterByType(list, models.NotificationType(t))
	}
	if only, _ := strconv.ParseBool(c.Query("unread")); only {
		filtered := []models.Notification{}
		for _, n := range list {
			if !n.Read {
				filtered = append(filtered, n)
			}
		}
		list = filtered
	}
	if c.Query("limit") != "" {
		list = notifications.Recent(list, utils.ParseIntDefault(c.Query("limit"), notifications.DefaultRecentCount))
	}
	return c.JSON(fiber.Map{
		"notifications": list,
		"unread_count":  unread,
	})
}

// POST /api/notifications/check
func CheckNotifications(c *fiber.Ctx) error {
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	added, err := RunNotificationCheck(store, ids, clock())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"added": added})
}

// PUT /api/notifications/:id/read
func MarkNotificationRead(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.MarkNotificationsRead(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PUT /api/notifications/read
func MarkAllNotificationsRead(c *fiber.Ctx) error {
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.MarkNotificationsRead(); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /api/notifications/:id
func DeleteNotification(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.DeleteNotification(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /api/notifications
func ClearNotifications(c *fiber.Ctx) error {
	store, err := tenantStore(c)
	if err != nil {
		return err
	}
	if err := store.ClearNotifications(); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
