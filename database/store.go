package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"devis-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the typed persistence port of one tenant. It is safe to build a
// Store per request around the request transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithContext(ctx context.Context) *Store {
	return &Store{db: s.db.WithContext(ctx)}
}

// Transaction runs fn against a Store bound to a nested transaction.
func (s *Store) Transaction(fn func(*Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// ---- Settings

// Settings returns the tenant settings, or the defaults when none were saved.
func (s *Store) Settings() (models.Settings, error) {
	var st models.Settings
	err := s.db.Order("id").First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

func (s *Store) SaveSettings(st *models.Settings) error {
	if st.ID == 0 {
		var existing models.Settings
		if err := s.db.Select("id").Order("id").First(&existing).Error; err == nil {
			st.ID = existing.ID
		}
	}
	if err := s.db.Save(st).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ---- Clients

func (s *Store) Clients() ([]models.Client, error) {
	out := []models.Client{}
	if err := s.db.Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

func (s *Store) Client(id string) (models.Client, error) {
	var c models.Client
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return models.Client{}, fmt.Errorf("client %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) SaveClient(c *models.Client) error {
	if err := s.db.Save(c).Error; err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

// UpdateClient applies a column map and returns the reloaded client.
func (s *Store) UpdateClient(id string, updates map[string]any) (models.Client, error) {
	if _, err := s.Client(id); err != nil {
		return models.Client{}, err
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.Client{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Client{}, fmt.Errorf("update client: %w", err)
		}
	}
	return s.Client(id)
}

func (s *Store) DeleteClient(id string) error {
	return deleteByID(s.db, &models.Client{}, id)
}

// ---- Quotes

// Quotes lists quotes, newest first, optionally of one status.
func (s *Store) Quotes(status models.QuoteStatus) ([]models.Quote, error) {
	q := s.db.Order(desc("date")).Order(desc("number"))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []models.Quote{}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return out, nil
}

func (s *Store) Quote(id string) (models.Quote, error) {
	var q models.Quote
	if err := s.db.First(&q, "id = ?", id).Error; err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: %w", id, err)
	}
	return q, nil
}

func (s *Store) SaveQuote(q *models.Quote) error {
	if err := s.db.Save(q).Error; err != nil {
		return fmt.Errorf("save quote: %w", err)
	}
	return nil
}

// DeleteQuote removes a quote with its version history.
func (s *Store) DeleteQuote(id string) error {
	if err := s.db.Where("quote_id = ?", id).Delete(&models.QuoteVersion{}).Error; err != nil {
		return fmt.Errorf("delete versions of %s: %w", id, err)
	}
	return deleteByID(s.db, &models.Quote{}, id)
}

// NextSequence returns 1 + the highest sequence among numbers starting with
// prefix. Suffixes after the digits (duplicates) are ignored, so deleting a
// document never hands its number out twice while a later one exists.
func (s *Store) NextSequence(model any, prefix string) (int, error) {
	var numbers []string
	if err := s.db.Model(model).Where("number LIKE ?", prefix+"%").Pluck("number", &numbers).Error; err != nil {
		return 0, fmt.Errorf("list numbers: %w", err)
	}
	highest := 0
	for _, number := range numbers {
		digits := strings.TrimPrefix(number, prefix)
		end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
		if end >= 0 {
			digits = digits[:end]
		}
		if n, err := strconv.Atoi(digits); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

// ---- Templates

func (s *Store) Templates() ([]models.QuoteTemplate, error) {
	out := []models.QuoteTemplate{}
	if err := s.db.Order("usage_count DESC").Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

func (s *Store) Template(id string) (models.QuoteTemplate, error) {
	var t models.QuoteTemplate
	if err := s.db.First(&t, "id = ?", id).Error; err != nil {
		return models.QuoteTemplate{}, fmt.Errorf("template %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) SaveTemplate(t *models.QuoteTemplate) error {
	if err := s.db.Save(t).Error; err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *Store) DeleteTemplate(id string) error {
	return deleteByID(s.db, &models.QuoteTemplate{}, id)
}

// ---- Versions

// Versions returns every version of quoteID in storage order.
func (s *Store) Versions(quoteID string) ([]models.QuoteVersion, error) {
	out := []models.QuoteVersion{}
	if err := s.db.Where("quote_id = ?", quoteID).Order("version_number").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return out, nil
}

func (s *Store) Version(id string) (models.QuoteVersion, error) {
	var v models.QuoteVersion
	if err := s.db.First(&v, "id = ?", id).Error; err != nil {
		return models.QuoteVersion{}, fmt.Errorf("version %s: %w", id, err)
	}
	return v, nil
}

func (s *Store) CreateVersion(v *models.QuoteVersion) error {
	if err := s.db.Create(v).Error; err != nil {
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

func (s *Store) DeleteVersions(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.Where("id IN ?", ids).Delete(&models.QuoteVersion{}).Error; err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}
	return nil
}

// ---- Invoices

func (s *Store) Invoices(status models.InvoiceStatus) ([]models.Invoice, error) {
	q := s.db.Preload("Payments", orderPayments).Order(desc("issue_date")).Order(desc("number"))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []models.Invoice{}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return out, nil
}

func (s *Store) Invoice(id string) (models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.Preload("Payments", orderPayments).First(&inv, "id = ?", id).Error; err != nil {
		return models.Invoice{}, fmt.Errorf("invoice %s: %w", id, err)
	}
	return inv, nil
}

// SaveInvoice upserts the invoice and makes its stored payments match
// inv.Payments.
func (s *Store) SaveInvoice(inv *models.Invoice) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(inv).Error; err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}

		ids := make([]string, 0, len(inv.Payments))
		for i := range inv.Payments {
			inv.Payments[i].InvoiceID = inv.ID
			ids = append(ids, inv.Payments[i].ID)
		}
		stale := tx.Where("invoice_id = ?", inv.ID)
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("prune payments: %w", err)
		}
		for i := range inv.Payments {
			if err := tx.Save(&inv.Payments[i]).Error; err != nil {
				return fmt.Errorf("save payment: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteInvoice(id string) error {
	if err := s.db.Where("invoice_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
		return fmt.Errorf("delete payments of %s: %w", id, err)
	}
	return deleteByID(s.db, &models.Invoice{}, id)
}

func orderPayments(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}}).Order("id")
}

// ---- Notifications

func (s *Store) Notifications() ([]models.Notification, error) {
	out := []models.Notification{}
	if err := s.db.Order(desc("timestamp")).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *Store) CreateNotifications(list []models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	if err := s.db.Create(&list).Error; err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	return nil
}

// MarkNotificationsRead marks the given notifications read, or all of them
// when no id is given.
func (s *Store) MarkNotificationsRead(ids ...string) error {
	q := s.db.Model(&models.Notification{}).Where(map[string]any{"read": false})
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Update("read", true).Error; err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (s *Store) DeleteNotification(id string) error {
	return deleteByID(s.db, &models.Notification{}, id)
}

func (s *Store) ClearNotifications() error {
	if err := s.db.Where("1 = 1").Delete(&models.Notification{}).Error; err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// desc orders by a quoted column; date and timestamp are keywords on some dialects.
func desc(column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true}
}

// deleteByID deletes one row and reports gorm.ErrRecordNotFound when none matched.
func deleteByID(db *gorm.DB, model any, id string) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
