package database

import (
	"fmt"

	"devis-backend/models"

	"gorm.io/gorm"
)

// TenantModels are the tables every tenant schema holds.
var TenantModels = []any{
	&models.Settings{},
	&models.Client{},
	&models.Quote{},
	&models.QuoteTemplate{},
	&models.QuoteVersion{},
	&models.Invoice{},
	&models.Payment{},
	&models.Notification{},
	&models.IdempotencyKey{},
}

// MigrateTenantSchema applies (idempotent) schema migrations for a single tenant schema.
// It pins search_path to the tenant and performs:
// - AutoMigrate (tables/columns)
// - Indexes for list filters and notification dedup
// - Basic CHECK constraints (postgres only)
func MigrateTenantSchema(db *gorm.DB, schema string) error {
	if schema == "" {
		return fmt.Errorf("schema name is empty")
	}

	return InTenant(db, schema, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(TenantModels...); err != nil {
			return fmt.Errorf("tenant automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_quotes_status_date ON quotes (status, date)`,
			`CREATE INDEX IF NOT EXISTS idx_invoices_status_due ON invoices (status, due_date)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_quote_type ON notifications (quote_id, type)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		if !IsPostgres(tx) {
			return nil
		}

		checks := []struct{ table, name, expr string }{
			{"payments", "chk_payments_amount_pos", "amount > 0"},
			{"invoices", "chk_invoices_amount_paid_nonneg", "amount_paid >= 0"},
			{"quotes", "chk_quotes_discount_nonneg", "discount >= 0"},
		}
		for _, c := range checks {
			stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%[1]s'::regclass
		  AND conname  = '%[2]s'
	) THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
	END IF;
END $$;`, c.table, c.name, c.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}
		return nil
	})
}
