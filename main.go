package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devis-backend/config"
	"devis-backend/controllers"
	"devis-backend/database"
	"devis-backend/middlewares"
	"devis-backend/models"
	"devis-backend/reports"
	"devis-backend/routes"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfgPath string

var (
	reportSchema string
	reportPeriod string
	reportStart  string
	reportEnd    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "devis",
		Short:        "Quoting and invoicing API for construction companies",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a config file (yaml, json or toml); environment variables take precedence")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the background notifier",
		RunE:  runServe,
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the shared tables and every tenant schema",
		RunE:  runMigrate,
	}
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Run one expiry and payment reminder pass over all tenants",
		RunE:  runNotify,
	}
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the report of one tenant as JSON",
		RunE:  runReport,
	}
	reportCmd.Flags().StringVar(&reportSchema, "schema", "", "Tenant schema (defaults to the first tenant)")
	reportCmd.Flags().StringVar(&reportPeriod, "period", string(reports.PeriodMonth), "day, week, month, quarter, year or custom")
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Start date for a custom period (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "End date for a custom period (YYYY-MM-DD)")

	rootCmd.AddCommand(serveCmd, migrateCmd, notifyCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// setup loads the configuration, builds the logger and opens the database.
func setup(cmd *cobra.Command) (*config.Config, context.Context, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	if err := database.Connect(cfg); err != nil {
		return nil, nil, err
	}
	if err := database.AutoMigrate(); err != nil {
		return nil, nil, err
	}
	middlewares.SetJWTSecret(cfg.JWTSecret)
	controllers.SetExpiryWarningDays(cfg.ExpiryWarningDays)
	return cfg, ctx, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	logger := zerolog.Ctx(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := routes.NewApp(cfg, *logger)
	go runNotifier(ctx, cfg.NotifyInterval)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("driver", cfg.DBDriver).Msg("starting server")
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	schemas, err := tenantSchemas()
	if err != nil {
		return err
	}
	for _, schema := range schemas {
		if err := database.CreateSchema(database.DB, schema); err != nil {
			return err
		}
		if err := database.MigrateTenantSchema(database.DB, schema); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().Str("schema", schema).Msg("tenant migrated")
	}
	return nil
}

func runNotify(cmd *cobra.Command, _ []string) error {
	_, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	return checkAllTenants(ctx)
}

func runReport(cmd *cobra.Command, _ []string) error {
	_, _, err := setup(cmd)
	if err != nil {
		return err
	}

	schema := reportSchema
	if schema == "" {
		schemas, err := tenantSchemas()
		if err != nil {
			return err
		}
		if len(schemas) == 0 {
			return errors.New("no tenant registered")
		}
		schema = schemas[0]
	}

	q := controllers.ReportQuery{
		Period:      reports.Period(reportPeriod),
		Granularity: reports.PeriodMonth,
	}
	if q.Start, err = parseFlagDate(reportStart); err != nil {
		return err
	}
	if q.End, err = parseFlagDate(reportEnd); err != nil {
		return err
	}

	var report reports.Report
	err = database.InTenant(database.DB, schema, func(tx *gorm.DB) error {
		var err error
		report, err = controllers.BuildReport(database.NewStore(tx), q, time.Now().UTC())
		return err
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func parseFlagDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}

// tenantSchemas lists the tenants to visit. SQLite keeps every tenant in one
// database, so a single pass covers them all.
func tenantSchemas() ([]string, error) {
	schemas, err := database.TenantSchemas(database.DB)
	if err != nil {
		return nil, err
	}
	if !database.IsPostgres(database.DB) && len(schemas) > 1 {
		schemas = schemas[:1]
	}
	return schemas, nil
}

func runNotifier(ctx context.Context, interval time.Duration) {
	logger := zerolog.Ctx(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := checkAllTenants(ctx); err != nil {
				logger.Error().Err(err).Msg("notification check failed")
			}
		}
	}
}

// checkAllTenants runs the reminder pass per tenant. A failing tenant is
// logged and skipped.
func checkAllTenants(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	schemas, err := tenantSchemas()
	if err != nil {
		return err
	}
	for _, schema := range schemas {
		var added []models.Notification
		err := database.InTenant(database.DB.WithContext(ctx), schema, func(tx *gorm.DB) error {
			var err error
			added, err = controllers.RunNotificationCheck(database.NewStore(tx), models.UUIDs, time.Now().UTC())
			return err
		})
		if err != nil {
			logger.Error().Err(err).Str("schema", schema).Msg("tenant notification check failed")
			continue
		}
		logger.Debug().Str("schema", schema).Int("added", len(added)).Msg("notification check done")
	}
	return nil
}
