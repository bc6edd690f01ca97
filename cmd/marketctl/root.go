package main

import (
	"context"
	"fmt"
	"os"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/logging"
	"github.com/beachesmls/marketreport/pkg/report"
	"github.com/go-jose/go-jose/v4/json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile string

	rootCmd = &cobra.Command{
		Use:   "marketctl",
		Short: "Run market reports and listing store maintenance from the shell",
		Long: `marketctl talks to the MLS listing store directly, using the same
environment as the query service (POSTGRES_*, MLS_*, AREA_*, REPORT_*).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before connecting")

	rootCmd.AddCommand(reportCmd, statsCmd, areaCmd, listingCmd, citiesCmd)
	rootCmd.AddCommand(auditCmd, indexesCmd)
}

// env is what a command needs to talk to the store.
type env struct {
	logger  *zap.Logger
	db      *listings.DB
	reports *report.Service
	cfg     report.Config
}

func (e *env) Close() {
	if e.reports != nil {
		e.reports.Close()
	}
	e.db.Close()
	_ = e.logger.Sync()
}

// connect opens the store and, when withReports is set, the report service
// on top of the configured area provider.
func connect(ctx context.Context, withReports bool) (*env, error) {
	logger, err := logging.New()
	if err != nil {
		return nil, err
	}
	db, err := listings.New(ctx, logger, "cli", listings.TablesFromEnv())
	if err != nil {
		return nil, fmt.Errorf("connect to listing store: %w", err)
	}
	e := &env{logger: logger, db: db}

	cfg, err := report.ConfigFromEnv()
	if err != nil {
		e.Close()
		return nil, err
	}
	e.cfg = cfg
	if !withReports {
		return e, nil
	}

	provider, err := areas.ProviderFromEnv(db, logging.Component(logger, "area_provider"))
	if err != nil {
		e.Close()
		return nil, err
	}
	e.reports = report.NewService(db, provider, cfg, logger)
	return e, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
