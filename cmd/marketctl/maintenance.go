package main

import (
	"fmt"
	"time"

	"github.com/beachesmls/marketreport/pkg/db/models/mls"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/property"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const auditLimit = 5000

var (
	ensureIndexes bool

	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Re-check windowed report rows in process and summarize listing history",
		Long: `audit runs the recent-sales and price-changes reports against the whole
store and re-applies their rules to every returned row. Any row the database
returned but the in-process rules reject is printed as a mismatch.`,
		Args: cobra.NoArgs,
		RunE: runAudit,
	}
	indexesCmd = &cobra.Command{
		Use:   "indexes",
		Short: "List the listing table indexes, creating the recommended ones with --ensure",
		Args:  cobra.NoArgs,
		RunE:  runIndexes,
	}
)

func init() {
	indexesCmd.Flags().BoolVar(&ensureIndexes, "ensure", false, "create missing recommended indexes first")
}

// Mismatch is a report row the in-process rules disagree with.
type Mismatch struct {
	Kind      listings.Kind `json:"kind"`
	ListingID string        `json:"listingId"`
	Status    string        `json:"status"`
}

// AuditResult is what audit prints.
type AuditResult struct {
	AsOf       string                `json:"asOf"`
	WindowDays int                   `json:"windowDays"`
	Checked    map[listings.Kind]int `json:"checked"`
	Mismatches []Mismatch            `json:"mismatches"`
	History    listings.DedupSummary `json:"history"`
}

// auditRules are the in-process checks for the windowed report kinds.
var auditRules = map[listings.Kind]func(s mls.Snapshot, asOf time.Time, windowDays int) bool{
	listings.KindRecentSales:  property.SoldWithin,
	listings.KindPriceChanges: property.QualifiesAsPriceChange,
}

// checkRows returns the rows rule rejects.
func checkRows(kind listings.Kind, rows []mls.Snapshot, asOf time.Time, windowDays int) []Mismatch {
	rule, ok := auditRules[kind]
	if !ok {
		return nil
	}
	var out []Mismatch
	for _, s := range rows {
		if !rule(s, asOf, windowDays) {
			out = append(out, Mismatch{Kind: kind, ListingID: s.ListingID, Status: s.Status})
		}
	}
	return out
}

func runAudit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := connect(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	asOf := time.Now().In(e.cfg.Location)
	result := AuditResult{
		AsOf:       asOf.Format(time.DateOnly),
		WindowDays: e.cfg.WindowDays,
		Checked:    make(map[listings.Kind]int, len(auditRules)),
		Mismatches: []Mismatch{},
	}
	for _, kind := range []listings.Kind{listings.KindRecentSales, listings.KindPriceChanges} {
		rows, err := e.db.Report(ctx, listings.ReportQuery{
			Kind:       kind,
			Limit:      auditLimit,
			AsOf:       asOf,
			WindowDays: e.cfg.WindowDays,
		})
		if err != nil {
			return fmt.Errorf("audit %s: %w", kind, err)
		}
		result.Checked[kind] = len(rows)
		result.Mismatches = append(result.Mismatches, checkRows(kind, rows, asOf, e.cfg.WindowDays)...)
		if len(rows) == auditLimit {
			e.logger.Warn("Audit hit the row limit, older rows were not checked",
				zap.String("kind", string(kind)), zap.Int("limit", auditLimit))
		}
	}

	result.History, err = e.db.Dedup(ctx)
	if err != nil {
		return fmt.Errorf("summarize listing history: %w", err)
	}
	return printJSON(result)
}

func runIndexes(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := connect(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	if ensureIndexes {
		if err := e.db.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	indexes, err := e.db.Indexes(ctx)
	if err != nil {
		return err
	}
	return printJSON(indexes)
}
