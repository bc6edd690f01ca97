package main

import (
	"fmt"

	"github.com/beachesmls/marketreport/pkg/areas"
	"github.com/beachesmls/marketreport/pkg/db/postgres/listings"
	"github.com/beachesmls/marketreport/pkg/report"
	"github.com/spf13/cobra"
)

var (
	areaID   string
	areaType string
	limit    int
	minPrice float64
	maxPrice float64

	reportCmd = &cobra.Command{
		Use:   "report [kind]",
		Short: "Run one list report (active-listings, recent-sales, under-contract, coming-soon, price-changes)",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print market statistics for an area",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	areaCmd = &cobra.Command{
		Use:   "area [id]",
		Short: "Resolve an area id to its profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runArea,
	}
	listingCmd = &cobra.Command{
		Use:   "listing [listing_id]",
		Short: "Print the current snapshot of one listing",
		Args:  cobra.ExactArgs(1),
		RunE:  runListing,
	}
	citiesCmd = &cobra.Command{
		Use:   "cities",
		Short: "List cities with active and total listing counts",
		Args:  cobra.NoArgs,
		RunE:  runCities,
	}
)

func init() {
	for _, c := range []*cobra.Command{reportCmd, statsCmd} {
		c.Flags().StringVar(&areaID, "area", "all", "area id, or all")
		c.Flags().StringVar(&areaType, "type", "", "area type (city, development, subdivision, zone, region, lifestyle)")
		c.Flags().Float64Var(&minPrice, "min-price", 0, "lower price bound")
		c.Flags().Float64Var(&maxPrice, "max-price", 0, "upper price bound")
	}
	reportCmd.Flags().IntVar(&limit, "limit", 0, "maximum rows, 0 for the default")
	areaCmd.Flags().StringVar(&areaType, "type", "", "area type")
}

// params reads the shared report flags. Price flags count only when set.
func params(cmd *cobra.Command) report.Params {
	p := report.Params{Limit: limit}
	if cmd.Flags().Changed("min-price") {
		v := minPrice
		p.MinPrice = &v
	}
	if cmd.Flags().Changed("max-price") {
		v := maxPrice
		p.MaxPrice = &v
	}
	return p
}

func ref(id string) report.AreaRef {
	return report.AreaRef{ID: id, Type: areas.Type(areaType)}
}

func runReport(cmd *cobra.Command, args []string) error {
	kind, ok := listings.ParseKind(args[0])
	if !ok || kind == listings.KindStats {
		return fmt.Errorf("unknown report kind %q", args[0])
	}
	e, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	rows, err := e.reports.Report(cmd.Context(), kind, ref(areaID), params(cmd))
	if err != nil {
		return err
	}
	return printJSON(rows)
}

func runStats(cmd *cobra.Command, _ []string) error {
	e, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := e.reports.Stats(cmd.Context(), ref(areaID), params(cmd))
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runArea(cmd *cobra.Command, args []string) error {
	e, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	profile, err := e.reports.Profile(cmd.Context(), ref(args[0]))
	if err != nil {
		return err
	}
	return printJSON(profile)
}

func runListing(cmd *cobra.Command, args []string) error {
	e, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.reports.Listing(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(p)
}

func runCities(cmd *cobra.Command, _ []string) error {
	e, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	cities, err := e.reports.Cities(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cities)
}
