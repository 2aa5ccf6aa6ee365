package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/shopper-cli/internal/store"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Inspect tracked price history",
	Long:  "Commands for viewing price history, statistics and discount alerts collected during matching runs.",
}

// -- prices track --

var pricesTrackCmd = &cobra.Command{
	Use:   "track <term>...",
	Short: "Search the catalog and record current prices",
	Long:  "Matching runs record prices automatically; track adds products to the history without building a shopping list.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		client := initStorefront()

		total := 0
		for _, term := range args {
			products, err := client.Search(ctx, term, limit)
			if err != nil {
				return eris.Wrapf(err, "prices track %q", term)
			}
			n, err := st.RecordPrices(ctx, products)
			if err != nil {
				return eris.Wrapf(err, "prices track %q", term)
			}
			total += n
		}
		fmt.Fprintf(os.Stdout, "Recorded %d prices.\n", total)
		return nil
	},
}

// -- prices history --

var pricesHistoryCmd = &cobra.Command{
	Use:   "history <product-id|name>",
	Short: "Show recorded prices for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		days, _ := cmd.Flags().GetInt("days")
		filter := store.HistoryFilter{Days: days}
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			filter.ProductID = id
		} else {
			filter.ProductName = args[0]
		}

		records, err := st.PriceHistory(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "prices history")
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No price records found.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tPRODUCT\tPRICE\tUNIT PRICE")
		for _, r := range records {
			unitPrice := "-"
			if r.UnitPrice > 0 {
				unitPrice = fmt.Sprintf("%.2f", r.UnitPrice)
			}
			fmt.Fprintf(tw, "%s\t%s\t%.2f kr\t%s\n",
				r.RecordedAt.Format("2006-01-02"), r.ProductName, r.Price, unitPrice)
		}
		tw.Flush()
		return nil
	},
}

// -- prices stats --

var pricesStatsCmd = &cobra.Command{
	Use:   "stats <product-id>",
	Short: "Show price statistics for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid product id %q", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := st.PriceStats(ctx, id)
		if err != nil {
			return eris.Wrap(err, "prices stats")
		}
		if stats == nil {
			fmt.Fprintln(os.Stderr, "No price records for that product.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%s\n", stats.ProductName)
		fmt.Fprintf(os.Stdout, "  current: %.2f kr\n", stats.CurrentPrice)
		fmt.Fprintf(os.Stdout, "  min/avg/max: %.2f / %.2f / %.2f kr over %d records\n",
			stats.MinPrice, stats.AvgPrice, stats.MaxPrice, stats.PriceCount)
		if stats.OnSale() {
			fmt.Fprintf(os.Stdout, "  on sale: %.1f%% below the recorded average\n", stats.DiscountPercent())
		}
		return nil
	},
}

// -- prices alerts --

var pricesAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List products currently below their usual price",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		minDiscount, _ := cmd.Flags().GetFloat64("min-discount")
		if minDiscount <= 0 {
			minDiscount = cfg.Prices.AlertDiscount
		}

		alerts, err := st.PriceAlerts(ctx, minDiscount)
		if err != nil {
			return eris.Wrap(err, "prices alerts")
		}
		if len(alerts) == 0 {
			fmt.Fprintln(os.Stderr, "No price alerts.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRODUCT\tNOW\tUSUALLY\tDISCOUNT\t")
		for _, a := range alerts {
			lowest := ""
			if a.Lowest {
				lowest = "lowest recorded"
			}
			fmt.Fprintf(tw, "%s\t%.2f kr\t%.2f kr\t%.1f%%\t%s\n",
				a.ProductName, a.CurrentPrice, a.AvgPrice, a.DiscountPercent, lowest)
		}
		tw.Flush()
		return nil
	},
}

// -- prices status --

var pricesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show price-tracking totals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		count, err := st.TrackedCount(ctx)
		if err != nil {
			return eris.Wrap(err, "prices status")
		}
		fmt.Fprintf(os.Stdout, "Tracking prices for %d products.\n", count)
		return nil
	},
}

// -- prices clear --

var pricesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete price records older than the retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = cfg.Prices.RetentionDays
		}

		n, err := st.ClearOldPrices(ctx, days)
		if err != nil {
			return eris.Wrap(err, "prices clear")
		}
		fmt.Fprintf(os.Stdout, "Deleted %d price records older than %d days.\n", n, days)
		return nil
	},
}

func init() {
	pricesTrackCmd.Flags().Int("limit", 10, "max results per term")
	pricesHistoryCmd.Flags().Int("days", 30, "history window in days")
	pricesAlertsCmd.Flags().Float64("min-discount", 0, "minimum discount percent (default from config)")
	pricesClearCmd.Flags().Int("days", 0, "retention window in days (default from config)")

	pricesCmd.AddCommand(pricesTrackCmd, pricesHistoryCmd, pricesStatsCmd, pricesAlertsCmd, pricesStatusCmd, pricesClearCmd)
	rootCmd.AddCommand(pricesCmd)
}
