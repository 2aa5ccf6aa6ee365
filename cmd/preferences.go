package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/shopper-cli/internal/model"
)

var preferencesCmd = &cobra.Command{
	Use:     "preferences",
	Aliases: []string{"prefs"},
	Short:   "Manage preferred products",
	Long:    "Preferred products are ones you have bought before; the matcher ranks them above otherwise-equal candidates.",
}

// -- preferences mark --

var preferencesMarkCmd = &cobra.Command{
	Use:   "mark <product-id> [name]",
	Short: "Mark a product as preferred",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid product id %q", args[0])
		}
		name := strings.Join(args[1:], " ")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		category, _ := cmd.Flags().GetString("category")
		n, err := st.MarkPreferred(ctx, []model.PreferredProduct{{
			ProductID: id,
			Name:      name,
			Category:  category,
			SyncedAt:  time.Now().UTC(),
		}})
		if err != nil {
			return eris.Wrap(err, "preferences mark")
		}
		if n == 0 {
			fmt.Fprintln(os.Stderr, "Nothing marked.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "Marked product %d as preferred.\n", id)
		return nil
	},
}

// -- preferences status --

var preferencesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List preferred products",
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

		list, err := st.ListPreferred(ctx)
		if err != nil {
			return eris.Wrap(err, "preferences status")
		}
		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No preferred products.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSINCE")
		for _, p := range list {
			since := "-"
			if !p.SyncedAt.IsZero() {
				since = p.SyncedAt.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ProductID, p.Name, p.Category, since)
		}
		tw.Flush()
		return nil
	},
}

// -- preferences clear --

var preferencesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all preferred products",
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

		if err := st.ClearPreferred(ctx); err != nil {
			return eris.Wrap(err, "preferences clear")
		}
		fmt.Fprintln(os.Stdout, "Cleared preferred products.")
		return nil
	},
}

func init() {
	preferencesMarkCmd.Flags().String("category", "", "product category")

	preferencesCmd.AddCommand(preferencesMarkCmd, preferencesStatusCmd, preferencesClearCmd)
	rootCmd.AddCommand(preferencesCmd)
}
