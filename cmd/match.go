package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/shopper-cli/internal/model"
	"github.com/sells-group/shopper-cli/internal/recipe"
)

var matchOpts matchFlags

var matchCmd = &cobra.Command{
	Use:   "match <ingredient>...",
	Short: "Match ingredient lines to catalog products",
	Long:  `Matches each ingredient line ("500 g hakket oksekød") to the best available product, honoring dietary constraints and organic/budget preferences.`,
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

		ings := make([]model.ScaledIngredient, 0, len(args))
		for _, arg := range args {
			ing := recipe.ParseIngredient(arg)
			if ing.Name == "" {
				continue
			}
			ings = append(ings, model.ScaledIngredient{
				Ingredient:     ing,
				ScaleFactor:    1,
				ScaledQuantity: ing.Quantity,
			})
		}
		if len(ings) == 0 {
			return eris.New("no parseable ingredient lines")
		}

		m, err := initMatcher(matchOpts, st)
		if err != nil {
			return err
		}
		matches, err := m.MatchAll(ctx, ings, matchOpts.mealContext)
		if err != nil {
			return eris.Wrap(err, "match")
		}

		if err := writeMatches(os.Stdout, matches, matchOpts.output); err != nil {
			return err
		}

		total := 0.0
		for _, match := range matches {
			total += match.Price() * float64(match.Quantity)
		}
		if matchOpts.output == "table" {
			fmt.Fprintf(os.Stdout, "\nEstimated total: %.2f kr\n", total)
		}
		return nil
	},
}

func init() {
	registerMatchFlags(&matchOpts, matchCmd.Flags())
	rootCmd.AddCommand(matchCmd)
}
