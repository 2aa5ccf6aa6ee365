package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/shopper-cli/internal/consolidate"
	"github.com/sells-group/shopper-cli/internal/model"
	"github.com/sells-group/shopper-cli/internal/recipe"
)

var (
	planOpts     matchFlags
	planServings int
	planScale    float64
	planListOnly bool
)

var planCmd = &cobra.Command{
	Use:   "plan <recipe-file>...",
	Short: "Build a shopping list from recipe files",
	Long: `Reads plain-text recipe files (one ingredient per line, optional
"Servings: N" header), scales them to the requested serving count,
consolidates duplicate ingredients across recipes and matches every line
to a catalog product.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var entries []consolidate.Entry
		for _, path := range args {
			rec, err := loadRecipeFile(path)
			if err != nil {
				return err
			}

			factor := planScale
			if factor <= 0 {
				factor = consolidate.ScaleFactor(rec.Servings, planServings)
			}
			for _, scaled := range consolidate.ScaleAll(rec.Ingredients, factor) {
				entries = append(entries, consolidate.Entry{Ingredient: scaled, Source: rec.Title})
			}
		}

		lex, err := initLexicon()
		if err != nil {
			return err
		}
		lines := consolidate.Consolidate(lex, entries)
		if len(lines) == 0 {
			return eris.New("no ingredients found in the given recipes")
		}

		fmt.Fprintf(os.Stdout, "Shopping list (%d items):\n\n", len(lines))
		formatShoppingList(os.Stdout, lines)

		if planListOnly {
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		m, err := initMatcher(planOpts, st)
		if err != nil {
			return err
		}
		matches, err := m.MatchAll(ctx, toScaled(lines), planOpts.mealContext)
		if err != nil {
			return eris.Wrap(err, "plan")
		}

		fmt.Fprintln(os.Stdout)
		if err := writeMatches(os.Stdout, matches, planOpts.output); err != nil {
			return err
		}

		total := 0.0
		unmatched := 0
		for _, match := range matches {
			total += match.Price() * float64(match.Quantity)
			if !match.Matched {
				unmatched++
			}
		}
		if planOpts.output == "table" {
			fmt.Fprintf(os.Stdout, "\nEstimated total: %.2f kr", total)
			if unmatched > 0 {
				fmt.Fprintf(os.Stdout, " (%d items unmatched)", unmatched)
			}
			fmt.Fprintln(os.Stdout)
		}
		return nil
	},
}

// loadRecipeFile reads a plain-text recipe. The title comes from an
// optional leading "# " line or the file name; a "Servings: N" line sets
// the recipe's base serving count.
func loadRecipeFile(path string) (recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recipe.Recipe{}, eris.Wrapf(err, "read recipe %s", path)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	servings := 0

	var body []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(trimmed, "# "):
			title = strings.TrimSpace(trimmed[2:])
		case strings.HasPrefix(lower, "servings:"), strings.HasPrefix(lower, "antal:"):
			_, value, _ := strings.Cut(trimmed, ":")
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				servings = n
			}
		default:
			body = append(body, line)
		}
	}

	return recipe.ParseRecipeText(title, strings.Join(body, "\n"), servings), nil
}

// toScaled adapts consolidated shopping-list lines to the matcher's input
// shape. Consolidation already applied scaling, so the factor is 1.
func toScaled(lines []model.ConsolidatedIngredient) []model.ScaledIngredient {
	out := make([]model.ScaledIngredient, len(lines))
	for i, line := range lines {
		out[i] = model.ScaledIngredient{
			Ingredient: model.Ingredient{
				Original: line.String(),
				Name:     line.Name,
				Quantity: line.Quantity,
				Unit:     line.Unit,
			},
			ScaleFactor:    1,
			ScaledQuantity: line.Quantity,
		}
	}
	return out
}

func init() {
	registerMatchFlags(&planOpts, planCmd.Flags())
	planCmd.Flags().IntVar(&planServings, "servings", 0, "target serving count (scales each recipe from its own count)")
	planCmd.Flags().Float64Var(&planScale, "scale", 0, "fixed scale factor applied to every recipe (overrides --servings)")
	planCmd.Flags().BoolVar(&planListOnly, "list-only", false, "print the consolidated list without matching products")
	rootCmd.AddCommand(planCmd)
}
