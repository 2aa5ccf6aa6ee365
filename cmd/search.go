package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/shopper-cli/internal/query"
)

var (
	searchLimit   int
	searchSuggest bool
	searchJSON    bool
	searchRaw     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Search the catalog directly",
	Long:  "Runs a catalog search for the given term. By default the term goes through the same Danish query translation the matcher uses; --raw sends it verbatim.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		term := strings.Join(args, " ")
		client := initStorefront()

		if searchSuggest {
			got, err := client.Suggestions(ctx, term)
			if err != nil {
				return eris.Wrap(err, "search suggestions")
			}
			for _, s := range got.Suggestions {
				fmt.Fprintln(os.Stdout, s)
			}
			for _, c := range got.Categories {
				fmt.Fprintf(os.Stdout, "[category] %s\n", c.Name)
			}
			return nil
		}

		q := term
		if !searchRaw {
			lex, err := initLexicon()
			if err != nil {
				return err
			}
			q = query.New(lex).Primary(term, "")
		}

		products, err := client.Search(ctx, q, searchLimit)
		if err != nil {
			return eris.Wrap(err, "search")
		}
		if len(products) == 0 {
			fmt.Fprintln(os.Stderr, "No products found.")
			return nil
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(products)
		}
		if q != term {
			fmt.Fprintf(os.Stdout, "Searched for %q\n\n", q)
		}
		formatProductTable(os.Stdout, products)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "max results")
	searchCmd.Flags().BoolVar(&searchSuggest, "suggest", false, "show query completions instead of products")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit JSON")
	searchCmd.Flags().BoolVar(&searchRaw, "raw", false, "skip Danish query translation")
	rootCmd.AddCommand(searchCmd)
}
