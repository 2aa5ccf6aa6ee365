package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/shopper-cli/internal/model"
)

func writeMatches(w io.Writer, matches []model.ProductMatch, format string) error {
	switch format {
	case "table":
		formatMatchTable(w, matches)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	case "csv":
		return formatMatchCSV(w, matches)
	default:
		return eris.Errorf("unknown output format: %s", format)
	}
}

func formatMatchTable(w io.Writer, matches []model.ProductMatch) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INGREDIENT\tQTY\tPRODUCT\tPRICE\tNOTES")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			m.IngredientName, m.Quantity, m.ProductName(), formatPrice(m), matchNotes(m))
	}
	tw.Flush()
}

func formatPrice(m model.ProductMatch) string {
	if m.Product == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f kr", m.Product.Price)
}

func matchNotes(m model.ProductMatch) string {
	var notes []string
	if !m.Safety.Safe {
		notes = append(notes, "CHECK LABEL")
	}
	if m.Safety.Excluded > 0 {
		notes = append(notes, fmt.Sprintf("%d excluded", m.Safety.Excluded))
	}
	if len(m.Alternatives) > 0 {
		notes = append(notes, fmt.Sprintf("%d alternatives", len(m.Alternatives)))
	}
	return strings.Join(notes, ", ")
}

func formatMatchCSV(w io.Writer, matches []model.ProductMatch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ingredient", "quantity", "product_id", "product", "price", "safe", "search_query"}); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, m := range matches {
		row := []string{
			m.IngredientName,
			strconv.Itoa(m.Quantity),
			strconv.FormatInt(m.ProductID(), 10),
			m.ProductName(),
			strconv.FormatFloat(m.Price(), 'f', 2, 64),
			strconv.FormatBool(m.Safety.Safe),
			m.SearchQuery,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}

func formatProductTable(w io.Writer, products []model.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tPRICE\tUNIT PRICE\tAVAILABLE")
	for _, p := range products {
		available := "yes"
		if !p.Available {
			available = "no"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f kr\t%s\t%s\n",
			p.ID, p.Name, p.UnitSize, p.Price, p.UnitPrice, available)
	}
	tw.Flush()
}

func formatShoppingList(w io.Writer, lines []model.ConsolidatedIngredient) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tFROM")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\n", line.String(), strings.Join(line.Sources, ", "))
	}
	tw.Flush()
}
