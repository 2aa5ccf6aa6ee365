package model

import (
	"fmt"
	"strings"
)

// Ingredient is a single parsed recipe ingredient. Immutable once parsed.
type Ingredient struct {
	Original string   `json:"original"`
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// ScaledIngredient is an ingredient with its quantity multiplied by a
// scale factor. ScaledQuantity is nil when the source had no quantity.
type ScaledIngredient struct {
	Ingredient     Ingredient `json:"ingredient"`
	ScaleFactor    float64    `json:"scale_factor"`
	ScaledQuantity *float64   `json:"scaled_quantity,omitempty"`
}

// Name returns the underlying ingredient name.
func (s ScaledIngredient) Name() string { return s.Ingredient.Name }

// Unit returns the underlying ingredient unit.
func (s ScaledIngredient) Unit() string { return s.Ingredient.Unit }

// String renders the scaled ingredient as "1.5 kg flour (sifted)".
func (s ScaledIngredient) String() string {
	var parts []string
	if s.ScaledQuantity != nil {
		parts = append(parts, FormatQuantity(*s.ScaledQuantity))
	}
	if s.Ingredient.Unit != "" {
		parts = append(parts, s.Ingredient.Unit)
	}
	parts = append(parts, s.Ingredient.Name)
	if s.Ingredient.Notes != "" {
		parts = append(parts, "("+s.Ingredient.Notes+")")
	}
	return strings.Join(parts, " ")
}

// ConsolidatedIngredient is one shopping-list line merged from same-name
// ingredients across recipes. Built once per consolidation run.
type ConsolidatedIngredient struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Sources  []string `json:"sources"`
}

// String renders the line as "1.5 kg flour".
func (c ConsolidatedIngredient) String() string {
	var parts []string
	if c.Quantity != nil {
		parts = append(parts, FormatQuantity(*c.Quantity))
	}
	if c.Unit != "" {
		parts = append(parts, c.Unit)
	}
	parts = append(parts, c.Name)
	return strings.Join(parts, " ")
}

// FormatQuantity renders a quantity without trailing zeros: 3 -> "3",
// 1.5 -> "1.5", 0.25 -> "0.25".
func FormatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", q), "0"), ".")
}

// Float is a convenience for building optional quantities in literals.
func Float(v float64) *float64 { return &v }
