package model

// Product is a purchasable catalog entry as returned by the storefront
// search gateway. The matching core treats it as read-only; any scratch
// state needed during scoring lives in parallel maps keyed by ID so that
// concurrent matching never aliases through a shared record.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	UnitPrice     string   `json:"unit_price,omitempty"`
	UnitPriceCalc float64  `json:"unit_price_calc,omitempty"`
	UnitSize      string   `json:"unit_size,omitempty"`
	Brand         string   `json:"brand,omitempty"`
	Category      string   `json:"category,omitempty"`
	Subcategory   string   `json:"subcategory,omitempty"`
	Available     bool     `json:"available"`
	Labels        []string `json:"labels,omitempty"`
}

// SafetyInfo is advisory dietary metadata attached to a match. A match is
// never rejected on safety grounds; the caller decides what to do with it.
type SafetyInfo struct {
	Safe     bool     `json:"safe"`
	Warnings []string `json:"warnings,omitempty"`
	Excluded int      `json:"excluded,omitempty"` // candidates removed by the dietary filter
}

// ProductMatch is the result of matching one ingredient against the
// catalog. Product is nil when nothing matched; Quantity is still a
// best-effort package count so the line remains actionable.
type ProductMatch struct {
	IngredientName string     `json:"ingredient_name"`
	Product        *Product   `json:"product,omitempty"`
	Quantity       int        `json:"quantity"`
	Matched        bool       `json:"matched"`
	SearchQuery    string     `json:"search_query"`
	Alternatives   []Product  `json:"alternatives,omitempty"`
	Safety         SafetyInfo `json:"safety"`
}

// ProductID returns the matched product's ID, or 0 when unmatched.
func (m *ProductMatch) ProductID() int64 {
	if m.Product == nil {
		return 0
	}
	return m.Product.ID
}

// ProductName returns the matched product's name, or a placeholder.
func (m *ProductMatch) ProductName() string {
	if m.Product == nil {
		return "no match found"
	}
	return m.Product.Name
}

// Price returns the matched product's price, or 0 when unmatched.
func (m *ProductMatch) Price() float64 {
	if m.Product == nil {
		return 0
	}
	return m.Product.Price
}

// SelectAlternative promotes alternative k to champion and re-inserts the
// previous champion at the front of the alternatives, preserving its
// relative priority. Out-of-range k is a no-op. This is the only sanctioned
// mutation of a ProductMatch after creation.
func (m *ProductMatch) SelectAlternative(k int) {
	if k < 0 || k >= len(m.Alternatives) {
		return
	}
	chosen := m.Alternatives[k]
	rest := make([]Product, 0, len(m.Alternatives))
	if m.Product != nil {
		rest = append(rest, *m.Product)
	}
	for i, alt := range m.Alternatives {
		if i != k {
			rest = append(rest, alt)
		}
	}
	m.Product = &chosen
	m.Alternatives = rest
	m.Matched = true
}

// SafetyCheckResult reports allergen screening for a single product.
type SafetyCheckResult struct {
	Safe           bool     `json:"safe"`
	AllergensFound []string `json:"allergens_found,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	ProductName    string   `json:"product_name"`
}

// DietaryCheckResult reports dietary-restriction screening for a single product.
type DietaryCheckResult struct {
	Compatible  bool     `json:"compatible"`
	Conflicts   []string `json:"conflicts,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	ProductName string   `json:"product_name"`
}
