package model

import "time"

// PriceRecord is one observed price for a tracked product.
type PriceRecord struct {
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	UnitPrice   float64   `json:"unit_price,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// PriceStats summarizes a product's recorded price history.
type PriceStats struct {
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	CurrentPrice float64   `json:"current_price"`
	MinPrice     float64   `json:"min_price"`
	MaxPrice     float64   `json:"max_price"`
	AvgPrice     float64   `json:"avg_price"`
	PriceCount   int       `json:"price_count"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
}

// OnSale reports whether the current price sits at least 5% under the
// historical average.
func (s PriceStats) OnSale() bool {
	return s.CurrentPrice < s.AvgPrice*0.95
}

// DiscountPercent is the current discount relative to the average price.
func (s PriceStats) DiscountPercent() float64 {
	if s.AvgPrice == 0 {
		return 0
	}
	return (s.AvgPrice - s.CurrentPrice) / s.AvgPrice * 100
}

// PriceAlert flags a tracked product currently selling below its average.
type PriceAlert struct {
	ProductID       int64   `json:"product_id"`
	ProductName     string  `json:"product_name"`
	CurrentPrice    float64 `json:"current_price"`
	AvgPrice        float64 `json:"avg_price"`
	MinPrice        float64 `json:"min_price"`
	DiscountPercent float64 `json:"discount_percent"`
	Lowest          bool    `json:"lowest"` // current price ties or beats the recorded minimum
}

// PreferredProduct is a product the user has bought before, synced from
// order history. Preferred products get a score bonus during matching.
type PreferredProduct struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	SyncedAt  time.Time `json:"synced_at"`
}
