package inventory

import "time"

// Item is one stocked material. Material names are unique ignoring case.
type Item struct {
	ID            int64     `json:"id"`
	Material      string    `json:"material"`
	Detail        string    `json:"detail"`
	Quantity      int64     `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	SalePrice     float64   `json:"sale_price"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockValue is the purchase cost of the units currently on hand.
func (i Item) StockValue() float64 {
	return float64(i.Quantity) * i.PurchasePrice
}

// WriteOffTotal aggregates every write-off of one material.
type WriteOffTotal struct {
	Material  string  `json:"material"`
	Quantity  int64   `json:"quantity"`
	TotalCost float64 `json:"total_cost"`
}

// WriteOff records material lost to damage, waste or theft. The unit cost is
// captured from the item's purchase price at the moment of the write-off, so
// later price changes never rewrite history.
type WriteOff struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Material  string    `json:"material"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason"`
	UnitCost  float64   `json:"unit_cost"`
	TotalCost float64   `json:"total_cost"`
	CreatedAt time.Time `json:"created_at"`
}
