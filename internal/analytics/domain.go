// Package analytics derives financial figures from orders, inventory and
// write-offs. Nothing here is stored; every report is recomputed on demand.
package analytics

// Summary is the profit report for delivered orders plus the current value
// locked in stock.
type Summary struct {
	Revenue         float64 `json:"revenue"`
	CostOfGoods     float64 `json:"cost_of_goods"`
	WriteOffCost    float64 `json:"write_off_cost"`
	NetProfit       float64 `json:"net_profit"`
	MarginPercent   float64 `json:"margin_percent"`
	DeliveredOrders int     `json:"delivered_orders"`

	TotalInvestment float64 `json:"total_investment"`
	PotentialProfit float64 `json:"potential_profit"`
}

// MaterialCost is the current purchase price of a material, used to cost
// delivered orders at today's prices.
type MaterialCost struct {
	Material      string
	PurchasePrice float64
}

// ItemValuation carries the stock figures the valuation totals are built
// from.
type ItemValuation struct {
	Material      string
	Quantity      int64
	PurchasePrice float64
	SalePrice     float64
}
