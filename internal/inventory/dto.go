package inventory

import "time"

type CreateItemRequest struct {
	Material      string  `json:"material" validate:"required"`
	Detail        string  `json:"detail"`
	Quantity      int64   `json:"quantity" validate:"gte=0"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	SalePrice     float64 `json:"sale_price" validate:"gte=0"`
}

type UpdateItemRequest struct {
	Material      *string  `json:"material,omitempty"`
	Detail        *string  `json:"detail,omitempty"`
	Quantity      *int64   `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	PurchasePrice *float64 `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	SalePrice     *float64 `json:"sale_price,omitempty" validate:"omitempty,gte=0"`
}

type ListItemsRequest struct {
	// InStock restricts the listing to items with quantity > 0.
	InStock bool `json:"in_stock"`
}

type CreateWriteOffRequest struct {
	Material string    `json:"material" validate:"required"`
	Quantity int64     `json:"quantity" validate:"required,gte=1"`
	Reason   string    `json:"reason" validate:"required"`
	Date     time.Time `json:"date"`
}

// UpdateWriteOffRequest adjusts an existing record. The unit cost stays
// frozen at what it was when the write-off happened; only the total is
// recomputed when the quantity changes.
type UpdateWriteOffRequest struct {
	Quantity *int64  `json:"quantity,omitempty" validate:"omitempty,gte=1"`
	Reason   *string `json:"reason,omitempty"`
}

type ListWriteOffsRequest struct {
	Material *string `json:"material,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
