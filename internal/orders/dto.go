package orders

import "time"

type MaterialLineRequest struct {
	Material  string   `json:"material" validate:"required"`
	Quantity  int64    `json:"quantity" validate:"required,gte=1"`
	UnitPrice *float64 `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
}

type CreateOrderRequest struct {
	OrderDate time.Time             `json:"order_date"`
	Client    string                `json:"client" validate:"required"`
	Detail    string                `json:"detail"`
	Quantity  int64                 `json:"quantity" validate:"gte=0"`
	UnitPrice float64               `json:"unit_price" validate:"required,gt=0"`
	Status    OrderStatus           `json:"status"`
	Materials []MaterialLineRequest `json:"materials" validate:"dive"`
}

type UpdateOrderRequest struct {
	OrderDate *time.Time `json:"order_date,omitempty"`
	Client    *string    `json:"client,omitempty"`
	Detail    *string    `json:"detail,omitempty"`
	UnitPrice *float64   `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
}

type ChangeStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

type SetPaidRequest struct {
	Paid bool `json:"paid"`
}

type ListOrdersRequest struct {
	Status *OrderStatus `json:"status,omitempty"`
	Paid   *bool        `json:"paid,omitempty"`
	Limit  int          `json:"limit" validate:"gte=0,lte=1000"`
	Offset int          `json:"offset" validate:"gte=0"`
}
