package orders

import "time"

// OrderStatus enumerates the production states an order moves through.
type OrderStatus string

const (
	StatusPendingConfirmation OrderStatus = "PENDING_CONFIRMATION"
	StatusUndesigned          OrderStatus = "UNDESIGNED"
	StatusDesignsReady        OrderStatus = "DESIGNS_READY"
	StatusReadyForDelivery    OrderStatus = "READY_FOR_DELIVERY"
	StatusDelivered           OrderStatus = "DELIVERED"
)

// AllStatuses lists every order status in production order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPendingConfirmation,
		StatusUndesigned,
		StatusDesignsReady,
		StatusReadyForDelivery,
		StatusDelivered,
	}
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendingConfirmation, StatusUndesigned, StatusDesignsReady,
		StatusReadyForDelivery, StatusDelivered:
		return true
	}
	return false
}

// Deducting reports whether material must be physically committed to stock
// while the order sits in this status.
func (s OrderStatus) Deducting() bool {
	return s == StatusReadyForDelivery || s == StatusDelivered
}

// AllowedAtCreation reports whether an order may start in this status.
func (s OrderStatus) AllowedAtCreation() bool {
	return s == StatusPendingConfirmation || s == StatusUndesigned
}

// MaterialLine is one reserved material of an order. The JSON tags match the
// array format stored in the pedidos.materiales_usados column.
type MaterialLine struct {
	Material  string   `json:"material"`
	Quantity  int64    `json:"cantidad"`
	UnitPrice *float64 `json:"precio,omitempty"`
}

// Order is a customer order with its logical material reservation.
// InventoryDeducted is true iff the reserved quantities are currently
// subtracted from live stock.
type Order struct {
	ID                int64          `json:"id"`
	OrderDate         time.Time      `json:"order_date"`
	Client            string         `json:"client"`
	Detail            string         `json:"detail"`
	Quantity          int64          `json:"quantity"`
	UnitPrice         float64        `json:"unit_price"`
	Total             float64        `json:"total"`
	Status            OrderStatus    `json:"status"`
	Materials         []MaterialLine `json:"materials"`
	Paid              bool           `json:"paid"`
	InventoryDeducted bool           `json:"inventory_deducted"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
