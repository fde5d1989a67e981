package suppliers

import "time"

// Supplier is a vendor the shop buys material from. Names are unique
// ignoring case; the WhatsApp number is stored digits-only.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	WhatsApp  string    `json:"whatsapp,omitempty"`
	Website   string    `json:"website,omitempty"`
	Product   string    `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
