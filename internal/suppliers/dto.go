package suppliers

type CreateSupplierRequest struct {
	Name     string `json:"name" validate:"required"`
	WhatsApp string `json:"whatsapp"`
	Website  string `json:"website"`
	Product  string `json:"product"`
}

type UpdateSupplierRequest struct {
	Name     *string `json:"name,omitempty"`
	WhatsApp *string `json:"whatsapp,omitempty"`
	Website  *string `json:"website,omitempty"`
	Product  *string `json:"product,omitempty"`
}
