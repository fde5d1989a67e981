package suppliers

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/printhart/printhart/internal/shared"
)

// Service manages the supplier directory.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a supplier. The WhatsApp number is normalized to bare
// digits so "+1 (809) 555-0101" and "18095550101" are the same contact.
func (s *Service) Create(ctx context.Context, req CreateSupplierRequest) (*Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}

	whatsapp, err := normalizePhone(req.WhatsApp)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Insert(ctx, Supplier{
		Name:     name,
		WhatsApp: whatsapp,
		Website:  strings.TrimSpace(req.Website),
		Product:  strings.TrimSpace(req.Product),
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns one supplier.
func (s *Service) Get(ctx context.Context, id int64) (*Supplier, error) {
	return s.repo.Get(ctx, id)
}

// List returns all suppliers ordered by name.
func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

// Update edits supplier fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSupplierRequest) (*Supplier, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
		}
		updates["nombre"] = name
	}
	if req.WhatsApp != nil {
		whatsapp, err := normalizePhone(*req.WhatsApp)
		if err != nil {
			return nil, err
		}
		updates["whatsapp"] = whatsapp
	}
	if req.Website != nil {
		updates["sitio"] = strings.TrimSpace(*req.Website)
	}
	if req.Product != nil {
		updates["producto"] = strings.TrimSpace(*req.Product)
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a supplier.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// normalizePhone strips formatting characters and keeps digits only. An
// input with no digits at all is rejected; empty input clears the field.
func normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: whatsapp number must contain digits", shared.ErrValidation)
	}
	return b.String(), nil
}
