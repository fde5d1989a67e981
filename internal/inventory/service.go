package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/printhart/printhart/internal/shared"
)

// Service manages stock items and material write-offs.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateItem registers a new material. Names are trimmed and must be unique
// ignoring case.
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	material := strings.TrimSpace(req.Material)
	if material == "" {
		return nil, fmt.Errorf("%w: material name is required", shared.ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", shared.ErrValidation)
	}
	if req.PurchasePrice < 0 || req.SalePrice < 0 {
		return nil, fmt.Errorf("%w: prices cannot be negative", shared.ErrValidation)
	}

	id, err := s.repo.Insert(ctx, Item{
		Material:      material,
		Detail:        strings.TrimSpace(req.Detail),
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// GetItem returns a single stock item.
func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.repo.Get(ctx, id)
}

// ListItems returns stock items ordered by material name, optionally only
// those with units on hand.
func (s *Service) ListItems(ctx context.Context, req ListItemsRequest) ([]Item, error) {
	return s.repo.List(ctx, req)
}

// UpdateItem edits an item. Renames go through the same case-insensitive
// uniqueness rule as creation.
func (s *Service) UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*Item, error) {
	updates := make(map[string]interface{})
	if req.Material != nil {
		material := strings.TrimSpace(*req.Material)
		if material == "" {
			return nil, fmt.Errorf("%w: material name is required", shared.ErrValidation)
		}
		updates["material"] = material
	}
	if req.Detail != nil {
		updates["detalle"] = strings.TrimSpace(*req.Detail)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity cannot be negative", shared.ErrValidation)
		}
		updates["cantidad"] = *req.Quantity
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return nil, fmt.Errorf("%w: purchase price cannot be negative", shared.ErrValidation)
		}
		updates["precio_compra"] = *req.PurchasePrice
	}
	if req.SalePrice != nil {
		if *req.SalePrice < 0 {
			return nil, fmt.Errorf("%w: sale price cannot be negative", shared.ErrValidation)
		}
		updates["precio_venta"] = *req.SalePrice
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, id)
}

// DeleteItem removes a material from stock entirely.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// WriteOff removes damaged or lost material from stock and records the loss.
// The decrement and the record are written in one transaction, with the unit
// cost frozen at the item's current purchase price.
func (s *Service) WriteOff(ctx context.Context, req CreateWriteOffRequest) (*WriteOff, error) {
	material := strings.TrimSpace(req.Material)
	if material == "" {
		return nil, fmt.Errorf("%w: material name is required", shared.ErrValidation)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", shared.ErrValidation)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", shared.ErrValidation)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var out WriteOff
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetByMaterialForUpdate(ctx, material)
		if err != nil {
			return err
		}
		if req.Quantity > item.Quantity {
			return fmt.Errorf("%w: %s has %d on hand, write-off of %d",
				shared.ErrInsufficientStock, item.Material, item.Quantity, req.Quantity)
		}
		if err := tx.AdjustQuantity(ctx, item.ID, -req.Quantity); err != nil {
			return err
		}

		out = WriteOff{
			Date:      date,
			Material:  item.Material,
			Quantity:  req.Quantity,
			Reason:    reason,
			UnitCost:  item.PurchasePrice,
			TotalCost: float64(req.Quantity) * item.PurchasePrice,
		}
		id, err := tx.InsertWriteOff(ctx, out)
		if err != nil {
			return err
		}
		out.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWriteOff adjusts the quantity or reason of a recorded write-off.
// The frozen unit cost is never re-read from inventory; the total is
// recomputed from it when the quantity changes.
func (s *Service) UpdateWriteOff(ctx context.Context, id int64, req UpdateWriteOffRequest) (*WriteOff, error) {
	existing, err := s.repo.GetWriteOff(ctx, id)
	if err != nil {
		return nil, err
	}

	quantity := existing.Quantity
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", shared.ErrValidation)
		}
		quantity = *req.Quantity
	}
	reason := existing.Reason
	if req.Reason != nil {
		reason = strings.TrimSpace(*req.Reason)
		if reason == "" {
			return nil, fmt.Errorf("%w: reason is required", shared.ErrValidation)
		}
	}

	totalCost := float64(quantity) * existing.UnitCost
	if err := s.repo.UpdateWriteOff(ctx, id, quantity, reason, totalCost); err != nil {
		return nil, err
	}
	return s.repo.GetWriteOff(ctx, id)
}

// ListWriteOffs returns recorded write-offs, newest first.
func (s *Service) ListWriteOffs(ctx context.Context, req ListWriteOffsRequest) ([]WriteOff, int, error) {
	return s.repo.ListWriteOffs(ctx, req)
}

// WriteOffTotalsByMaterial sums recorded losses per material, ordered by
// material name.
func (s *Service) WriteOffTotalsByMaterial(ctx context.Context) ([]WriteOffTotal, error) {
	return s.repo.WriteOffTotalsByMaterial(ctx)
}
