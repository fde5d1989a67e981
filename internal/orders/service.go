package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/printhart/printhart/internal/shared"
)

// Service enforces the order state machine and its coupling to inventory.
// Every transition that moves stock runs inside one repository transaction,
// so an order can never end up half-deducted.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new order. Materials are validated against current
// stock but only reserved logically; nothing is deducted until the order
// reaches a deducting status.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	client := strings.TrimSpace(req.Client)
	if client == "" {
		return nil, fmt.Errorf("%w: client is required", shared.ErrValidation)
	}
	if req.UnitPrice <= 0 {
		return nil, fmt.Errorf("%w: unit price must be greater than zero", shared.ErrValidation)
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", shared.ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = StatusPendingConfirmation
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, status)
	}
	if !status.AllowedAtCreation() {
		return nil, fmt.Errorf("%w: orders start as %s or %s", shared.ErrValidation,
			StatusPendingConfirmation, StatusUndesigned)
	}

	lines := make([]MaterialLine, 0, len(req.Materials))
	seen := make(map[string]bool, len(req.Materials))
	for _, m := range req.Materials {
		name := strings.TrimSpace(m.Material)
		if name == "" {
			return nil, fmt.Errorf("%w: material name is required", shared.ErrValidation)
		}
		if m.Quantity < 1 {
			return nil, fmt.Errorf("%w: need at least 1 unit of %s", shared.ErrValidation, name)
		}
		key := strings.ToUpper(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: material %s listed twice", shared.ErrValidation, name)
		}
		seen[key] = true
		lines = append(lines, MaterialLine{Material: name, Quantity: m.Quantity, UnitPrice: m.UnitPrice})
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	order := Order{
		OrderDate: orderDate,
		Client:    client,
		Detail:    strings.TrimSpace(req.Detail),
		Quantity:  qty,
		UnitPrice: req.UnitPrice,
		Total:     float64(qty) * req.UnitPrice,
		Status:    status,
		Materials: lines,
	}

	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, line := range order.Materials {
			stock, err := tx.StockForUpdate(ctx, line.Material)
			if err != nil {
				return err
			}
			if line.Quantity > stock {
				return fmt.Errorf("%w: %s has %d on hand, requested %d",
					shared.ErrInsufficientStock, line.Material, stock, line.Quantity)
			}
		}
		id, err := tx.Insert(ctx, order)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		orderID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orderID)
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
	}
	return s.repo.List(ctx, req)
}

// Update edits the mutable order fields. The total is recomputed when the
// unit price changes.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*Order, error) {
	if req.Client != nil && strings.TrimSpace(*req.Client) == "" {
		return nil, fmt.Errorf("%w: client is required", shared.ErrValidation)
	}
	if req.UnitPrice != nil && *req.UnitPrice <= 0 {
		return nil, fmt.Errorf("%w: unit price must be greater than zero", shared.ErrValidation)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.OrderDate != nil {
			updates["fecha"] = *req.OrderDate
		}
		if req.Client != nil {
			updates["cliente"] = strings.TrimSpace(*req.Client)
		}
		if req.Detail != nil {
			updates["detalle"] = strings.TrimSpace(*req.Detail)
		}
		if req.UnitPrice != nil {
			updates["precio_unidad"] = *req.UnitPrice
			updates["total"] = float64(existing.Quantity) * *req.UnitPrice
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.UpdateFields(ctx, id, updates)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// SetPaid flips the payment flag. It is independent of the production status
// and can change at any time.
func (s *Service) SetPaid(ctx context.Context, id int64, paid bool) (*Order, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return err
		}
		return tx.SetPaid(ctx, id, paid)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// ChangeStatus moves an order to any other status. Entering a deducting
// status commits the reserved materials to stock; leaving one returns them.
// The status write and every stock movement commit atomically.
func (s *Service) ChangeStatus(ctx context.Context, id int64, next OrderStatus) (*Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, next)
	}

	var out *Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == next {
			out = order
			return nil
		}

		switch {
		case next.Deducting() && !order.Status.Deducting() && !order.InventoryDeducted:
			if err := deductLines(ctx, tx, order.Materials); err != nil {
				return err
			}
			order.InventoryDeducted = true
		case !next.Deducting() && order.Status.Deducting() && order.InventoryDeducted:
			if err := restoreLines(ctx, tx, order.Materials); err != nil {
				return err
			}
			order.InventoryDeducted = false
		}

		if err := tx.SetStatus(ctx, id, next, order.InventoryDeducted); err != nil {
			return err
		}
		order.Status = next
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an order. Deducted stock is restored first so material is
// never lost with the record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.InventoryDeducted {
			if err := restoreLines(ctx, tx, order.Materials); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, id)
	})
}

// deductLines checks every line against locked stock before decrementing
// any of them, so a shortfall on the last line leaves the others untouched.
func deductLines(ctx context.Context, tx TxRepository, lines []MaterialLine) error {
	for _, line := range lines {
		stock, err := tx.StockForUpdate(ctx, line.Material)
		if err != nil {
			return err
		}
		if line.Quantity > stock {
			return fmt.Errorf("%w: %s has %d on hand, need %d",
				shared.ErrInsufficientStock, line.Material, stock, line.Quantity)
		}
	}
	for _, line := range lines {
		if err := tx.AdjustStock(ctx, line.Material, -line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func restoreLines(ctx context.Context, tx TxRepository, lines []MaterialLine) error {
	for _, line := range lines {
		if err := tx.AdjustStock(ctx, line.Material, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}
