package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printhart/printhart/internal/shared"
)

type memoryRepo struct {
	orders map[int64]Order
	stock  map[string]int64
	nextID int64

	failAdjustAfter int // when > 0, AdjustStock fails on the Nth call
	adjustCalls     int
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders: make(map[int64]Order),
		stock:  make(map[string]int64),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	// Snapshot state so a failed callback rolls back like a real tx.
	ordersBackup := make(map[int64]Order, len(r.orders))
	for k, v := range r.orders {
		ordersBackup[k] = v
	}
	stockBackup := make(map[string]int64, len(r.stock))
	for k, v := range r.stock {
		stockBackup[k] = v
	}

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.orders = ordersBackup
		r.stock = stockBackup
		return err
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return &o, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var result []Order
	for _, o := range r.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		if req.Paid != nil && o.Paid != *req.Paid {
			continue
		}
		result = append(result, o)
	}
	return result, len(result), nil
}

func (tx *memoryTx) GetForUpdate(ctx context.Context, id int64) (*Order, error) {
	return tx.repo.Get(ctx, id)
}

func (tx *memoryTx) Insert(ctx context.Context, o Order) (int64, error) {
	tx.repo.nextID++
	o.ID = tx.repo.nextID
	tx.repo.orders[o.ID] = o
	return o.ID, nil
}

func (tx *memoryTx) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	o, ok := tx.repo.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	if v, ok := updates["cliente"]; ok {
		o.Client = v.(string)
	}
	if v, ok := updates["detalle"]; ok {
		o.Detail = v.(string)
	}
	if v, ok := updates["fecha"]; ok {
		o.OrderDate = v.(time.Time)
	}
	if v, ok := updates["precio_unidad"]; ok {
		o.UnitPrice = v.(float64)
	}
	if v, ok := updates["total"]; ok {
		o.Total = v.(float64)
	}
	tx.repo.orders[id] = o
	return nil
}

func (tx *memoryTx) SetStatus(ctx context.Context, id int64, status OrderStatus, deducted bool) error {
	o, ok := tx.repo.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.Status = status
	o.InventoryDeducted = deducted
	tx.repo.orders[id] = o
	return nil
}

func (tx *memoryTx) SetPaid(ctx context.Context, id int64, paid bool) error {
	o, ok := tx.repo.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	o.Paid = paid
	tx.repo.orders[id] = o
	return nil
}

func (tx *memoryTx) Delete(ctx context.Context, id int64) error {
	if _, ok := tx.repo.orders[id]; !ok {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	delete(tx.repo.orders, id)
	return nil
}

func (tx *memoryTx) StockForUpdate(ctx context.Context, material string) (int64, error) {
	qty, ok := tx.repo.stock[strings.ToUpper(material)]
	if !ok {
		return 0, fmt.Errorf("material %q: %w", material, shared.ErrNotFound)
	}
	return qty, nil
}

func (tx *memoryTx) AdjustStock(ctx context.Context, material string, delta int64) error {
	tx.repo.adjustCalls++
	if tx.repo.failAdjustAfter > 0 && tx.repo.adjustCalls >= tx.repo.failAdjustAfter {
		return fmt.Errorf("adjust stock: %w", shared.ErrStoreUnavailable)
	}
	key := strings.ToUpper(material)
	if _, ok := tx.repo.stock[key]; !ok {
		return fmt.Errorf("material %q: %w", material, shared.ErrNotFound)
	}
	tx.repo.stock[key] += delta
	return nil
}

func seedOrder(t *testing.T, svc *Service, repo *memoryRepo, lines []MaterialLineRequest) *Order {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateOrderRequest{
		Client:    "Carlos",
		Detail:    "10 camisetas sublimadas",
		Quantity:  10,
		UnitPrice: 10,
		Materials: lines,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		Client:    "Maria",
		UnitPrice: 25,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingConfirmation, order.Status)
	require.EqualValues(t, 1, order.Quantity)
	require.InDelta(t, 25.0, order.Total, 0.001)
	require.False(t, order.Paid)
	require.False(t, order.InventoryDeducted)
}

func TestCreateOrderValidation(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateOrderRequest{Client: "  ", UnitPrice: 10})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateOrderRequest{Client: "Ana", UnitPrice: 0})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateOrderRequest{Client: "Ana", UnitPrice: 10, Status: StatusDelivered})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateOrderRequest{
		Client: "Ana", UnitPrice: 10,
		Materials: []MaterialLineRequest{
			{Material: "Vinyl", Quantity: 2},
			{Material: "VINYL", Quantity: 3},
		},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateOrderRejectsUnknownMaterial(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		Client: "Ana", UnitPrice: 10,
		Materials: []MaterialLineRequest{{Material: "Glitter", Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateOrderChecksStockWithoutDeducting(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})
	require.False(t, order.InventoryDeducted)
	require.EqualValues(t, 10, repo.stock["VINYL"])

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		Client: "Luis", UnitPrice: 10,
		Materials: []MaterialLineRequest{{Material: "Vinyl", Quantity: 11}},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestChangeStatusDeductsOnReadyForDelivery(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})

	updated, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.NoError(t, err)
	require.Equal(t, StatusReadyForDelivery, updated.Status)
	require.True(t, updated.InventoryDeducted)
	require.EqualValues(t, 6, repo.stock["VINYL"])
}

func TestChangeStatusWithinDeductingBandKeepsStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})

	_, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.NoError(t, err)
	require.EqualValues(t, 6, repo.stock["VINYL"])

	// READY_FOR_DELIVERY -> DELIVERED must not deduct again.
	updated, err := svc.ChangeStatus(ctx, order.ID, StatusDelivered)
	require.NoError(t, err)
	require.True(t, updated.InventoryDeducted)
	require.EqualValues(t, 6, repo.stock["VINYL"])
}

func TestChangeStatusRestoresOnStepBack(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})

	_, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.NoError(t, err)
	require.EqualValues(t, 6, repo.stock["VINYL"])

	updated, err := svc.ChangeStatus(ctx, order.ID, StatusDesignsReady)
	require.NoError(t, err)
	require.Equal(t, StatusDesignsReady, updated.Status)
	require.False(t, updated.InventoryDeducted)
	require.EqualValues(t, 10, repo.stock["VINYL"])
}

func TestChangeStatusRoundTripIsLossless(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})

	for i := 0; i < 3; i++ {
		_, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
		require.NoError(t, err)
		require.EqualValues(t, 6, repo.stock["VINYL"])

		_, err = svc.ChangeStatus(ctx, order.ID, StatusUndesigned)
		require.NoError(t, err)
		require.EqualValues(t, 10, repo.stock["VINYL"])
	}
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})

	_, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.NoError(t, err)
	require.True(t, updated.InventoryDeducted)
	require.EqualValues(t, 6, repo.stock["VINYL"])
}

func TestChangeStatusInsufficientStockLeavesNoPartialEffect(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	repo.stock["INK"] = 1
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{
		{Material: "Vinyl", Quantity: 4},
		{Material: "Ink", Quantity: 1},
	})

	// Stock moved underneath the order before the transition.
	repo.stock["INK"] = 0

	_, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Contains(t, err.Error(), "Ink")

	got, getErr := svc.Get(ctx, order.ID)
	require.NoError(t, getErr)
	require.Equal(t, StatusPendingConfirmation, got.Status)
	require.False(t, got.InventoryDeducted)
	require.EqualValues(t, 10, repo.stock["VINYL"])
	require.EqualValues(t, 0, repo.stock["INK"])
}

func TestChangeStatusRollsBackOnStorageFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	repo.stock["INK"] = 5
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{
		{Material: "Vinyl", Quantity: 4},
		{Material: "Ink", Quantity: 2},
	})

	// First AdjustStock succeeds, second fails; the tx must roll back both.
	repo.failAdjustAfter = 2

	_, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.ErrorIs(t, err, shared.ErrStoreUnavailable)
	require.EqualValues(t, 10, repo.stock["VINYL"])
	require.EqualValues(t, 5, repo.stock["INK"])

	got, getErr := svc.Get(ctx, order.ID)
	require.NoError(t, getErr)
	require.Equal(t, StatusPendingConfirmation, got.Status)
	require.False(t, got.InventoryDeducted)
}

func TestDeleteRestoresDeductedStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})

	_, err := svc.ChangeStatus(ctx, order.ID, StatusReadyForDelivery)
	require.NoError(t, err)
	require.EqualValues(t, 6, repo.stock["VINYL"])

	require.NoError(t, svc.Delete(ctx, order.ID))
	require.EqualValues(t, 10, repo.stock["VINYL"])

	_, err = svc.Get(ctx, order.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteWithoutDeductionLeavesStockAlone(t *testing.T) {
	repo := newMemoryRepo()
	repo.stock["VINYL"] = 10
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, svc, repo, []MaterialLineRequest{{Material: "Vinyl", Quantity: 4}})

	require.NoError(t, svc.Delete(ctx, order.ID))
	require.EqualValues(t, 10, repo.stock["VINYL"])
}

func TestUpdateRecomputesTotal(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		Client: "Pedro", Quantity: 10, UnitPrice: 10,
	})
	require.NoError(t, err)
	require.InDelta(t, 100.0, order.Total, 0.001)

	newPrice := 12.5
	updated, err := svc.Update(ctx, order.ID, UpdateOrderRequest{UnitPrice: &newPrice})
	require.NoError(t, err)
	require.InDelta(t, 125.0, updated.Total, 0.001)
}

func TestSetPaidTogglesIndependently(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{Client: "Sofia", UnitPrice: 30})
	require.NoError(t, err)

	updated, err := svc.SetPaid(ctx, order.ID, true)
	require.NoError(t, err)
	require.True(t, updated.Paid)
	require.Equal(t, StatusPendingConfirmation, updated.Status)

	updated, err = svc.SetPaid(ctx, order.ID, false)
	require.NoError(t, err)
	require.False(t, updated.Paid)
}
