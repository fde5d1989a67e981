package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/printhart/printhart/internal/orders"
)

type memoryRepo struct {
	delivered    []orders.Order
	valuations   []ItemValuation
	writeOffCost float64
}

func (r *memoryRepo) DeliveredOrders(ctx context.Context) ([]orders.Order, error) {
	return r.delivered, nil
}

func (r *memoryRepo) ItemValuations(ctx context.Context) ([]ItemValuation, error) {
	return r.valuations, nil
}

func (r *memoryRepo) WriteOffTotal(ctx context.Context) (float64, error) {
	return r.writeOffCost, nil
}

func TestSummaryProfitAndMargin(t *testing.T) {
	repo := &memoryRepo{
		delivered: []orders.Order{
			{
				ID: 1, Total: 100, Status: orders.StatusDelivered,
				Materials: []orders.MaterialLine{{Material: "Vinyl", Quantity: 4}},
			},
		},
		valuations: []ItemValuation{
			{Material: "Vinyl", Quantity: 6, PurchasePrice: 2, SalePrice: 5},
		},
	}
	svc := NewService(repo)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 100.0, sum.Revenue, 0.001)
	require.InDelta(t, 8.0, sum.CostOfGoods, 0.001)
	require.InDelta(t, 92.0, sum.NetProfit, 0.001)
	require.InDelta(t, 92.0, sum.MarginPercent, 0.001)
	require.Equal(t, 1, sum.DeliveredOrders)
}

func TestSummaryCostFollowsCurrentPurchasePrice(t *testing.T) {
	repo := &memoryRepo{
		delivered: []orders.Order{
			{
				ID: 1, Total: 100, Status: orders.StatusDelivered,
				Materials: []orders.MaterialLine{{Material: "Vinyl", Quantity: 4}},
			},
		},
		valuations: []ItemValuation{
			{Material: "Vinyl", Quantity: 6, PurchasePrice: 2},
		},
	}
	svc := NewService(repo)
	ctx := context.Background()

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.InDelta(t, 8.0, sum.CostOfGoods, 0.001)

	// A supplier price change moves the cost of already-delivered orders.
	repo.valuations[0].PurchasePrice = 3

	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.InDelta(t, 12.0, sum.CostOfGoods, 0.001)
}

func TestSummaryMaterialMatchIgnoresCase(t *testing.T) {
	repo := &memoryRepo{
		delivered: []orders.Order{
			{
				ID: 1, Total: 50, Status: orders.StatusDelivered,
				Materials: []orders.MaterialLine{{Material: "VINYL", Quantity: 2}},
			},
		},
		valuations: []ItemValuation{
			{Material: "Vinyl", Quantity: 6, PurchasePrice: 2},
		},
	}
	svc := NewService(repo)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 4.0, sum.CostOfGoods, 0.001)
}

func TestSummaryZeroRevenue(t *testing.T) {
	repo := &memoryRepo{
		valuations: []ItemValuation{
			{Material: "Vinyl", Quantity: 10, PurchasePrice: 2, SalePrice: 5},
		},
		writeOffCost: 6,
	}
	svc := NewService(repo)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Zero(t, sum.Revenue)
	require.Zero(t, sum.MarginPercent)
	require.InDelta(t, 6.0, sum.WriteOffCost, 0.001)
	require.InDelta(t, 20.0, sum.TotalInvestment, 0.001)
	require.InDelta(t, 30.0, sum.PotentialProfit, 0.001)
}
