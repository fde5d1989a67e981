package analytics

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/printhart/printhart/internal/orders"
)

// Service computes the profit summary and feeds the CSV export.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Summary recomputes the report from scratch. The three source reads are
// independent and run concurrently.
//
// Delivered orders are costed at the material's CURRENT purchase price, not
// the price at delivery time. The figure answers "what would these orders
// cost to produce today", and moves when supplier prices move.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		delivered    []orders.Order
		valuations   []ItemValuation
		writeOffCost float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		delivered, err = s.repo.DeliveredOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		valuations, err = s.repo.ItemValuations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		writeOffCost, err = s.repo.WriteOffTotal(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	costByMaterial := make(map[string]float64, len(valuations))
	for _, v := range valuations {
		costByMaterial[strings.ToUpper(v.Material)] = v.PurchasePrice
	}

	sum := Summary{DeliveredOrders: len(delivered), WriteOffCost: writeOffCost}
	for _, o := range delivered {
		sum.Revenue += o.Total
		for _, line := range o.Materials {
			sum.CostOfGoods += float64(line.Quantity) * costByMaterial[strings.ToUpper(line.Material)]
		}
	}
	sum.NetProfit = sum.Revenue - sum.CostOfGoods
	if sum.Revenue > 0 {
		sum.MarginPercent = sum.NetProfit / sum.Revenue * 100
	}

	for _, v := range valuations {
		sum.TotalInvestment += float64(v.Quantity) * v.PurchasePrice
		sum.PotentialProfit += float64(v.Quantity) * (v.SalePrice - v.PurchasePrice)
	}

	return &sum, nil
}

// DeliveredOrders exposes the rows behind the summary for the CSV export.
func (s *Service) DeliveredOrders(ctx context.Context) ([]orders.Order, error) {
	return s.repo.DeliveredOrders(ctx)
}
