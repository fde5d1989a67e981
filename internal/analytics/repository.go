package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printhart/printhart/internal/orders"
)

// Repository reads the raw figures the reports are computed from.
type Repository interface {
	DeliveredOrders(ctx context.Context) ([]orders.Order, error)
	ItemValuations(ctx context.Context) ([]ItemValuation, error)
	WriteOffTotal(ctx context.Context) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed analytics repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) DeliveredOrders(ctx context.Context) ([]orders.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, fecha, cliente, detalle, cantidad, precio_unidad, total,
		       estado, materiales_usados, pagado
		FROM pedidos
		WHERE estado = $1
		ORDER BY fecha ASC, id ASC`,
		string(orders.StatusDelivered))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []orders.Order
	for rows.Next() {
		var o orders.Order
		var orderDate pgtype.Date
		var unitPrice, total pgtype.Numeric
		var materialsJSON pgtype.Text
		var status string

		if err := rows.Scan(&o.ID, &orderDate, &o.Client, &o.Detail, &o.Quantity,
			&unitPrice, &total, &status, &materialsJSON, &o.Paid); err != nil {
			return nil, err
		}
		o.Status = orders.OrderStatus(status)
		if orderDate.Valid {
			o.OrderDate = orderDate.Time
		}
		if unitPrice.Valid {
			f, _ := unitPrice.Float64Value()
			o.UnitPrice = f.Float64
		}
		if total.Valid {
			f, _ := total.Float64Value()
			o.Total = f.Float64
		}
		if materialsJSON.Valid && materialsJSON.String != "" {
			if err := json.Unmarshal([]byte(materialsJSON.String), &o.Materials); err != nil {
				return nil, fmt.Errorf("order %d: decode materials: %w", o.ID, err)
			}
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *repository) ItemValuations(ctx context.Context) ([]ItemValuation, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT material, cantidad, precio_compra, precio_venta FROM inventario")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemValuation
	for rows.Next() {
		var v ItemValuation
		var purchase, sale pgtype.Numeric
		if err := rows.Scan(&v.Material, &v.Quantity, &purchase, &sale); err != nil {
			return nil, err
		}
		if purchase.Valid {
			f, _ := purchase.Float64Value()
			v.PurchasePrice = f.Float64
		}
		if sale.Valid {
			f, _ := sale.Float64Value()
			v.SalePrice = f.Float64
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *repository) WriteOffTotal(ctx context.Context) (float64, error) {
	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(costo_total), 0) FROM bajas_material").Scan(&total); err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	f, err := total.Float64Value()
	if err != nil {
		return 0, err
	}
	return f.Float64, nil
}
