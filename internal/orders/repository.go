package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printhart/printhart/internal/platform/db"
	"github.com/printhart/printhart/internal/shared"
)

// Repository exposes read access and the transactional boundary for orders.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
}

// TxRepository groups the mutations that must commit as one unit. Stock
// access lives here too so an order transition and its inventory movement
// can never be applied partially.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	Insert(ctx context.Context, o Order) (int64, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error
	SetStatus(ctx context.Context, id int64, status OrderStatus, deducted bool) error
	SetPaid(ctx context.Context, id int64, paid bool) error
	Delete(ctx context.Context, id int64) error
	StockForUpdate(ctx context.Context, material string) (int64, error)
	AdjustStock(ctx context.Context, material string, delta int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed order repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const orderColumns = `id, fecha, cliente, detalle, cantidad, precio_unidad, total,
       estado, materiales_usados, pagado, inventario_descontado, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM pedidos WHERE id = $1", orderColumns), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM pedidos WHERE id = $1 FOR UPDATE", orderColumns), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("estado = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}
	if req.Paid != nil {
		conditions = append(conditions, fmt.Sprintf("pagado = $%d", argPos))
		args = append(args, *req.Paid)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM pedidos %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf("SELECT %s FROM pedidos %s ORDER BY fecha DESC, id DESC LIMIT $%d OFFSET $%d",
		orderColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (r *repository) Insert(ctx context.Context, o Order) (int64, error) {
	materials, err := json.Marshal(o.Materials)
	if err != nil {
		return 0, fmt.Errorf("marshal materials: %w", err)
	}
	unitPrice, err := db.Numeric(o.UnitPrice)
	if err != nil {
		return 0, err
	}
	total, err := db.Numeric(o.Total)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO pedidos (fecha, cliente, detalle, cantidad, precio_unidad, total,
		                     estado, materiales_usados, pagado, inventario_descontado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		pgtype.Date{Time: o.OrderDate, Valid: !o.OrderDate.IsZero()},
		o.Client, o.Detail, o.Quantity,
		unitPrice, total,
		string(o.Status), string(materials), o.Paid, o.InventoryDeducted,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE pedidos SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"fecha", "cliente", "detalle", "precio_unidad", "total"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status OrderStatus, deducted bool) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE pedidos SET estado = $1, inventario_descontado = $2, updated_at = NOW() WHERE id = $3",
		string(status), deducted, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) SetPaid(ctx context.Context, id int64, paid bool) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE pedidos SET pagado = $1, updated_at = NOW() WHERE id = $2", paid, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM pedidos WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) StockForUpdate(ctx context.Context, material string) (int64, error) {
	var qty int64
	err := r.db.QueryRow(ctx,
		"SELECT cantidad FROM inventario WHERE UPPER(material) = UPPER($1) FOR UPDATE",
		material).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("material %q: %w", material, shared.ErrNotFound)
		}
		return 0, err
	}
	return qty, nil
}

func (r *repository) AdjustStock(ctx context.Context, material string, delta int64) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE inventario SET cantidad = cantidad + $1 WHERE UPPER(material) = UPPER($2)",
		delta, material)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("material %q: %w", material, shared.ErrNotFound)
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var orderDate pgtype.Date
	var unitPrice, total pgtype.Numeric
	var materialsJSON pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	var status string

	err := row.Scan(
		&o.ID, &orderDate, &o.Client, &o.Detail, &o.Quantity, &unitPrice, &total,
		&status, &materialsJSON, &o.Paid, &o.InventoryDeducted, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = OrderStatus(status)
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
	if createdAt.Valid {
		o.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		o.UpdatedAt = updatedAt.Time
	}
	if materialsJSON.Valid && materialsJSON.String != "" {
		if err := json.Unmarshal([]byte(materialsJSON.String), &o.Materials); err != nil {
			return nil, fmt.Errorf("order %d: decode materials: %w", o.ID, err)
		}
	}
	return &o, nil
}
