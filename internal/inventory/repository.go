package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printhart/printhart/internal/platform/db"
	"github.com/printhart/printhart/internal/shared"
)

// Repository exposes stock item access and the transactional boundary for
// write-offs.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Item, error)
	GetByMaterial(ctx context.Context, material string) (*Item, error)
	List(ctx context.Context, req ListItemsRequest) ([]Item, error)
	Insert(ctx context.Context, item Item) (int64, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	GetWriteOff(ctx context.Context, id int64) (*WriteOff, error)
	UpdateWriteOff(ctx context.Context, id int64, quantity int64, reason string, totalCost float64) error
	ListWriteOffs(ctx context.Context, req ListWriteOffsRequest) ([]WriteOff, int, error)
	WriteOffTotalsByMaterial(ctx context.Context) ([]WriteOffTotal, error)
}

// TxRepository groups the writes of one write-off. The stock decrement and
// the bajas record must land together or not at all.
type TxRepository interface {
	GetByMaterialForUpdate(ctx context.Context, material string) (*Item, error)
	AdjustQuantity(ctx context.Context, id int64, delta int64) error
	InsertWriteOff(ctx context.Context, wo WriteOff) (int64, error)
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

// NewRepository constructs the PostgreSQL-backed inventory repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const itemColumns = "id, material, detalle, cantidad, precio_compra, precio_venta, created_at, updated_at"

func (r *repository) Get(ctx context.Context, id int64) (*Item, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM inventario WHERE id = $1", itemColumns), id)
	return scanItem(row, fmt.Sprintf("item %d", id))
}

func (r *repository) GetByMaterial(ctx context.Context, material string) (*Item, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM inventario WHERE UPPER(material) = UPPER($1)", itemColumns), material)
	return scanItem(row, fmt.Sprintf("material %q", material))
}

func (r *repository) GetByMaterialForUpdate(ctx context.Context, material string) (*Item, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM inventario WHERE UPPER(material) = UPPER($1) FOR UPDATE", itemColumns),
		material)
	return scanItem(row, fmt.Sprintf("material %q", material))
}

func (r *repository) List(ctx context.Context, req ListItemsRequest) ([]Item, error) {
	whereClause := ""
	if req.InStock {
		whereClause = "WHERE cantidad > 0"
	}
	rows, err := r.db.Query(ctx,
		fmt.Sprintf("SELECT %s FROM inventario %s ORDER BY material ASC", itemColumns, whereClause))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows, "item")
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *repository) Insert(ctx context.Context, item Item) (int64, error) {
	purchase, err := db.Numeric(item.PurchasePrice)
	if err != nil {
		return 0, err
	}
	sale, err := db.Numeric(item.SalePrice)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO inventario (material, detalle, cantidad, precio_compra, precio_venta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		item.Material, item.Detail, item.Quantity, purchase, sale,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("material %q: %w", item.Material, shared.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE inventario SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"material", "detalle", "cantidad", "precio_compra", "precio_venta"} {
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
		if isUniqueViolation(err) {
			return fmt.Errorf("item %d: %w", id, shared.ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) AdjustQuantity(ctx context.Context, id int64, delta int64) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE inventario SET cantidad = cantidad + $1, updated_at = NOW() WHERE id = $2", delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM inventario WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) InsertWriteOff(ctx context.Context, wo WriteOff) (int64, error) {
	unitCost, err := db.Numeric(wo.UnitCost)
	if err != nil {
		return 0, err
	}
	totalCost, err := db.Numeric(wo.TotalCost)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO bajas_material (fecha, material, cantidad, motivo, costo_unitario, costo_total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		pgtype.Date{Time: wo.Date, Valid: !wo.Date.IsZero()},
		wo.Material, wo.Quantity, wo.Reason,
		unitCost, totalCost,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) GetWriteOff(ctx context.Context, id int64) (*WriteOff, error) {
	var wo WriteOff
	var date pgtype.Date
	var unitCost, totalCost pgtype.Numeric
	var createdAt pgtype.Timestamptz

	err := r.db.QueryRow(ctx, `
		SELECT id, fecha, material, cantidad, motivo, costo_unitario, costo_total, created_at
		FROM bajas_material WHERE id = $1`, id).
		Scan(&wo.ID, &date, &wo.Material, &wo.Quantity, &wo.Reason, &unitCost, &totalCost, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("write-off %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	if date.Valid {
		wo.Date = date.Time
	}
	if unitCost.Valid {
		f, _ := unitCost.Float64Value()
		wo.UnitCost = f.Float64
	}
	if totalCost.Valid {
		f, _ := totalCost.Float64Value()
		wo.TotalCost = f.Float64
	}
	if createdAt.Valid {
		wo.CreatedAt = createdAt.Time
	}
	return &wo, nil
}

func (r *repository) UpdateWriteOff(ctx context.Context, id int64, quantity int64, reason string, totalCost float64) error {
	cost, err := db.Numeric(totalCost)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE bajas_material
		SET cantidad = $1, motivo = $2, costo_total = $3
		WHERE id = $4`,
		quantity, reason, cost, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("write-off %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) ListWriteOffs(ctx context.Context, req ListWriteOffsRequest) ([]WriteOff, int, error) {
	whereClause := ""
	var args []interface{}
	argPos := 1

	if req.Material != nil {
		whereClause = fmt.Sprintf("WHERE UPPER(material) = UPPER($%d)", argPos)
		args = append(args, *req.Material)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM bajas_material %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
		SELECT id, fecha, material, cantidad, motivo, costo_unitario, costo_total, created_at
		FROM bajas_material %s
		ORDER BY fecha DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var writeOffs []WriteOff
	for rows.Next() {
		var wo WriteOff
		var date pgtype.Date
		var unitCost, totalCost pgtype.Numeric
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&wo.ID, &date, &wo.Material, &wo.Quantity, &wo.Reason,
			&unitCost, &totalCost, &createdAt); err != nil {
			return nil, 0, err
		}
		if date.Valid {
			wo.Date = date.Time
		}
		if unitCost.Valid {
			f, _ := unitCost.Float64Value()
			wo.UnitCost = f.Float64
		}
		if totalCost.Valid {
			f, _ := totalCost.Float64Value()
			wo.TotalCost = f.Float64
		}
		if createdAt.Valid {
			wo.CreatedAt = createdAt.Time
		}
		writeOffs = append(writeOffs, wo)
	}
	return writeOffs, total, rows.Err()
}

func (r *repository) WriteOffTotalsByMaterial(ctx context.Context) ([]WriteOffTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT material, SUM(cantidad), COALESCE(SUM(costo_total), 0)
		FROM bajas_material
		GROUP BY material
		ORDER BY material ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []WriteOffTotal
	for rows.Next() {
		var t WriteOffTotal
		var cost pgtype.Numeric
		if err := rows.Scan(&t.Material, &t.Quantity, &cost); err != nil {
			return nil, err
		}
		if cost.Valid {
			f, _ := cost.Float64Value()
			t.TotalCost = f.Float64
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func scanItem(row pgx.Row, label string) (*Item, error) {
	var item Item
	var purchase, sale pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&item.ID, &item.Material, &item.Detail, &item.Quantity, &purchase, &sale, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", label, shared.ErrNotFound)
		}
		return nil, err
	}
	if purchase.Valid {
		f, _ := purchase.Float64Value()
		item.PurchasePrice = f.Float64
	}
	if sale.Valid {
		f, _ := sale.Float64Value()
		item.SalePrice = f.Float64
	}
	if createdAt.Valid {
		item.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		item.UpdatedAt = updatedAt.Time
	}
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
