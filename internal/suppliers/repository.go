package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printhart/printhart/internal/shared"
)

// Repository is the supplier persistence boundary.
type Repository interface {
	Get(ctx context.Context, id int64) (*Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
	Insert(ctx context.Context, s Supplier) (int64, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed supplier repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const supplierColumns = "id, nombre, whatsapp, sitio, producto, created_at, updated_at"

func (r *repository) Get(ctx context.Context, id int64) (*Supplier, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM suplidores WHERE id = $1", supplierColumns), id)
	s, err := scanSupplier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return s, nil
}

func (r *repository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM suplidores ORDER BY nombre ASC", supplierColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *repository) Insert(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO suplidores (nombre, whatsapp, sitio, producto)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.Name, s.WhatsApp, s.Website, s.Product,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("supplier %q: %w", s.Name, shared.ErrDuplicate)
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateFields(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE suplidores SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"nombre", "whatsapp", "sitio", "producto"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("supplier %d: %w", id, shared.ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM suplidores WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func scanSupplier(row pgx.Row) (*Supplier, error) {
	var s Supplier
	var whatsapp, website, product pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&s.ID, &s.Name, &whatsapp, &website, &product, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	s.WhatsApp = whatsapp.String
	s.Website = website.String
	s.Product = product.String
	if createdAt.Valid {
		s.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
