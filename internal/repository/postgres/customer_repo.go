package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"crmcore/internal/domain"
	"crmcore/internal/port"
)

const customerColumns = `id, name, email, phone, company, state, gstin, created_by, created_at, updated_at`

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, c *domain.Customer) error {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.State, c.GSTIN, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.GetContext(ctx, &c,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, search string, offset, limit int) ([]domain.Customer, int, error) {
	where := ""
	args := []interface{}{}
	if s := strings.TrimSpace(search); s != "" {
		where = ` WHERE name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1`
		args = append(args, "%"+escapeLike(s)+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM customers%s ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d",
		customerColumns, where, len(args)+1, len(args)+2)
	var customers []domain.Customer
	if err := r.db.SelectContext(ctx, &customers, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepo) Update(ctx context.Context, c *domain.Customer) error {
	c.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET name = $1, email = $2, phone = $3, company = $4, state = $5,
		 gstin = $6, updated_at = $7
		 WHERE id = $8`,
		c.Name, c.Email, c.Phone, c.Company, c.State, c.GSTIN, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("customerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, customerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id = $1", customerID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCustomerInUse
		}
		return fmt.Errorf("customerRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards in user-supplied search terms.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
