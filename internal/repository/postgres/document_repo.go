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

const documentColumns = `id, doc_type, code, sequence, date, customer_id, project_id,
	taxable, cgst, sgst, igst, total, paid_amount, version, source_id,
	created_by, created_at, updated_at`

const itemColumns = `id, document_id, position, description, quantity, unit_price, hsn_code`

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	doc.ID = uuid.New()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Version = 1
	if doc.Date.IsZero() {
		doc.Date = now
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (`+documentColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
			doc.ID, doc.Type, doc.Code, doc.Sequence, doc.Date, doc.CustomerID, doc.ProjectID,
			doc.Taxable, doc.CGST, doc.SGST, doc.IGST, doc.Total, doc.PaidAmount, doc.Version, doc.SourceID,
			doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrCustomerNotFound
			}
			return fmt.Errorf("documentRepo.Create: %w", err)
		}
		return insertItems(ctx, tx, doc)
	})
}

func (r *documentRepo) GetByID(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1 AND doc_type = $2", docID, docType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}

	if err := r.db.SelectContext(ctx, &doc.Items,
		"SELECT "+itemColumns+" FROM document_items WHERE document_id = $1 ORDER BY position", docID); err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID items: %w", err)
	}
	return &doc, nil
}

// buildDocumentWhere constructs the WHERE clause for document listings.
func buildDocumentWhere(filter *domain.DocumentFilter) (clause string, args []interface{}) {
	clause = "WHERE d.doc_type = $1"
	args = []interface{}{filter.Type}
	argN := 2

	if filter.CustomerID != nil {
		clause += fmt.Sprintf(" AND d.customer_id = $%d", argN)
		args = append(args, *filter.CustomerID)
		argN++
	}
	if filter.Settled != nil {
		if *filter.Settled {
			clause += " AND d.paid_amount = d.total"
		} else {
			clause += " AND d.paid_amount <> d.total"
		}
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		clause += fmt.Sprintf(" AND (d.code ILIKE $%d OR c.name ILIKE $%d OR c.company ILIKE $%d)", argN, argN, argN)
		args = append(args, "%"+escapeLike(s)+"%")
	}
	return clause, args
}

func (r *documentRepo) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	where, args := buildDocumentWhere(&filter)
	from := " FROM documents d JOIN customers c ON c.id = d.customer_id "

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+from+where, args...); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY d.sequence DESC LIMIT $%d OFFSET $%d`,
		prefixColumns("d", documentColumns), from, where, len(args)+1, len(args)+2)
	var docs []domain.Document
	if err := r.db.SelectContext(ctx, &docs, query, append(args, filter.Limit, filter.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}

	if err := r.attachItems(ctx, docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// attachItems loads the items of every listed document in one query.
func (r *documentRepo) attachItems(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(docs))
	index := make(map[uuid.UUID]int, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
		index[docs[i].ID] = i
		docs[i].Items = []domain.LineItem{}
	}

	query, args, err := sqlx.In(
		"SELECT "+itemColumns+" FROM document_items WHERE document_id IN (?) ORDER BY document_id, position", ids)
	if err != nil {
		return fmt.Errorf("documentRepo.attachItems build: %w", err)
	}
	var items []domain.LineItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("documentRepo.attachItems: %w", err)
	}
	for i := range items {
		d := &docs[index[items[i].DocumentID]]
		d.Items = append(d.Items, items[i])
	}
	return nil
}

func (r *documentRepo) ReplaceItems(ctx context.Context, doc *domain.Document, expectedVersion int) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var updated struct {
			Version   int       `db:"version"`
			UpdatedAt time.Time `db:"updated_at"`
		}
		// Totals, version and the paid-amount guard change in one conditional statement.
		err := tx.GetContext(ctx, &updated,
			`UPDATE documents
			 SET taxable = $1, cgst = $2, sgst = $3, igst = $4, total = $5,
			     version = version + 1, updated_at = NOW()
			 WHERE id = $6 AND doc_type = $7 AND version = $8 AND paid_amount <= $5
			 RETURNING version, updated_at`,
			doc.Taxable, doc.CGST, doc.SGST, doc.IGST, doc.Total,
			doc.ID, doc.Type, expectedVersion)
		if errors.Is(err, sql.ErrNoRows) {
			return classifyReplaceFailure(ctx, tx, doc, expectedVersion)
		}
		if err != nil {
			return fmt.Errorf("documentRepo.ReplaceItems update: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM document_items WHERE document_id = $1", doc.ID); err != nil {
			return fmt.Errorf("documentRepo.ReplaceItems delete: %w", err)
		}
		if err := insertItems(ctx, tx, doc); err != nil {
			return err
		}

		doc.Version = updated.Version
		doc.UpdatedAt = updated.UpdatedAt
		return nil
	})
}

// classifyReplaceFailure explains why the conditional update in ReplaceItems matched no row.
func classifyReplaceFailure(ctx context.Context, tx *sqlx.Tx, doc *domain.Document, expectedVersion int) error {
	var current struct {
		Version     int  `db:"version"`
		CoversTotal bool `db:"covers_total"`
	}
	err := tx.GetContext(ctx, &current,
		`SELECT version, paid_amount <= $3 AS covers_total FROM documents WHERE id = $1 AND doc_type = $2`,
		doc.ID, doc.Type, doc.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("documentRepo.ReplaceItems classify: %w", err)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: expected version %d, found %d", domain.ErrConcurrentUpdate, expectedVersion, current.Version)
	}
	if !current.CoversTotal {
		return domain.ErrTotalBelowPaid
	}
	return fmt.Errorf("%w: replace matched no row", domain.ErrConcurrentUpdate)
}

func insertItems(ctx context.Context, tx *sqlx.Tx, doc *domain.Document) error {
	for i := range doc.Items {
		item := &doc.Items[i]
		item.ID = uuid.New()
		item.DocumentID = doc.ID
		item.Position = i + 1
		_, err := tx.ExecContext(ctx,
			`INSERT INTO document_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.DocumentID, item.Position, item.Description, item.Quantity, item.UnitPrice, item.HSNCode)
		if err != nil {
			return fmt.Errorf("documentRepo.insertItems: %w", err)
		}
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, docType domain.DocumentType, docID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var payments int
		if err := tx.GetContext(ctx, &payments,
			"SELECT COUNT(*) FROM transactions WHERE document_id = $1", docID); err != nil {
			return fmt.Errorf("documentRepo.Delete count payments: %w", err)
		}
		if payments > 0 {
			return domain.ErrDocumentHasPayments
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE id = $1 AND doc_type = $2", docID, docType)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrDocumentHasPayments
			}
			return fmt.Errorf("documentRepo.Delete: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrDocumentNotFound
		}
		return nil
	})
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
