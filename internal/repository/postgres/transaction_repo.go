package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crmcore/internal/domain"
	"crmcore/internal/port"
)

const transactionColumns = `id, document_id, customer_id, amount, method, external_ref,
	transaction_date, created_by, created_at, updated_at`

type transactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new PostgreSQL-backed TransactionRepository.
func NewTransactionRepo(db *sqlx.DB) port.TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) RecordPayment(ctx context.Context, txn *domain.Transaction, expectedVersion int) (*domain.Document, error) {
	txn.ID = uuid.New()
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	if txn.TransactionDate.IsZero() {
		txn.TransactionDate = now
	}

	var doc domain.Document
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Balance check, version check and increment happen in a single statement.
		err := tx.GetContext(ctx, &doc,
			`UPDATE documents
			 SET paid_amount = paid_amount + $1, version = version + 1, updated_at = $2
			 WHERE id = $3 AND doc_type = 'invoice' AND version = $4 AND paid_amount + $1 <= total
			 RETURNING `+documentColumns,
			txn.Amount, now, txn.DocumentID, expectedVersion)
		if errors.Is(err, sql.ErrNoRows) {
			return classifyPaymentFailure(ctx, tx, txn, expectedVersion)
		}
		if err != nil {
			if isCheckViolation(err) {
				return domain.ErrOverpayment
			}
			return fmt.Errorf("transactionRepo.RecordPayment update: %w", err)
		}

		txn.CustomerID = doc.CustomerID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (`+transactionColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			txn.ID, txn.DocumentID, txn.CustomerID, txn.Amount, txn.Method, txn.ExternalRef,
			txn.TransactionDate, txn.CreatedBy, txn.CreatedAt, txn.UpdatedAt)
		if err != nil {
			return fmt.Errorf("transactionRepo.RecordPayment insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// classifyPaymentFailure explains why the conditional update in RecordPayment matched no row.
func classifyPaymentFailure(ctx context.Context, tx *sqlx.Tx, txn *domain.Transaction, expectedVersion int) error {
	var current struct {
		Type       domain.DocumentType `db:"doc_type"`
		Version    int                 `db:"version"`
		Total      decimal.Decimal     `db:"total"`
		PaidAmount decimal.Decimal     `db:"paid_amount"`
	}
	err := tx.GetContext(ctx, &current,
		"SELECT doc_type, version, total, paid_amount FROM documents WHERE id = $1", txn.DocumentID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("transactionRepo.RecordPayment classify: %w", err)
	}
	if current.Type != domain.DocumentTypeInvoice {
		return domain.ErrNotPayable
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: expected version %d, found %d", domain.ErrConcurrentUpdate, expectedVersion, current.Version)
	}
	remaining := current.Total.Sub(current.PaidAmount)
	return fmt.Errorf("%w: remaining %s, requested %s",
		domain.ErrOverpayment, remaining.StringFixed(2), txn.Amount.StringFixed(2))
}

func (r *transactionRepo) GetByID(ctx context.Context, txnID uuid.UUID) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := r.db.GetContext(ctx, &txn,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", txnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transactionRepo.GetByID: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Transaction, error) {
	txns := []domain.Transaction{}
	err := r.db.SelectContext(ctx, &txns,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE document_id = $1
		 ORDER BY transaction_date ASC, created_at ASC, id ASC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.ListByDocument: %w", err)
	}
	return txns, nil
}

func (r *transactionRepo) Update(ctx context.Context, txn *domain.Transaction) error {
	txn.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET method = $1, external_ref = $2, transaction_date = $3, updated_at = $4
		 WHERE id = $5`,
		txn.Method, txn.ExternalRef, txn.TransactionDate, txn.UpdatedAt, txn.ID)
	if err != nil {
		return fmt.Errorf("transactionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
