package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, workspace_id, amount, type, category, transaction_date, description,
	company, project, is_reimbursement, reimbursement_status, reimbursed_to,
	is_transfer, from_company, to_company, created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new transaction, assigning an ID when none is set
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	id := transaction.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (id, workspace_id, amount, type, category, transaction_date, description,
			company, project, is_reimbursement, reimbursement_status, reimbursed_to,
			is_transfer, from_company, to_company)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+transactionColumns,
		id,
		transaction.WorkspaceID,
		amount,
		string(transaction.Type),
		transaction.Category,
		pgtype.Date{Time: transaction.Date, Valid: true},
		textFromPtr(transaction.Description),
		textFromPtr(transaction.Company),
		textFromPtr(transaction.Project),
		transaction.IsReimbursement,
		reimbursementStatusText(transaction.ReimbursementStatus),
		textFromPtr(transaction.ReimbursedTo),
		transaction.IsTransfer,
		textFromPtr(transaction.FromCompany),
		textFromPtr(transaction.ToCompany),
	)

	created, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return created, nil
}

// GetByID retrieves a transaction by its ID within a workspace
func (r *TransactionRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// GetByWorkspace retrieves transactions for a workspace with optional filters and pagination,
// newest first
func (r *TransactionRepository) GetByWorkspace(ctx context.Context, workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
	}
	offset := (page - 1) * pageSize

	where, args := transactionFilterClause(workspaceID, filters)

	var totalItems int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions %s
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, transactionColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	data, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages(totalItems, pageSize),
	}, nil
}

// ListAll returns every transaction of the workspace
func (r *TransactionRepository) ListAll(ctx context.Context, workspaceID int32) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE workspace_id = $1`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// Update replaces the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions SET
			amount = $3, type = $4, category = $5, transaction_date = $6, description = $7,
			company = $8, project = $9, is_reimbursement = $10, reimbursement_status = $11,
			reimbursed_to = $12, is_transfer = $13, from_company = $14, to_company = $15,
			updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		transaction.WorkspaceID,
		transaction.ID,
		amount,
		string(transaction.Type),
		transaction.Category,
		pgtype.Date{Time: transaction.Date, Valid: true},
		textFromPtr(transaction.Description),
		textFromPtr(transaction.Company),
		textFromPtr(transaction.Project),
		transaction.IsReimbursement,
		reimbursementStatusText(transaction.ReimbursementStatus),
		textFromPtr(transaction.ReimbursedTo),
		transaction.IsTransfer,
		textFromPtr(transaction.FromCompany),
		textFromPtr(transaction.ToCompany),
	)

	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListWorkspaceIDs returns every workspace that has at least one transaction
func (r *TransactionRepository) ListWorkspaceIDs(ctx context.Context) ([]int32, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT workspace_id FROM transactions ORDER BY workspace_id`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return ids, nil
}

// transactionFilterClause builds the WHERE clause and its positional arguments
func transactionFilterClause(workspaceID int32, filters *domain.TransactionFilters) (string, []any) {
	conds := []string{"workspace_id = $1"}
	args := []any{workspaceID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters != nil {
		if filters.StartDate != nil {
			add("transaction_date >= $%d", dateOnly(*filters.StartDate))
		}
		if filters.EndDate != nil {
			add("transaction_date <= $%d", dateOnly(*filters.EndDate))
		}
		if filters.Type != nil {
			add("type = $%d", string(*filters.Type))
		}
		if filters.Category != nil {
			add("LOWER(category) = LOWER($%d)", *filters.Category)
		}
		if filters.Company != nil {
			add("company = $%d", *filters.Company)
		}
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func dateOnly(t time.Time) pgtype.Date {
	t = t.UTC()
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

func reimbursementStatusText(s *domain.ReimbursementStatus) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*s), Valid: true}
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return result, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t                                           domain.Transaction
		amount                                      pgtype.Numeric
		txType                                      string
		date                                        pgtype.Date
		description, company, project, reimbursedTo pgtype.Text
		reimbursementStatus, fromCompany, toCompany pgtype.Text
		createdAt, updatedAt                        pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID, &t.WorkspaceID, &amount, &txType, &t.Category, &date, &description,
		&company, &project, &t.IsReimbursement, &reimbursementStatus, &reimbursedTo,
		&t.IsTransfer, &fromCompany, &toCompany, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Amount = pgNumericToDecimal(amount)
	t.Type = domain.TransactionType(txType)
	t.Date = date.Time.UTC()
	t.Description = ptrFromText(description)
	t.Company = ptrFromText(company)
	t.Project = ptrFromText(project)
	t.ReimbursedTo = ptrFromText(reimbursedTo)
	t.FromCompany = ptrFromText(fromCompany)
	t.ToCompany = ptrFromText(toCompany)
	if reimbursementStatus.Valid {
		status := domain.ReimbursementStatus(reimbursementStatus.String)
		t.ReimbursementStatus = &status
	}
	t.CreatedAt = createdAt.Time.UTC()
	t.UpdatedAt = updatedAt.Time.UTC()
	return &t, nil
}
