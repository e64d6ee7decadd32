package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, workspace_id, amount, type, category, transaction_date, description,
	company, project, is_reimbursement, reimbursement_status, reimbursed_to,
	is_transfer, from_company, to_company, created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository on the SQLite store
type TransactionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{db: store.db, now: time.Now}
}

// Create inserts a new transaction, assigning an ID when none is set
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	created := *transaction
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	now := r.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(),
		created.WorkspaceID,
		created.Amount.String(),
		string(created.Type),
		created.Category,
		formatTime(created.Date),
		nullString(created.Description),
		nullString(created.Company),
		nullString(created.Project),
		created.IsReimbursement,
		nullStatus(created.ReimbursementStatus),
		nullString(created.ReimbursedTo),
		created.IsTransfer,
		nullString(created.FromCompany),
		nullString(created.ToCompany),
		formatTime(created.CreatedAt),
		formatTime(created.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return &created, nil
}

// GetByID retrieves a transaction by its ID within a workspace
func (r *TransactionRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE workspace_id = ? AND id = ?`,
		workspaceID, id.String())

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// GetByWorkspace retrieves a page of transactions, newest first
func (r *TransactionRepository) GetByWorkspace(ctx context.Context, workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = min(filters.PageSize, domain.MaxPageSize)
		}
	}

	where, args := transactionFilterClause(workspaceID, filters)

	var totalItems int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions `+where+`
		ORDER BY transaction_date DESC, created_at DESC LIMIT ? OFFSET ?`,
		append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	data, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	pages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		pages++
	}

	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: pages,
	}, nil
}

// ListAll returns every transaction of the workspace ordered by date
func (r *TransactionRepository) ListAll(ctx context.Context, workspaceID int32) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE workspace_id = ? ORDER BY transaction_date`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// Update replaces the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, err := r.GetByID(ctx, transaction.WorkspaceID, transaction.ID)
	if err != nil {
		return nil, err
	}

	updated := *transaction
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.now().UTC()

	_, err = r.db.ExecContext(ctx, `
		UPDATE transactions SET
			amount = ?, type = ?, category = ?, transaction_date = ?, description = ?,
			company = ?, project = ?, is_reimbursement = ?, reimbursement_status = ?,
			reimbursed_to = ?, is_transfer = ?, from_company = ?, to_company = ?, updated_at = ?
		WHERE workspace_id = ? AND id = ?`,
		updated.Amount.String(),
		string(updated.Type),
		updated.Category,
		formatTime(updated.Date),
		nullString(updated.Description),
		nullString(updated.Company),
		nullString(updated.Project),
		updated.IsReimbursement,
		nullStatus(updated.ReimbursementStatus),
		nullString(updated.ReimbursedTo),
		updated.IsTransfer,
		nullString(updated.FromCompany),
		nullString(updated.ToCompany),
		formatTime(updated.UpdatedAt),
		updated.WorkspaceID,
		updated.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return &updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE workspace_id = ? AND id = ?`, workspaceID, id.String())
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListWorkspaceIDs returns every workspace that has at least one transaction
func (r *TransactionRepository) ListWorkspaceIDs(ctx context.Context) ([]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT workspace_id FROM transactions ORDER BY workspace_id`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func transactionFilterClause(workspaceID int32, filters *domain.TransactionFilters) (string, []any) {
	conds := []string{"workspace_id = ?"}
	args := []any{workspaceID}

	if filters != nil {
		if filters.StartDate != nil {
			conds = append(conds, "transaction_date >= ?")
			args = append(args, formatTime(*filters.StartDate))
		}
		if filters.EndDate != nil {
			conds = append(conds, "transaction_date <= ?")
			args = append(args, formatTime(*filters.EndDate))
		}
		if filters.Type != nil {
			conds = append(conds, "type = ?")
			args = append(args, string(*filters.Type))
		}
		if filters.Category != nil {
			conds = append(conds, "LOWER(category) = LOWER(?)")
			args = append(args, *filters.Category)
		}
		if filters.Company != nil {
			conds = append(conds, "company = ?")
			args = append(args, *filters.Company)
		}
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func nullStatus(s *domain.ReimbursementStatus) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}

func collectTransactions(rows *sql.Rows) ([]*domain.Transaction, error) {
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
		id, amount, txType, date                    string
		createdAt, updatedAt                        string
		description, company, project, reimbursedTo sql.NullString
		reimbursementStatus, fromCompany, toCompany sql.NullString
	)

	err := row.Scan(
		&id, &t.WorkspaceID, &amount, &txType, &t.Category, &date, &description,
		&company, &project, &t.IsReimbursement, &reimbursementStatus, &reimbursedTo,
		&t.IsTransfer, &fromCompany, &toCompany, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid stored id %q: %w", id, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if t.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txType)
	t.Description = stringPtr(description)
	t.Company = stringPtr(company)
	t.Project = stringPtr(project)
	t.ReimbursedTo = stringPtr(reimbursedTo)
	t.FromCompany = stringPtr(fromCompany)
	t.ToCompany = stringPtr(toCompany)
	if reimbursementStatus.Valid {
		status := domain.ReimbursementStatus(reimbursementStatus.String)
		t.ReimbursementStatus = &status
	}
	return &t, nil
}
