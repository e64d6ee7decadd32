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
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const budgetColumns = `id, workspace_id, category, amount, period, year, month, type, company, created_at, updated_at`

// BudgetRepository implements domain.BudgetRepository on the SQLite store.
// A missing company is stored as the empty string so the unique slot constraint holds.
type BudgetRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(store *Store) *BudgetRepository {
	return &BudgetRepository{db: store.db, now: time.Now}
}

// Create inserts a new budget
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	created := *budget
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	now := r.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(), created.WorkspaceID, created.Category, created.Amount.String(),
		string(created.Period), created.Year, created.Month, string(created.Type),
		companyValue(created.Company), formatTime(created.CreatedAt), formatTime(created.UpdatedAt),
	)
	if err != nil {
		return nil, budgetWriteError("insert budget", err)
	}
	return &created, nil
}

// GetByID retrieves a budget by its ID within a workspace
func (r *BudgetRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE workspace_id = ? AND id = ?`, workspaceID, id.String())

	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

// List returns the budgets of a workspace matching filters, ordered by category
func (r *BudgetRepository) List(ctx context.Context, workspaceID int32, filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	conds := []string{"workspace_id = ?"}
	args := []any{workspaceID}
	if filters != nil {
		if filters.Period != nil {
			conds = append(conds, "period = ?")
			args = append(args, string(*filters.Period))
		}
		if filters.Year != nil {
			conds = append(conds, "year = ?")
			args = append(args, *filters.Year)
		}
		if filters.Month != nil {
			conds = append(conds, "month = ?")
			args = append(args, *filters.Month)
		}
		if filters.Type != nil {
			conds = append(conds, "type = ?")
			args = append(args, string(*filters.Type))
		}
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE `+
		strings.Join(conds, " AND ")+` ORDER BY category, year, month`, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var result []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return result, nil
}

// Update replaces the mutable fields of a budget
func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	existing, err := r.GetByID(ctx, budget.WorkspaceID, budget.ID)
	if err != nil {
		return nil, err
	}

	updated := *budget
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.now().UTC()

	_, err = r.db.ExecContext(ctx, `UPDATE budgets SET
			category = ?, amount = ?, period = ?, year = ?, month = ?, type = ?, company = ?, updated_at = ?
		WHERE workspace_id = ? AND id = ?`,
		updated.Category, updated.Amount.String(), string(updated.Period), updated.Year, updated.Month,
		string(updated.Type), companyValue(updated.Company), formatTime(updated.UpdatedAt),
		updated.WorkspaceID, updated.ID.String(),
	)
	if err != nil {
		return nil, budgetWriteError("update budget", err)
	}
	return &updated, nil
}

// Delete removes a budget
func (r *BudgetRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE workspace_id = ? AND id = ?`, workspaceID, id.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func companyValue(company *string) string {
	if company == nil {
		return ""
	}
	return *company
}

// budgetWriteError reports a duplicate budget slot as invalid input
func budgetWriteError(action string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: a budget already exists for this category and period", domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var (
		b                              domain.Budget
		id, amount, period, budgetType string
		company, createdAt, updatedAt  string
	)

	err := row.Scan(&id, &b.WorkspaceID, &b.Category, &amount, &period, &b.Year, &b.Month,
		&budgetType, &company, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if b.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid stored id %q: %w", id, err)
	}
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	b.Period = domain.PeriodType(period)
	b.Type = domain.TransactionType(budgetType)
	if company != "" {
		b.Company = &company
	}
	return &b, nil
}
