package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `id, workspace_id, category, amount, period, year, month, type, company, created_at, updated_at`

const uniqueViolation = "23505"

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create inserts a new budget
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	id := budget.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (id, workspace_id, category, amount, period, year, month, type, company)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+budgetColumns,
		id, budget.WorkspaceID, budget.Category, amount, string(budget.Period),
		budget.Year, budget.Month, string(budget.Type), textFromPtr(budget.Company),
	)

	created, err := scanBudget(row)
	if err != nil {
		return nil, budgetWriteError("insert budget", err)
	}
	return created, nil
}

// GetByID retrieves a budget by its ID within a workspace
func (r *BudgetRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Budget, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE workspace_id = $1 AND id = $2`, workspaceID, id)

	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// List returns the budgets of a workspace matching filters, ordered by category
func (r *BudgetRepository) List(ctx context.Context, workspaceID int32, filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	conds := []string{"workspace_id = $1"}
	args := []any{workspaceID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filters != nil {
		if filters.Period != nil {
			add("period = $%d", string(*filters.Period))
		}
		if filters.Year != nil {
			add("year = $%d", *filters.Year)
		}
		if filters.Month != nil {
			add("month = $%d", *filters.Month)
		}
		if filters.Type != nil {
			add("type = $%d", string(*filters.Type))
		}
	}

	rows, err := r.pool.Query(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE `+
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
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE budgets SET
			category = $3, amount = $4, period = $5, year = $6, month = $7, type = $8, company = $9,
			updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+budgetColumns,
		budget.WorkspaceID, budget.ID, budget.Category, amount, string(budget.Period),
		budget.Year, budget.Month, string(budget.Type), textFromPtr(budget.Company),
	)

	updated, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, budgetWriteError("update budget", err)
	}
	return updated, nil
}

// Delete removes a budget
func (r *BudgetRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// budgetWriteError reports a duplicate budget slot as invalid input
func budgetWriteError(action string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: a budget already exists for this category and period", domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var (
		b                    domain.Budget
		amount               pgtype.Numeric
		period, budgetType   string
		company              pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&b.ID, &b.WorkspaceID, &b.Category, &amount, &period, &b.Year, &b.Month,
		&budgetType, &company, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.Amount = pgNumericToDecimal(amount)
	b.Period = domain.PeriodType(period)
	b.Type = domain.TransactionType(budgetType)
	b.Company = ptrFromText(company)
	b.CreatedAt = createdAt.Time.UTC()
	b.UpdatedAt = updatedAt.Time.UTC()
	return &b, nil
}
