package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/websocket"
	"github.com/google/uuid"
)

// MockTransactionRepository is an in-memory domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
	CreateFn     func(transaction *domain.Transaction) (*domain.Transaction, error)
	ListAllFn    func(workspaceID int32) ([]*domain.Transaction, error)
	UpdateFn     func(transaction *domain.Transaction) (*domain.Transaction, error)
	DeleteFn     func(workspaceID int32, id uuid.UUID) error
	mu           sync.Mutex
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

// AddTransaction seeds a transaction, assigning an ID when missing
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m.Transactions[tx.ID] = tx
	return tx
}

// Create stores a new transaction
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	now := time.Now().UTC()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	return m.AddTransaction(transaction), nil
}

// GetByID retrieves a transaction by ID within a workspace
func (m *MockTransactionRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// GetByWorkspace returns a filtered page of transactions, newest first
func (m *MockTransactionRepository) GetByWorkspace(ctx context.Context, workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	all, err := m.ListAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}

	var filtered []*domain.Transaction
	for _, tx := range all {
		if filters.StartDate != nil && tx.Date.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && tx.Date.After(*filters.EndDate) {
			continue
		}
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		if filters.Category != nil && tx.Category != *filters.Category {
			continue
		}
		if filters.Company != nil && (tx.Company == nil || *tx.Company != *filters.Company) {
			continue
		}
		filtered = append(filtered, tx)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})

	page, pageSize := filters.Page, filters.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	total := int64(len(filtered))
	start := int((page - 1) * pageSize)
	end := start + int(pageSize)
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	totalPages := int32(total / int64(pageSize))
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       filtered[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// ListAll returns every transaction of the workspace
func (m *MockTransactionRepository) ListAll(ctx context.Context, workspaceID int32) ([]*domain.Transaction, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(workspaceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Transaction, 0, len(m.Transactions))
	for _, tx := range m.Transactions {
		if tx.WorkspaceID == workspaceID {
			result = append(result, tx)
		}
	}
	return result, nil
}

// Update replaces an existing transaction
func (m *MockTransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Transactions[transaction.ID]
	if !ok || existing.WorkspaceID != transaction.WorkspaceID {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.CreatedAt = existing.CreatedAt
	transaction.UpdatedAt = time.Now().UTC()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(workspaceID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok || tx.WorkspaceID != workspaceID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// ListWorkspaceIDs returns the distinct workspaces that own transactions, ascending
func (m *MockTransactionRepository) ListWorkspaceIDs(ctx context.Context) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int32]bool)
	var ids []int32
	for _, tx := range m.Transactions {
		if !seen[tx.WorkspaceID] {
			seen[tx.WorkspaceID] = true
			ids = append(ids, tx.WorkspaceID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MockBudgetRepository is an in-memory domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[uuid.UUID]*domain.Budget
	ListFn  func(workspaceID int32, filters *domain.BudgetFilters) ([]*domain.Budget, error)
	mu      sync.Mutex
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[uuid.UUID]*domain.Budget),
	}
}

// AddBudget seeds a budget, assigning an ID when missing
func (m *MockBudgetRepository) AddBudget(b *domain.Budget) *domain.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.Budgets[b.ID] = b
	return b
}

// Create stores a new budget
func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	return m.AddBudget(budget), nil
}

// GetByID retrieves a budget by ID within a workspace
func (m *MockBudgetRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	return b, nil
}

// List returns the workspace's budgets matching the filters
func (m *MockBudgetRepository) List(ctx context.Context, workspaceID int32, filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID, filters)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Budget, 0)
	for _, b := range m.Budgets {
		if b.WorkspaceID != workspaceID {
			continue
		}
		if filters != nil {
			if filters.Period != nil && b.Period != *filters.Period {
				continue
			}
			if filters.Year != nil && b.Year != *filters.Year {
				continue
			}
			if filters.Month != nil && b.Month != *filters.Month {
				continue
			}
			if filters.Type != nil && b.Type != *filters.Type {
				continue
			}
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result, nil
}

// Update replaces an existing budget
func (m *MockBudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Budgets[budget.ID]
	if !ok || existing.WorkspaceID != budget.WorkspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now().UTC()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// MockSnapshotRepository is an in-memory domain.SnapshotRepository
type MockSnapshotRepository struct {
	Objects map[string][]byte
	PutErr  error
	mu      sync.Mutex
}

// NewMockSnapshotRepository creates a new MockSnapshotRepository
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		Objects: make(map[string][]byte),
	}
}

// Put stores an object
func (m *MockSnapshotRepository) Put(ctx context.Context, key string, data []byte) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return nil
}

// Get loads an object
func (m *MockSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return data, nil
}

// Keys returns the stored keys, sorted
func (m *MockSnapshotRepository) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PublishedEvent is one event captured by MockEventPublisher
type PublishedEvent struct {
	WorkspaceID int32
	Event       websocket.Event
}

// MockEventPublisher records every published event
type MockEventPublisher struct {
	Events []PublishedEvent
	mu     sync.Mutex
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(workspaceID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}

// Types returns the type of every published event in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
