package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FixedClock is a domain.Clock that always returns the same instant
type FixedClock struct {
	At time.Time
}

// NewFixedClock returns a clock set to noon UTC of the given date key
func NewFixedClock(dateKey string) *FixedClock {
	t, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		panic(fmt.Sprintf("invalid date key %q", dateKey))
	}
	return &FixedClock{At: t.Add(12 * time.Hour)}
}

// Now returns the fixed instant
func (c *FixedClock) Now() time.Time {
	return c.At
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces map[string]*domain.Workspace
	NextID     int32
	Err        error
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{
		Workspaces: make(map[string]*domain.Workspace),
		NextID:     1,
	}
}

// GetByAuth0ID retrieves a workspace by Auth0 ID
func (m *MockWorkspaceRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Workspace, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if ws, ok := m.Workspaces[auth0ID]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// CreateOrGetByAuth0ID returns the existing workspace or creates one
func (m *MockWorkspaceRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email, name string) (*domain.Workspace, bool, error) {
	if m.Err != nil {
		return nil, false, m.Err
	}
	if ws, ok := m.Workspaces[auth0ID]; ok {
		return ws, false, nil
	}
	ws := &domain.Workspace{
		ID:        m.NextID,
		Auth0ID:   auth0ID,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.NextID++
	m.Workspaces[auth0ID] = ws
	return ws, true, nil
}

// GetAll returns every workspace ordered by ID
func (m *MockWorkspaceRepository) GetAll(ctx context.Context) ([]*domain.Workspace, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*domain.Workspace, 0, len(m.Workspaces))
	for _, ws := range m.Workspaces {
		result = append(result, ws)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddWorkspace adds a workspace directly to the mock
func (m *MockWorkspaceRepository) AddWorkspace(ws *domain.Workspace) {
	m.Workspaces[ws.Auth0ID] = ws
	if ws.ID >= m.NextID {
		m.NextID = ws.ID + 1
	}
}

// MockTransactionRepository is an in-memory domain.TransactionRepository
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []*domain.Transaction
	// FailCreate, when set, is consulted for every record of a Create batch.
	// An error aborts the whole batch.
	FailCreate func(t *domain.Transaction) error
	GetAllErr  error
	SettleErr  error
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make([]*domain.Transaction, 0),
	}
}

// Create stores all records or none
func (m *MockTransactionRepository) Create(ctx context.Context, transactions []*domain.Transaction) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate != nil {
		for _, t := range transactions {
			if err := m.FailCreate(t); err != nil {
				return nil, err
			}
		}
	}
	return m.insert(transactions), nil
}

func (m *MockTransactionRepository) insert(transactions []*domain.Transaction) []*domain.Transaction {
	created := make([]*domain.Transaction, 0, len(transactions))
	now := time.Now()
	for _, t := range transactions {
		stored := *t
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
		}
		if stored.Tags == nil {
			stored.Tags = []string{}
		}
		stored.CreatedAt = now
		stored.UpdatedAt = now
		m.Transactions = append(m.Transactions, &stored)
		copied := stored
		created = append(created, &copied)
	}
	return created
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.find(workspaceID, id); t != nil {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) find(workspaceID int32, id uuid.UUID) *domain.Transaction {
	for _, t := range m.Transactions {
		if t.WorkspaceID == workspaceID && t.ID == id {
			return t
		}
	}
	return nil
}

// GetByIDs retrieves the existing transactions among ids
func (m *MockTransactionRepository) GetByIDs(ctx context.Context, workspaceID int32, ids []uuid.UUID) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Transaction, 0, len(ids))
	for _, id := range ids {
		if t := m.find(workspaceID, id); t != nil {
			copied := *t
			result = append(result, &copied)
		}
	}
	return result, nil
}

// GetAll returns the workspace ledger ordered by date
func (m *MockTransactionRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Transaction, error) {
	if m.GetAllErr != nil {
		return nil, m.GetAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Transaction, 0)
	for _, t := range m.Transactions {
		if t.WorkspaceID == workspaceID {
			copied := *t
			result = append(result, &copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

// List returns matching transactions, newest first
func (m *MockTransactionRepository) List(ctx context.Context, workspaceID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	all, err := m.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Transaction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if filters.Matches(all[i]) {
			result = append(result, all[i])
		}
	}
	return result, nil
}

// Update applies a partial update
func (m *MockTransactionRepository) Update(ctx context.Context, workspaceID int32, id uuid.UUID, update *domain.TransactionUpdate) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(workspaceID, id)
	if t == nil {
		return nil, domain.ErrTransactionNotFound
	}
	update.Apply(t)
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.Transactions {
		if t.WorkspaceID == workspaceID && t.ID == id {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

// MarkPaid flags ids as paid
func (m *MockTransactionRepository) MarkPaid(ctx context.Context, workspaceID int32, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markPaid(workspaceID, ids), nil
}

func (m *MockTransactionRepository) markPaid(workspaceID int32, ids []uuid.UUID) int64 {
	var n int64
	for _, id := range ids {
		if t := m.find(workspaceID, id); t != nil {
			t.IsPaid = true
			n++
		}
	}
	return n
}

// SettleInvoice marks ids paid and inserts settlement. SettleErr leaves the
// ledger untouched.
func (m *MockTransactionRepository) SettleInvoice(ctx context.Context, workspaceID int32, ids []uuid.UUID, settlement *domain.Transaction) (*domain.Transaction, error) {
	if m.SettleErr != nil {
		return nil, m.SettleErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markPaid(workspaceID, ids)
	return m.insert([]*domain.Transaction{settlement})[0], nil
}

// SetAttachment stores the attachment path
func (m *MockTransactionRepository) SetAttachment(ctx context.Context, workspaceID int32, id uuid.UUID, url string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(workspaceID, id)
	if t == nil {
		return nil, domain.ErrTransactionNotFound
	}
	t.AttachmentURL = &url
	copied := *t
	return &copied, nil
}

// AddTransaction adds a transaction directly to the mock and returns it
func (m *MockTransactionRepository) AddTransaction(t *domain.Transaction) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	m.Transactions = append(m.Transactions, t)
	return t
}

// Count returns how many transactions the workspace has
func (m *MockTransactionRepository) Count(workspaceID int32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.Transactions {
		if t.WorkspaceID == workspaceID {
			n++
		}
	}
	return n
}

// MockCardRepository is an in-memory domain.CardRepository
type MockCardRepository struct {
	Cards map[uuid.UUID]*domain.CreditCard
}

// NewMockCardRepository creates a new MockCardRepository
func NewMockCardRepository() *MockCardRepository {
	return &MockCardRepository{Cards: make(map[uuid.UUID]*domain.CreditCard)}
}

// Create stores a card
func (m *MockCardRepository) Create(ctx context.Context, card *domain.CreditCard) (*domain.CreditCard, error) {
	card.ID = uuid.New()
	card.CreatedAt = time.Now()
	m.Cards[card.ID] = card
	return card, nil
}

// GetByID retrieves a card
func (m *MockCardRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.CreditCard, error) {
	if card, ok := m.Cards[id]; ok && card.WorkspaceID == workspaceID {
		return card, nil
	}
	return nil, domain.ErrCardNotFound
}

// GetAll returns the workspace cards ordered by name
func (m *MockCardRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.CreditCard, error) {
	result := make([]*domain.CreditCard, 0)
	for _, card := range m.Cards {
		if card.WorkspaceID == workspaceID {
			result = append(result, card)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update replaces a card
func (m *MockCardRepository) Update(ctx context.Context, card *domain.CreditCard) (*domain.CreditCard, error) {
	existing, ok := m.Cards[card.ID]
	if !ok || existing.WorkspaceID != card.WorkspaceID {
		return nil, domain.ErrCardNotFound
	}
	card.CreatedAt = existing.CreatedAt
	m.Cards[card.ID] = card
	return card, nil
}

// Delete removes a card
func (m *MockCardRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	if card, ok := m.Cards[id]; !ok || card.WorkspaceID != workspaceID {
		return domain.ErrCardNotFound
	}
	delete(m.Cards, id)
	return nil
}

// AddCard adds a card directly to the mock and returns it
func (m *MockCardRepository) AddCard(card *domain.CreditCard) *domain.CreditCard {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	m.Cards[card.ID] = card
	return card
}

// MockBudgetRepository is an in-memory domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets []*domain.Budget
	Err     error
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make([]*domain.Budget, 0)}
}

// Create stores a budget
func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = uuid.New()
	budget.CreatedAt = time.Now()
	m.Budgets = append(m.Budgets, budget)
	return budget, nil
}

// GetByID retrieves a budget
func (m *MockBudgetRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.ID == id {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// GetAll returns the workspace budgets in insertion order
func (m *MockBudgetRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Budget, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*domain.Budget, 0)
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID {
			result = append(result, b)
		}
	}
	return result, nil
}

// Update replaces a budget
func (m *MockBudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	for i, b := range m.Budgets {
		if b.WorkspaceID == budget.WorkspaceID && b.ID == budget.ID {
			m.Budgets[i] = budget
			return budget, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	for i, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.ID == id {
			m.Budgets = append(m.Budgets[:i], m.Budgets[i+1:]...)
			return nil
		}
	}
	return domain.ErrBudgetNotFound
}

// AddBudget adds a budget directly to the mock and returns it
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) *domain.Budget {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	m.Budgets = append(m.Budgets, budget)
	return budget
}

// MockGoalRepository is an in-memory domain.GoalRepository
type MockGoalRepository struct {
	Goals             []*domain.Goal
	UpdateProgressErr error
}

// NewMockGoalRepository creates a new MockGoalRepository
func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{Goals: make([]*domain.Goal, 0)}
}

// Create stores a goal
func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	goal.ID = uuid.New()
	goal.CreatedAt = time.Now()
	m.Goals = append(m.Goals, goal)
	return goal, nil
}

// GetByID retrieves a goal
func (m *MockGoalRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Goal, error) {
	for _, g := range m.Goals {
		if g.WorkspaceID == workspaceID && g.ID == id {
			copied := *g
			return &copied, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

// GetAll returns the workspace goals in insertion order
func (m *MockGoalRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Goal, error) {
	result := make([]*domain.Goal, 0)
	for _, g := range m.Goals {
		if g.WorkspaceID == workspaceID {
			copied := *g
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Update replaces a goal
func (m *MockGoalRepository) Update(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	for i, g := range m.Goals {
		if g.WorkspaceID == goal.WorkspaceID && g.ID == goal.ID {
			m.Goals[i] = goal
			return goal, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

// UpdateProgress sets the current amount and status
func (m *MockGoalRepository) UpdateProgress(ctx context.Context, workspaceID int32, id uuid.UUID, currentAmount decimal.Decimal, status domain.GoalStatus) (*domain.Goal, error) {
	if m.UpdateProgressErr != nil {
		return nil, m.UpdateProgressErr
	}
	for _, g := range m.Goals {
		if g.WorkspaceID == workspaceID && g.ID == id {
			g.CurrentAmount = currentAmount
			g.Status = status
			copied := *g
			return &copied, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

// Delete removes a goal
func (m *MockGoalRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	for i, g := range m.Goals {
		if g.WorkspaceID == workspaceID && g.ID == id {
			m.Goals = append(m.Goals[:i], m.Goals[i+1:]...)
			return nil
		}
	}
	return domain.ErrGoalNotFound
}

// AddGoal adds a goal directly to the mock and returns it
func (m *MockGoalRepository) AddGoal(goal *domain.Goal) *domain.Goal {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	m.Goals = append(m.Goals, goal)
	return goal
}

// MockDebtRepository is an in-memory domain.DebtRepository
type MockDebtRepository struct {
	Debts []*domain.Debt
}

// NewMockDebtRepository creates a new MockDebtRepository
func NewMockDebtRepository() *MockDebtRepository {
	return &MockDebtRepository{Debts: make([]*domain.Debt, 0)}
}

// Create stores a debt
func (m *MockDebtRepository) Create(ctx context.Context, debt *domain.Debt) (*domain.Debt, error) {
	debt.ID = uuid.New()
	debt.CreatedAt = time.Now()
	m.Debts = append(m.Debts, debt)
	return debt, nil
}

// GetByID retrieves a debt
func (m *MockDebtRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Debt, error) {
	for _, d := range m.Debts {
		if d.WorkspaceID == workspaceID && d.ID == id {
			copied := *d
			return &copied, nil
		}
	}
	return nil, domain.ErrDebtNotFound
}

// GetAll returns the workspace debts in insertion order
func (m *MockDebtRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Debt, error) {
	result := make([]*domain.Debt, 0)
	for _, d := range m.Debts {
		if d.WorkspaceID == workspaceID {
			copied := *d
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Update replaces a debt's editable fields
func (m *MockDebtRepository) Update(ctx context.Context, debt *domain.Debt) (*domain.Debt, error) {
	for i, d := range m.Debts {
		if d.WorkspaceID == debt.WorkspaceID && d.ID == debt.ID {
			debt.CreatedAt = d.CreatedAt
			m.Debts[i] = debt
			copied := *debt
			return &copied, nil
		}
	}
	return nil, domain.ErrDebtNotFound
}

// UpdateBalance sets the outstanding balance
func (m *MockDebtRepository) UpdateBalance(ctx context.Context, workspaceID int32, id uuid.UUID, currentAmount decimal.Decimal) (*domain.Debt, error) {
	for _, d := range m.Debts {
		if d.WorkspaceID == workspaceID && d.ID == id {
			d.CurrentAmount = currentAmount
			copied := *d
			return &copied, nil
		}
	}
	return nil, domain.ErrDebtNotFound
}

// Delete removes a debt
func (m *MockDebtRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	for i, d := range m.Debts {
		if d.WorkspaceID == workspaceID && d.ID == id {
			m.Debts = append(m.Debts[:i], m.Debts[i+1:]...)
			return nil
		}
	}
	return domain.ErrDebtNotFound
}

// AddDebt adds a debt directly to the mock and returns it
func (m *MockDebtRepository) AddDebt(debt *domain.Debt) *domain.Debt {
	if debt.ID == uuid.Nil {
		debt.ID = uuid.New()
	}
	m.Debts = append(m.Debts, debt)
	return debt
}

// MockClosureRepository is an in-memory domain.ClosureRepository
type MockClosureRepository struct {
	Closures map[string]*domain.MonthlyClosure
}

// NewMockClosureRepository creates a new MockClosureRepository
func NewMockClosureRepository() *MockClosureRepository {
	return &MockClosureRepository{Closures: make(map[string]*domain.MonthlyClosure)}
}

func closureKey(workspaceID int32, year, month int) string {
	return fmt.Sprintf("%d:%04d-%02d", workspaceID, year, month)
}

// Get retrieves the closure record of a month
func (m *MockClosureRepository) Get(ctx context.Context, workspaceID int32, year, month int) (*domain.MonthlyClosure, error) {
	if c, ok := m.Closures[closureKey(workspaceID, year, month)]; ok {
		return c, nil
	}
	return nil, domain.ErrClosureNotFound
}

// Upsert records whether a month is closed
func (m *MockClosureRepository) Upsert(ctx context.Context, workspaceID int32, year, month int, isClosed bool) (*domain.MonthlyClosure, error) {
	key := closureKey(workspaceID, year, month)
	c, ok := m.Closures[key]
	if !ok {
		c = &domain.MonthlyClosure{ID: uuid.New(), WorkspaceID: workspaceID, Year: year, Month: month}
		m.Closures[key] = c
	}
	c.IsClosed = isClosed
	c.ClosedAt = time.Now()
	return c, nil
}

// GetAll returns the workspace closures ordered by month
func (m *MockClosureRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.MonthlyClosure, error) {
	result := make([]*domain.MonthlyClosure, 0)
	for _, c := range m.Closures {
		if c.WorkspaceID == workspaceID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}

// Close marks a month closed
func (m *MockClosureRepository) Close(workspaceID int32, year, month int) {
	_, _ = m.Upsert(context.Background(), workspaceID, year, month, true)
}

// MockFlowViewRepository returns canned flow rows
type MockFlowViewRepository struct {
	Daily      []*domain.DailyFlow
	Semiannual []*domain.SemiannualFlow
	Err        error
}

// GetDailyFlow returns Daily
func (m *MockFlowViewRepository) GetDailyFlow(ctx context.Context, workspaceID int32) ([]*domain.DailyFlow, error) {
	return m.Daily, m.Err
}

// GetSemiannualFlow returns Semiannual
func (m *MockFlowViewRepository) GetSemiannualFlow(ctx context.Context, workspaceID int32) ([]*domain.SemiannualFlow, error) {
	return m.Semiannual, m.Err
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	WorkspaceID int32
	Event       websocket.Event
}

// Publish records the event
func (m *MockEventPublisher) Publish(workspaceID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}

// Types returns the recorded event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}

// MockClassifier answers with Label or Err and counts calls
type MockClassifier struct {
	Label string
	Err   error
	Calls int
}

// Classify returns the configured answer
func (m *MockClassifier) Classify(ctx context.Context, description string, income bool, labels []string) (string, error) {
	m.Calls++
	return m.Label, m.Err
}

// MockSuggestionCache is an in-memory suggestion cache
type MockSuggestionCache struct {
	Entries map[string]string
	GetErr  error
}

// NewMockSuggestionCache creates a new MockSuggestionCache
func NewMockSuggestionCache() *MockSuggestionCache {
	return &MockSuggestionCache{Entries: make(map[string]string)}
}

// Get returns a cached label
func (m *MockSuggestionCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	label, ok := m.Entries[key]
	return label, ok, nil
}

// Set stores a label
func (m *MockSuggestionCache) Set(ctx context.Context, key, label string) error {
	m.Entries[key] = label
	return nil
}

// MockAttachmentStore keeps uploaded objects in memory
type MockAttachmentStore struct {
	Objects   map[string][]byte
	UploadErr error
}

// NewMockAttachmentStore creates a new MockAttachmentStore
func NewMockAttachmentStore() *MockAttachmentStore {
	return &MockAttachmentStore{Objects: make(map[string][]byte)}
}

// Upload stores the object
func (m *MockAttachmentStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf.Bytes()
	return objectPath, nil
}

// Delete removes the object
func (m *MockAttachmentStore) Delete(ctx context.Context, objectPath string) error {
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake signed URL
func (m *MockAttachmentStore) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}
