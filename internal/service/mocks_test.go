package service

import (
	"context"
	"sync"
	"time"

	"b2b-quote/internal/model"
	"b2b-quote/internal/offline"
	"b2b-quote/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockRFQRepository is a mock implementation of RFQRepository.
type MockRFQRepository struct {
	mock.Mock
}

func (m *MockRFQRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRFQRepository) Create(ctx context.Context, tx pgx.Tx, rfq *model.RFQ) error {
	return m.Called(ctx, tx, rfq).Error(0)
}

func (m *MockRFQRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RFQ), args.Error(1)
}

func (m *MockRFQRepository) List(ctx context.Context, filter repository.RFQFilter) ([]model.RFQ, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RFQ), args.Error(1)
}

func (m *MockRFQRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, rfq *model.RFQ, expected model.RFQStatus) error {
	return m.Called(ctx, tx, rfq, expected).Error(0)
}

func (m *MockRFQRepository) CreateQuote(ctx context.Context, tx pgx.Tx, quote *model.RFQQuote) error {
	return m.Called(ctx, tx, quote).Error(0)
}

func (m *MockRFQRepository) UpdateQuoteStatuses(ctx context.Context, tx pgx.Tx, quotes []model.RFQQuote) error {
	return m.Called(ctx, tx, quotes).Error(0)
}

func (m *MockRFQRepository) CreateDocument(ctx context.Context, tx pgx.Tx, doc *model.RFQDocument) error {
	return m.Called(ctx, tx, doc).Error(0)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) Insert(ctx context.Context, item *model.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, buyerID, id uuid.UUID, quantity int, price decimal.Decimal) error {
	return m.Called(ctx, buyerID, id, quantity, price).Error(0)
}

func (m *MockCartRepository) SetCustomPrice(ctx context.Context, buyerID, id uuid.UUID, price *decimal.Decimal) error {
	return m.Called(ctx, buyerID, id, price).Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, buyerID, id uuid.UUID) error {
	return m.Called(ctx, buyerID, id).Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, tx pgx.Tx, buyerID uuid.UUID) error {
	return m.Called(ctx, tx, buyerID).Error(0)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockDenylist is a mock implementation of cache.TokenDenylist.
type MockDenylist struct {
	mock.Mock
}

func (m *MockDenylist) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func (m *MockDenylist) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// stubCatalog is a fixed pricing.Catalog.
type stubCatalog map[string]*model.VolumePricing

func (c stubCatalog) Get(productID string) (*model.VolumePricing, bool) {
	p, ok := c[productID]
	return p, ok
}

func (c stubCatalog) Size() int { return len(c) }

// memoryQueue is an in-memory offline.Queue.
type memoryQueue struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]offline.Mutation
	err     error
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{entries: map[uuid.UUID][]offline.Mutation{}}
}

func (q *memoryQueue) Enqueue(_ context.Context, m offline.Mutation) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return 0, q.err
	}
	q.entries[m.BuyerID] = append(q.entries[m.BuyerID], m)
	return int64(len(q.entries[m.BuyerID])), nil
}

func (q *memoryQueue) Pending(_ context.Context, buyerID uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.entries[buyerID])), q.err
}

func (q *memoryQueue) Peek(_ context.Context, buyerID uuid.UUID) (*offline.Mutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries[buyerID]) == 0 {
		return nil, q.err
	}
	m := q.entries[buyerID][0]
	return &m, q.err
}

func (q *memoryQueue) Ack(_ context.Context, buyerID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries[buyerID]) > 0 {
		q.entries[buyerID] = q.entries[buyerID][1:]
	}
	return q.err
}

func (q *memoryQueue) Buyers(context.Context) ([]uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]uuid.UUID, 0, len(q.entries))
	for id, entries := range q.entries {
		if len(entries) > 0 {
			out = append(out, id)
		}
	}
	return out, q.err
}

func (q *memoryQueue) Forget(context.Context, uuid.UUID) error { return q.err }

// memorySnapshots is an in-memory cache.SnapshotStore.
type memorySnapshots struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: map[string][]byte{}}
}

func (s *memorySnapshots) SaveCartSnapshot(_ context.Context, buyerID string, payload []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[buyerID] = payload
	return nil
}

func (s *memorySnapshots) LoadCartSnapshot(_ context.Context, buyerID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[buyerID], nil
}

// Fixtures shared by the service tests.

var (
	testNow      = time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	testSupplier = "sup-001"
)

func fixedClock() time.Time { return testNow }

func buyerPrincipal() *model.Principal {
	return &model.Principal{UserID: uuid.New(), Email: "buyer@acme.test", Role: model.RoleBuyer, Company: "Acme Imports", TokenID: "jti-buyer"}
}

func supplierPrincipal() *model.Principal {
	return &model.Principal{UserID: uuid.New(), Email: "sales@supplier.test", Role: model.RoleSupplier, Company: "Supplier SA", SupplierID: testSupplier, TokenID: "jti-supplier"}
}

func ptrInt(v int) *int { return &v }

func testCatalog() stubCatalog {
	return stubCatalog{
		"avocado-hass": {
			ProductID:     "avocado-hass",
			ProductTitle:  "Hass Avocados",
			SupplierID:    testSupplier,
			ContainerType: model.Container40HC,
			BasePrice:     decimal.NewFromInt(8500),
			Currency:      "USD",
			Tiers: []model.PricingTier{
				{MinQuantity: 1, MaxQuantity: ptrInt(1), PricePerContainer: decimal.NewFromInt(8500)},
				{MinQuantity: 2, MaxQuantity: ptrInt(4), PricePerContainer: decimal.NewFromInt(8075), DiscountPercentage: decimal.NewFromInt(5)},
				{MinQuantity: 5, PricePerContainer: decimal.NewFromInt(7650), DiscountPercentage: decimal.NewFromInt(10)},
			},
		},
		"olive-oil": {
			ProductID:     "olive-oil",
			ProductTitle:  "Extra Virgin Olive Oil",
			SupplierID:    "sup-002",
			ContainerType: model.Container20GP,
			BasePrice:     decimal.NewFromInt(30000),
			Currency:      "EUR",
		},
	}
}

func openRFQ(buyer *model.Principal) *model.RFQ {
	return &model.RFQ{
		ID:                uuid.New(),
		RFQNumber:         "RFQ-20240210-120000-abcdef",
		ProductID:         "avocado-hass",
		ProductTitle:      "Hass Avocados",
		SupplierID:        testSupplier,
		BuyerID:           buyer.UserID,
		BuyerCompany:      buyer.Company,
		ContainerQuantity: 5,
		ContainerType:     model.Container40HC,
		Incoterm:          model.IncotermFOB,
		Currency:          "USD",
		Status:            model.RFQStatusPending,
		CreatedAt:         testNow.Add(-24 * time.Hour),
		UpdatedAt:         testNow.Add(-24 * time.Hour),
		ValidUntil:        testNow.Add(29 * 24 * time.Hour),
		Quotes:            []model.RFQQuote{},
		Documents:         []model.RFQDocument{},
		Version:           1,
	}
}

func sentQuote(r *model.RFQ, counter bool) model.RFQQuote {
	return model.RFQQuote{
		ID:             uuid.New(),
		RFQID:          r.ID,
		SupplierID:     testSupplier,
		QuoteNumber:    "Q-1",
		UnitPrice:      decimal.NewFromInt(7600),
		TotalPrice:     decimal.NewFromInt(38000),
		Currency:       "USD",
		Incoterm:       model.IncotermFOB,
		ValidUntil:     testNow.Add(14 * 24 * time.Hour),
		IsCounterOffer: counter,
		Status:         model.QuoteStatusSent,
		CreatedAt:      testNow.Add(-time.Hour),
	}
}
