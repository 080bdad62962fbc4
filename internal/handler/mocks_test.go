package handler

import (
	"context"
	"net/http"

	"b2b-quote/internal/middleware"
	"b2b-quote/internal/model"
	"b2b-quote/internal/offline"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRFQService is a mock implementation of RFQService.
type MockRFQService struct {
	mock.Mock
}

func (m *MockRFQService) rfq(args mock.Arguments) (*model.RFQ, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RFQ), args.Error(1)
}

func (m *MockRFQService) Create(ctx context.Context, p *model.Principal, req *model.CreateRFQRequest) (*model.RFQ, error) {
	return m.rfq(m.Called(ctx, p, req))
}

func (m *MockRFQService) List(ctx context.Context, p *model.Principal, status model.RFQStatus, limit, offset int) ([]model.RFQ, error) {
	args := m.Called(ctx, p, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RFQ), args.Error(1)
}

func (m *MockRFQService) GetByID(ctx context.Context, p *model.Principal, id uuid.UUID) (*model.RFQ, error) {
	return m.rfq(m.Called(ctx, p, id))
}

func (m *MockRFQService) AddQuote(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.SubmitQuoteRequest) (*model.RFQ, error) {
	return m.rfq(m.Called(ctx, p, id, req))
}

func (m *MockRFQService) AcceptQuote(ctx context.Context, p *model.Principal, id, quoteID uuid.UUID) (*model.RFQ, error) {
	return m.rfq(m.Called(ctx, p, id, quoteID))
}

func (m *MockRFQService) CounterOffer(ctx context.Context, p *model.Principal, id, quoteID uuid.UUID, req *model.CounterOfferRequest) (*model.RFQ, error) {
	return m.rfq(m.Called(ctx, p, id, quoteID, req))
}

func (m *MockRFQService) Reject(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.RejectRFQRequest) (*model.RFQ, error) {
	return m.rfq(m.Called(ctx, p, id, req))
}

func (m *MockRFQService) AttachDocument(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.AttachDocumentRequest) (*model.RFQ, error) {
	return m.rfq(m.Called(ctx, p, id, req))
}

// MockQuoteService is a mock implementation of QuoteService.
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) List(ctx context.Context, p *model.Principal, limit, offset int) ([]model.Quote, error) {
	args := m.Called(ctx, p, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Quote), args.Error(1)
}

func (m *MockQuoteService) GetByRFQ(ctx context.Context, p *model.Principal, rfqID uuid.UUID) (*model.Quote, error) {
	args := m.Called(ctx, p, rfqID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

// MockPricingService is a mock implementation of PricingService.
type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Get(ctx context.Context, productID string) (*model.VolumePricing, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VolumePricing), args.Error(1)
}

func (m *MockPricingService) Resolve(ctx context.Context, productID string, quantity int) (*model.PricingResolution, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PricingResolution), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*model.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, p *model.Principal) (*model.Cart, error) {
	return m.cart(m.Called(ctx, p))
}

func (m *MockCartService) AddItem(ctx context.Context, p *model.Principal, req *model.AddCartItemRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, p, req))
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, p *model.Principal, itemID uuid.UUID, req *model.UpdateCartItemRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, p, itemID, req))
}

func (m *MockCartService) SetCustomPrice(ctx context.Context, p *model.Principal, itemID uuid.UUID, req *model.SetCustomPriceRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, p, itemID, req))
}

func (m *MockCartService) RemoveItem(ctx context.Context, p *model.Principal, itemID uuid.UUID) (*model.Cart, error) {
	return m.cart(m.Called(ctx, p, itemID))
}

func (m *MockCartService) Clear(ctx context.Context, p *model.Principal) (*model.Cart, error) {
	return m.cart(m.Called(ctx, p))
}

func (m *MockCartService) Submit(ctx context.Context, p *model.Principal, req *model.SubmitCartRequest) (*model.SubmitCartResponse, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmitCartResponse), args.Error(1)
}

func (m *MockCartService) ApplyMutation(ctx context.Context, mutation offline.Mutation) error {
	return m.Called(ctx, mutation).Error(0)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Principal), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, p *model.Principal) (*model.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, p *model.Principal) error {
	return m.Called(ctx, p).Error(0)
}

var (
	testBuyer    = &model.Principal{UserID: uuid.New(), Email: "buyer@acme.test", Role: model.RoleBuyer, Company: "Acme Imports"}
	testSupplier = &model.Principal{UserID: uuid.New(), Email: "sales@supplier.test", Role: model.RoleSupplier, SupplierID: "sup-001"}
)

// authenticated attaches p and the chi URL params given as name/value pairs to req.
func authenticated(req *http.Request, p *model.Principal, params ...string) *http.Request {
	ctx := req.Context()
	if p != nil {
		ctx = middleware.WithPrincipal(ctx, p)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}
