package service

import (
	"context"
	"testing"
	"time"

	"b2b-quote/internal/model"
	"b2b-quote/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestQuoteService(repo *MockRFQRepository) *quoteService {
	svc := NewQuoteService(newTestRFQService(repo), testQuoteConfig(), zerolog.Nop()).(*quoteService)
	svc.now = fixedClock
	return svc
}

func TestQuoteService_GetByRFQ(t *testing.T) {
	ctx := context.Background()
	buyer := buyerPrincipal()

	t.Run("quoted RFQ uses the latest quote", func(t *testing.T) {
		repo := new(MockRFQRepository)
		r := openRFQ(buyer)
		r.Status = model.RFQStatusQuoted
		q := sentQuote(r, false)
		q.PaymentTerms = "30% advance, 70% against BL"
		r.Quotes = []model.RFQQuote{q}
		repo.On("GetByID", ctx, r.ID).Return(r, nil)

		view, err := newTestQuoteService(repo).GetByRFQ(ctx, buyer, r.ID)

		require.NoError(t, err)
		assert.Equal(t, model.QuoteViewQuoted, view.Status)
		assert.Equal(t, "Q-1", view.QuoteNumber)
		assert.True(t, view.GrandTotal.Equal(decimal.NewFromInt(38250)))
		assert.Equal(t, "30% advance, 70% against BL", view.PaymentConditions)
	})

	t.Run("lapsed RFQ projects as expired", func(t *testing.T) {
		repo := new(MockRFQRepository)
		r := openRFQ(buyer)
		r.ValidUntil = testNow.Add(-time.Minute)
		repo.On("GetByID", ctx, r.ID).Return(r, nil)

		view, err := newTestQuoteService(repo).GetByRFQ(ctx, buyer, r.ID)

		require.NoError(t, err)
		assert.Equal(t, model.QuoteViewExpired, view.Status)
		assert.True(t, view.TotalAmount.IsZero())
	})

	t.Run("foreign RFQ", func(t *testing.T) {
		repo := new(MockRFQRepository)
		r := openRFQ(buyerPrincipal())
		repo.On("GetByID", ctx, r.ID).Return(r, nil)

		_, err := newTestQuoteService(repo).GetByRFQ(ctx, buyer, r.ID)

		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestQuoteService_List(t *testing.T) {
	ctx := context.Background()
	buyer := buyerPrincipal()
	repo := new(MockRFQRepository)

	pending := openRFQ(buyer)
	estimated := decimal.NewFromInt(42500)
	pending.EstimatedValue = &estimated
	accepted := openRFQ(buyer)
	q := sentQuote(accepted, false)
	q.Status = model.QuoteStatusAccepted
	accepted.Quotes = []model.RFQQuote{q}
	accepted.AcceptedQuoteID = &q.ID
	accepted.Status = model.RFQStatusAccepted

	repo.On("List", ctx, mock.MatchedBy(func(f repository.RFQFilter) bool {
		return f.BuyerID != nil && *f.BuyerID == buyer.UserID && f.Limit == 20
	})).Return([]model.RFQ{*pending, *accepted}, nil)

	views, err := newTestQuoteService(repo).List(ctx, buyer, 0, 0)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, model.QuoteViewSent, views[0].Status)
	assert.True(t, views[0].Items[0].PriceDerived)
	assert.True(t, views[0].Items[0].UnitPrice.Equal(decimal.NewFromInt(8500)))
	assert.Equal(t, model.QuoteViewAccepted, views[1].Status)
	assert.True(t, views[1].Items[0].TotalPrice.Equal(decimal.NewFromInt(38000)))
}
