package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"b2b-quote/internal/cache"
	"b2b-quote/internal/config"
	"b2b-quote/internal/database"
	"b2b-quote/internal/metrics"
	"b2b-quote/internal/model"
	"b2b-quote/internal/offline"
	"b2b-quote/internal/quote"
	"b2b-quote/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const snapshotTTL = 7 * 24 * time.Hour

// cartService implements CartService.
//
// Every change is expressed as an offline.Mutation. With the database
// reachable the mutation is applied directly; otherwise it is queued and the
// buyer's snapshot is updated so reads reflect it until replay.
type cartService struct {
	carts     repository.CartRepository
	rfqs      repository.RFQRepository
	pricing   PricingService
	queue     offline.Queue
	snapshots cache.SnapshotStore
	cfg       config.QuoteConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCartService creates a new cart service. A nil queue disables offline mode
// and a nil snapshots store disables offline reads.
func NewCartService(
	carts repository.CartRepository,
	rfqs repository.RFQRepository,
	pricing PricingService,
	queue offline.Queue,
	snapshots cache.SnapshotStore,
	cfg config.QuoteConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		carts:     carts,
		rfqs:      rfqs,
		pricing:   pricing,
		queue:     queue,
		snapshots: snapshots,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.With().Str("service", "cart").Logger(),
		now:       time.Now,
	}
}

// Get returns the buyer's cart.
func (s *cartService) Get(ctx context.Context, p *model.Principal) (*model.Cart, error) {
	if err := requireBuyer(p); err != nil {
		return nil, err
	}

	pending, err := s.pending(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return s.offlineView(ctx, p.UserID, pending)
	}

	items, err := s.carts.ListByBuyer(ctx, p.UserID)
	if err != nil {
		if s.canQueue(err) {
			return s.offlineView(ctx, p.UserID, 0)
		}
		return nil, storeError("failed to get cart", err)
	}

	s.saveSnapshot(ctx, p.UserID, items)
	return s.view(items, model.CartModeOnline, 0)
}

// AddItem adds containers of a product, merging with an existing line for the same product.
func (s *cartService) AddItem(ctx context.Context, p *model.Principal, req *model.AddCartItemRequest) (*model.Cart, error) {
	return s.mutate(ctx, p, func(items []model.CartItem) (offline.Mutation, error) {
		vp, err := s.pricing.Get(ctx, req.ProductID)
		if err != nil {
			return offline.Mutation{}, err
		}
		if req.ContainerType != "" && req.ContainerType != vp.ContainerType {
			return offline.Mutation{}, model.Validation("product %s is priced for %s containers", vp.ProductID, vp.ContainerType)
		}

		for _, it := range items {
			if it.ProductID == vp.ProductID && it.ContainerType == vp.ContainerType {
				return s.repriceMutation(ctx, p.UserID, it, it.Quantity+req.Quantity)
			}
		}

		if len(items) > 0 && !strings.EqualFold(items[0].Currency, vp.Currency) {
			return offline.Mutation{}, model.ErrCurrencyMismatch.WithMessage(
				"cart is priced in %s, product %s in %s", items[0].Currency, vp.ProductID, vp.Currency)
		}

		res, err := s.pricing.Resolve(ctx, vp.ProductID, req.Quantity)
		if err != nil {
			return offline.Mutation{}, err
		}

		incoterm := req.Incoterm
		if incoterm == "" {
			incoterm = model.IncotermFOB
		}
		item := &model.CartItem{
			ID:                uuid.New(),
			BuyerID:           p.UserID,
			ProductID:         vp.ProductID,
			SupplierID:        vp.SupplierID,
			ContainerType:     vp.ContainerType,
			Quantity:          req.Quantity,
			PricePerContainer: res.UnitPrice,
			Currency:          vp.Currency,
			Incoterm:          incoterm,
			Notes:             req.Notes,
			AddedAt:           s.now().UTC(),
		}
		return s.newMutation(p.UserID, offline.KindAdd, func(m *offline.Mutation) {
			m.Item = item
			m.ItemID = item.ID
		}), nil
	})
}

// UpdateQuantity sets the quantity of a line and re-resolves its tier price.
func (s *cartService) UpdateQuantity(ctx context.Context, p *model.Principal, itemID uuid.UUID, req *model.UpdateCartItemRequest) (*model.Cart, error) {
	if req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	return s.mutate(ctx, p, func(items []model.CartItem) (offline.Mutation, error) {
		it, err := findItem(items, itemID)
		if err != nil {
			return offline.Mutation{}, err
		}
		return s.repriceMutation(ctx, p.UserID, *it, req.Quantity)
	})
}

// SetCustomPrice sets or clears the buyer's negotiated price of a line.
func (s *cartService) SetCustomPrice(ctx context.Context, p *model.Principal, itemID uuid.UUID, req *model.SetCustomPriceRequest) (*model.Cart, error) {
	if req.CustomPrice != nil && req.CustomPrice.IsNegative() {
		return nil, model.Validation("customPrice cannot be negative")
	}
	return s.mutate(ctx, p, func(items []model.CartItem) (offline.Mutation, error) {
		if _, err := findItem(items, itemID); err != nil {
			return offline.Mutation{}, err
		}
		return s.newMutation(p.UserID, offline.KindSetPrice, func(m *offline.Mutation) {
			m.ItemID = itemID
			m.CustomPrice = req.CustomPrice
		}), nil
	})
}

// RemoveItem deletes a line.
func (s *cartService) RemoveItem(ctx context.Context, p *model.Principal, itemID uuid.UUID) (*model.Cart, error) {
	return s.mutate(ctx, p, func(items []model.CartItem) (offline.Mutation, error) {
		if _, err := findItem(items, itemID); err != nil {
			return offline.Mutation{}, err
		}
		return s.newMutation(p.UserID, offline.KindRemove, func(m *offline.Mutation) {
			m.ItemID = itemID
		}), nil
	})
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, p *model.Principal) (*model.Cart, error) {
	return s.mutate(ctx, p, func([]model.CartItem) (offline.Mutation, error) {
		return s.newMutation(p.UserID, offline.KindClear, nil), nil
	})
}

// Submit creates one RFQ per cart line and empties the cart in the same transaction.
func (s *cartService) Submit(ctx context.Context, p *model.Principal, req *model.SubmitCartRequest) (*model.SubmitCartResponse, error) {
	if err := requireBuyer(p); err != nil {
		return nil, err
	}
	pending, err := s.pending(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, model.ErrStoreUnavailable.WithMessage("cart has %d changes waiting to sync", pending)
	}

	items, err := s.carts.ListByBuyer(ctx, p.UserID)
	if err != nil {
		return nil, storeError("failed to submit cart", err)
	}
	if len(items) == 0 {
		return nil, model.Validation("cart is empty")
	}

	totals, err := quote.ComputeGrandTotal(items, s.cfg.FreightEstimate, s.cfg.PlatformCommission)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created := make([]model.RFQ, 0, len(items))
	for _, it := range items {
		r, err := buildRFQ(ctx, s.pricing, s.cfg, p, rfqRequestFromItem(p, req, it), now)
		if err != nil {
			return nil, err
		}
		created = append(created, *r)
	}

	tx, err := s.carts.BeginTx(ctx)
	if err != nil {
		return nil, storeError("failed to submit cart", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for i := range created {
		if err = s.rfqs.Create(ctx, tx, &created[i]); err != nil {
			return nil, storeError("failed to submit cart", err)
		}
	}
	if err = s.carts.Clear(ctx, tx, p.UserID); err != nil {
		return nil, storeError("failed to submit cart", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, storeError("failed to submit cart", err)
	}

	s.saveSnapshot(ctx, p.UserID, []model.CartItem{})
	for _, r := range created {
		s.metrics.IncTransition("", string(r.Status))
	}
	s.logger.Info().Str("buyer_id", p.UserID.String()).Int("rfqs", len(created)).Msg("cart submitted")

	return &model.SubmitCartResponse{RFQs: created, Totals: *totals}, nil
}

// ApplyMutation writes m to the database. Queued mutations replay through here.
func (s *cartService) ApplyMutation(ctx context.Context, m offline.Mutation) error {
	switch m.Kind {
	case offline.KindAdd:
		if m.Item == nil {
			return model.Validation("add mutation %s carries no item", m.ID)
		}
		return s.carts.Insert(ctx, m.Item)
	case offline.KindUpdateQuantity:
		return s.carts.UpdateQuantity(ctx, m.BuyerID, m.ItemID, m.Quantity, m.Price)
	case offline.KindSetPrice:
		return s.carts.SetCustomPrice(ctx, m.BuyerID, m.ItemID, m.CustomPrice)
	case offline.KindRemove:
		return s.carts.Delete(ctx, m.BuyerID, m.ItemID)
	case offline.KindClear:
		return s.clearCart(ctx, m.BuyerID)
	}
	return model.Validation("unknown cart mutation kind %q", m.Kind)
}

func (s *cartService) clearCart(ctx context.Context, buyerID uuid.UUID) (err error) {
	tx, err := s.carts.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.carts.Clear(ctx, tx, buyerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// mutate builds a mutation from the current cart and applies or queues it.
func (s *cartService) mutate(ctx context.Context, p *model.Principal, build func([]model.CartItem) (offline.Mutation, error)) (*model.Cart, error) {
	if err := requireBuyer(p); err != nil {
		return nil, err
	}

	// Queued changes must land first, so the buyer stays offline until they drain.
	pending, err := s.pending(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		cart, err := s.mutateOnline(ctx, p.UserID, build)
		if err == nil {
			return cart, nil
		}
		if !s.canQueue(err) {
			return nil, storeError("failed to update cart", err)
		}
		s.logger.Warn().Err(err).Str("buyer_id", p.UserID.String()).Msg("database unreachable, queuing cart change")
	}

	items, err := s.loadSnapshot(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	m, err := build(items)
	if err != nil {
		return nil, err
	}
	next, err := m.Apply(items)
	if err != nil {
		return nil, err
	}

	pending, err = s.queue.Enqueue(ctx, m)
	if err != nil {
		return nil, model.ErrStoreUnavailable.Wrap(err)
	}
	s.metrics.IncOfflineMutation(string(m.Kind))
	s.saveSnapshot(ctx, p.UserID, next)

	return s.view(next, model.CartModeOffline, pending)
}

func (s *cartService) mutateOnline(ctx context.Context, buyerID uuid.UUID, build func([]model.CartItem) (offline.Mutation, error)) (*model.Cart, error) {
	items, err := s.carts.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	m, err := build(items)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyMutation(ctx, m); err != nil {
		return nil, err
	}
	return s.reload(ctx, buyerID, m, items)
}

// reload reads the cart after a successful write. If the read fails the
// in-memory result of the mutation is returned instead.
func (s *cartService) reload(ctx context.Context, buyerID uuid.UUID, m offline.Mutation, before []model.CartItem) (*model.Cart, error) {
	items, err := s.carts.ListByBuyer(ctx, buyerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to reload cart after update")
		if items, err = m.Apply(before); err != nil {
			return nil, err
		}
	}
	s.saveSnapshot(ctx, buyerID, items)
	return s.view(items, model.CartModeOnline, 0)
}

func (s *cartService) repriceMutation(ctx context.Context, buyerID uuid.UUID, it model.CartItem, quantity int) (offline.Mutation, error) {
	res, err := s.pricing.Resolve(ctx, it.ProductID, quantity)
	if err != nil {
		return offline.Mutation{}, err
	}
	return s.newMutation(buyerID, offline.KindUpdateQuantity, func(m *offline.Mutation) {
		m.ItemID = it.ID
		m.Quantity = quantity
		m.Price = res.UnitPrice
	}), nil
}

func (s *cartService) newMutation(buyerID uuid.UUID, kind offline.Kind, fill func(*offline.Mutation)) offline.Mutation {
	m := offline.Mutation{
		ID:       uuid.New(),
		Kind:     kind,
		BuyerID:  buyerID,
		QueuedAt: s.now().UTC(),
	}
	if fill != nil {
		fill(&m)
	}
	return m
}

func (s *cartService) view(items []model.CartItem, mode model.CartMode, pending int64) (*model.Cart, error) {
	if items == nil {
		items = []model.CartItem{}
	}
	totals, err := quote.ComputeGrandTotal(items, s.cfg.FreightEstimate, s.cfg.PlatformCommission)
	if err != nil {
		return nil, err
	}
	return &model.Cart{Items: items, Totals: *totals, Mode: mode, PendingMutations: pending}, nil
}

func (s *cartService) offlineView(ctx context.Context, buyerID uuid.UUID, pending int64) (*model.Cart, error) {
	items, err := s.loadSnapshot(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return s.view(items, model.CartModeOffline, pending)
}

// canQueue reports whether err is a connectivity failure that offline mode absorbs.
func (s *cartService) canQueue(err error) bool {
	return s.queue != nil && s.snapshots != nil && database.IsUnavailable(err)
}

// pending reports the buyer's queued mutations. An unreadable queue is an
// error: writing online past unknown queued changes would reorder them.
func (s *cartService) pending(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	if s.queue == nil {
		return 0, nil
	}
	n, err := s.queue.Pending(ctx, buyerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to read offline queue length")
		return 0, model.ErrStoreUnavailable.Wrap(err)
	}
	return n, nil
}

func (s *cartService) loadSnapshot(ctx context.Context, buyerID uuid.UUID) ([]model.CartItem, error) {
	if s.snapshots == nil {
		return nil, model.ErrStoreUnavailable
	}
	payload, err := s.snapshots.LoadCartSnapshot(ctx, buyerID.String())
	if err != nil {
		return nil, model.ErrStoreUnavailable.Wrap(err)
	}
	if payload == nil {
		return []model.CartItem{}, nil
	}

	var items []model.CartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return items, nil
}

func (s *cartService) saveSnapshot(ctx context.Context, buyerID uuid.UUID, items []model.CartItem) {
	if s.snapshots == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err == nil {
		err = s.snapshots.SaveCartSnapshot(ctx, buyerID.String(), payload, snapshotTTL)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to save cart snapshot")
	}
}

func rfqRequestFromItem(p *model.Principal, req *model.SubmitCartRequest, it model.CartItem) *model.CreateRFQRequest {
	special := req.SpecialRequirements
	if it.Notes != "" {
		special = strings.TrimSpace(special + "\n" + it.Notes)
	}
	estimated := it.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity)))

	return &model.CreateRFQRequest{
		ProductID:             it.ProductID,
		SupplierID:            it.SupplierID,
		RequesterName:         req.RequesterName,
		RequesterEmail:        req.RequesterEmail,
		RequesterPhone:        req.RequesterPhone,
		CompanyName:           p.Company,
		ContainerQuantity:     it.Quantity,
		ContainerType:         it.ContainerType,
		Incoterm:              it.Incoterm,
		TentativeDeliveryDate: req.TentativeDeliveryDate,
		LogisticsComments:     req.LogisticsComments,
		SpecialRequirements:   special,
		Priority:              req.Priority,
		EstimatedValue:        &estimated,
	}
}

func findItem(items []model.CartItem, id uuid.UUID) (*model.CartItem, error) {
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, model.ErrCartItemNotFound
}

func requireBuyer(p *model.Principal) error {
	if p == nil {
		return model.ErrUnauthorised
	}
	if p.Role != model.RoleBuyer {
		return model.ErrForbidden.WithMessage("only buyers have a cart")
	}
	return nil
}

// storeError keeps domain errors as they are and marks connectivity failures.
func storeError(msg string, err error) error {
	var de *model.DomainError
	if errors.As(err, &de) {
		return err
	}
	if database.IsUnavailable(err) {
		return model.ErrStoreUnavailable.Wrap(err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
