// Package offline queues cart mutations while PostgreSQL is unreachable and
// replays them in order once it answers again.
package offline

import (
	"slices"
	"time"

	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind names a cart mutation.
type Kind string

const (
	KindAdd            Kind = "add"
	KindUpdateQuantity Kind = "update_quantity"
	KindSetPrice       Kind = "set_price"
	KindRemove         Kind = "remove"
	KindClear          Kind = "clear"
)

// Mutation is one cart change. Quantities and prices are absolute so a
// mutation applied twice leaves the same cart.
type Mutation struct {
	ID          uuid.UUID        `json:"id"`
	Kind        Kind             `json:"kind"`
	BuyerID     uuid.UUID        `json:"buyerId"`
	ItemID      uuid.UUID        `json:"itemId,omitzero"`
	Item        *model.CartItem  `json:"item,omitempty"`
	Quantity    int              `json:"quantity,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	CustomPrice *decimal.Decimal `json:"customPrice,omitempty"`
	QueuedAt    time.Time        `json:"queuedAt"`
}

// Apply returns items with m applied. The input slice is not modified.
func (m Mutation) Apply(items []model.CartItem) ([]model.CartItem, error) {
	out := slices.Clone(items)

	switch m.Kind {
	case KindAdd:
		if m.Item == nil {
			return nil, model.Validation("add mutation %s carries no item", m.ID)
		}
		if indexOf(out, m.Item.ID) >= 0 {
			return out, nil
		}
		return append(out, *m.Item), nil

	case KindUpdateQuantity:
		i := indexOf(out, m.ItemID)
		if i < 0 {
			return nil, model.ErrCartItemNotFound
		}
		out[i].Quantity = m.Quantity
		out[i].PricePerContainer = m.Price
		return out, nil

	case KindSetPrice:
		i := indexOf(out, m.ItemID)
		if i < 0 {
			return nil, model.ErrCartItemNotFound
		}
		out[i].CustomPrice = m.CustomPrice
		return out, nil

	case KindRemove:
		i := indexOf(out, m.ItemID)
		if i < 0 {
			return nil, model.ErrCartItemNotFound
		}
		return slices.Delete(out, i, i+1), nil

	case KindClear:
		return []model.CartItem{}, nil
	}

	return nil, model.Validation("unknown cart mutation kind %q", m.Kind)
}

func indexOf(items []model.CartItem, id uuid.UUID) int {
	return slices.IndexFunc(items, func(it model.CartItem) bool { return it.ID == id })
}
