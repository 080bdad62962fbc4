package rfq

import (
	"time"

	"github.com/google/uuid"
)

const numberLayout = "20060102-150405"

// NewRFQNumber returns a human-readable RFQ number such as RFQ-20240110-093000-1f2e3d.
// The suffix comes from id so numbers minted in the same second differ.
func NewRFQNumber(now time.Time, id uuid.UUID) string {
	return "RFQ-" + now.UTC().Format(numberLayout) + "-" + id.String()[:6]
}

// NewQuoteNumber returns a number for a supplier quote (Q-) or a counter-offer (CO-).
func NewQuoteNumber(now time.Time, id uuid.UUID, counterOffer bool) string {
	prefix := "Q-"
	if counterOffer {
		prefix = "CO-"
	}
	return prefix + now.UTC().Format(numberLayout) + "-" + id.String()[:6]
}
