package market

// TradeMode classifies how a Trade's energy moved.
type TradeMode string

const (
	// SelfUse is an intra-participant trade, settled but never entering the
	// market order book.
	SelfUse TradeMode = "self_use"
	// Market is a trade cleared against another participant's offer.
	Market TradeMode = "market"
	// FromExternal is a trade sourced from the external grid during
	// finalization.
	FromExternal TradeMode = "from_external"
	// ToESS is unmatched supply routed into storage during finalization.
	ToESS TradeMode = "to_ess"
)

// Trade is an immutable record of one energy exchange. Either side's
// identifiers may be empty in intermediate offers: supply-only offers lack
// a consumer, demand-only offers lack a supplier.
type Trade struct {
	Amount           float64
	Price            float64
	SupplierID       string
	SupplierDeviceID string
	ConsumerID       string
	ConsumerDeviceID string
	Mode             TradeMode
}

// WithAmount returns a copy of t with Amount replaced.
func (t Trade) WithAmount(amount float64) Trade {
	t.Amount = amount
	return t
}
