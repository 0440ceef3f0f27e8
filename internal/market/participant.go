package market

// Participant owns a set of devices and, each round, produces market supply
// offers, market demand offers, and internal self-use trades priced by the
// bidding policy.
type Participant struct {
	ID        string
	Devices   []Device
	BidFactor float64

	views map[Schedule]*MarketInformation
}

// NewParticipant builds a participant over the given devices, using the
// default bid factor.
func NewParticipant(id string, devices []Device) *Participant {
	return &Participant{
		ID:        id,
		Devices:   devices,
		BidFactor: DefaultBidFactor,
		views:     make(map[Schedule]*MarketInformation),
	}
}

// OnNotify caches the market view for slot s, as pushed by the auction
// engine at the start of each round.
func (p *Participant) OnNotify(s Schedule, view *MarketInformation) {
	p.views[s] = view
}

type deviceAmount struct {
	device Device
	amount float64
}

// Offers produces this participant's market supply offers, market demand
// offers, and computed self-use trades for slot s, per the cached market
// view.
//
// Market supply/demand offers are emitted for the participant's full raw
// supply/demand regardless of how much was already routed through self-use
// trades below — this double-counts energy already settled internally.
// Kept as-is rather than silently corrected.
func (p *Participant) Offers(s Schedule) (supply, demand, selfTrades []Trade) {
	view := p.views[s]
	i := view.RoundNumber - 1

	rawSupply := p.rawSupply(s)
	rawDemand := p.rawDemand(s, view)

	var totalSupply, totalDemand float64
	for _, d := range rawSupply {
		totalSupply += d.amount
	}
	for _, d := range rawDemand {
		totalDemand += d.amount
	}

	selfRatio := 1.0
	if totalDemand > 0 {
		selfRatio = totalSupply / totalDemand
	}

	sell, buy := Price(view.SupplyDemandRatio[i], view.Prices[i], selfRatio, p.bidFactor())

	if sell < buy {
		selfTrades = p.matchSelfUse(append([]deviceAmount(nil), rawSupply...), append([]deviceAmount(nil), rawDemand...), sell)
	}

	for _, d := range rawSupply {
		supply = append(supply, Trade{
			SupplierID:       p.ID,
			SupplierDeviceID: d.device.DeviceID(),
			Price:            sell,
			Amount:           d.amount,
			Mode:             Market,
		})
	}
	for _, d := range rawDemand {
		demand = append(demand, Trade{
			ConsumerID:       p.ID,
			ConsumerDeviceID: d.device.DeviceID(),
			Price:            buy,
			Amount:           d.amount,
			Mode:             Market,
		})
	}

	return supply, demand, selfTrades
}

func (p *Participant) bidFactor() float64 {
	if p.BidFactor > 0 {
		return p.BidFactor
	}
	return DefaultBidFactor
}

// rawSupply returns each device's positive supply for slot s.
func (p *Participant) rawSupply(s Schedule) []deviceAmount {
	var out []deviceAmount
	for _, d := range p.Devices {
		if amount := d.Supply(s); amount > 0 {
			out = append(out, deviceAmount{d, amount})
		}
	}
	return out
}

// rawDemand returns each device's positive demand for slot s, filtering
// Shiftable devices to only the hour whose *offset into the remaining-day
// suffix* equals s.Hour itself — the offset is never re-based onto the
// absolute hour it names, so a Shiftable device only bids when the
// cheapest remaining hour happens to be exactly s.Hour slots into the
// suffix, not when s.Hour is actually the cheapest hour of the day. Kept
// as-is rather than silently corrected.
func (p *Participant) rawDemand(s Schedule, view *MarketInformation) []deviceAmount {
	suffix := view.ExternalPriceDay[s.Hour:]
	minOffset := 0
	for off, price := range suffix {
		if price < suffix[minOffset] {
			minOffset = off
		}
	}

	var out []deviceAmount
	for _, d := range p.Devices {
		amount := d.Demand(s)
		if amount <= 0 {
			continue
		}
		switch d.Mode() {
		case Immediate, Persist:
			out = append(out, deviceAmount{d, amount})
		case Shiftable:
			if minOffset == s.Hour {
				out = append(out, deviceAmount{d, amount})
			}
		}
	}
	return out
}

// matchSelfUse greedily pairs own supplies (FIFO) with own demands (FIFO)
// into SelfUse trades at price until either side is exhausted, mutating
// copies of supply/demand so the caller's slices (used afterward to emit
// full market offers) are unaffected.
func (p *Participant) matchSelfUse(supply, demand []deviceAmount, price float64) []Trade {
	var trades []Trade
	si, di := 0, 0
	for si < len(supply) && di < len(demand) {
		s := &supply[si]
		d := &demand[di]
		amount := min(s.amount, d.amount)
		if amount <= 0 {
			break
		}
		trades = append(trades, Trade{
			SupplierID:       p.ID,
			SupplierDeviceID: s.device.DeviceID(),
			ConsumerID:       p.ID,
			ConsumerDeviceID: d.device.DeviceID(),
			Price:            price,
			Amount:           amount,
			Mode:             SelfUse,
		})
		s.amount -= amount
		d.amount -= amount
		if s.amount <= 0 {
			si++
		}
		if d.amount <= 0 {
			di++
		}
	}
	return trades
}
