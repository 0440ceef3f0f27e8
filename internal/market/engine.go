package market

import (
	"log"
	"math"
	"sort"
)

// ESSPriceRatio is the fraction of the external price at which internal ESS
// supply is offered during finalization (default 0.9).
const ESSPriceRatio = 0.9

// AuctionEngine runs the bounded multi-round double auction for a sequence
// of slots: notify, collect, match, distribute, record; then finalize.
type AuctionEngine struct {
	memory       *MarketMemory
	external     *ExternalGrid
	distribution *Distribution
	ess          *ESS

	participants []*Participant
	rounds       int

	// PlatformID is the owning microgrid's id, used as the counterparty
	// on trades that route through its own ESS during finalization
	// (consumer when routing excess supply to storage, supplier when
	// drawing from storage). Defaults to "Microgrid".
	PlatformID string

	// Logger receives non-fatal diagnostics (dropped trades, etc.).
	Logger *log.Logger
}

// NewAuctionEngine wires an auction engine over the given collaborators.
// rounds is R; 0 means MaxRounds.
func NewAuctionEngine(memory *MarketMemory, external *ExternalGrid, distribution *Distribution, ess *ESS, rounds int) *AuctionEngine {
	if rounds <= 0 {
		rounds = MaxRounds
	}
	e := &AuctionEngine{
		memory:       memory,
		external:     external,
		distribution: distribution,
		ess:          ess,
		rounds:       rounds,
		PlatformID:   "Microgrid",
	}
	distribution.OnDropped(func(t Trade, err error) {
		e.logf("dropped trade %+v: %v", t, err)
	})
	distribution.Register(ess)
	return e
}

func (e *AuctionEngine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

// Register adds a participant, and registers each of its devices with the
// engine's Distribution so trades referencing them can be resolved.
func (e *AuctionEngine) Register(p *Participant) {
	e.participants = append(e.participants, p)
	for _, d := range p.Devices {
		e.distribution.Register(d)
	}
}

// Handle runs the bounded multi-round auction for slot s.
func (e *AuctionEngine) Handle(s Schedule) {
	round := 1
	last := false
	var supply, demand []Trade

	for !last {
		if round == e.rounds {
			last = true
		}

		e.notify(s, round, last)

		if round > 1 {
			e.memory.Adjust(s, round)
		}

		supply, demand = e.collect(s)
		if len(supply) == 0 || len(demand) == 0 {
			break
		}

		sort.SliceStable(supply, func(i, j int) bool { return supply[i].Price < supply[j].Price })
		sort.SliceStable(demand, func(i, j int) bool { return demand[i].Price > demand[j].Price })

		var trades []Trade
		trades, supply, demand = e.match(s, supply, demand, last)
		e.distribution.ApplyAll(trades, s)
		e.memory.Record(s, trades)

		round++
	}

	e.finalize(s, supply, demand)
}

// notify sets the slot's current round/last flag and pushes the resulting
// view to every participant.
func (e *AuctionEngine) notify(s Schedule, round int, last bool) {
	view := e.memory.View(s)
	view.RoundNumber = round
	view.Last = last
	for _, p := range e.participants {
		p.OnNotify(s, view)
	}
}

// collect gathers every participant's market offers for slot s, applies
// their self-use trades through Distribution, and records the observed
// supply/demand ratio for the round. This couples offer collection with
// two side effects (self-use settlement, ratio recording) deliberately: the
// ratio is computed from the offers actually sent to market. Participant
// offers carry each device's full raw supply/demand, so amounts also
// settled as self-use are included in these totals.
func (e *AuctionEngine) collect(s Schedule) (supply, demand []Trade) {
	var totalSupply, totalDemand float64
	var selfTrades []Trade

	for _, p := range e.participants {
		sup, dem, self := p.Offers(s)
		for _, t := range sup {
			totalSupply += t.Amount
		}
		for _, t := range dem {
			totalDemand += t.Amount
		}
		supply = append(supply, sup...)
		demand = append(demand, dem...)
		selfTrades = append(selfTrades, self...)
	}

	e.distribution.ApplyAll(selfTrades, s)
	e.memory.SetRatio(s, totalSupply, totalDemand)

	return supply, demand
}

// match runs the two-phase greedy, price-ordered matching rule: supply
// ascending by price against demand descending by price, clearing at the
// midpoint while offers cross, or at the supply price during the
// settlement (last) round. Matching stops the moment the cheapest
// remaining supply offer reaches the external grid's ceiling price, or the
// round hasn't converged (supply price above demand price, not yet last).
//
// It returns the trades cleared plus the unmatched remainder of supply and
// demand (entries fully consumed are dropped, not just index-skipped, so a
// caller using the remainder after the terminal round sees only genuinely
// unmatched offers).
func (e *AuctionEngine) match(s Schedule, supply, demand []Trade, last bool) (trades, remainingSupply, remainingDemand []Trade) {
	ceiling := e.external.Price(s)

	si, di := 0, 0
matching:
	for si < len(supply) && di < len(demand) {
		sup := supply[si]
		dem := demand[di]

		if sup.Price >= ceiling {
			break matching
		}

		var price float64
		switch {
		case sup.Price <= dem.Price:
			price = (sup.Price + dem.Price) / 2
		case last:
			price = sup.Price
		default:
			break matching // not converged; wait for next round's reprice
		}

		amount := min(sup.Amount, dem.Amount)
		trades = append(trades, Trade{
			Amount:           amount,
			Price:            price,
			SupplierID:       sup.SupplierID,
			SupplierDeviceID: sup.SupplierDeviceID,
			ConsumerID:       dem.ConsumerID,
			ConsumerDeviceID: dem.ConsumerDeviceID,
			Mode:             Market,
		})

		if sup.Amount == amount {
			si++
		} else {
			supply[si] = sup.WithAmount(sup.Amount - amount)
		}
		if dem.Amount == amount {
			di++
		} else {
			demand[di] = dem.WithAmount(dem.Amount - amount)
		}
	}
	return trades, supply[si:], demand[di:]
}

// finalize routes unmatched supply into ESS (mode ToESS, price 0), then
// satisfies unmatched demand first from ESS (at ESSPriceRatio*external
// price) and then from the external grid (mode FromExternal).
func (e *AuctionEngine) finalize(s Schedule, supply, demand []Trade) {
	var toESS []Trade
	for _, sup := range supply {
		if sup.Amount <= 0 {
			continue
		}
		toESS = append(toESS, Trade{
			Amount:           sup.Amount,
			Price:            0,
			SupplierID:       sup.SupplierID,
			SupplierDeviceID: sup.SupplierDeviceID,
			ConsumerID:       e.PlatformID,
			ConsumerDeviceID: e.ess.DeviceID(),
			Mode:             ToESS,
		})
	}
	e.distribution.ApplyAll(toESS, s)
	e.memory.Record(s, toESS)

	externalPrice := e.external.Price(s)

	type source struct {
		supplierID string
		deviceID   string
		price      float64
		fromESS    bool
	}
	sources := []source{
		{e.PlatformID, e.ess.DeviceID(), externalPrice * ESSPriceRatio, true},
		{GridName, GridName, externalPrice, false},
	}

	var settled []Trade
	essAvailable := e.ess.Supply(s)
	si := 0
	for len(demand) > 0 && si < len(sources) {
		src := sources[si]

		available := math.MaxFloat64
		if src.fromESS {
			available = essAvailable
			if available <= 0 {
				si++
				continue
			}
		}

		dem := demand[0]
		amount := min(available, dem.Amount)

		mode := Market
		if !src.fromESS {
			mode = FromExternal
		}

		settled = append(settled, Trade{
			Amount:           amount,
			Price:            src.price,
			SupplierID:       src.supplierID,
			SupplierDeviceID: src.deviceID,
			ConsumerID:       dem.ConsumerID,
			ConsumerDeviceID: dem.ConsumerDeviceID,
			Mode:             mode,
		})

		if dem.Amount == amount {
			demand = demand[1:]
		} else {
			demand[0] = dem.WithAmount(dem.Amount - amount)
		}

		if src.fromESS {
			essAvailable -= amount
			if essAvailable <= 0 {
				si++
			}
		}
	}

	e.distribution.ApplyAll(settled, s)
	e.memory.Record(s, settled)
}
