package market

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"microgrid/internal/forecast"
)

// MarketMemory is the per-(weekday,hour) keyed market-information store
// (the "DSM" — demand side management memory). It is the single writer of
// its own records.
type MarketMemory struct {
	records  map[Schedule]*MarketInformation
	external *ExternalGrid
	price    forecast.PriceForecaster
	ratio    forecast.RatioForecaster
	rounds   int

	forecastMu    sync.Mutex
	forecastCache map[Schedule][]float64
}

// NewMarketMemory builds a MarketMemory backed by external for price
// lookups/history, using the given forecasters. rounds is R; 0 means
// MaxRounds.
func NewMarketMemory(external *ExternalGrid, price forecast.PriceForecaster, ratio forecast.RatioForecaster, rounds int) *MarketMemory {
	if rounds <= 0 {
		rounds = MaxRounds
	}
	return &MarketMemory{
		records:       make(map[Schedule]*MarketInformation),
		external:      external,
		price:         price,
		ratio:         ratio,
		rounds:        rounds,
		forecastCache: make(map[Schedule][]float64),
	}
}

// PrefetchPriceForecasts warms the price-forecast cache for schedules
// concurrently, one goroutine per slot. Each slot's forecast tail depends
// only on external's history for that slot, not on any predecessor
// record, so slots can be computed out of order and in parallel; predict
// later reads the cache instead of calling the price forecaster again.
// Safe to call with schedules already cached or already recorded; those
// are skipped.
func (m *MarketMemory) PrefetchPriceForecasts(ctx context.Context, schedules []Schedule) error {
	g, _ := errgroup.WithContext(ctx)
	for _, s := range schedules {
		s := s
		if _, recorded := m.records[s]; recorded {
			continue
		}
		m.forecastMu.Lock()
		_, cached := m.forecastCache[s]
		m.forecastMu.Unlock()
		if cached {
			continue
		}
		g.Go(func() error {
			tail := m.forecastTail(s)
			m.forecastMu.Lock()
			m.forecastCache[s] = tail
			m.forecastMu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// forecastTail computes the forecast portion of s's ExternalPriceDay: n
// hours beyond the historical prefix, via the configured price
// forecaster.
func (m *MarketMemory) forecastTail(s Schedule) []float64 {
	offset := s.Hour + 1
	n := HoursPerDay - offset
	tail, ok := m.price.Forecast(m.external.History(s), n)
	if !ok {
		tail = make([]float64, n)
	}
	return tail
}

// View returns the stored record for s, creating one via predict on miss.
func (m *MarketMemory) View(s Schedule) *MarketInformation {
	if rec, ok := m.records[s]; ok {
		return rec
	}
	rec := m.predict(s)
	m.records[s] = rec
	return rec
}

// predict constructs a fresh MarketInformation for s: supply/demand
// trajectories carried forward from s.Pre() when available, else seeded;
// external_price_hour read directly; external_price_day built from history
// plus a forecast for the remaining hours of the day.
func (m *MarketMemory) predict(s Schedule) *MarketInformation {
	rec := newMarketInformation(m.rounds)

	if s.HasPre() {
		if pre, ok := m.records[s.Pre()]; ok {
			rec.Prices, rec.Amount, rec.SupplyDemandRatio = cloneVectors(pre)
		} else {
			m.seed(rec)
		}
	} else {
		m.seed(rec)
	}

	rec.ExternalPriceHour = m.external.Price(s)

	offset := s.Hour + 1
	history := m.external.History(s)

	m.forecastMu.Lock()
	forecastTail, cached := m.forecastCache[s]
	delete(m.forecastCache, s)
	m.forecastMu.Unlock()
	if !cached {
		forecastTail = m.forecastTail(s)
	}

	day := make([]float64, 0, HoursPerDay)
	if len(history) >= offset {
		day = append(day, history[len(history)-offset:]...)
	} else {
		day = append(day, history...)
	}
	day = append(day, forecastTail...)
	rec.ExternalPriceDay = day

	return rec
}

// seed fills rec with the cold-start defaults: zero prices/amounts and a
// neutral supply/demand ratio of 1.
func (m *MarketMemory) seed(rec *MarketInformation) {
	for i := range rec.SupplyDemandRatio {
		rec.SupplyDemandRatio[i] = 1
	}
}

// Adjust projects the current record's remaining supply_demand_ratio and
// prices trajectory from the predecessor slot's realized trajectory, when
// round>1 and a predecessor record exists.
//
// Adjust only writes [round:], so the current round's offer pricing, which
// reads supply_demand_ratio[round-1] and prices[round-1], does not see this
// call's projection. The next round of the same slot does: its offers are
// priced from index round before collection overwrites that ratio with the
// observed one. Whatever projected values remain are carried forward into
// the next slot by predict.
func (m *MarketMemory) Adjust(s Schedule, round int) {
	if round <= 1 || !s.HasPre() {
		return
	}
	pre, ok := m.records[s.Pre()]
	if !ok {
		return
	}
	curr := m.View(s)
	m.ratio.Project(pre.SupplyDemandRatio, pre.Prices, curr.SupplyDemandRatio, curr.Prices, round)
}

// Record appends trades to the slot's trade list and updates
// prices[round-1]/amount[round-1] with the volume-weighted average price
// across trades. Empty trades is a no-op. If Last is true, the new trades
// are merged with the previously recorded round volume/price before
// re-averaging.
func (m *MarketMemory) Record(s Schedule, trades []Trade) {
	if len(trades) == 0 {
		return
	}
	rec := m.View(s)
	rec.TradeList = append(rec.TradeList, trades...)

	i := rec.RoundNumber - 1

	var amount, revenue float64
	if rec.Last {
		amount = rec.Amount[i]
		revenue = rec.Prices[i] * amount
	}
	for _, t := range trades {
		revenue += t.Price * t.Amount
		amount += t.Amount
	}
	if amount > 0 {
		rec.Prices[i] = revenue / amount
		rec.Amount[i] = amount
	}
}

// SetRatio records the observed supply/demand ratio for the current round
// of s's record. Called by offer collection after totals are known.
func (m *MarketMemory) SetRatio(s Schedule, totalSupply, totalDemand float64) {
	rec := m.View(s)
	i := rec.RoundNumber - 1
	if totalSupply > 0 && totalDemand > 0 {
		rec.SupplyDemandRatio[i] = totalSupply / totalDemand
	} else {
		rec.SupplyDemandRatio[i] = 0
	}
}
