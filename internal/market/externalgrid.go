package market

import (
	"fmt"
	"math"
	"sync"
)

// GridName is the device/participant id the external grid is registered
// under.
const GridName = "MainGrid"

// ExternalGrid is an infinite-supply fallback, priced from a weekday×hour
// table, that accumulates a per-consumer bill. Reads and writes are
// synchronized so an attached observer can report on the ledger
// concurrently with the auction loop.
type ExternalGrid struct {
	mu     sync.RWMutex
	prices [Days][HoursPerDay]float64
	bill   map[string]float64
}

// NewExternalGrid builds a grid from a complete weekday×hour price table.
func NewExternalGrid(prices [Days][HoursPerDay]float64) *ExternalGrid {
	return &ExternalGrid{
		prices: prices,
		bill:   make(map[string]float64),
	}
}

// Price returns the grid's price for slot s. Out-of-range weekday/hour is a
// ScheduleOutOfRange condition and is fatal: Schedule's own constructors keep
// values in range, so an out-of-range value here means the caller built a
// Schedule by hand incorrectly.
func (g *ExternalGrid) Price(s Schedule) float64 {
	if s.Weekday < 0 || s.Weekday >= Days || s.Hour < 0 || s.Hour >= HoursPerDay {
		panic(fmt.Sprintf("market: schedule out of range: %v", s))
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.prices[s.Weekday][s.Hour]
}

// Supply reports an effectively unbounded available amount.
func (g *ExternalGrid) Supply(_ Schedule) float64 {
	return math.MaxFloat64
}

// Allocate credits amount*Price(s) to consumer's bill and returns amount
// (the grid's supply is infinite, so the full request is always honored).
func (g *ExternalGrid) Allocate(consumerID string, amount float64, s Schedule) float64 {
	price := g.Price(s)
	g.mu.Lock()
	g.bill[consumerID] += amount * price
	g.mu.Unlock()
	return amount
}

// Bill returns the cumulative amount billed to consumerID.
func (g *ExternalGrid) Bill(consumerID string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bill[consumerID]
}

// History returns the concatenation of all prices strictly before s plus
// the prices for weekday s.Weekday from hour 0 up to and including s.Hour.
//
// The price table is keyed by weekday only (a single repeating week). An
// indexing scheme assuming a rolling two-week price history would run off
// the front of the table for the first simulated week, so this clamps to
// the single week of data actually available instead.
func (g *ExternalGrid) History(s Schedule) []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var history []float64
	for wd := 0; wd < s.Weekday; wd++ {
		history = append(history, g.prices[wd][:]...)
	}
	history = append(history, g.prices[s.Weekday][:s.Hour+1]...)
	return history
}
