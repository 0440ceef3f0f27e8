// Package store holds an append-only in-memory record of settled trades,
// indexed by the slot they occurred in.
package store

import (
	"sync"

	"microgrid/internal/market"
)

// Ledger is a market.Sink that keeps every FlowRecord it receives, grouped
// by slot, for later querying. Reads and writes are synchronized so an
// observer can query the ledger concurrently with the auction loop.
type Ledger struct {
	mu      sync.RWMutex
	records map[market.Schedule][]market.FlowRecord
	all     []market.FlowRecord
}

// New builds an empty Ledger.
func New() *Ledger {
	return &Ledger{records: make(map[market.Schedule][]market.FlowRecord)}
}

// Record implements market.Sink.
func (l *Ledger) Record(r market.FlowRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[r.Schedule] = append(l.records[r.Schedule], r)
	l.all = append(l.all, r)
}

// ForSlot returns the flow records recorded for s, in the order they were
// applied.
func (l *Ledger) ForSlot(s market.Schedule) []market.FlowRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]market.FlowRecord, len(l.records[s]))
	copy(out, l.records[s])
	return out
}

// All returns every record recorded so far, in the order they were applied.
func (l *Ledger) All() []market.FlowRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]market.FlowRecord, len(l.all))
	copy(out, l.all)
	return out
}

// TotalByMode sums Trade.Amount across every recorded record whose mode
// matches m.
func (l *Ledger) TotalByMode(m market.TradeMode) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, r := range l.all {
		if r.Trade.Mode == m {
			total += r.Trade.Amount
		}
	}
	return total
}

// ConsumerBill sums Trade.Price*Trade.Amount across every recorded record
// whose consumer id matches consumerID.
func (l *Ledger) ConsumerBill(consumerID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, r := range l.all {
		if r.Trade.ConsumerID == consumerID {
			total += r.Trade.Price * r.Trade.Amount
		}
	}
	return total
}
