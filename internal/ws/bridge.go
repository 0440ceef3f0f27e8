package ws

import (
	"encoding/json"
	"log"

	"microgrid/internal/market"
)

// flowMessage is the wire shape for a single settled trade.
type flowMessage struct {
	Type             string  `json:"type"`
	SupplierID       string  `json:"supplier_id"`
	SupplierDeviceID string  `json:"supplier_device_id"`
	ConsumerID       string  `json:"consumer_id"`
	ConsumerDeviceID string  `json:"consumer_device_id"`
	Amount           float64 `json:"amount"`
	Price            float64 `json:"price"`
	Mode             string  `json:"mode"`
	Datetime         string  `json:"datetime"`
}

// snapshotMessage is the wire shape for a slot's market information.
type snapshotMessage struct {
	Type              string    `json:"type"`
	Datetime          string    `json:"datetime"`
	RoundNumber       int       `json:"round_number"`
	Last              bool      `json:"last"`
	Prices            []float64 `json:"prices"`
	Amount            []float64 `json:"amount"`
	SupplyDemandRatio []float64 `json:"supply_demand_ratio"`
	ExternalPriceHour float64   `json:"external_price_hour"`
}

// Bridge adapts market.Sink (and a direct snapshot-broadcast method) onto a
// Hub, JSON-marshaling each record before broadcasting.
type Bridge struct {
	hub *Hub
}

// NewBridge builds a Bridge broadcasting onto hub.
func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

// Record implements market.Sink.
func (b *Bridge) Record(r market.FlowRecord) {
	msg := flowMessage{
		Type:             "trade",
		SupplierID:       r.Trade.SupplierID,
		SupplierDeviceID: r.Trade.SupplierDeviceID,
		ConsumerID:       r.Trade.ConsumerID,
		ConsumerDeviceID: r.Trade.ConsumerDeviceID,
		Amount:           r.Trade.Amount,
		Price:            r.Trade.Price,
		Mode:             string(r.Trade.Mode),
		Datetime:         r.Datetime,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal trade: %v", err)
		return
	}
	b.hub.Broadcast(data)
}

// BroadcastSnapshot sends the current MarketInformation for slot s.
func (b *Bridge) BroadcastSnapshot(s market.Schedule, info *market.MarketInformation) {
	msg := snapshotMessage{
		Type:              "snapshot",
		Datetime:          s.String(),
		RoundNumber:       info.RoundNumber,
		Last:              info.Last,
		Prices:            info.Prices,
		Amount:            info.Amount,
		SupplyDemandRatio: info.SupplyDemandRatio,
		ExternalPriceHour: info.ExternalPriceHour,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal snapshot: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
