package ws

import (
	"encoding/json"
	"testing"

	"microgrid/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBridge() (*Bridge, *Client) {
	hub := NewHub()
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)
	return NewBridge(hub), client
}

func TestBridge_Record(t *testing.T) {
	bridge, client := newTestBridge()

	bridge.Record(market.FlowRecord{
		Trade: market.Trade{
			SupplierID:       "household-a",
			SupplierDeviceID: "solar",
			ConsumerID:       "household-b",
			ConsumerDeviceID: "heater",
			Amount:           5,
			Price:            30,
			Mode:             market.Market,
		},
		Datetime: "Mon-00",
	})

	var msg flowMessage
	require.NoError(t, json.Unmarshal(<-client.send, &msg))
	assert.Equal(t, "trade", msg.Type)
	assert.Equal(t, "household-a", msg.SupplierID)
	assert.Equal(t, "solar", msg.SupplierDeviceID)
	assert.Equal(t, "household-b", msg.ConsumerID)
	assert.Equal(t, "heater", msg.ConsumerDeviceID)
	assert.Equal(t, 5.0, msg.Amount)
	assert.Equal(t, 30.0, msg.Price)
	assert.Equal(t, string(market.Market), msg.Mode)
	assert.Equal(t, "Mon-00", msg.Datetime)
}

func TestBridge_BroadcastSnapshot(t *testing.T) {
	bridge, client := newTestBridge()

	s := market.Schedule{Weekday: 2, Hour: 5}
	info := &market.MarketInformation{
		RoundNumber:       3,
		Last:              true,
		Prices:            []float64{10, 20},
		Amount:            []float64{1, 2},
		SupplyDemandRatio: []float64{1.5},
		ExternalPriceHour: 42,
	}

	bridge.BroadcastSnapshot(s, info)

	var msg snapshotMessage
	require.NoError(t, json.Unmarshal(<-client.send, &msg))
	assert.Equal(t, "snapshot", msg.Type)
	assert.Equal(t, s.String(), msg.Datetime)
	assert.Equal(t, 3, msg.RoundNumber)
	assert.True(t, msg.Last)
	assert.Equal(t, []float64{10, 20}, msg.Prices)
	assert.Equal(t, []float64{1, 2}, msg.Amount)
	assert.Equal(t, []float64{1.5}, msg.SupplyDemandRatio)
	assert.Equal(t, 42.0, msg.ExternalPriceHour)
}

func TestBridge_Record_NoSubscribersDoesNotBlock(t *testing.T) {
	bridge := NewBridge(NewHub())
	assert.NotPanics(t, func() {
		bridge.Record(market.FlowRecord{Trade: market.Trade{Amount: 1}})
	})
}
