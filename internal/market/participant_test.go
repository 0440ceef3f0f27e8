package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewFor(prices, amounts, ratios []float64, priceDay []float64, round int, last bool) *MarketInformation {
	return &MarketInformation{
		Prices:            prices,
		Amount:            amounts,
		SupplyDemandRatio: ratios,
		ExternalPriceDay:  priceDay,
		RoundNumber:       round,
		Last:              last,
	}
}

func TestParticipant_Offers_BalancedNoSelfUse(t *testing.T) {
	solar := &FixedDevice{ID: "solar", SupplyProfile: map[Schedule]float64{{0, 0}: 10}, Role: Producer, DeviceMode: Immediate}
	heater := &FixedDevice{ID: "heater", DemandProfile: map[Schedule]float64{{0, 0}: 10}, Role: Consumer, DeviceMode: Immediate}
	p := NewParticipant("p1", []Device{solar, heater})

	s := Schedule{0, 0}
	view := viewFor([]float64{1}, []float64{0}, []float64{1}, make([]float64, HoursPerDay), 1, false)
	p.OnNotify(s, view)

	supply, demand, self := p.Offers(s)
	require.Len(t, supply, 1)
	require.Len(t, demand, 1)
	// selfRatio == predictedRatio == 1 -> delta == 1 -> sell == buy -> no self-use (sell < buy is false).
	assert.Empty(t, self)
	assert.Equal(t, 10.0, supply[0].Amount)
	assert.Equal(t, 10.0, demand[0].Amount)
}

func TestParticipant_Offers_SelfUseWhenLongOnSupply(t *testing.T) {
	solar := &FixedDevice{ID: "solar", SupplyProfile: map[Schedule]float64{{0, 0}: 10}, Role: Producer, DeviceMode: Immediate}
	heater := &FixedDevice{ID: "heater", DemandProfile: map[Schedule]float64{{0, 0}: 4}, Role: Consumer, DeviceMode: Immediate}
	p := NewParticipant("p1", []Device{solar, heater})

	s := Schedule{0, 0}
	// predictedRatio low relative to selfRatio (10/4=2.5) => delta>1 => sell<buy.
	view := viewFor([]float64{50}, []float64{0}, []float64{1}, make([]float64, HoursPerDay), 1, false)
	p.OnNotify(s, view)

	supply, demand, self := p.Offers(s)
	require.Len(t, self, 1)
	assert.Equal(t, 4.0, self[0].Amount)
	assert.Equal(t, SelfUse, self[0].Mode)

	// Full offers are still emitted for the whole raw supply/demand.
	require.Len(t, supply, 1)
	assert.Equal(t, 10.0, supply[0].Amount)
	require.Len(t, demand, 1)
	assert.Equal(t, 4.0, demand[0].Amount)
}

// TestParticipant_Offers_ShiftableBidsWhenSuffixOffsetMatchesHour pins the
// literal argmin rule: a Shiftable device bids only when the minimal
// price's *offset within ExternalPriceDay[s.Hour:]* equals s.Hour itself,
// not when s.Hour is the actual cheapest hour of the day. priceDay here is
// [_, 30, 20, 25, ...]; the cheapest absolute hour is 2, but the suffix
// starting at hour 1 ([30, 20, 25, ...]) has its minimum at offset 1, which
// equals s.Hour=1 — so the device bids there despite hour 1 not being the
// cheapest hour overall.
func TestParticipant_Offers_ShiftableBidsWhenSuffixOffsetMatchesHour(t *testing.T) {
	priceDay := make([]float64, HoursPerDay)
	for h := range priceDay {
		priceDay[h] = 100
	}
	priceDay[1] = 30
	priceDay[2] = 20
	priceDay[3] = 25

	s := Schedule{0, 1}
	dishwasher := &FixedDevice{
		ID:            "dw",
		DemandProfile: map[Schedule]float64{s: 3},
		Role:          Consumer,
		DeviceMode:    Shiftable,
	}
	p := NewParticipant("p1", []Device{dishwasher})

	view := viewFor([]float64{1}, []float64{0}, []float64{1}, priceDay, 1, false)
	p.OnNotify(s, view)

	_, demand, _ := p.Offers(s)
	require.Len(t, demand, 1, "offset of the suffix minimum (1) equals s.Hour (1), so the device bids")
	assert.Equal(t, 3.0, demand[0].Amount)
}

// TestParticipant_Offers_ShiftableSkipsWhenSuffixOffsetMismatchesHour uses
// the same priceDay fixture but evaluated at hour 0, where the suffix
// minimum's offset (2, since ExternalPriceDay[0:]'s cheapest entry is at
// index 2) does not equal s.Hour (0), so the device does not bid.
func TestParticipant_Offers_ShiftableSkipsWhenSuffixOffsetMismatchesHour(t *testing.T) {
	priceDay := make([]float64, HoursPerDay)
	for h := range priceDay {
		priceDay[h] = 100
	}
	priceDay[1] = 30
	priceDay[2] = 20
	priceDay[3] = 25

	s := Schedule{0, 0}
	dishwasher := &FixedDevice{
		ID:            "dw",
		DemandProfile: map[Schedule]float64{s: 3},
		Role:          Consumer,
		DeviceMode:    Shiftable,
	}
	p := NewParticipant("p1", []Device{dishwasher})

	view := viewFor([]float64{1}, []float64{0}, []float64{1}, priceDay, 1, false)
	p.OnNotify(s, view)

	_, demand, _ := p.Offers(s)
	assert.Empty(t, demand, "suffix minimum's offset (2) does not equal s.Hour (0)")
}

func TestParticipant_BidFactor_DefaultsWhenNonPositive(t *testing.T) {
	p := NewParticipant("p1", nil)
	p.BidFactor = 0
	assert.Equal(t, DefaultBidFactor, p.bidFactor())
}
