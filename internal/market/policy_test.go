package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice_BalancedMatchesMarket(t *testing.T) {
	sell, buy := Price(1, 50, 1, 0.1)
	assert.InDelta(t, 50, sell, 1e-9)
	assert.InDelta(t, 50, buy, 1e-9)
}

func TestPrice_LongOnSupplyLowersAskRaisesBid(t *testing.T) {
	sell, buy := Price(1, 50, 2, 0.1)
	assert.Less(t, sell, 50.0)
	assert.Greater(t, buy, 50.0)
}

func TestPrice_ShortOnSupplyRaisesAskLowersBid(t *testing.T) {
	sell, buy := Price(2, 50, 1, 0.1)
	assert.Greater(t, sell, 50.0)
	assert.Less(t, buy, 50.0)
}

func TestPrice_ZeroPredictedRatioTreatsDeltaAsOne(t *testing.T) {
	sell, buy := Price(0, 50, 3, 0.1)
	assert.InDelta(t, 50, sell, 1e-9)
	assert.InDelta(t, 50, buy, 1e-9)
}
