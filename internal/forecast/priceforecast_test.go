package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoltWintersPriceForecaster_ShortHistoryUnavailable(t *testing.T) {
	f := NewHoltWintersPriceForecaster()
	history := make([]float64, f.Period) // only one seasonal cycle.
	_, ok := f.Forecast(history, 5)
	assert.False(t, ok)
}

func TestHoltWintersPriceForecaster_ZeroHorizonIsEmptySlice(t *testing.T) {
	f := NewHoltWintersPriceForecaster()
	history := make([]float64, 2*f.Period)
	forecast, ok := f.Forecast(history, 0)
	require.True(t, ok)
	assert.Empty(t, forecast)
}

func TestHoltWintersPriceForecaster_ForecastsFlatSeries(t *testing.T) {
	f := NewHoltWintersPriceForecaster()
	history := make([]float64, 3*f.Period)
	for i := range history {
		history[i] = 40
	}

	forecast, ok := f.Forecast(history, 24)
	require.True(t, ok)
	require.Len(t, forecast, 24)
	for _, v := range forecast {
		assert.InDelta(t, 40, v, 1.0)
	}
}

func TestHoltWintersPriceForecaster_NeverNegative(t *testing.T) {
	f := NewHoltWintersPriceForecaster()
	history := make([]float64, 3*f.Period)
	for i := range history {
		if i%f.Period < f.Period/2 {
			history[i] = 0
		} else {
			history[i] = 1
		}
	}

	forecast, ok := f.Forecast(history, f.Period)
	require.True(t, ok)
	for _, v := range forecast {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestHoltWintersPriceForecaster_DefaultPeriod(t *testing.T) {
	f := &HoltWintersPriceForecaster{Alpha: 0.3, Beta: 0.1, Gamma: 0.2}
	history := make([]float64, 2*SeasonalPeriod)
	_, ok := f.Forecast(history, 1)
	assert.True(t, ok)
}
