// Package forecast implements the two pluggable predictor contracts the
// auction core depends on: a future external-price series predictor, and a
// next-round supply/demand ratio and price projector.
package forecast

// PriceForecaster predicts future hourly external-grid prices from a
// finite series of past hourly prices. Forecast length must equal n,
// every value must be finite, and input ordering is preserved.
type PriceForecaster interface {
	// Forecast returns n future hourly prices following history. ok is
	// false when history is too short or degenerate to forecast from
	// (ForecastUnavailable); callers must leave prior state unchanged in
	// that case.
	Forecast(history []float64, n int) (prices []float64, ok bool)
}

// RatioForecaster projects a slot's remaining supply/demand ratio and price
// trajectory from the previous slot's realized trajectory. It mutates
// currRatio/currPrices in place, from index round onward.
type RatioForecaster interface {
	// Project fits to (preRatio, prePrices) — both length R, the previous
	// slot's fully realized trajectory — and extends currRatio/currPrices
	// (both length R, filled up to index round-1) from index round to
	// R-1. ok is false when inputs are too short or degenerate
	// (ForecastUnavailable); callers must leave currRatio/currPrices
	// unchanged in that case.
	Project(preRatio, prePrices, currRatio, currPrices []float64, round int) (ok bool)
}

// NullForecaster is a no-op PriceForecaster and RatioForecaster: it always
// reports ForecastUnavailable. Useful as a test double in place of a fitted
// model.
type NullForecaster struct{}

// Forecast implements PriceForecaster by always declining to forecast.
func (NullForecaster) Forecast(_ []float64, _ int) ([]float64, bool) {
	return nil, false
}

// Project implements RatioForecaster by always declining to project.
func (NullForecaster) Project(_, _, _, _ []float64, _ int) bool {
	return false
}
