package market

import "errors"

// ErrUnknownDevice is returned by Distribution.Apply when a trade
// references a device id not present in the registry. The trade is dropped
// and the auction continues.
var ErrUnknownDevice = errors.New("market: unknown device")
