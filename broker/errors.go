package broker

import "errors"

var (
	// ErrUnknownAsset is returned when an order references a symbol that was
	// never registered with the broker.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrInvalidOrder is returned for non-positive prices or sizes, and for
	// orders submitted in the wrong phase of the day.
	ErrInvalidOrder = errors.New("invalid order")
)
