package broker

import (
	"time"

	"github.com/rustyeddy/daywalker/market"
)

// Status tracks an order handle through its single day of life.
type Status int

const (
	// Pending: submitted, auction has not run yet.
	Pending Status = iota
	// Filled: the limit condition held and the fill was applied.
	Filled
	// Expired: the limit condition failed; the order simply vanishes and has
	// no effect on any later day.
	Expired
	// Rejected: the fill would have breached the margin or short-selling
	// constraints and was dropped.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Filled:
		return "filled"
	case Expired:
		return "expired"
	case Rejected:
		return "rejected"
	}
	return "pending"
}

// Order is a limit-on-open or limit-on-close instruction: a conditional
// market order that fills at the auction print when the limit condition
// holds, all-or-nothing, valid only for the day it was submitted.
//
// The pointer returned at submission is the order handle; the broker updates
// Status and FillTradeID in place when the auction runs.
type Order struct {
	ID         string
	Symbol     string
	Buy        bool
	LimitPrice float64
	Size       float64
	Auction    market.Auction
	Date       time.Time
	Meta       map[string]any

	Status      Status
	FillTradeID int64
}
