// Package commission provides pluggable broker commission schedules.
package commission

import "math"

// Schedule computes the monetary commission for one fill. Implementations
// are pure functions of price and size: no state, no side effects.
type Schedule interface {
	Commission(price, size float64) float64
}

// Free charges nothing. Useful for tests and frictionless what-ifs.
type Free struct{}

func (Free) Commission(price, size float64) float64 { return 0 }

// PerShare is the tiered per-share profile used by Interactive-Brokers-style
// Pro plans: a per-share rate with a fixed minimum, capped at a percentage
// of the trade value.
type PerShare struct {
	Rate        float64 // per share
	Minimum     float64 // floor per fill
	MaxTradePct float64 // cap as a fraction of |size|*price
}

// InteractiveBrokersPro is the published Pro tier: $0.005/share, $1 minimum,
// capped at 1% of trade value.
func InteractiveBrokersPro() PerShare {
	return PerShare{Rate: 0.005, Minimum: 1.0, MaxTradePct: 0.01}
}

func (p PerShare) Commission(price, size float64) float64 {
	shares := math.Abs(size)
	c := math.Max(p.Minimum, p.Rate*shares)
	if p.MaxTradePct > 0 {
		c = math.Min(c, p.MaxTradePct*shares*price)
	}
	return c
}
