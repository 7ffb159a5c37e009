package market

import (
	"fmt"
	"time"
)

// SideData is a non-price tabular source under the same censorship
// discipline as bars: a row is invisible until its availability timestamp is
// reached. Unlike bars there is no partial reveal; a row shows up whole.
type SideData struct {
	frame *Frame
	avail []time.Time
}

// NewSideData censors a frame on an explicit per-row availability index.
// Timestamps must be strictly increasing, otherwise ErrDataIntegrity.
func NewSideData(frame *Frame, index []time.Time) (*SideData, error) {
	if len(index) != frame.Len() {
		return nil, fmt.Errorf("%w: availability index has %d entries for %d rows",
			ErrDataIntegrity, len(index), frame.Len())
	}
	return newSideData(frame, index)
}

// NewSideDataColumn censors a frame on one of its own columns, which must
// hold strictly increasing time.Time cells.
func NewSideDataColumn(frame *Frame, column string) (*SideData, error) {
	cells, ok := frame.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: availability column %q does not exist", ErrDataIntegrity, column)
	}
	index := make([]time.Time, len(cells))
	for i, c := range cells {
		ts, ok := c.(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: availability column %q row %d is not a timestamp",
				ErrDataIntegrity, column, i)
		}
		index[i] = ts
	}
	return newSideData(frame, index)
}

func newSideData(frame *Frame, index []time.Time) (*SideData, error) {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("%w: availability timestamps must be strictly increasing (row %d)",
				ErrDataIntegrity, i)
		}
	}
	return &SideData{frame: frame, avail: append([]time.Time(nil), index...)}, nil
}

// Visible returns the rows whose availability timestamp is at or before the
// as-of instant.
func (s *SideData) Visible(asOf time.Time) *Frame {
	out := NewFrame(s.frame.cols...)
	for i := range s.avail {
		if s.avail[i].After(asOf) {
			break
		}
		out.rows = append(out.rows, s.frame.rows[i])
	}
	return out
}

// CensoredData is the registry of side datasets handed to strategy
// callbacks. It pins every lookup to the clock's current date.
type CensoredData struct {
	sets map[string]*SideData
	asOf time.Time
	set  bool
}

// NewCensoredData returns an empty registry.
func NewCensoredData() *CensoredData {
	return &CensoredData{sets: make(map[string]*SideData)}
}

// Add registers a dataset under a name, replacing any previous one.
func (c *CensoredData) Add(name string, sd *SideData) {
	c.sets[name] = sd
}

// SetDate moves the censorship horizon. Called by the clock, once per day.
func (c *CensoredData) SetDate(asOf time.Time) {
	c.asOf = asOf
	c.set = true
}

// Get returns the censored view of a named dataset at the current date.
func (c *CensoredData) Get(name string) (*Frame, error) {
	sd, ok := c.sets[name]
	if !ok {
		return nil, fmt.Errorf("no dataset named %q", name)
	}
	if !c.set {
		return NewFrame(sd.frame.cols...), nil
	}
	return sd.Visible(c.asOf), nil
}
