package sim

import (
	"time"

	"github.com/rustyeddy/daywalker/market"
)

// LogStore collects strategy diagnostics for one run: named streams of
// time-stamped field records. Entries under the same name may carry
// different field sets; reconstruction aligns them.
type LogStore struct {
	names []string
	logs  map[string][]logEntry
}

type logEntry struct {
	date   time.Time
	fields map[string]any
}

// NewLogStore returns an empty store.
func NewLogStore() *LogStore {
	return &LogStore{logs: make(map[string][]logEntry)}
}

// Log appends one record to a named stream.
func (s *LogStore) Log(name string, date time.Time, fields map[string]any) {
	if _, ok := s.logs[name]; !ok {
		s.names = append(s.names, name)
	}
	f := make(map[string]any, len(fields))
	for k, v := range fields {
		f[k] = v
	}
	s.logs[name] = append(s.logs[name], logEntry{date: date, fields: f})
}

// Names returns the stream names in first-logged order.
func (s *LogStore) Names() []string {
	return append([]string(nil), s.names...)
}

// Table reconstructs a stream as a frame: a date column plus the union of
// every field name ever logged under that name, with missing markers where
// an entry omitted a field. An unknown name yields an empty frame.
func (s *LogStore) Table(name string) *market.Frame {
	f := market.NewFrame("date")
	for _, e := range s.logs[name] {
		row := make(map[string]any, len(e.fields)+1)
		row["date"] = e.date
		for k, v := range e.fields {
			row[k] = v
		}
		f.AppendMap(row)
	}
	return f
}
