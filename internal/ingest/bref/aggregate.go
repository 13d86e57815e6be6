package bref

import "github.com/fortuna/courtside/internal/store"

// Aggregator unions per-game records into one mapping keyed by player name.
// A name seen again replaces the earlier record; iteration keeps first-seen order.
type Aggregator struct {
	records map[string]*store.PlayerStatRecord
	order   []string
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		records: make(map[string]*store.PlayerStatRecord),
	}
}

// Add merges records and reports how many replaced an existing name.
func (a *Aggregator) Add(records ...*store.PlayerStatRecord) int {
	replaced := 0
	for _, rec := range records {
		if _, exists := a.records[rec.Player]; exists {
			replaced++
		} else {
			a.order = append(a.order, rec.Player)
		}
		a.records[rec.Player] = rec
	}
	return replaced
}

// Len returns the number of distinct players
func (a *Aggregator) Len() int {
	return len(a.records)
}

// Records returns the final records in first-seen order
func (a *Aggregator) Records() []*store.PlayerStatRecord {
	out := make([]*store.PlayerStatRecord, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.records[name])
	}
	return out
}

// Encoded returns name -> serialized record for every aggregated player
func (a *Aggregator) Encoded() (map[string]string, error) {
	out := make(map[string]string, len(a.records))
	for name, rec := range a.records {
		value, err := store.EncodeRecord(rec)
		if err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}
