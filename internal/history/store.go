package history

import "IndexSentinel/internal/model"

// Store maps symbols to their daily close history. Iteration follows insertion
// order so downstream rankings are reproducible.
type Store struct {
	order  []string
	series map[string]model.PriceSeries
}

func NewStore() *Store {
	return &Store{series: make(map[string]model.PriceSeries)}
}

// Put adds a series. Empty series are dropped: absent and empty mean the same thing.
func (s *Store) Put(ps model.PriceSeries) {
	if ps.Len() == 0 {
		return
	}
	if _, ok := s.series[ps.Symbol]; !ok {
		s.order = append(s.order, ps.Symbol)
	}
	s.series[ps.Symbol] = ps
}

// Get returns the series for symbol, if any.
func (s *Store) Get(symbol string) (model.PriceSeries, bool) {
	ps, ok := s.series[symbol]
	return ps, ok
}

// Symbols returns the stored symbols in insertion order.
func (s *Store) Symbols() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) Len() int { return len(s.order) }
