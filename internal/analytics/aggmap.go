package analytics

import "strings"

// UnspecifiedKey is the bucket for rows whose grouping key is empty.
const UnspecifiedKey = "unspecified"

// Counter accumulates one bucket of an AggMap.
type Counter struct {
	Count   int
	Sum     float64
	uniques map[string]struct{}
}

// Unique returns the number of distinct ids seen by this counter.
func (c *Counter) Unique() int {
	return len(c.uniques)
}

// Seen reports whether id has been added to this counter.
func (c *Counter) Seen(id string) bool {
	_, ok := c.uniques[id]
	return ok
}

// AggMap groups rows by string key. Keys iterate in the order they were
// first added, and empty keys are folded into UnspecifiedKey.
type AggMap struct {
	order    []string
	counters map[string]*Counter
}

// NewAggMap returns an empty map.
func NewAggMap() *AggMap {
	return &AggMap{counters: make(map[string]*Counter)}
}

// NormalizeKey trims the key and maps empty values to UnspecifiedKey.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return UnspecifiedKey
	}
	return key
}

// Ensure creates the bucket for key without counting anything. It is used to
// zero-fill known categories so they appear in output even when empty.
func (m *AggMap) Ensure(key string) *Counter {
	key = NormalizeKey(key)
	c, ok := m.counters[key]
	if !ok {
		c = &Counter{uniques: make(map[string]struct{})}
		m.counters[key] = c
		m.order = append(m.order, key)
	}
	return c
}

// Add counts one row under key, adds value to the bucket sum and records
// uniqueID when it is non-empty.
func (m *AggMap) Add(key string, value float64, uniqueID string) *Counter {
	c := m.Ensure(key)
	c.Count++
	c.Sum += value
	if uniqueID != "" {
		c.uniques[uniqueID] = struct{}{}
	}
	return c
}

// Get returns the bucket for key, or nil.
func (m *AggMap) Get(key string) *Counter {
	return m.counters[NormalizeKey(key)]
}

// Keys returns keys in first-insertion order.
func (m *AggMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of buckets.
func (m *AggMap) Len() int {
	return len(m.order)
}

// Total returns the sum of Count across buckets.
func (m *AggMap) Total() int {
	total := 0
	for _, c := range m.counters {
		total += c.Count
	}
	return total
}

// Each calls fn for every bucket in insertion order.
func (m *AggMap) Each(fn func(key string, c *Counter)) {
	for _, k := range m.order {
		fn(k, m.counters[k])
	}
}

// GroupBy builds an AggMap from rows. value and id may be nil.
func GroupBy[T any](rows []T, key func(T) string, value func(T) float64, id func(T) string) *AggMap {
	m := NewAggMap()
	for _, r := range rows {
		var v float64
		if value != nil {
			v = value(r)
		}
		var u string
		if id != nil {
			u = id(r)
		}
		m.Add(key(r), v, u)
	}
	return m
}

// Share is one row of a count/percentage distribution.
type Share struct {
	Key        string  `json:"key"`
	Label      string  `json:"label,omitempty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution converts the map into shares of total, in insertion order.
// A non-positive total yields zero percentages.
func (m *AggMap) Distribution(total int) []Share {
	out := make([]Share, 0, m.Len())
	m.Each(func(k string, c *Counter) {
		out = append(out, Share{Key: k, Count: c.Count, Percentage: Rate(c.Count, total)})
	})
	return out
}
