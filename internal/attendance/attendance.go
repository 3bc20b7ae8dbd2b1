// Package attendance derives per-event attendee counts from raw attendance
// rows.
package attendance

import "github.com/Shivanand-hulikatti/tabletop/internal/model"

// Aggregate reduces attendance rows to a count per event id.
func Aggregate(rows []model.Attendee) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.EventID]++
	}
	return counts
}

// Counts caches attendee counts per event. It is rebuilt wholesale from a
// full fetch and patched by Increment after each local join; joins made
// elsewhere only show up on the next Rebuild.
//
// Counts is not safe for concurrent use. Its owner serializes access.
type Counts struct {
	m map[string]int
}

// NewCounts returns an empty cache.
func NewCounts() *Counts {
	return &Counts{m: make(map[string]int)}
}

// Rebuild replaces every count with the aggregate of rows.
func (c *Counts) Rebuild(rows []model.Attendee) {
	c.m = Aggregate(rows)
}

// Increment adds one attendee to eventID and returns the new count.
func (c *Counts) Increment(eventID string) int {
	c.m[eventID]++
	return c.m[eventID]
}

// Get returns the count for eventID; unknown ids count as zero.
func (c *Counts) Get(eventID string) int {
	return c.m[eventID]
}

// Snapshot returns a copy of all non-zero counts.
func (c *Counts) Snapshot() map[string]int {
	out := make(map[string]int, len(c.m))
	for id, n := range c.m {
		out[id] = n
	}
	return out
}
