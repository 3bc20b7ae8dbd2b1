package attendance

import (
	"testing"

	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/stretchr/testify/assert"
)

func rows(ids ...string) []model.Attendee {
	out := make([]model.Attendee, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Attendee{EventID: id, Email: "p@example.com"})
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		rows []model.Attendee
		want map[string]int
	}{
		{name: "no rows", rows: nil, want: map[string]int{}},
		{name: "single event", rows: rows("a", "a", "a"), want: map[string]int{"a": 3}},
		{name: "interleaved events", rows: rows("a", "b", "a", "c", "b", "a"), want: map[string]int{"a": 3, "b": 2, "c": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.rows))
		})
	}
}

func TestCountsDefaultZero(t *testing.T) {
	c := NewCounts()
	c.Rebuild(rows("a"))
	assert.Equal(t, 1, c.Get("a"))
	assert.Equal(t, 0, c.Get("missing"))
	assert.Equal(t, 0, c.Get(""))
}

func TestCountsRebuildReplacesEverything(t *testing.T) {
	c := NewCounts()
	c.Rebuild(rows("a", "a", "b"))
	c.Increment("c")

	c.Rebuild(rows("b"))
	assert.Equal(t, 0, c.Get("a"))
	assert.Equal(t, 1, c.Get("b"))
	assert.Equal(t, 0, c.Get("c"))
}

func TestCountsIncrement(t *testing.T) {
	c := NewCounts()
	c.Rebuild(rows("a", "a"))

	assert.Equal(t, 3, c.Increment("a"))
	assert.Equal(t, 1, c.Increment("new"))
	assert.Equal(t, 3, c.Get("a"))
	assert.Equal(t, 1, c.Get("new"))
}

func TestCountsSnapshotIsACopy(t *testing.T) {
	c := NewCounts()
	c.Rebuild(rows("a"))

	snap := c.Snapshot()
	snap["a"] = 99
	assert.Equal(t, 1, c.Get("a"))
}
