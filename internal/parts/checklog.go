package parts

import (
	"time"

	"github.com/google/uuid"
)

type checkKey struct {
	unit   uuid.UUID
	typeID string
	day    string
}

// CheckLog records failed replacement searches per unit, equipment type and
// day, so identical placeholders on one unit search the warehouse at most
// once per day. The scheduler owns it and advances it each day.
type CheckLog struct {
	day  time.Time
	seen map[checkKey]struct{}
}

// NewCheckLog creates a log for the given day.
func NewCheckLog(day time.Time) *CheckLog {
	return &CheckLog{day: day, seen: make(map[checkKey]struct{})}
}

// Day returns the current day.
func (c *CheckLog) Day() time.Time { return c.day }

// Advance moves the log to a new day and forgets earlier days.
func (c *CheckLog) Advance(day time.Time) {
	if dayKey(day) == dayKey(c.day) {
		return
	}
	c.day = day
	c.seen = make(map[checkKey]struct{})
}

// Checked reports whether a search for this unit and type already failed
// today.
func (c *CheckLog) Checked(unit uuid.UUID, typeID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.seen[checkKey{unit, typeID, dayKey(c.day)}]
	return ok
}

// Mark records a failed search.
func (c *CheckLog) Mark(unit uuid.UUID, typeID string) {
	if c == nil {
		return
	}
	c.seen[checkKey{unit, typeID, dayKey(c.day)}] = struct{}{}
}

// Len returns the number of recorded searches for the current day.
func (c *CheckLog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.seen)
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
