package availability

import (
	"sort"
	"time"
)

// FreeSlots walks a cursor from window.Start in steps of slot and returns
// every start instant whose slot fits before the next busy interval or the
// end of the window. After each busy interval the cursor resumes at the
// interval's end, so the grid re-aligns to booking ends.
//
// busy must be sorted by Start. The result is never nil.
func FreeSlots(window Interval, busy []Interval, slot time.Duration) []time.Time {
	slots := make([]time.Time, 0)
	if slot <= 0 || !window.Start.Before(window.End) {
		return slots
	}

	cursor := window.Start
	for _, b := range busy {
		limit := b.Start
		if window.End.Before(limit) {
			limit = window.End
		}
		for !cursor.Add(slot).After(limit) {
			slots = append(slots, cursor)
			cursor = cursor.Add(slot)
		}
		// Never move backwards: a booking nested inside an earlier one
		// must not re-open time the earlier one still occupies.
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	for !cursor.Add(slot).After(window.End) {
		slots = append(slots, cursor)
		cursor = cursor.Add(slot)
	}

	return slots
}

func sortByStart(busy []Interval) {
	sort.SliceStable(busy, func(i, j int) bool {
		return busy[i].Start.Before(busy[j].Start)
	})
}
