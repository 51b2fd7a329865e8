// Package layout positions one day's meetings in the week grid so that
// temporally overlapping meetings never share a column.
//
// Meetings are partitioned into maximal overlap clusters by a left-to-right
// sweep, then each cluster is colored greedily first-fit. Greedy first-fit is
// optimal for interval graphs, so a cluster's column count equals its maximum
// simultaneous-meeting depth.
package layout

import (
	"fmt"
	"sort"

	"github.com/example/team-portal/internal/timegrid"
)

// Event is the minimal view of a meeting the engine needs.
type Event struct {
	ID    string
	Start timegrid.TimeOfDay
	End   timegrid.TimeOfDay
}

// Placement locates one meeting inside its cluster. Columns are zero-based;
// TotalColumns is shared by every meeting in the same cluster so rendering
// can divide the day column width evenly.
type Placement struct {
	Column       int
	TotalColumns int
}

// Layout assigns a Placement to every event of a single day. Events with a
// reversed or empty range are rejected with timegrid.ErrInvalidRange; they
// are expected to have been filtered out at validation time.
func Layout(events []Event) (map[string]Placement, error) {
	placements := make(map[string]Placement, len(events))
	if len(events) == 0 {
		return placements, nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	for _, ev := range sorted {
		if ev.Start >= ev.End {
			return nil, fmt.Errorf("%w: event %s (%s >= %s)", timegrid.ErrInvalidRange, ev.ID, ev.Start, ev.End)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		if sorted[i].End != sorted[j].End {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].ID < sorted[j].ID
	})

	i := 0
	for i < len(sorted) {
		// A cluster absorbs events while they start before the furthest end
		// seen so far.
		cluster := []Event{sorted[i]}
		clusterEnd := sorted[i].End
		i++
		for i < len(sorted) && sorted[i].Start < clusterEnd {
			cluster = append(cluster, sorted[i])
			if sorted[i].End > clusterEnd {
				clusterEnd = sorted[i].End
			}
			i++
		}

		assignColumns(cluster, placements)
	}

	return placements, nil
}

// assignColumns places cluster members into the first column whose latest
// occupant has finished, opening a new column when none has.
func assignColumns(cluster []Event, placements map[string]Placement) {
	var columnEnds []timegrid.TimeOfDay
	for _, ev := range cluster {
		placed := false
		for c, end := range columnEnds {
			if end <= ev.Start {
				columnEnds[c] = ev.End
				placements[ev.ID] = Placement{Column: c}
				placed = true
				break
			}
		}
		if !placed {
			placements[ev.ID] = Placement{Column: len(columnEnds)}
			columnEnds = append(columnEnds, ev.End)
		}
	}
	for _, ev := range cluster {
		p := placements[ev.ID]
		p.TotalColumns = len(columnEnds)
		placements[ev.ID] = p
	}
}
