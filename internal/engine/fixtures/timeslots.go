// internal/engine/fixtures/timeslots.go
package fixtures

// GroupIntoTimeslots partitions fixtures into sets that can be played
// simultaneously. It greedily scans ungrouped fixtures in table order:
// a fixture joins the current timeslot when none of its entrants
// already appear there and the timeslot still has a free court;
// otherwise it waits for a later timeslot. The result is always
// conflict-free and covers every fixture exactly once, but is not
// guaranteed to use the minimum number of timeslots.
func GroupIntoTimeslots(fixtures []Fixture, courtCount int) [][]Fixture {
	if courtCount < 1 {
		courtCount = 1
	}
	remaining := make([]Fixture, len(fixtures))
	copy(remaining, fixtures)

	var slots [][]Fixture
	for len(remaining) > 0 {
		var slot []Fixture
		busy := make(map[string]struct{})
		var next []Fixture

		for _, f := range remaining {
			if len(slot) < courtCount && !anyBusy(f, busy) {
				slot = append(slot, f)
				for _, id := range f.entrantIDs() {
					busy[id] = struct{}{}
				}
				continue
			}
			next = append(next, f)
		}

		slots = append(slots, slot)
		remaining = next
	}
	return slots
}

func anyBusy(f Fixture, busy map[string]struct{}) bool {
	for _, id := range f.entrantIDs() {
		if _, ok := busy[id]; ok {
			return true
		}
	}
	return false
}
