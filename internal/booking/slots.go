package booking

import "github.com/homecyclehelp/booking-client/internal/backend"

// DayGroup is one calendar day of slots, in the order the slots arrived.
type DayGroup struct {
	// Date is the slot start truncated to its calendar date (2006-01-02),
	// in the offset the timestamp arrived with.
	Date  string
	Slots []backend.Slot
}

// GroupSlotsByDay partitions slots into per-day groups. Days appear in order
// of first appearance and slots keep their input order inside each group;
// the backend already sends them chronologically and nothing is re-sorted.
// No timezone conversion happens, so a slot can never shift into an adjacent
// day. Empty input yields an empty result.
func GroupSlotsByDay(slots []backend.Slot) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int, len(slots))

	for _, slot := range slots {
		date := slot.Start.Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, DayGroup{Date: date})
		}
		groups[i].Slots = append(groups[i].Slots, slot)
	}
	return groups
}
