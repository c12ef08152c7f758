package schedule

import (
	"sort"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
)

// SelectRoom picks the best room for the required capacity, or false if
// no candidate is large enough.
//
// Ranking is best-fit first (smallest sufficient capacity wastes the
// least space), then least-recently-allocated so equally sized rooms
// share the load, then room ID so the order is total and selection is
// reproducible even when every timestamp ties (e.g. rooms that have
// never been booked).
func SelectRoom(candidates []model.Room, requiredCapacity int) (*model.Room, bool) {
	fit := make([]model.Room, 0, len(candidates))
	for _, r := range candidates {
		if r.Capacity >= requiredCapacity {
			fit = append(fit, r)
		}
	}
	if len(fit) == 0 {
		return nil, false
	}

	sort.Slice(fit, func(i, j int) bool {
		a, b := fit[i], fit[j]
		if a.Capacity != b.Capacity {
			return a.Capacity < b.Capacity
		}
		if !a.LastAllocatedAt.Equal(b.LastAllocatedAt) {
			return a.LastAllocatedAt.Before(b.LastAllocatedAt)
		}
		return a.ID < b.ID
	})

	best := fit[0]
	return &best, true
}
