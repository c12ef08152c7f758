// Package layout implements the convergent merge for floor-plan layouts
// edited independently by offline or concurrent clients.
package layout

import (
	"bytes"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
)

// Merge combines two layouts last-writer-wins, key by key. Keys present
// in only one input are taken as-is; for keys present in both, the
// element with the strictly larger timestamp wins. Equal timestamps are
// resolved by bytewise comparison of the payloads, so the result never
// depends on which argument was local and which remote.
//
// Merge is pure, commutative, associative, and idempotent: any merge
// order over any number of replicas converges to the same layout, and
// re-running it after a retry or duplicate delivery is harmless.
func Merge(a, b model.Layout) model.Layout {
	out := make(model.Layout, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, el := range b {
		cur, ok := out[k]
		if !ok || wins(el, cur) {
			out[k] = el
		}
	}
	return out
}

// wins reports whether challenger supersedes incumbent.
func wins(challenger, incumbent model.LayoutElement) bool {
	if challenger.Timestamp != incumbent.Timestamp {
		return challenger.Timestamp > incumbent.Timestamp
	}
	return bytes.Compare(challenger.Value, incumbent.Value) > 0
}
