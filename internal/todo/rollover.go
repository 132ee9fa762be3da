package todo

import (
	"time"

	"github.com/nhle/daybook/internal/model"
)

// Rollover returns the clones needed to carry every incomplete lineage in
// existing forward to target. existing is not modified.
//
// For each lineage the predecessor is the snapshot with the latest date
// before target, ties going to the latest CreatedAt. A clone is made only
// when the lineage has no snapshot on target yet and the predecessor is not
// complete. Clones copy title and progress and start without per-day
// details.
func Rollover(existing []model.Snapshot, target string, now time.Time, newID func() string) []model.Snapshot {
	onTarget := make(map[string]bool)
	predecessors := make(map[string]model.Snapshot)
	var order []string

	for _, s := range existing {
		if s.Date == target {
			onTarget[s.OriginID] = true
			continue
		}
		if s.Date > target {
			continue
		}
		cur, seen := predecessors[s.OriginID]
		if !seen {
			order = append(order, s.OriginID)
		}
		if !seen || s.Date > cur.Date || (s.Date == cur.Date && s.CreatedAt.After(cur.CreatedAt)) {
			predecessors[s.OriginID] = s
		}
	}

	var clones []model.Snapshot
	for _, origin := range order {
		if onTarget[origin] {
			continue
		}
		prev := predecessors[origin]
		if prev.IsComplete() {
			continue
		}
		clones = append(clones, model.Snapshot{
			ID:        newID(),
			OriginID:  origin,
			Title:     prev.Title,
			Date:      target,
			Progress:  prev.Progress,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return clones
}
