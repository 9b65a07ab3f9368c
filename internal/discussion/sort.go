package discussion

import (
	"sort"

	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
)

// SortMode orders other users' annotations in the note list.
type SortMode string

const (
	// SortTop orders by score, highest first; ties break newest first.
	SortTop SortMode = "top"
	// SortNewest orders by creation time, newest first.
	SortNewest SortMode = "newest"
	// SortOldest orders by creation time, oldest first.
	SortOldest SortMode = "oldest"
)

// PartitionNotes splits committed annotations into the viewer's own notes and
// everyone else's. Own notes are always newest first; the rest follow mode.
func PartitionNotes(all []*overlay.Annotation, mode SortMode) (mine, others []*overlay.Annotation) {
	for _, annotation := range all {
		if !annotation.Committed {
			continue
		}
		if annotation.Owned {
			mine = append(mine, annotation)
		} else {
			others = append(others, annotation)
		}
	}

	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})

	switch mode {
	case SortNewest:
		sort.SliceStable(others, func(i, j int) bool {
			return others[i].CreatedAt.After(others[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(others, func(i, j int) bool {
			return others[i].CreatedAt.Before(others[j].CreatedAt)
		})
	default:
		sort.SliceStable(others, func(i, j int) bool {
			left, right := others[i], others[j]
			if left.Score() != right.Score() {
				return left.Score() > right.Score()
			}
			return left.CreatedAt.After(right.CreatedAt)
		})
	}
	return mine, others
}
