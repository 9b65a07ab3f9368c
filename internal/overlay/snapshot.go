package overlay

import (
	"time"

	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
)

// Snapshot is the serializable overlay state of one document: annotations
// with their child items, free of any ephemeral UI selection. Snapshots feed
// the per-document session cache and the backend save payload.
type Snapshot struct {
	Annotations []AnnotationSnapshot
}

// AnnotationSnapshot is one annotation with its children, by value.
type AnnotationSnapshot struct {
	ID        string
	ServerID  int64
	Anchor    geom.Point
	Note      string
	Author    string
	Owned     bool
	Committed bool
	CreatedAt time.Time
	Upvotes   int
	Downvotes int
	UserVote  Vote
	TextItems []TextItemSnapshot
	Arrows    []ArrowSnapshot
}

// TextItemSnapshot is one text item by value.
type TextItemSnapshot struct {
	ID    string
	Pos   geom.Point
	Text  string
	Style TextStyle
}

// ArrowSnapshot is one arrow hint by value; only the raw endpoints are
// serialized, the arrowhead geometry is rederived on restore.
type ArrowSnapshot struct {
	ID    string
	Start geom.Point
	End   geom.Point
}

// TakeSnapshot serializes the set. Provisional annotations are included so a
// document switch mid-edit does not drop work; the commit flag rides along so
// they stay provisional on restore.
func (s *Set) TakeSnapshot() Snapshot {
	snapshot := Snapshot{Annotations: make([]AnnotationSnapshot, 0, s.Len())}
	for _, annotation := range s.All() {
		entry := AnnotationSnapshot{
			ID:        annotation.ID,
			ServerID:  annotation.ServerID,
			Anchor:    annotation.Anchor,
			Note:      annotation.Note,
			Author:    annotation.Author,
			Owned:     annotation.Owned,
			Committed: annotation.Committed,
			CreatedAt: annotation.CreatedAt,
			Upvotes:   annotation.Upvotes,
			Downvotes: annotation.Downvotes,
			UserVote:  annotation.UserVote,
		}
		for _, item := range annotation.TextItems {
			entry.TextItems = append(entry.TextItems, TextItemSnapshot{
				ID:    item.ID,
				Pos:   item.Pos,
				Text:  item.Text,
				Style: item.Style,
			})
		}
		for _, arrow := range annotation.Arrows {
			entry.Arrows = append(entry.Arrows, ArrowSnapshot{
				ID:    arrow.ID,
				Start: arrow.Start,
				End:   arrow.End,
			})
		}
		snapshot.Annotations = append(snapshot.Annotations, entry)
	}
	return snapshot
}

// RestoreSnapshot replaces the set's contents with the snapshot. The commit
// flag round-trips: an annotation that was mid-placement when the snapshot
// was taken comes back provisional and is never persisted as-is.
func (s *Set) RestoreSnapshot(snapshot Snapshot) {
	s.Clear()
	for _, entry := range snapshot.Annotations {
		annotation := &Annotation{
			ID:        entry.ID,
			ServerID:  entry.ServerID,
			Anchor:    entry.Anchor,
			Note:      entry.Note,
			Author:    entry.Author,
			Owned:     entry.Owned,
			CreatedAt: entry.CreatedAt,
			Upvotes:   entry.Upvotes,
			Downvotes: entry.Downvotes,
			UserVote:  entry.UserVote,
			Committed: entry.Committed,
		}
		for _, item := range entry.TextItems {
			annotation.AddTextItem(&TextItem{
				ID:    item.ID,
				Pos:   item.Pos,
				Text:  item.Text,
				Style: item.Style,
			})
		}
		for _, arrow := range entry.Arrows {
			annotation.AddArrow(&ArrowHint{
				ID:    arrow.ID,
				Start: arrow.Start,
				End:   arrow.End,
			})
		}
		s.Add(annotation)
	}
}
