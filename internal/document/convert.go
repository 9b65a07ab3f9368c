package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/marginalia/internal/client"
	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
)

// createdAtLayouts covers the timestamp shapes the backend has emitted.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseCreatedAt(raw string) time.Time {
	for _, layout := range createdAtLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func parseFontSize(raw string) float64 {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "px")
	size, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || size <= 0 {
		return overlay.DefaultFontSize
	}
	return overlay.ClampFontSize(size)
}

// AnnotationFromPayload builds a committed annotation from its wire form.
// Child items get deterministic ids derived from the annotation id so reloads
// are stable.
func AnnotationFromPayload(payload client.AnnotationPayload) *overlay.Annotation {
	annotation := &overlay.Annotation{
		ID:        payload.ID,
		ServerID:  payload.ServerID,
		Anchor:    geom.Point{X: payload.X, Y: payload.Y},
		Note:      payload.Note,
		Author:    payload.User,
		Owned:     payload.IsOwner,
		CreatedAt: parseCreatedAt(payload.CreatedAt),
		Upvotes:   payload.Upvotes,
		Downvotes: payload.Downvotes,
		UserVote:  overlay.Vote(payload.UserVote),
		Committed: true,
	}
	for i, item := range payload.TextItems {
		style := overlay.TextStyle{
			FontFamily: item.FontFamily,
			FontSize:   parseFontSize(item.FontSize),
			Bold:       strings.EqualFold(item.FontWeight, "bold"),
			Italic:     strings.EqualFold(item.FontStyle, "italic"),
			Kerning:    !strings.EqualFold(item.FontKerning, "none"),
			Color:      item.Color,
			Opacity:    overlay.ClampOpacity(item.Opacity),
		}
		if style.FontFamily == "" {
			style.FontFamily = overlay.DefaultTextStyle().FontFamily
		}
		if style.Color == "" {
			style.Color = overlay.DefaultColor
		}
		annotation.AddTextItem(&overlay.TextItem{
			ID:    fmt.Sprintf("%s-text-%d", payload.ID, i),
			Pos:   geom.Point{X: item.X, Y: item.Y},
			Text:  item.Text,
			Style: style,
		})
	}
	for i, arrow := range payload.Arrows {
		annotation.AddArrow(&overlay.ArrowHint{
			ID:    fmt.Sprintf("%s-arrow-%d", payload.ID, i),
			Start: geom.Point{X: arrow.X1, Y: arrow.Y1},
			End:   geom.Point{X: arrow.X2, Y: arrow.Y2},
		})
	}
	return annotation
}

// SaveRequestFromSet serializes the viewer's own committed annotations into a
// save payload. Hashes travel with the annotation so the backend can detect
// unchanged entries.
func SaveRequestFromSet(pdf string, set *overlay.Set, hashes map[string]string) client.SaveRequest {
	request := client.SaveRequest{PDF: pdf}
	for _, annotation := range set.All() {
		if !annotation.Owned || !annotation.Committed {
			continue
		}
		entry := client.SaveAnnotation{
			ID:   annotation.ID,
			X:    annotation.Anchor.X,
			Y:    annotation.Anchor.Y,
			Note: annotation.Note,
			Hash: hashes[annotation.ID],
		}
		for _, item := range annotation.TextItems {
			weight, style, kerning, features := "normal", "normal", "normal", "normal"
			if item.Style.Bold {
				weight = "bold"
			}
			if item.Style.Italic {
				style = "italic"
			}
			if !item.Style.Kerning {
				kerning = "none"
				features = `"kern" 0`
			}
			entry.TextItems = append(entry.TextItems, client.TextItemPayload{
				X:                   item.Pos.X,
				Y:                   item.Pos.Y,
				Text:                item.Text,
				FontFamily:          item.Style.FontFamily,
				FontSize:            fmt.Sprintf("%gpx", item.Style.FontSize),
				FontWeight:          weight,
				FontStyle:           style,
				FontKerning:         kerning,
				FontFeatureSettings: features,
				Color:               item.Style.Color,
				Opacity:             item.Style.Opacity,
			})
		}
		for _, arrow := range annotation.Arrows {
			entry.Arrows = append(entry.Arrows, client.ArrowPayload{
				X1: arrow.Start.X,
				Y1: arrow.Start.Y,
				X2: arrow.End.X,
				Y2: arrow.End.Y,
			})
		}
		request.Annotations = append(request.Annotations, entry)
	}
	return request
}
