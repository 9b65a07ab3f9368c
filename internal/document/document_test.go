package document

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/MarcoPoloResearchLab/marginalia/internal/client"
	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
	"github.com/MarcoPoloResearchLab/marginalia/internal/view"
)

type stubBackend struct {
	random         client.Document
	search         map[string]client.Document
	annotations    map[string][]client.AnnotationPayload
	annotationErrs map[string]error
	fetches        []string
	beforeApply    func()
}

func (s *stubBackend) RandomDocument(ctx context.Context) (client.Document, error) {
	return s.random, nil
}

func (s *stubBackend) SearchDocument(ctx context.Context, query string) (client.Document, error) {
	doc, ok := s.search[query]
	if !ok {
		return client.Document{}, client.ErrNotFound
	}
	return doc, nil
}

func (s *stubBackend) Annotations(ctx context.Context, pdf string) ([]client.AnnotationPayload, error) {
	s.fetches = append(s.fetches, pdf)
	if s.beforeApply != nil {
		s.beforeApply()
	}
	if err, failed := s.annotationErrs[pdf]; failed {
		return nil, err
	}
	return s.annotations[pdf], nil
}

func twoPageDoc(name string) client.Document {
	return client.Document{
		PDF: name,
		Pages: []client.Page{
			{URL: "/p1.png", Width: 612, Height: 792},
			{URL: "/p2.png", Width: 500, Height: 700},
		},
	}
}

func mustSwitcher(t *testing.T, backend Backend, camera *view.Camera, set *overlay.Set) *Switcher {
	t.Helper()
	switcher, err := NewSwitcher(SwitcherConfig{Backend: backend, Camera: camera, Set: set})
	if err != nil {
		t.Fatalf("NewSwitcher returned error: %v", err)
	}
	return switcher
}

func TestNewLayoutStacksPagesWithGaps(t *testing.T) {
	layout := NewLayout(twoPageDoc("a.pdf").Pages)
	if len(layout.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(layout.Pages))
	}
	if layout.Pages[0].OffsetY != 0 {
		t.Fatalf("first page should start at 0, got %v", layout.Pages[0].OffsetY)
	}
	wantSecond := 792 + PageGap
	if layout.Pages[1].OffsetY != wantSecond {
		t.Fatalf("second page offset %v, want %v", layout.Pages[1].OffsetY, wantSecond)
	}
	if layout.MaxWidth != 612 || layout.FirstPageWidth != 612 {
		t.Fatalf("unexpected widths %+v", layout)
	}
	if layout.TotalHeight != 792+PageGap+700 {
		t.Fatalf("unexpected total height %v", layout.TotalHeight)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"dossier-volume-1.pdf", "dossier-volume-1"},
		{"DOSSIER.PDF", "DOSSIER"},
		{"notes.txt", "notes.txt"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Fatalf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnnotationFromPayload(t *testing.T) {
	payload := client.AnnotationPayload{
		ID:        "local-1",
		ServerID:  42,
		User:      "casey",
		X:         120,
		Y:         340,
		Note:      "margin note",
		IsOwner:   true,
		Upvotes:   3,
		Downvotes: 1,
		UserVote:  -1,
		CreatedAt: "2025-06-01T12:00:00Z",
		TextItems: []client.TextItemPayload{
			{X: 100, Y: 300, Text: "look here", FontSize: "30px", FontWeight: "bold", FontKerning: "none", Opacity: 0.1},
		},
		Arrows: []client.ArrowPayload{{X1: 1, Y1: 2, X2: 3, Y2: 4}},
	}
	annotation := AnnotationFromPayload(payload)
	if !annotation.Committed {
		t.Fatalf("loaded annotations must be committed")
	}
	if annotation.Anchor != (geom.Point{X: 120, Y: 340}) || annotation.UserVote != overlay.VoteDown {
		t.Fatalf("unexpected annotation %+v", annotation)
	}
	if annotation.CreatedAt.IsZero() {
		t.Fatalf("created_at should parse")
	}
	item := annotation.TextItems[0]
	if item.Style.FontSize != 30 || !item.Style.Bold || item.Style.Kerning {
		t.Fatalf("unexpected style %+v", item.Style)
	}
	if item.Style.Opacity != 0.3 {
		t.Fatalf("opacity should clamp to 0.3, got %v", item.Style.Opacity)
	}
	if item.Style.FontFamily == "" || item.Style.Color == "" {
		t.Fatalf("missing style fields should take defaults")
	}
	if annotation.Arrows[0].End != (geom.Point{X: 3, Y: 4}) {
		t.Fatalf("unexpected arrow %+v", annotation.Arrows[0])
	}
}

func TestParseFontSizeFallsBack(t *testing.T) {
	if got := parseFontSize("garbage"); got != overlay.DefaultFontSize {
		t.Fatalf("bad sizes should fall back to default, got %v", got)
	}
	if got := parseFontSize("500px"); got != overlay.MaxFontSize {
		t.Fatalf("oversized fonts should clamp, got %v", got)
	}
}

func TestSaveRequestSkipsForeignAndProvisional(t *testing.T) {
	set := overlay.NewSet()
	mine := &overlay.Annotation{ID: "m1", Owned: true, Committed: true, Anchor: geom.Point{X: 1, Y: 2}, Note: "keep"}
	mine.AddTextItem(&overlay.TextItem{ID: "t1", Text: "hello", Style: overlay.DefaultTextStyle()})
	mine.AddArrow(&overlay.ArrowHint{ID: "a1", Start: geom.Point{X: 0, Y: 0}, End: geom.Point{X: 9, Y: 9}})
	foreign := &overlay.Annotation{ID: "f1", Committed: true}
	provisional := &overlay.Annotation{ID: "p1", Owned: true}
	set.Add(mine)
	set.Add(foreign)
	set.Add(provisional)

	request := SaveRequestFromSet("a.pdf", set, map[string]string{"m1": "9f2d"})
	if request.PDF != "a.pdf" || len(request.Annotations) != 1 {
		t.Fatalf("only owned committed annotations should serialize, got %+v", request)
	}
	entry := request.Annotations[0]
	if entry.Hash != "9f2d" || entry.Note != "keep" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.TextItems[0].FontSize != "24px" || entry.TextItems[0].FontKerning != "normal" {
		t.Fatalf("unexpected text item %+v", entry.TextItems[0])
	}
	if entry.Arrows[0].X2 != 9 {
		t.Fatalf("unexpected arrow %+v", entry.Arrows[0])
	}
}

func TestSaveRequestSkipsRestoredProvisionalWork(t *testing.T) {
	set := overlay.NewSet()
	set.Add(&overlay.Annotation{ID: "p1", Owned: true, Anchor: geom.Point{X: 10, Y: 20}})

	restored := overlay.NewSet()
	restored.RestoreSnapshot(set.TakeSnapshot())

	request := SaveRequestFromSet("a.pdf", restored, nil)
	if len(request.Annotations) != 0 {
		t.Fatalf("uncommitted work cached across a switch must never persist, got %+v", request.Annotations)
	}
}

func TestOpenFitsViewAndLoadsAnnotations(t *testing.T) {
	backend := &stubBackend{
		search: map[string]client.Document{"a": twoPageDoc("a.pdf")},
		annotations: map[string][]client.AnnotationPayload{
			"a.pdf": {{ID: "r1", ServerID: 1, X: 10, Y: 20}},
		},
	}
	camera := view.NewCamera()
	camera.ZoomAtFactor(geom.Point{X: 450, Y: 260}, 2)
	set := overlay.NewSet()
	switcher := mustSwitcher(t, backend, camera, set)

	layout, err := switcher.Open(context.Background(), "a")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if switcher.Current() != "a.pdf" || switcher.CurrentSlug() != "a" {
		t.Fatalf("unexpected current %q slug %q", switcher.Current(), switcher.CurrentSlug())
	}
	wantZoom := (view.LogicalWidth * 0.8) / layout.FirstPageWidth
	if math.Abs(camera.Zoom-wantZoom) > 1e-9 {
		t.Fatalf("switch should force fit-to-view, zoom %v want %v", camera.Zoom, wantZoom)
	}
	if camera.HasUserZoomed() {
		t.Fatalf("switch should clear the manual-zoom flag")
	}
	if set.Len() != 1 {
		t.Fatalf("annotations should load from the backend, got %d", set.Len())
	}
}

func TestSwitchRoundTripRestoresSnapshotWithoutRefetch(t *testing.T) {
	backend := &stubBackend{
		search: map[string]client.Document{
			"a": twoPageDoc("a.pdf"),
			"b": twoPageDoc("b.pdf"),
		},
		annotations: map[string][]client.AnnotationPayload{},
	}
	camera := view.NewCamera()
	set := overlay.NewSet()
	switcher := mustSwitcher(t, backend, camera, set)

	if _, err := switcher.Open(context.Background(), "a"); err != nil {
		t.Fatalf("open a: %v", err)
	}
	local := &overlay.Annotation{ID: "draft-1", Owned: true, Committed: true, Note: "unsaved work"}
	set.Add(local)

	if _, err := switcher.Open(context.Background(), "b"); err != nil {
		t.Fatalf("open b: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("document b should start empty, got %d", set.Len())
	}

	fetchesBefore := len(backend.fetches)
	if _, err := switcher.Open(context.Background(), "a"); err != nil {
		t.Fatalf("reopen a: %v", err)
	}
	if len(backend.fetches) != fetchesBefore {
		t.Fatalf("returning to a cached document should not refetch annotations")
	}
	restored, ok := set.Get("draft-1")
	if !ok || restored.Note != "unsaved work" {
		t.Fatalf("snapshot should restore unsaved work, got %+v", restored)
	}
}

func TestFailedAnnotationFetchLeavesViewportUntouched(t *testing.T) {
	backend := &stubBackend{
		search: map[string]client.Document{
			"a": twoPageDoc("a.pdf"),
			"b": twoPageDoc("b.pdf"),
		},
		annotations: map[string][]client.AnnotationPayload{
			"a.pdf": {{ID: "r1", X: 10, Y: 20}},
		},
		annotationErrs: map[string]error{"b.pdf": errors.New("backend down")},
	}
	camera := view.NewCamera()
	set := overlay.NewSet()
	switcher := mustSwitcher(t, backend, camera, set)

	if _, err := switcher.Open(context.Background(), "a"); err != nil {
		t.Fatalf("open a: %v", err)
	}
	camera.ZoomAtFactor(geom.Point{X: 450, Y: 260}, 2)
	zoomBefore, panBefore := camera.Zoom, camera.Pan

	if _, err := switcher.Open(context.Background(), "b"); err == nil {
		t.Fatalf("expected the annotation fetch failure to surface")
	}
	if camera.Zoom != zoomBefore || camera.Pan != panBefore {
		t.Fatalf("failed switch must not move the camera, zoom %v pan %+v", camera.Zoom, camera.Pan)
	}
	if !camera.HasUserZoomed() {
		t.Fatalf("failed switch must not clear the manual-zoom flag")
	}
	if switcher.Current() != "a.pdf" {
		t.Fatalf("failed switch must keep the previous document, current %q", switcher.Current())
	}
	if _, ok := set.Get("r1"); !ok || set.Len() != 1 {
		t.Fatalf("failed switch must keep the previous annotations, len %d", set.Len())
	}
}

func TestSwitchSupersededByNewerIsDiscarded(t *testing.T) {
	backend := &stubBackend{
		search: map[string]client.Document{
			"slow": twoPageDoc("slow.pdf"),
			"fast": twoPageDoc("fast.pdf"),
		},
		annotations: map[string][]client.AnnotationPayload{
			"slow.pdf": {{ID: "stale-1"}},
		},
	}
	camera := view.NewCamera()
	set := overlay.NewSet()
	switcher := mustSwitcher(t, backend, camera, set)

	// The slow switch's annotation fetch completes only after a newer
	// switch has already started.
	backend.beforeApply = func() {
		backend.beforeApply = nil
		if _, err := switcher.Open(context.Background(), "fast"); err != nil {
			t.Fatalf("fast open: %v", err)
		}
	}
	_, err := switcher.Open(context.Background(), "slow")
	if !errors.Is(err, ErrStaleSwitch) {
		t.Fatalf("expected ErrStaleSwitch, got %v", err)
	}
	if switcher.Current() != "fast.pdf" {
		t.Fatalf("newest switch should win, current %q", switcher.Current())
	}
	if _, ok := set.Get("stale-1"); ok {
		t.Fatalf("stale annotations must not leak into the newer document")
	}
}
