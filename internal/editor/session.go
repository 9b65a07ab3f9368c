// Package editor owns the interaction state machine of the annotation
// editor: the mode lifecycle, the single active annotation, the modal gesture
// slot, and the visibility rules projected onto the scene graph. All mutable
// editor state lives on the Session; there are no package-level variables.
package editor

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/marginalia/internal/document"
	"github.com/MarcoPoloResearchLab/marginalia/internal/geom"
	"github.com/MarcoPoloResearchLab/marginalia/internal/heatmap"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
	"github.com/MarcoPoloResearchLab/marginalia/internal/scene"
	"github.com/MarcoPoloResearchLab/marginalia/internal/view"
)

var (
	errMissingSet        = errors.New("annotation set is required")
	errMissingCamera     = errors.New("camera is required")
	errMissingGraph      = errors.New("scene graph is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

type SessionError struct {
	code string
	err  error
}

func (e *SessionError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *SessionError) Unwrap() error {
	return e.err
}

func (e *SessionError) Code() string {
	return e.code
}

const opSessionNew = "editor.session.new"

func newSessionError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &SessionError{code: code, err: cause}
}

// Mode is the lifecycle state of the session.
type Mode int

const (
	// ModeIdle has no active annotation: anchors and the heatmap show.
	ModeIdle Mode = iota
	// ModePlacement shows a preview marker; the next canvas click creates
	// an annotation.
	ModePlacement
	// ModeEditing has an owned annotation active with the edit surface up.
	ModeEditing
	// ModeViewing has an annotation open read-only.
	ModeViewing
)

// Tab is the active tool tab while an annotation is open.
type Tab int

const (
	// TabText creates and edits text items on canvas clicks.
	TabText Tab = iota
	// TabHint draws arrows with the two-click gesture.
	TabHint
	// TabNotes edits the annotation's free-text note.
	TabNotes
)

const (
	anchorRadius     = 6.0
	anchorDimOpacity = 0.35
	ownAnchorFill    = "#ff2d2d"
	otherAnchorFill  = "#4da3ff"

	placementPreviewNodeID = "placement-preview"
	arrowPreviewNodeID     = "arrow-preview"
)

// Notifier surfaces the rare user-facing warnings, such as the empty-commit
// alert. Hosts plug in their dialog of choice.
type Notifier interface {
	Warn(message string)
}

type noOpNotifier struct{}

func (noOpNotifier) Warn(string) {}

// Config carries the dependencies for a Session.
type Config struct {
	Set           *overlay.Set
	Camera        *view.Camera
	Minimap       *view.Minimap
	Graph         scene.Graph
	Heatmap       *heatmap.Renderer
	IDProvider    overlay.IDProvider
	Measurer      TextMeasurer
	Notifier      Notifier
	Clock         func() time.Time
	Logger        *zap.Logger
	Author        string
	Authenticated bool
}

// Session is the annotation editor state machine.
type Session struct {
	set      *overlay.Set
	camera   *view.Camera
	minimap  *view.Minimap
	graph    scene.Graph
	heat     *heatmap.Renderer
	ids      overlay.IDProvider
	measurer TextMeasurer
	notifier Notifier
	clock    func() time.Time
	logger   *zap.Logger

	author        string
	authenticated bool

	mode     Mode
	activeID string
	tab      Tab
	hoverID  string

	defaultStyle overlay.TextStyle
	selection    textSelection
	gesture      gesture
	arrowDraw    *arrowDraw

	// suppressNextTextCreate swallows the canvas click that lands right
	// after a placement or deactivation, which would otherwise spawn an
	// unwanted text item.
	suppressNextTextCreate bool

	hashes    map[string]string
	docWidth  float64
	docHeight float64
}

// NewSession wires a session over its collaborators. Set, Camera, Graph and
// IDProvider are required; everything else has a working default.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Set == nil {
		return nil, newSessionError(opSessionNew, "missing_set", errMissingSet)
	}
	if cfg.Camera == nil {
		return nil, newSessionError(opSessionNew, "missing_camera", errMissingCamera)
	}
	if cfg.Graph == nil {
		return nil, newSessionError(opSessionNew, "missing_graph", errMissingGraph)
	}
	if cfg.IDProvider == nil {
		return nil, newSessionError(opSessionNew, "missing_id_provider", errMissingIDProvider)
	}
	minimap := cfg.Minimap
	if minimap == nil {
		minimap = view.NewMinimap(cfg.Camera)
	}
	heat := cfg.Heatmap
	if heat == nil {
		heat = heatmap.NewRenderer()
	}
	measurer := cfg.Measurer
	if measurer == nil {
		measurer = NewCharCellMeasurer()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = noOpNotifier{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Session{
		set:           cfg.Set,
		camera:        cfg.Camera,
		minimap:       minimap,
		graph:         cfg.Graph,
		heat:          heat,
		ids:           cfg.IDProvider,
		measurer:      measurer,
		notifier:      notifier,
		clock:         clock,
		logger:        logger,
		author:        cfg.Author,
		authenticated: cfg.Authenticated,
		defaultStyle:  overlay.DefaultTextStyle(),
		hashes:        make(map[string]string),
		docWidth:      view.LogicalWidth,
		docHeight:     view.LogicalHeight,
	}, nil
}

// Mode returns the current lifecycle state.
func (s *Session) Mode() Mode {
	return s.mode
}

// ActiveID returns the id of the open annotation, empty when idle.
func (s *Session) ActiveID() string {
	return s.activeID
}

// Active returns the open annotation.
func (s *Session) Active() (*overlay.Annotation, bool) {
	if s.activeID == "" {
		return nil, false
	}
	return s.set.Get(s.activeID)
}

// Tab returns the active tool tab.
func (s *Session) Tab() Tab {
	return s.tab
}

// SelectTab switches the tool tab and cancels any half-drawn arrow.
func (s *Session) SelectTab(tab Tab) {
	if tab != TabHint {
		s.CancelArrowDraw()
	}
	s.tab = tab
}

// Minimap returns the minimap model mirroring this session's camera.
func (s *Session) Minimap() *view.Minimap {
	return s.minimap
}

// Heatmap returns the density renderer.
func (s *Session) Heatmap() *heatmap.Renderer {
	return s.heat
}

// HeatmapVisible reports whether the heatmap layer should render: only while
// no annotation is open, so it never occludes the item being edited.
func (s *Session) HeatmapVisible() bool {
	return s.activeID == "" && s.heat.Base() != nil
}

// Hashes returns the per-annotation content hashes used by the save payload.
func (s *Session) Hashes() map[string]string {
	return s.hashes
}

// canEdit is the central ownership guard: mutations require an open, owned
// annotation in edit mode.
func (s *Session) canEdit() (*overlay.Annotation, bool) {
	if s.mode != ModeEditing {
		return nil, false
	}
	annotation, ok := s.set.Get(s.activeID)
	if !ok || !annotation.Owned {
		return nil, false
	}
	return annotation, true
}

// EnterPlacement arms annotation placement. Only reachable from idle and only
// for authenticated users.
func (s *Session) EnterPlacement() {
	if s.mode != ModeIdle || !s.authenticated {
		return
	}
	s.mode = ModePlacement
	s.graph.Upsert(scene.Node{
		ID:      placementPreviewNodeID,
		Layer:   scene.LayerHints,
		Visible: false,
		Opacity: 1,
		Shape:   scene.Circle{Radius: anchorRadius, Fill: ownAnchorFill},
	})
}

// ExitPlacement disarms placement without creating anything.
func (s *Session) ExitPlacement() {
	if s.mode != ModePlacement {
		return
	}
	s.graph.Remove(placementPreviewNodeID)
	s.mode = ModeIdle
}

func (s *Session) placementMove(doc geom.Point) {
	s.graph.Upsert(scene.Node{
		ID:      placementPreviewNodeID,
		Layer:   scene.LayerHints,
		Visible: true,
		Opacity: 1,
		Shape:   scene.Circle{Center: doc, Radius: anchorRadius, Fill: ownAnchorFill},
	})
}

func (s *Session) placementClick(doc geom.Point) {
	s.graph.Remove(placementPreviewNodeID)
	annotation := &overlay.Annotation{
		ID:        s.ids.NewID(),
		Anchor:    doc,
		Author:    s.author,
		Owned:     true,
		CreatedAt: s.clock(),
	}
	s.set.Add(annotation)
	s.rebuildHeatmap()
	s.activeID = annotation.ID
	s.mode = ModeEditing
	s.tab = TabText
	s.suppressNextTextCreate = true
	s.applyVisibility()
	s.logger.Info("annotation placed",
		zap.String("annotation_id", annotation.ID),
		zap.Float64("x", doc.X),
		zap.Float64("y", doc.Y),
	)
}

// Activate opens an annotation. A not-owned annotation always opens read
// only. If another annotation is being edited it is committed first, so at
// most one annotation is ever active.
func (s *Session) Activate(id string, viewOnly bool) {
	target, ok := s.set.Get(id)
	if !ok {
		return
	}
	if s.mode == ModeEditing && s.activeID != id {
		s.Commit()
	}
	if s.mode == ModePlacement {
		s.ExitPlacement()
	}
	if !target.Owned {
		viewOnly = true
	}
	s.hoverID = ""
	s.activeID = id
	if viewOnly {
		s.mode = ModeViewing
	} else {
		s.mode = ModeEditing
	}
	s.tab = TabText
	s.suppressNextTextCreate = true
	s.applyVisibility()
}

// Clear closes the open annotation: from viewing it is immediate; from
// editing it commits first.
func (s *Session) Clear() {
	switch s.mode {
	case ModeEditing:
		s.Commit()
	case ModeViewing:
		s.deactivate()
	case ModePlacement:
		s.ExitPlacement()
	}
}

// Commit finalizes the open annotation: blank text items are pruned, an
// empty annotation warns and is deleted, a nonempty one gains its anchor and
// content hash. Either way the session returns to idle.
func (s *Session) Commit() {
	if s.mode == ModeViewing {
		s.deactivate()
		return
	}
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	s.CancelArrowDraw()
	s.pruneBlankTextItems(annotation)

	if annotation.IsEmpty() {
		s.notifier.Warn("This annotation is empty and will be removed.")
		s.removeAnnotation(annotation.ID)
		s.deactivate()
		return
	}
	annotation.Committed = true
	if s.hashes[annotation.ID] == "" {
		s.hashes[annotation.ID] = s.ids.NewID()
	}
	s.syncAnnotation(annotation)
	s.rebuildHeatmap()
	s.deactivate()
}

// Discard closes the open annotation and throws it away: a provisional or
// edited annotation is removed outright; from viewing it is equivalent to
// Clear since viewing makes no edits.
func (s *Session) Discard() {
	switch s.mode {
	case ModeEditing:
		annotation, ok := s.canEdit()
		if !ok {
			return
		}
		s.CancelArrowDraw()
		s.removeAnnotation(annotation.ID)
		s.deactivate()
	case ModeViewing:
		s.deactivate()
	}
}

// Delete removes a committed annotation the user owns.
func (s *Session) Delete(id string) {
	annotation, ok := s.set.Get(id)
	if !ok || !annotation.Owned {
		return
	}
	if s.activeID == id {
		s.deactivate()
	}
	s.removeAnnotation(id)
}

func (s *Session) deactivate() {
	s.activeID = ""
	s.mode = ModeIdle
	s.selection = textSelection{}
	s.gesture = gesture{}
	s.suppressNextTextCreate = true
	s.applyVisibility()
}

func (s *Session) removeAnnotation(id string) {
	s.graph.RemoveOwned(id)
	s.graph.Remove(anchorNodeID(id))
	s.set.Remove(id)
	delete(s.hashes, id)
	s.rebuildHeatmap()
}

// SetNote replaces the open annotation's note text.
func (s *Session) SetNote(text string) {
	annotation, ok := s.canEdit()
	if !ok {
		return
	}
	annotation.Note = text
}

// HoverAnnotation previews an annotation's children while idle, the way the
// note list reveals a note on hover. Any other state ignores it.
func (s *Session) HoverAnnotation(id string) {
	if s.mode != ModeIdle {
		return
	}
	if _, ok := s.set.Get(id); !ok {
		return
	}
	s.hoverID = id
	s.applyVisibility()
}

// HoverClear ends the hover preview.
func (s *Session) HoverClear() {
	if s.hoverID == "" {
		return
	}
	s.hoverID = ""
	if s.mode == ModeIdle {
		s.applyVisibility()
	}
}

// ApplyDocument projects a freshly switched document into the scene graph:
// page images, committed annotation overlays, minimap offsets and a rebuilt
// heatmap. The session lands in idle.
func (s *Session) ApplyDocument(layout document.Layout) {
	s.graph.Clear()
	s.activeID = ""
	s.hoverID = ""
	s.mode = ModeIdle
	s.selection = textSelection{}
	s.gesture = gesture{}
	s.arrowDraw = nil

	for i, page := range layout.Pages {
		s.graph.Upsert(scene.Node{
			ID:      fmt.Sprintf("page/%d", i+1),
			Layer:   scene.LayerPages,
			Visible: true,
			Opacity: 1,
			Shape: scene.Image{
				Rect: geom.Rect{X: 0, Y: page.OffsetY, Width: page.Width, Height: page.Height},
				URL:  page.URL,
			},
		})
	}
	pages := make([]view.PageMetrics, 0, len(layout.Pages))
	for _, page := range layout.Pages {
		pages = append(pages, view.PageMetrics{OffsetY: page.OffsetY, Height: page.Height})
	}
	s.minimap.SetPages(pages)

	s.docWidth = layout.MaxWidth
	s.docHeight = layout.TotalHeight
	for _, annotation := range s.set.All() {
		s.syncAnnotation(annotation)
	}
	s.rebuildHeatmap()
	s.applyVisibility()
}

func (s *Session) rebuildHeatmap() {
	s.heat.Rebuild(s.set.AnchorPoints(), s.docWidth, s.docHeight)
}

// applyVisibility enforces the visibility rules: exactly one annotation's
// children show at a time; all other committed annotations show only their
// anchor, dimmed while any annotation is open.
func (s *Session) applyVisibility() {
	shown := s.activeID
	if shown == "" {
		shown = s.hoverID
	}
	for _, annotation := range s.set.All() {
		childrenVisible := annotation.ID == shown
		for _, item := range annotation.TextItems {
			s.graph.SetVisible(textBoxNodeID(item.ID), childrenVisible)
			s.graph.SetVisible(textLabelNodeID(item.ID), childrenVisible)
		}
		for _, arrow := range annotation.Arrows {
			s.graph.SetVisible(arrowNodeID(arrow.ID), childrenVisible)
		}

		anchorID := anchorNodeID(annotation.ID)
		anchorVisible := annotation.Committed && annotation.ID != s.activeID
		s.graph.SetVisible(anchorID, anchorVisible)
		if s.activeID != "" {
			s.graph.SetOpacity(anchorID, anchorDimOpacity)
		} else {
			s.graph.SetOpacity(anchorID, 1)
		}
	}
}

// syncAnnotation upserts every scene node backing an annotation. Visibility
// is left to applyVisibility.
func (s *Session) syncAnnotation(annotation *overlay.Annotation) {
	fill := otherAnchorFill
	if annotation.Owned {
		fill = ownAnchorFill
	}
	node, existed := s.graph.Get(anchorNodeID(annotation.ID))
	visible := existed && node.Visible
	s.graph.Upsert(scene.Node{
		ID:      anchorNodeID(annotation.ID),
		OwnerID: annotation.ID,
		Layer:   scene.LayerHints,
		Visible: visible,
		Opacity: 1,
		Shape:   scene.Circle{Center: annotation.Anchor, Radius: anchorRadius, Fill: fill},
	})
	for _, item := range annotation.TextItems {
		s.syncTextItem(annotation, item)
	}
	for _, arrow := range annotation.Arrows {
		s.syncArrow(annotation, arrow)
	}
	s.applyVisibility()
}

func anchorNodeID(annotationID string) string {
	return "anchor/" + annotationID
}

func textBoxNodeID(itemID string) string {
	return "textbox/" + itemID
}

func textLabelNodeID(itemID string) string {
	return "textlabel/" + itemID
}

func arrowNodeID(arrowID string) string {
	return "arrow/" + arrowID
}
