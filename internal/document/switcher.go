package document

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/marginalia/internal/client"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
	"github.com/MarcoPoloResearchLab/marginalia/internal/view"
)

var (
	errMissingBackend = errors.New("backend client is required")
	errMissingCamera  = errors.New("camera is required")
	errMissingSet     = errors.New("annotation set is required")
	errStaleSwitch    = errors.New("superseded by a newer document switch")
	noOpLogger        = zap.NewNop()
)

// ErrStaleSwitch reports that a switch finished after a newer one started;
// its result has been discarded and the set is untouched.
var ErrStaleSwitch = errStaleSwitch

type SwitchError struct {
	code string
	err  error
}

func (e *SwitchError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *SwitchError) Unwrap() error {
	return e.err
}

func (e *SwitchError) Code() string {
	return e.code
}

const (
	opSwitcherNew = "document.switcher.new"
	opOpenRandom  = "document.open_random"
	opOpenSearch  = "document.open_search"
	opApplySwitch = "document.apply_switch"
)

func newSwitchError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &SwitchError{code: code, err: cause}
}

// Backend is the slice of the HTTP client the switcher needs.
type Backend interface {
	RandomDocument(ctx context.Context) (client.Document, error)
	SearchDocument(ctx context.Context, query string) (client.Document, error)
	Annotations(ctx context.Context, pdf string) ([]client.AnnotationPayload, error)
}

// SwitcherConfig carries the dependencies for a Switcher.
type SwitcherConfig struct {
	Backend Backend
	Camera  *view.Camera
	Set     *overlay.Set
	Logger  *zap.Logger
}

// Switcher swaps the loaded document. Each switch serializes the outgoing
// overlay into a per-document cache, rebuilds the page stack and viewport,
// and restores or fetches the incoming overlay. Switches are generation
// stamped: when a newer switch starts before an older one finishes, the
// older result is discarded instead of clobbering the newer document.
type Switcher struct {
	backend Backend
	camera  *view.Camera
	set     *overlay.Set
	logger  *zap.Logger

	cache      map[string]overlay.Snapshot
	generation uint64
	current    string
	layout     Layout
}

func NewSwitcher(cfg SwitcherConfig) (*Switcher, error) {
	if cfg.Backend == nil {
		return nil, newSwitchError(opSwitcherNew, "missing_backend", errMissingBackend)
	}
	if cfg.Camera == nil {
		return nil, newSwitchError(opSwitcherNew, "missing_camera", errMissingCamera)
	}
	if cfg.Set == nil {
		return nil, newSwitchError(opSwitcherNew, "missing_set", errMissingSet)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Switcher{
		backend: cfg.Backend,
		camera:  cfg.Camera,
		set:     cfg.Set,
		logger:  logger,
		cache:   make(map[string]overlay.Snapshot),
	}, nil
}

// Current returns the filename of the loaded document, empty before the
// first switch.
func (s *Switcher) Current() string {
	return s.current
}

// CurrentSlug returns the history identifier of the loaded document.
func (s *Switcher) CurrentSlug() string {
	return Slug(s.current)
}

// Layout returns the page stack of the loaded document.
func (s *Switcher) Layout() Layout {
	return s.layout
}

// OpenRandom switches to a random document.
func (s *Switcher) OpenRandom(ctx context.Context) (Layout, error) {
	stamp := s.begin()
	doc, err := s.backend.RandomDocument(ctx)
	if err != nil {
		s.logError(opOpenRandom, "fetch", err)
		return Layout{}, newSwitchError(opOpenRandom, "fetch", err)
	}
	return s.apply(ctx, stamp, doc)
}

// Open switches to the document matching a filename or slug.
func (s *Switcher) Open(ctx context.Context, query string) (Layout, error) {
	stamp := s.begin()
	doc, err := s.backend.SearchDocument(ctx, query)
	if err != nil {
		s.logError(opOpenSearch, "fetch", err, zap.String("query", query))
		return Layout{}, newSwitchError(opOpenSearch, "fetch", err)
	}
	return s.apply(ctx, stamp, doc)
}

// begin snapshots the outgoing document and stamps the switch.
func (s *Switcher) begin() uint64 {
	if s.current != "" {
		s.cache[s.current] = s.set.TakeSnapshot()
	}
	s.generation++
	return s.generation
}

// apply resolves the incoming overlay before touching any shared state: a
// failed or superseded switch leaves the camera, set and current document
// exactly as they were.
func (s *Switcher) apply(ctx context.Context, stamp uint64, doc client.Document) (Layout, error) {
	if stamp != s.generation {
		return Layout{}, newSwitchError(opApplySwitch, "stale", errStaleSwitch)
	}

	snapshot, cached := s.cache[doc.PDF]
	var payloads []client.AnnotationPayload
	if !cached {
		var err error
		payloads, err = s.backend.Annotations(ctx, doc.PDF)
		if err != nil {
			s.logError(opApplySwitch, "fetch_annotations", err, zap.String("pdf", doc.PDF))
			return Layout{}, newSwitchError(opApplySwitch, "fetch_annotations", err)
		}
		if stamp != s.generation {
			return Layout{}, newSwitchError(opApplySwitch, "stale", errStaleSwitch)
		}
	}

	layout := NewLayout(doc.Pages)
	s.camera.SetContent(layout.MaxWidth, layout.TotalHeight, layout.FirstPageWidth)
	s.camera.ResetZoomFlag()
	s.camera.FitToView(true)

	if cached {
		s.set.RestoreSnapshot(snapshot)
	} else {
		s.set.Clear()
		for _, payload := range payloads {
			s.set.Add(AnnotationFromPayload(payload))
		}
	}

	s.current = doc.PDF
	s.layout = layout
	s.logger.Info("document switched",
		zap.String("pdf", doc.PDF),
		zap.Int("pages", len(layout.Pages)),
		zap.Int("annotations", s.set.Len()),
	)
	return layout, nil
}

func (s *Switcher) logError(operation, reason string, err error, fields ...zap.Field) {
	logFields := append([]zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}, fields...)
	s.logger.Error("document operation failed", logFields...)
}
