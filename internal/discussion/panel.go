package discussion

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/marginalia/internal/client"
	"github.com/MarcoPoloResearchLab/marginalia/internal/overlay"
)

var (
	errMissingBackend = errors.New("backend client is required")
	errNotSynced      = errors.New("annotation has no server copy yet")
	errVoteGated      = errors.New("voting is not permitted here")
	noOpLogger        = zap.NewNop()
)

// ErrNotSynced reports an attempt to discuss or vote on an annotation that
// has not been saved to the backend.
var ErrNotSynced = errNotSynced

// ErrVoteGated reports a vote the caller is not allowed to cast, such as on
// their own content or while signed out.
var ErrVoteGated = errVoteGated

type PanelError struct {
	code string
	err  error
}

func (e *PanelError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *PanelError) Unwrap() error {
	return e.err
}

func (e *PanelError) Code() string {
	return e.code
}

const (
	opPanelNew       = "discussion.panel.new"
	opOpenThread     = "discussion.open_thread"
	opPostComment    = "discussion.post_comment"
	opDeleteComment  = "discussion.delete_comment"
	opVoteComment    = "discussion.vote_comment"
	opVoteAnnotation = "discussion.vote_annotation"
)

func newPanelError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &PanelError{code: code, err: cause}
}

// Backend is the slice of the HTTP client the panel needs.
type Backend interface {
	Comments(ctx context.Context, annotationID int64) ([]client.Comment, error)
	PostComment(ctx context.Context, annotationID int64, parentID *int64, body string) (client.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	VoteComment(ctx context.Context, commentID int64, value int) (client.VoteResult, error)
	VoteAnnotation(ctx context.Context, annotationID int64, value int) (client.VoteResult, error)
}

// PanelConfig carries the dependencies for a Panel.
type PanelConfig struct {
	Backend       Backend
	Viewer        string
	Authenticated bool
	Logger        *zap.Logger
}

// Panel caches each annotation's comment thread and mediates votes.
type Panel struct {
	backend       Backend
	viewer        string
	authenticated bool
	logger        *zap.Logger
	cache         map[int64][]client.Comment
}

func NewPanel(cfg PanelConfig) (*Panel, error) {
	if cfg.Backend == nil {
		return nil, newPanelError(opPanelNew, "missing_backend", errMissingBackend)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Panel{
		backend:       cfg.Backend,
		viewer:        cfg.Viewer,
		authenticated: cfg.Authenticated,
		logger:        logger,
		cache:         make(map[int64][]client.Comment),
	}, nil
}

// Open fetches and caches the thread for an annotation and returns it as
// reply trees.
func (p *Panel) Open(ctx context.Context, annotation *overlay.Annotation) ([]*ThreadNode, error) {
	if annotation == nil || annotation.ServerID == 0 {
		return nil, newPanelError(opOpenThread, "not_synced", errNotSynced)
	}
	comments, err := p.backend.Comments(ctx, annotation.ServerID)
	if err != nil {
		p.logError(opOpenThread, "fetch", err, zap.Int64("annotation_id", annotation.ServerID))
		return nil, newPanelError(opOpenThread, "fetch", err)
	}
	p.cache[annotation.ServerID] = comments
	return BuildThread(comments), nil
}

// Thread returns the cached reply trees for an annotation without a fetch.
func (p *Panel) Thread(annotationID int64) []*ThreadNode {
	return BuildThread(p.cache[annotationID])
}

// Post submits a comment or reply and folds the stored copy into the cache.
func (p *Panel) Post(ctx context.Context, annotationID int64, parentID *int64, body string) (client.Comment, error) {
	if !p.authenticated {
		return client.Comment{}, newPanelError(opPostComment, "not_authenticated", errVoteGated)
	}
	comment, err := p.backend.PostComment(ctx, annotationID, parentID, body)
	if err != nil {
		p.logError(opPostComment, "post", err, zap.Int64("annotation_id", annotationID))
		return client.Comment{}, newPanelError(opPostComment, "post", err)
	}
	p.cache[annotationID] = append(p.cache[annotationID], comment)
	return comment, nil
}

// Delete removes the viewer's comment on the backend, then drops it and its
// entire reply subtree from the cache so the panel never shows orphans.
func (p *Panel) Delete(ctx context.Context, annotationID, commentID int64) error {
	if err := p.backend.DeleteComment(ctx, commentID); err != nil {
		p.logError(opDeleteComment, "delete", err, zap.Int64("comment_id", commentID))
		return newPanelError(opDeleteComment, "delete", err)
	}
	comments := p.cache[annotationID]
	doomed := collectSubtree(comments, commentID)
	kept := comments[:0]
	for _, comment := range comments {
		if !doomed[comment.ID] {
			kept = append(kept, comment)
		}
	}
	p.cache[annotationID] = kept
	return nil
}

// CanVoteComment reports whether the viewer may vote on a comment. Votes on
// one's own comments are gated locally to mirror the backend's refusal.
func (p *Panel) CanVoteComment(comment client.Comment) bool {
	return p.authenticated && comment.User != p.viewer
}

// VoteComment casts or toggles a vote and applies the authoritative tally to
// the cached comment.
func (p *Panel) VoteComment(ctx context.Context, annotationID, commentID int64, value int) (client.VoteResult, error) {
	for _, comment := range p.cache[annotationID] {
		if comment.ID == commentID && !p.CanVoteComment(comment) {
			return client.VoteResult{}, newPanelError(opVoteComment, "gated", errVoteGated)
		}
	}
	result, err := p.backend.VoteComment(ctx, commentID, value)
	if err != nil {
		p.logError(opVoteComment, "vote", err, zap.Int64("comment_id", commentID))
		return client.VoteResult{}, newPanelError(opVoteComment, "vote", err)
	}
	comments := p.cache[annotationID]
	for i := range comments {
		if comments[i].ID == commentID {
			comments[i].Upvotes = result.Upvotes
			comments[i].Downvotes = result.Downvotes
			comments[i].UserVote = result.UserVote
		}
	}
	return result, nil
}

// CanVoteAnnotation reports whether the viewer may vote on an annotation:
// it must be saved, belong to someone else, and the viewer must be signed in.
func (p *Panel) CanVoteAnnotation(annotation *overlay.Annotation) bool {
	if annotation == nil {
		return false
	}
	return p.authenticated && annotation.ServerID != 0 && !annotation.Owned
}

// VoteAnnotation casts or toggles a vote and applies the authoritative tally
// to the annotation.
func (p *Panel) VoteAnnotation(ctx context.Context, annotation *overlay.Annotation, value int) error {
	if !p.CanVoteAnnotation(annotation) {
		return newPanelError(opVoteAnnotation, "gated", errVoteGated)
	}
	result, err := p.backend.VoteAnnotation(ctx, annotation.ServerID, value)
	if err != nil {
		p.logError(opVoteAnnotation, "vote", err, zap.Int64("annotation_id", annotation.ServerID))
		return newPanelError(opVoteAnnotation, "vote", err)
	}
	annotation.Upvotes = result.Upvotes
	annotation.Downvotes = result.Downvotes
	annotation.UserVote = overlay.Vote(result.UserVote)
	return nil
}

func (p *Panel) logError(operation, reason string, err error, fields ...zap.Field) {
	logFields := append([]zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}, fields...)
	p.logger.Error("discussion operation failed", logFields...)
}
