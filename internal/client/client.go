// Package client talks to the annotation backend over HTTP. The backend is
// authoritative for persistence, identity and vote tallies; this package only
// moves payloads and never interprets editor state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var (
	errMissingBaseURL = errors.New("backend base url is required")
	errNotFound       = errors.New("resource not found")
	errForbidden      = errors.New("operation not permitted")
	noOpLogger        = zap.NewNop()
)

// ErrNotFound reports a 404 from the backend, such as an unknown document.
var ErrNotFound = errNotFound

// ErrForbidden reports a 403, such as voting on one's own comment.
var ErrForbidden = errForbidden

type ClientError struct {
	code string
	err  error
}

func (e *ClientError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ClientError) Unwrap() error {
	return e.err
}

func (e *ClientError) Code() string {
	return e.code
}

const (
	opClientNew          = "client.new"
	opRandomDocument     = "client.random_document"
	opSearchDocument     = "client.search_document"
	opSearchSuggestions  = "client.search_suggestions"
	opListAnnotations    = "client.list_annotations"
	opSaveAnnotations    = "client.save_annotations"
	opListComments       = "client.list_comments"
	opPostComment        = "client.post_comment"
	opVoteAnnotation     = "client.vote_annotation"
	opVoteComment        = "client.vote_comment"
	opDeleteComment      = "client.delete_comment"
	opBrowseList         = "client.browse_list"
	opNotificationsCount = "client.notifications_count"
)

func newClientError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ClientError{code: code, err: cause}
}

// Config carries the dependencies for a Client. BaseURL is required; the
// other fields default to sensible values.
type Config struct {
	BaseURL       string
	HTTPClient    *http.Client
	SessionCookie string
	Logger        *zap.Logger
}

// Client is a thin wrapper over the backend's JSON endpoints.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	sessionCookie string
	logger        *zap.Logger
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, newClientError(opClientNew, "missing_base_url", errMissingBaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		httpClient:    httpClient,
		sessionCookie: cfg.SessionCookie,
		logger:        logger,
	}, nil
}

// RandomDocument fetches a random document with its page manifest.
func (c *Client) RandomDocument(ctx context.Context) (Document, error) {
	var doc Document
	if err := c.get(ctx, opRandomDocument, "/random-pdf/", nil, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// SearchDocument resolves a filename or slug to a document manifest.
func (c *Client) SearchDocument(ctx context.Context, query string) (Document, error) {
	var doc Document
	values := url.Values{"q": {query}}
	if err := c.get(ctx, opSearchDocument, "/search-pdf/", values, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// SearchSuggestions returns filename completions for a partial query.
func (c *Client) SearchSuggestions(ctx context.Context, query string) ([]string, error) {
	var payload Suggestions
	values := url.Values{"q": {query}}
	if err := c.get(ctx, opSearchSuggestions, "/search-suggestions/", values, &payload); err != nil {
		return nil, err
	}
	return payload.Suggestions, nil
}

// Annotations lists every annotation stored for a document.
func (c *Client) Annotations(ctx context.Context, pdf string) ([]AnnotationPayload, error) {
	var payload AnnotationList
	values := url.Values{"pdf": {pdf}}
	if err := c.get(ctx, opListAnnotations, "/annotations/", values, &payload); err != nil {
		return nil, err
	}
	return payload.Annotations, nil
}

// SaveAnnotations replaces the caller's annotations on a document and returns
// the authoritative server copies.
func (c *Client) SaveAnnotations(ctx context.Context, request SaveRequest) ([]AnnotationPayload, error) {
	var payload AnnotationList
	if err := c.post(ctx, opSaveAnnotations, "/annotations/", request, &payload); err != nil {
		return nil, err
	}
	return payload.Annotations, nil
}

// Comments lists the discussion thread of one annotation.
func (c *Client) Comments(ctx context.Context, annotationID int64) ([]Comment, error) {
	var payload CommentList
	values := url.Values{"annotation_id": {strconv.FormatInt(annotationID, 10)}}
	if err := c.get(ctx, opListComments, "/annotation-comments/", values, &payload); err != nil {
		return nil, err
	}
	return payload.Comments, nil
}

// PostComment creates a comment, optionally as a reply, and returns the
// stored copy.
func (c *Client) PostComment(ctx context.Context, annotationID int64, parentID *int64, body string) (Comment, error) {
	request := struct {
		AnnotationID int64  `json:"annotation_id"`
		ParentID     *int64 `json:"parent_id,omitempty"`
		Body         string `json:"body"`
	}{AnnotationID: annotationID, ParentID: parentID, Body: body}

	var payload struct {
		Comment Comment `json:"comment"`
	}
	if err := c.post(ctx, opPostComment, "/annotation-comments/", request, &payload); err != nil {
		return Comment{}, err
	}
	return payload.Comment, nil
}

// VoteAnnotation toggles the caller's vote on an annotation. Value is 1 for
// an upvote and -1 for a downvote; repeating the same value clears it.
func (c *Client) VoteAnnotation(ctx context.Context, annotationID int64, value int) (VoteResult, error) {
	request := struct {
		AnnotationID int64 `json:"annotation_id"`
		Value        int   `json:"value"`
	}{AnnotationID: annotationID, Value: value}

	var result VoteResult
	if err := c.post(ctx, opVoteAnnotation, "/annotation-votes/", request, &result); err != nil {
		return VoteResult{}, err
	}
	return result, nil
}

// VoteComment toggles the caller's vote on a comment.
func (c *Client) VoteComment(ctx context.Context, commentID int64, value int) (VoteResult, error) {
	request := struct {
		CommentID int64 `json:"comment_id"`
		Value     int   `json:"value"`
	}{CommentID: commentID, Value: value}

	var result VoteResult
	if err := c.post(ctx, opVoteComment, "/comment-votes/", request, &result); err != nil {
		return VoteResult{}, err
	}
	return result, nil
}

// DeleteComment removes the caller's own comment.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	request := struct {
		CommentID int64 `json:"comment_id"`
	}{CommentID: commentID}

	var payload struct {
		OK bool `json:"ok"`
	}
	return c.post(ctx, opDeleteComment, "/comment-delete/", request, &payload)
}

// BrowseList pages through the document index. Sort accepts name, promising,
// least, ann_most and ann_least; q filters by filename.
func (c *Client) BrowseList(ctx context.Context, page int, sort, query string) (BrowsePage, error) {
	values := url.Values{"page": {strconv.Itoa(page)}}
	if sort != "" {
		values.Set("sort", sort)
	}
	if query != "" {
		values.Set("q", query)
	}
	var payload BrowsePage
	if err := c.get(ctx, opBrowseList, "/browse-list/", values, &payload); err != nil {
		return BrowsePage{}, err
	}
	return payload, nil
}

// NotificationsCount returns the caller's unread notification count.
func (c *Client) NotificationsCount(ctx context.Context) (int, error) {
	var payload NotificationsCount
	if err := c.get(ctx, opNotificationsCount, "/notifications-count/", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

func (c *Client) get(ctx context.Context, operation, path string, values url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logError(operation, "build_request", err)
		return newClientError(operation, "build_request", err)
	}
	return c.do(operation, request, out)
}

func (c *Client) post(ctx context.Context, operation, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		c.logError(operation, "encode_request", err)
		return newClientError(operation, "encode_request", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		c.logError(operation, "build_request", err)
		return newClientError(operation, "build_request", err)
	}
	request.Header.Set("Content-Type", "application/json")
	return c.do(operation, request, out)
}

func (c *Client) do(operation string, request *http.Request, out any) error {
	if c.sessionCookie != "" {
		request.AddCookie(&http.Cookie{Name: "sessionid", Value: c.sessionCookie})
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logError(operation, "transport", err)
		return newClientError(operation, "transport", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return newClientError(operation, "not_found", errNotFound)
	case response.StatusCode == http.StatusForbidden:
		return newClientError(operation, "forbidden", errForbidden)
	case response.StatusCode >= 400:
		statusErr := fmt.Errorf("unexpected status %d", response.StatusCode)
		c.logError(operation, "status", statusErr)
		return newClientError(operation, "status", statusErr)
	}

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		c.logError(operation, "read_response", err)
		return newClientError(operation, "read_response", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.logError(operation, "decode_response", err)
		return newClientError(operation, "decode_response", err)
	}
	return nil
}

func (c *Client) logError(operation, reason string, err error, fields ...zap.Field) {
	logFields := append([]zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	}, fields...)
	c.logger.Error("client operation failed", logFields...)
}
