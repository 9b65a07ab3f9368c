package client

// Wire types for the annotation backend. Annotation fields are snake_case;
// the text item style block keeps the camelCase keys the page editor has
// always emitted.

// Page describes one rendered page image of a document.
type Page struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is the response to /random-pdf/ and /search-pdf/.
type Document struct {
	PDF   string `json:"pdf"`
	Pages []Page `json:"pages"`
}

// Suggestions is the response to /search-suggestions/.
type Suggestions struct {
	Suggestions []string `json:"suggestions"`
}

// TextItemPayload is one serialized text overlay item.
type TextItemPayload struct {
	X                   float64 `json:"x"`
	Y                   float64 `json:"y"`
	Text                string  `json:"text"`
	FontFamily          string  `json:"fontFamily"`
	FontSize            string  `json:"fontSize"`
	FontWeight          string  `json:"fontWeight"`
	FontStyle           string  `json:"fontStyle"`
	FontKerning         string  `json:"fontKerning"`
	FontFeatureSettings string  `json:"fontFeatureSettings"`
	Color               string  `json:"color"`
	Opacity             float64 `json:"opacity"`
}

// ArrowPayload is one serialized arrow hint (raw, untrimmed endpoints).
type ArrowPayload struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// AnnotationPayload is one annotation as the backend serves it.
type AnnotationPayload struct {
	ID        string            `json:"id"`
	ServerID  int64             `json:"server_id"`
	PDF       string            `json:"pdf,omitempty"`
	User      string            `json:"user"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Note      string            `json:"note"`
	IsOwner   bool              `json:"is_owner"`
	Upvotes   int               `json:"upvotes"`
	Downvotes int               `json:"downvotes"`
	UserVote  int               `json:"user_vote"`
	Hash      string            `json:"hash"`
	CreatedAt string            `json:"created_at"`
	TextItems []TextItemPayload `json:"textItems"`
	Arrows    []ArrowPayload    `json:"arrows"`
}

// AnnotationList is the response to GET /annotations/.
type AnnotationList struct {
	Annotations []AnnotationPayload `json:"annotations"`
}

// SaveAnnotation is one annotation in a save payload; ownership, votes and
// authorship are server-derived and never sent.
type SaveAnnotation struct {
	ID        string            `json:"id"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Note      string            `json:"note"`
	Hash      string            `json:"hash"`
	TextItems []TextItemPayload `json:"textItems"`
	Arrows    []ArrowPayload    `json:"arrows"`
}

// SaveRequest is the body of POST /annotations/.
type SaveRequest struct {
	PDF         string           `json:"pdf"`
	Annotations []SaveAnnotation `json:"annotations"`
}

// Comment is one discussion comment.
type Comment struct {
	ID           int64  `json:"id"`
	AnnotationID int64  `json:"annotation_id"`
	ParentID     *int64 `json:"parent_id"`
	User         string `json:"user"`
	Body         string `json:"body"`
	CreatedAt    string `json:"created_at"`
	Upvotes      int    `json:"upvotes"`
	Downvotes    int    `json:"downvotes"`
	UserVote     int    `json:"user_vote"`
}

// CommentList is the response to GET /annotation-comments/.
type CommentList struct {
	Comments []Comment `json:"comments"`
}

// VoteResult is the tally returned after any vote mutation.
type VoteResult struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	UserVote  int `json:"user_vote"`
}

// BrowseItem is one document in the browse index.
type BrowseItem struct {
	Filename    string `json:"filename"`
	Slug        string `json:"slug"`
	Upvotes     int    `json:"upvotes"`
	Annotations int    `json:"annotations"`
}

// BrowsePage is the response to GET /browse-list/.
type BrowsePage struct {
	Items   []BrowseItem `json:"items"`
	Page    int          `json:"page"`
	HasMore bool         `json:"has_more"`
}

// NotificationsCount is the response to GET /notifications-count/.
type NotificationsCount struct {
	Count int `json:"count"`
}
