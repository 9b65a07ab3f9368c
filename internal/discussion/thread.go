// Package discussion maintains the comment threads and vote state attached to
// annotations. Tallies are authoritative on the backend; this package applies
// the returned counts and never adjusts them locally.
package discussion

import (
	"sort"

	"github.com/MarcoPoloResearchLab/marginalia/internal/client"
)

// MaxIndentDepth caps how far replies indent; deeper replies still nest
// logically but render at this depth.
const MaxIndentDepth = 6

// ThreadNode is one comment with its direct replies.
type ThreadNode struct {
	Comment client.Comment
	Depth   int
	Replies []*ThreadNode
}

// IndentDepth is the depth used for rendering, capped at MaxIndentDepth.
func (n *ThreadNode) IndentDepth() int {
	if n.Depth > MaxIndentDepth {
		return MaxIndentDepth
	}
	return n.Depth
}

// BuildThread arranges a flat comment list into reply trees. Roots and
// sibling groups are ordered oldest first so conversations read top down.
// Comments whose parent is missing are promoted to roots.
func BuildThread(comments []client.Comment) []*ThreadNode {
	byParent := make(map[int64][]client.Comment)
	known := make(map[int64]bool, len(comments))
	for _, comment := range comments {
		known[comment.ID] = true
	}

	const rootKey = int64(0)
	for _, comment := range comments {
		parent := rootKey
		if comment.ParentID != nil && known[*comment.ParentID] {
			parent = *comment.ParentID
		}
		byParent[parent] = append(byParent[parent], comment)
	}

	var build func(parent int64, depth int) []*ThreadNode
	build = func(parent int64, depth int) []*ThreadNode {
		group := byParent[parent]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ID < group[j].ID
		})
		nodes := make([]*ThreadNode, 0, len(group))
		for _, comment := range group {
			node := &ThreadNode{Comment: comment, Depth: depth}
			node.Replies = build(comment.ID, depth+1)
			nodes = append(nodes, node)
		}
		return nodes
	}
	return build(rootKey, 0)
}

// collectSubtree returns the ids of a comment and every descendant reply.
func collectSubtree(comments []client.Comment, commentID int64) map[int64]bool {
	children := make(map[int64][]int64)
	for _, comment := range comments {
		if comment.ParentID != nil {
			children[*comment.ParentID] = append(children[*comment.ParentID], comment.ID)
		}
	}
	doomed := map[int64]bool{commentID: true}
	queue := []int64{commentID}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, child := range children[next] {
			if !doomed[child] {
				doomed[child] = true
				queue = append(queue, child)
			}
		}
	}
	return doomed
}
