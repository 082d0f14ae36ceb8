package internal

import "github.com/jamesprial/graw/pkg/types"

// CommentTree provides read-only queries over a normalized comment listing.
// Traversal is depth-first in listing order; "more" stubs are skipped except
// by MoreIDs.
type CommentTree struct {
	Nodes []types.CommentNode
}

// NewCommentTree wraps the top-level nodes of listing. A nil listing gives an
// empty tree.
func NewCommentTree(listing *types.CommentListing) *CommentTree {
	if listing == nil {
		return &CommentTree{}
	}
	return &CommentTree{Nodes: listing.Data.Children}
}

// Flatten returns every comment in the tree, parents before their replies.
func (ct *CommentTree) Flatten() []*types.Comment {
	var result []*types.Comment
	ct.Walk(func(c *types.Comment) {
		result = append(result, c)
	})
	return result
}

// Filter returns the comments for which keep returns true.
func (ct *CommentTree) Filter(keep func(*types.Comment) bool) []*types.Comment {
	var result []*types.Comment
	ct.Walk(func(c *types.Comment) {
		if keep(c) {
			result = append(result, c)
		}
	})
	return result
}

// Find returns the first comment matching condition, or nil.
func (ct *CommentTree) Find(condition func(*types.Comment) bool) *types.Comment {
	return findIn(ct.Nodes, condition)
}

func findIn(nodes []types.CommentNode, condition func(*types.Comment) bool) *types.Comment {
	for _, node := range nodes {
		if node.Comment == nil {
			continue
		}
		if condition(node.Comment) {
			return node.Comment
		}
		if found := findIn(node.Comment.Replies.Children(), condition); found != nil {
			return found
		}
	}
	return nil
}

// GetByID returns the comment with the given id ("abc" or "t1_abc").
func (ct *CommentTree) GetByID(id string) *types.Comment {
	return ct.Find(func(c *types.Comment) bool {
		return c.ID == id || c.Name == id
	})
}

// GetByAuthor returns all comments by author.
func (ct *CommentTree) GetByAuthor(author string) []*types.Comment {
	return ct.Filter(func(c *types.Comment) bool {
		return c.Author == author
	})
}

// GetTopLevel returns only the top-level comments.
func (ct *CommentTree) GetTopLevel() []*types.Comment {
	result := make([]*types.Comment, 0, len(ct.Nodes))
	for _, node := range ct.Nodes {
		if node.Comment != nil {
			result = append(result, node.Comment)
		}
	}
	return result
}

// GetDepth returns the number of reply levels below the top level. A tree
// with only top-level comments has depth 0.
func (ct *CommentTree) GetDepth() int {
	return depthOf(ct.Nodes, 0)
}

func depthOf(nodes []types.CommentNode, current int) int {
	deepest := current
	for _, node := range nodes {
		if node.Comment == nil {
			continue
		}
		if replies := node.Comment.Replies.Children(); len(replies) > 0 {
			if d := depthOf(replies, current+1); d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}

// Count returns the total number of loaded comments.
func (ct *CommentTree) Count() int {
	n := 0
	ct.Walk(func(*types.Comment) { n++ })
	return n
}

// Walk calls fn for each comment in the tree.
func (ct *CommentTree) Walk(fn func(*types.Comment)) {
	walkNodes(ct.Nodes, func(node types.CommentNode) {
		if node.Comment != nil {
			fn(node.Comment)
		}
	})
}

// MoreIDs returns the ids of comments that were left out of the tree and
// announced by "more" stubs, in traversal order.
func (ct *CommentTree) MoreIDs() []string {
	var ids []string
	walkNodes(ct.Nodes, func(node types.CommentNode) {
		if node.More != nil {
			ids = append(ids, node.More.Children...)
		}
	})
	return ids
}

func walkNodes(nodes []types.CommentNode, fn func(types.CommentNode)) {
	for _, node := range nodes {
		fn(node)
		if node.Comment != nil {
			walkNodes(node.Comment.Replies.Children(), fn)
		}
	}
}
