package graw

import (
	"github.com/jamesprial/graw/internal"
	"github.com/jamesprial/graw/pkg/types"
)

// CommentTree provides utility methods for working with comment trees.
type CommentTree interface {
	Flatten() []*types.Comment
	Filter(func(*types.Comment) bool) []*types.Comment
	Find(func(*types.Comment) bool) *types.Comment
	GetByID(string) *types.Comment
	GetByAuthor(string) []*types.Comment
	GetTopLevel() []*types.Comment
	GetDepth() int
	Count() int
	Walk(func(*types.Comment))
	MoreIDs() []string
}

// NewCommentTree wraps a listing returned by LatestComments, ArticleComments
// or User.Comments.
func NewCommentTree(listing *types.CommentListing) CommentTree {
	return internal.NewCommentTree(listing)
}

// CommentIteratorOptions configures NewCommentIterator.
type CommentIteratorOptions = internal.CommentIteratorOptions

// CommentIterator yields the comments of a tree one at a time.
type CommentIterator = internal.CommentIterator

// NewCommentIterator iterates over listing. Nil opts walks depth first.
func NewCommentIterator(listing *types.CommentListing, opts *CommentIteratorOptions) *CommentIterator {
	var nodes []types.CommentNode
	if listing != nil {
		nodes = listing.Data.Children
	}
	return internal.NewCommentIterator(nodes, opts)
}
