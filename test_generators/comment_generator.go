// Package test_generators builds deterministic comment trees for tests that
// need more than a hand-written fixture.
package test_generators

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/jamesprial/graw/pkg/types"
)

// TreeOptions shape a generated tree.
type TreeOptions struct {
	// TopLevel is the number of top-level comments.
	TopLevel int
	// MaxDepth is the deepest reply level; 0 means top level only.
	MaxDepth int
	// MaxReplies bounds the replies of each comment.
	MaxReplies int
	// MoreChance is the probability, 0 to 1, that a reply list ends with a
	// "more" stub.
	MoreChance float64
	// PostID is the article every comment belongs to.
	PostID string
}

// CommentGenerator produces comment trees from a seeded source, so a seed
// always gives the same tree.
type CommentGenerator struct {
	rand   *rand.Rand
	nextID int
	users  []string
}

// NewCommentGenerator creates a generator for seed.
func NewCommentGenerator(seed int64) *CommentGenerator {
	return &CommentGenerator{
		rand:  rand.New(rand.NewSource(seed)),
		users: []string{"gopher", "rustacean", "pythonista", "[deleted]", "lurker", "mod_bot"},
	}
}

// Tree generates a comment listing. Every comment carries a unique base36 id,
// its fullname and the fullname of its parent.
func (g *CommentGenerator) Tree(opts TreeOptions) *types.CommentListing {
	if opts.PostID == "" {
		opts.PostID = "post1"
	}
	return g.listing(opts, 0, types.KindLink+"_"+opts.PostID, opts.TopLevel)
}

func (g *CommentGenerator) listing(opts TreeOptions, depth int, parent string, n int) *types.CommentListing {
	nodes := make([]types.CommentNode, 0, n+1)
	for i := 0; i < n; i++ {
		nodes = append(nodes, g.comment(opts, depth, parent))
	}
	if depth > 0 && opts.MoreChance > 0 && g.rand.Float64() < opts.MoreChance {
		nodes = append(nodes, g.more(depth, parent))
	}
	return &types.CommentListing{
		Kind: types.KindListing,
		Data: types.ListingPage[types.CommentNode]{Children: nodes},
	}
}

func (g *CommentGenerator) comment(opts TreeOptions, depth int, parent string) types.CommentNode {
	id := g.id()
	d := depth
	c := &types.Comment{
		ThingData: types.ThingData{ID: id, Name: types.KindComment + "_" + id},
		Author:    g.users[g.rand.Intn(len(g.users))],
		Body:      fmt.Sprintf("comment %s at depth %d", id, depth),
		Score:     g.rand.Intn(200) - 20,
		Depth:     &d,
		LinkID:    types.KindLink + "_" + opts.PostID,
		ParentID:  parent,
	}

	if depth < opts.MaxDepth && opts.MaxReplies > 0 {
		if n := g.rand.Intn(opts.MaxReplies + 1); n > 0 {
			c.Replies.Listing = g.listing(opts, depth+1, c.Name, n)
		}
	}
	return types.CommentNode{Kind: types.KindComment, Comment: c}
}

func (g *CommentGenerator) more(depth int, parent string) types.CommentNode {
	count := 1 + g.rand.Intn(3)
	children := make([]string, count)
	for i := range children {
		children[i] = g.id()
	}
	return types.CommentNode{Kind: types.KindMore, More: &types.MoreData{
		ThingData: types.ThingData{ID: children[0], Name: types.KindComment + "_" + children[0]},
		Count:     count,
		Depth:     depth,
		ParentID:  parent,
		Children:  children,
	}}
}

func (g *CommentGenerator) id() string {
	g.nextID++
	return strconv.FormatInt(int64(g.nextID)+36*36, 36)
}

// Count returns the number of comments in listing, walking replies.
func Count(listing *types.CommentListing) int {
	if listing == nil {
		return 0
	}
	n := 0
	for _, node := range listing.Data.Children {
		if node.Comment != nil {
			n += 1 + Count(node.Comment.Replies.Listing)
		}
	}
	return n
}
