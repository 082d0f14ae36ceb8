// Package validation checks identifiers and the structure of normalized
// comment trees.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jamesprial/graw/pkg/types"
)

var (
	// base36Regex matches thing ids such as "abc123".
	base36Regex = regexp.MustCompile(`^[0-9a-z]+$`)

	// fullnameRegex matches a kind prefix plus base36 id, e.g. "t3_abc123".
	fullnameRegex = regexp.MustCompile(`^t[1-6]_[0-9a-z]+$`)
)

// IsValidBase36 reports whether s is a non-empty base36 id.
func IsValidBase36(s string) bool {
	return base36Regex.MatchString(s)
}

// IsValidFullname reports whether s is a fullname like "t3_abc123".
func IsValidFullname(s string) bool {
	return fullnameRegex.MatchString(s)
}

// TreeError describes one structural problem found by CheckCommentListing.
type TreeError struct {
	// Path locates the node: indexes from the top level down, e.g. "0.2.1".
	Path    string
	Message string
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("comment tree node %s: %s", e.Path, e.Message)
}

// CheckCommentListing verifies that listing is a well formed comment tree:
//
//   - every node holds exactly one of a comment or a "more" stub, matching its kind
//   - comment ids are base36 and unique across the tree
//   - a reply's parent_id, when present, names the comment it is nested under
//   - "more" stubs list only base36 ids
//
// All problems are returned joined. A nil listing is valid.
func CheckCommentListing(listing *types.CommentListing) error {
	if listing == nil {
		return nil
	}
	c := &checker{seen: make(map[string]struct{})}
	c.nodes(listing.Data.Children, "", "")
	return errors.Join(c.errs...)
}

type checker struct {
	seen map[string]struct{}
	errs []error
}

func (c *checker) fail(path, format string, args ...any) {
	c.errs = append(c.errs, &TreeError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) nodes(nodes []types.CommentNode, parentPath, parentName string) {
	for i, n := range nodes {
		path := fmt.Sprint(i)
		if parentPath != "" {
			path = parentPath + "." + path
		}

		switch {
		case n.Comment != nil && n.More != nil:
			c.fail(path, "holds both a comment and a more stub")
		case n.Comment == nil && n.More == nil:
			c.fail(path, "holds neither a comment nor a more stub")
		case n.More != nil:
			c.more(path, n)
		default:
			c.comment(path, n, parentName)
		}
	}
}

func (c *checker) comment(path string, n types.CommentNode, parentName string) {
	cm := n.Comment
	if n.Kind != types.KindComment {
		c.fail(path, "comment has kind %q", n.Kind)
	}
	if !IsValidBase36(cm.ID) {
		c.fail(path, "invalid comment id %q", cm.ID)
	} else if _, dup := c.seen[cm.ID]; dup {
		c.fail(path, "duplicate comment id %q", cm.ID)
	} else {
		c.seen[cm.ID] = struct{}{}
	}
	if parentName != "" && cm.ParentID != "" && cm.ParentID != parentName {
		c.fail(path, "parent_id %q does not match enclosing comment %q", cm.ParentID, parentName)
	}

	name := cm.Name
	if name == "" && cm.ID != "" {
		name = types.KindComment + "_" + cm.ID
	}
	c.nodes(cm.Replies.Children(), path, name)
}

func (c *checker) more(path string, n types.CommentNode) {
	if n.Kind != types.KindMore {
		c.fail(path, "more stub has kind %q", n.Kind)
	}
	for _, id := range n.More.Children {
		if !IsValidBase36(id) {
			c.fail(path, "more stub lists invalid id %q", id)
		}
	}
}
