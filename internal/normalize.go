package internal

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// NormalizeComments decodes a comments response into the canonical tree.
//
// Reddit answers the comments endpoint in two shapes. A forum-scoped request
// (a subreddit's comment stream) returns one listing object. A post-scoped
// request ("comments/<article>") returns an array whose first element is the
// post listing and whose last element is the comment tree. Both come back as
// the same *types.CommentListing.
func NormalizeComments(body []byte, scope types.CommentScope) (*types.CommentListing, error) {
	switch scope {
	case types.PostScoped:
		var listings []json.RawMessage
		if err := json.Unmarshal(body, &listings); err != nil {
			return nil, &pkgerrs.ParseError{Operation: "comments", Message: "expected an array of listings", Err: err}
		}
		if len(listings) == 0 {
			return nil, &pkgerrs.ParseError{Operation: "comments", Message: "empty listing array", Err: pkgerrs.ErrUnexpectedShape}
		}
		return decodeCommentListing(listings[len(listings)-1])

	case types.ForumScoped:
		return decodeCommentListing(body)

	default:
		return nil, &pkgerrs.ParseError{Operation: "comments", Message: fmt.Sprintf("unknown comment scope %v", scope), Err: pkgerrs.ErrUnexpectedShape}
	}
}

func decodeCommentListing(data []byte) (*types.CommentListing, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &pkgerrs.ParseError{Operation: "comments", Message: "expected a listing object", Err: pkgerrs.ErrUnexpectedShape}
	}

	var listing types.CommentListing
	if err := json.Unmarshal(trimmed, &listing); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "comments", Message: "malformed listing", Err: err}
	}
	return &listing, nil
}

// Decode unmarshals a dispatched response into a new T. Failures are reported
// as ParseError tagged with op.
func Decode[T any](op string, resp *types.Response) (*T, error) {
	if resp == nil {
		return nil, &pkgerrs.ParseError{Operation: op, Message: "no response", Err: pkgerrs.ErrUnexpectedShape}
	}
	var v T
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		return nil, &pkgerrs.ParseError{Operation: op, Err: err}
	}
	return &v, nil
}
