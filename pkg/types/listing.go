package types

import "strings"

// Listing is Reddit's paginated envelope: {"kind": "Listing", "data": {...}}.
type Listing[T any] struct {
	Kind string         `json:"kind"`
	Data ListingPage[T] `json:"data"`
}

// ListingPage is the data of a Listing. After and Before are the fullnames
// to pass back in a ListingCursor for the next or previous page.
type ListingPage[T any] struct {
	After    string `json:"after"`
	Before   string `json:"before"`
	Dist     *int   `json:"dist"`
	Modhash  string `json:"modhash"`
	Children []T    `json:"children"`
}

// Child is a typed {kind, data} listing entry.
type Child[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

// After returns the cursor for the next page, or "" on the last page.
func (l *Listing[T]) After() string {
	if l == nil {
		return ""
	}
	return l.Data.After
}

// Len returns the number of children on this page.
func (l *Listing[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Data.Children)
}

// Submissions is a listing of posts (hot, new, top, rising, submitted).
type Submissions = Listing[Child[Post]]

// CommentListing is the canonical comment tree: a listing of top-level nodes,
// each of which may own a nested CommentListing of replies.
type CommentListing = Listing[CommentNode]

// Inbox is a listing of private messages and comment replies.
type Inbox = Listing[Child[MessageData]]

// MixedListing holds children of more than one kind (overview, saved, upvoted).
type MixedListing = Listing[Thing]

// SubredditListing is the result of a subreddit search.
type SubredditListing = Listing[Child[SubredditData]]

// SubredditAbout is the response of /r/{sub}/about.
type SubredditAbout = Child[SubredditData]

// UserAbout is the response of /user/{name}/about.
type UserAbout = Child[AccountData]

// Posts returns the post payloads of a submissions listing in order.
func Posts(s *Submissions) []*Post {
	if s == nil {
		return nil
	}
	posts := make([]*Post, 0, len(s.Data.Children))
	for i := range s.Data.Children {
		posts = append(posts, &s.Data.Children[i].Data)
	}
	return posts
}

// CommentScope says which wire shape a comments response uses.
type CommentScope int

const (
	// ForumScoped responses (a subreddit's or user's comment stream) are a
	// single listing object.
	ForumScoped CommentScope = iota
	// PostScoped responses (one post's comments) are an array of listings,
	// the post first and its comment tree last.
	PostScoped
)

func (s CommentScope) String() string {
	switch s {
	case ForumScoped:
		return "forum"
	case PostScoped:
		return "post"
	default:
		return "unknown"
	}
}

// ScopeForPath derives the comment scope from a request path. Only the
// article endpoints, "comments/<id>" and "r/<sub>/comments/<id>", are
// PostScoped; everything else is ForumScoped. A subreddit or user that is
// itself named "comments" does not count.
func ScopeForPath(path string) CommentScope {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")

	idx := -1
	switch {
	case len(segments) >= 2 && segments[0] == "comments":
		idx = 1
	case len(segments) >= 4 && segments[0] == "r" && segments[2] == "comments":
		idx = 3
	}
	if idx < 0 || strings.TrimSuffix(segments[idx], ".json") == "" {
		return ForumScoped
	}
	return PostScoped
}
