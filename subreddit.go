package graw

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jamesprial/graw/internal"
	"github.com/jamesprial/graw/pkg/types"
)

// CommentOptions shape a comments request. Zero fields are not sent.
type CommentOptions struct {
	// Depth is the maximum reply depth Reddit expands.
	Depth int
	// Limit is the maximum number of comments returned.
	Limit int
}

func (o *CommentOptions) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}
	if o.Depth > 0 {
		v.Set("depth", strconv.Itoa(o.Depth))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

// Subreddit is a facade for one subreddit. It keeps the session it was
// created with.
type Subreddit struct {
	// Name is the subreddit name without the "r/" prefix.
	Name string

	dispatcher *internal.Dispatcher
	validator  *internal.Validator
}

func newSubreddit(name string, d *internal.Dispatcher, v *internal.Validator) *Subreddit {
	return &Subreddit{Name: name, dispatcher: d, validator: v}
}

func (s *Subreddit) path(suffix string) string {
	return "r/" + s.Name + "/" + suffix
}

// IsAuthenticated reports whether the facade's session holds a token.
func (s *Subreddit) IsAuthenticated() bool {
	return s.dispatcher.Session().Authenticated()
}

// About returns the subreddit's metadata.
func (s *Subreddit) About(ctx context.Context) (*types.SubredditData, error) {
	about, err := getListing[types.SubredditAbout](ctx, s.dispatcher, s.validator, "subreddit about", s.path("about.json"), nil, nil)
	if err != nil {
		return nil, err
	}
	return &about.Data, nil
}

// Moderators returns the subreddit's moderator list.
func (s *Subreddit) Moderators(ctx context.Context) (*types.ModeratorList, error) {
	return getListing[types.ModeratorList](ctx, s.dispatcher, s.validator, "moderators", s.path("about/moderators.json"), nil, nil)
}

// Hot returns a page of the hot listing.
func (s *Subreddit) Hot(ctx context.Context, cursor *types.ListingCursor) (*types.Submissions, error) {
	return s.feed(ctx, "hot", cursor)
}

// Rising returns a page of the rising listing.
func (s *Subreddit) Rising(ctx context.Context, cursor *types.ListingCursor) (*types.Submissions, error) {
	return s.feed(ctx, "rising", cursor)
}

// Top returns a page of the top listing. Set cursor.Period to pick the time
// window; Reddit defaults to a day.
func (s *Subreddit) Top(ctx context.Context, cursor *types.ListingCursor) (*types.Submissions, error) {
	return s.feed(ctx, "top", cursor)
}

// Latest returns a page of the new listing.
func (s *Subreddit) Latest(ctx context.Context, cursor *types.ListingCursor) (*types.Submissions, error) {
	return s.feed(ctx, "new", cursor)
}

func (s *Subreddit) feed(ctx context.Context, sort string, cursor *types.ListingCursor) (*types.Submissions, error) {
	return getListing[types.Submissions](ctx, s.dispatcher, s.validator, sort, s.path(sort+".json"), nil, cursor)
}

// LatestComments returns the newest comments across the subreddit.
func (s *Subreddit) LatestComments(ctx context.Context, opts *CommentOptions) (*types.CommentListing, error) {
	return getComments(ctx, s.dispatcher, s.validator, types.ForumScoped, s.path("comments.json"), opts.values(), nil)
}

// ArticleComments returns the comment tree of one post. article is the post
// id, with or without the "t3_" prefix.
func (s *Subreddit) ArticleComments(ctx context.Context, article string, opts *CommentOptions) (*types.CommentListing, error) {
	if err := s.validator.ValidateID("article", article); err != nil {
		return nil, err
	}
	return getComments(ctx, s.dispatcher, s.validator, types.PostScoped, s.path("comments/"+stripKind(article)+".json"), opts.values(), nil)
}

// HotIterator walks the hot listing page by page. See PostIterator.
func (s *Subreddit) HotIterator(ctx context.Context, cursor types.ListingCursor) *PostIterator {
	return newPostIterator(ctx, cursor, s.Hot)
}

// LatestIterator walks the new listing page by page.
func (s *Subreddit) LatestIterator(ctx context.Context, cursor types.ListingCursor) *PostIterator {
	return newPostIterator(ctx, cursor, s.Latest)
}

// TopIterator walks the top listing page by page.
func (s *Subreddit) TopIterator(ctx context.Context, cursor types.ListingCursor) *PostIterator {
	return newPostIterator(ctx, cursor, s.Top)
}

// stripKind drops a "tN_" fullname prefix.
func stripKind(id string) string {
	if len(id) > 3 && id[0] == 't' && id[2] == '_' {
		return id[3:]
	}
	return id
}
