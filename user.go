package graw

import (
	"context"

	"github.com/jamesprial/graw/internal"
	"github.com/jamesprial/graw/pkg/types"
)

// User is a read-only facade for one account's public history.
type User struct {
	// Name is the username without the "u/" prefix.
	Name string

	dispatcher *internal.Dispatcher
	validator  *internal.Validator
}

func newUser(name string, d *internal.Dispatcher, v *internal.Validator) *User {
	return &User{Name: name, dispatcher: d, validator: v}
}

func (u *User) path(suffix string) string {
	return "user/" + u.Name + "/" + suffix
}

// Overview returns the user's posts and comments, newest first. Children
// are decoded on demand with Thing.AsPost and Thing.AsComment.
func (u *User) Overview(ctx context.Context, cursor *types.ListingCursor) (*types.MixedListing, error) {
	return getListing[types.MixedListing](ctx, u.dispatcher, u.validator, "user overview", u.path("overview.json"), nil, cursor)
}

// Submitted returns the user's posts.
func (u *User) Submitted(ctx context.Context, cursor *types.ListingCursor) (*types.Submissions, error) {
	return getListing[types.Submissions](ctx, u.dispatcher, u.validator, "user submitted", u.path("submitted.json"), nil, cursor)
}

// Comments returns the user's comments as a flat listing.
func (u *User) Comments(ctx context.Context, cursor *types.ListingCursor) (*types.CommentListing, error) {
	return getComments(ctx, u.dispatcher, u.validator, types.ForumScoped, u.path("comments.json"), nil, cursor)
}

// About returns the user's account data.
func (u *User) About(ctx context.Context) (*types.AccountData, error) {
	about, err := getListing[types.UserAbout](ctx, u.dispatcher, u.validator, "user about", u.path("about.json"), nil, nil)
	if err != nil {
		return nil, err
	}
	return &about.Data, nil
}
