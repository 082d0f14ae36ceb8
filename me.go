package graw

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// Me is the facade for actions taken as the logged-in user. It is only
// created from an authenticated session.
type Me struct {
	dispatcher *internal.Dispatcher
	auth       *internal.Authenticator
	validator  *internal.Validator
}

func newMe(d *internal.Dispatcher, auth *internal.Authenticator, v *internal.Validator) *Me {
	return &Me{dispatcher: d, auth: auth, validator: v}
}

// Username returns the name the session logged in with.
func (m *Me) Username() string {
	return m.dispatcher.Session().Credentials().Username
}

// Me returns the logged-in account.
func (m *Me) Me(ctx context.Context) (*types.AccountData, error) {
	return getListing[types.AccountData](ctx, m.dispatcher, m.validator, "me", "api/v1/me", nil, nil)
}

// SubmitLink posts a link to sr.
func (m *Me) SubmitLink(ctx context.Context, sr, title, link string) (*types.ActionResult, error) {
	if err := m.validator.ValidateSubredditName(sr); err != nil {
		return nil, err
	}
	return m.post(ctx, "submit", "api/submit", url.Values{
		"kind":  {"link"},
		"sr":    {sr},
		"title": {title},
		"url":   {link},
	})
}

// SubmitText posts a markdown self post to sr.
func (m *Me) SubmitText(ctx context.Context, sr, title, text string) (*types.ActionResult, error) {
	if err := m.validator.ValidateSubredditName(sr); err != nil {
		return nil, err
	}
	return m.post(ctx, "submit", "api/submit", url.Values{
		"kind":  {"self"},
		"sr":    {sr},
		"title": {title},
		"text":  {text},
	})
}

// SubmitRichtext posts a self post whose body is a richtext JSON document.
func (m *Me) SubmitRichtext(ctx context.Context, sr, title string, richtext json.RawMessage) (*types.ActionResult, error) {
	if err := m.validator.ValidateSubredditName(sr); err != nil {
		return nil, err
	}
	if !json.Valid(richtext) {
		return nil, &pkgerrs.ConfigError{Field: "richtext", Message: "richtext must be a valid JSON document"}
	}
	return m.post(ctx, "submit", "api/submit", url.Values{
		"kind":          {"self"},
		"sr":            {sr},
		"title":         {title},
		"richtext_json": {string(richtext)},
	})
}

// Comment replies to parent, the fullname of a post or comment.
func (m *Me) Comment(ctx context.Context, parent, text string) (*types.ActionResult, error) {
	if err := m.validator.ValidateID("parent", parent); err != nil {
		return nil, err
	}
	return m.post(ctx, "comment", "api/comment", url.Values{
		"parent": {parent},
		"text":   {text},
	})
}

// Edit replaces the body of the user's own post or comment.
func (m *Me) Edit(ctx context.Context, thingID, text string) (*types.ActionResult, error) {
	if err := m.validator.ValidateID("thing_id", thingID); err != nil {
		return nil, err
	}
	return m.post(ctx, "edit", "api/editusertext", url.Values{
		"thing_id": {thingID},
		"text":     {text},
	})
}

// ComposeMessage sends a private message to another user.
func (m *Me) ComposeMessage(ctx context.Context, to, subject, body string) (*types.ActionResult, error) {
	if err := m.validator.ValidateUsername(to); err != nil {
		return nil, err
	}
	return m.post(ctx, "compose", "api/compose", url.Values{
		"to":      {to},
		"subject": {subject},
		"text":    {body},
	})
}

// Inbox returns the user's inbox.
func (m *Me) Inbox(ctx context.Context, cursor *types.ListingCursor) (*types.Inbox, error) {
	return getListing[types.Inbox](ctx, m.dispatcher, m.validator, "inbox", "message/inbox.json", nil, cursor)
}

// Unread returns the user's unread messages.
func (m *Me) Unread(ctx context.Context, cursor *types.ListingCursor) (*types.Inbox, error) {
	return getListing[types.Inbox](ctx, m.dispatcher, m.validator, "unread", "message/unread.json", nil, cursor)
}

// MarkRead marks a message, given by fullname, as read.
func (m *Me) MarkRead(ctx context.Context, id string) error {
	return m.markMessage(ctx, "api/read_message", id)
}

// MarkUnread marks a message, given by fullname, as unread.
func (m *Me) MarkUnread(ctx context.Context, id string) error {
	return m.markMessage(ctx, "api/unread_message", id)
}

func (m *Me) markMessage(ctx context.Context, path, id string) error {
	if err := m.validator.ValidateID("id", id); err != nil {
		return err
	}
	_, err := m.dispatcher.Post(ctx, path, url.Values{"id": {id}})
	return err
}

// Saved returns the posts and comments the user saved.
func (m *Me) Saved(ctx context.Context, cursor *types.ListingCursor) (*types.MixedListing, error) {
	return m.history(ctx, "saved", cursor)
}

// Upvoted returns what the user upvoted.
func (m *Me) Upvoted(ctx context.Context, cursor *types.ListingCursor) (*types.MixedListing, error) {
	return m.history(ctx, "upvoted", cursor)
}

// Downvoted returns what the user downvoted.
func (m *Me) Downvoted(ctx context.Context, cursor *types.ListingCursor) (*types.MixedListing, error) {
	return m.history(ctx, "downvoted", cursor)
}

func (m *Me) history(ctx context.Context, kind string, cursor *types.ListingCursor) (*types.MixedListing, error) {
	path := "user/" + m.Username() + "/" + kind + ".json"
	return getListing[types.MixedListing](ctx, m.dispatcher, m.validator, kind, path, nil, cursor)
}

// AddSubredditFriend adds username to one of sr's user lists. relation is
// the list name Reddit expects, such as "contributor", "moderator_invite" or
// "banned".
func (m *Me) AddSubredditFriend(ctx context.Context, sr, username, relation string) (*types.FriendResult, error) {
	return m.friend(ctx, "api/friend", sr, username, relation)
}

// RemoveSubredditFriend removes username from one of sr's user lists.
func (m *Me) RemoveSubredditFriend(ctx context.Context, sr, username, relation string) (*types.FriendResult, error) {
	return m.friend(ctx, "api/unfriend", sr, username, relation)
}

func (m *Me) friend(ctx context.Context, endpoint, sr, username, relation string) (*types.FriendResult, error) {
	if err := m.validator.ValidateSubredditName(sr); err != nil {
		return nil, err
	}
	if err := m.validator.ValidateUsername(username); err != nil {
		return nil, err
	}
	if relation == "" {
		return nil, &pkgerrs.ConfigError{Field: "relation", Message: "relation cannot be empty"}
	}
	resp, err := m.dispatcher.Post(ctx, "r/"+sr+"/"+endpoint, url.Values{
		"name": {username},
		"type": {relation},
	})
	if err != nil {
		return nil, err
	}
	return internal.Decode[types.FriendResult](endpoint, resp)
}

// Logout revokes the session's token. The Me value, and every facade
// sharing its session, must not be used afterwards.
func (m *Me) Logout(ctx context.Context) error {
	session := m.dispatcher.Session()
	token, _ := session.Token()
	return m.auth.Revoke(ctx, session.Credentials(), token)
}

// post sends a write with api_type=json so Reddit answers with an
// ActionResult instead of a jQuery script.
func (m *Me) post(ctx context.Context, op, path string, form url.Values) (*types.ActionResult, error) {
	form.Set("api_type", "json")
	resp, err := m.dispatcher.Post(ctx, path, form)
	if err != nil {
		return nil, err
	}
	return internal.Decode[types.ActionResult](op, resp)
}
