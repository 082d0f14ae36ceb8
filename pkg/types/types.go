package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RedditObject defines the common behavior for all Reddit API objects like
// Posts, Comments, and Subreddits.
type RedditObject interface {
	GetID() string
	GetName() string
}

// ThingData holds the common fields for Reddit objects.
// It can be embedded into specific types like Post and Comment.
type ThingData struct {
	ID   string `json:"id"`   // ID (without prefix)
	Name string `json:"name"` // Full name (e.g., "t3_abc123")
}

// GetID returns the object's ID.
func (td ThingData) GetID() string {
	return td.ID
}

// GetName returns the object's full name.
func (td ThingData) GetName() string {
	return td.Name
}

// Thing is a listing child whose kind is not known in advance, as in user
// overviews and saved items. Data is decoded on demand with the As* methods.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// AsPost decodes a "t3" Thing.
func (t *Thing) AsPost() (*Post, error) {
	var post Post
	if err := t.decode(KindLink, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// AsComment decodes a "t1" Thing.
func (t *Thing) AsComment() (*Comment, error) {
	var comment Comment
	if err := t.decode(KindComment, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// AsMessage decodes a "t4" Thing.
func (t *Thing) AsMessage() (*MessageData, error) {
	var msg MessageData
	if err := t.decode(KindMessage, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (t *Thing) decode(kind string, v any) error {
	if t == nil {
		return fmt.Errorf("thing is nil")
	}
	if t.Kind != kind {
		return fmt.Errorf("expected %s, got %s", kind, t.Kind)
	}
	if err := json.Unmarshal(t.Data, v); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", kind, err)
	}
	return nil
}

// Kind prefixes used by Reddit fullnames.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindMessage   = "t4"
	KindSubreddit = "t5"
	KindMore      = "more"
	KindListing   = "Listing"
)

// Votable is an embeddable struct for things that can be voted on.
type Votable struct {
	Ups   int `json:"ups"`
	Downs int `json:"downs"`
	// Likes indicates the user's vote: true for upvote, false for downvote, null for no vote.
	Likes *bool `json:"likes"`
}

// Created is an embeddable struct for things that have a creation time.
type Created struct {
	Created    float64 `json:"created"`
	CreatedUTC float64 `json:"created_utc"`
}

// Edited represents a field that can be a boolean or a timestamp.
// If IsEdited is true and Timestamp is 0, it was an old edit marked as `true`.
// If IsEdited is true and Timestamp is non-zero, it's a modern edit with a timestamp.
// If IsEdited is false, the item was not edited.
type Edited struct {
	IsEdited  bool
	Timestamp float64
}

// UnmarshalJSON implements json.Unmarshaler to handle mixed types for the "edited" field.
func (e *Edited) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(string(data))
	switch s {
	case "false", "null":
		e.IsEdited = false
		e.Timestamp = 0
		return nil
	case "true":
		e.IsEdited = true
		e.Timestamp = 0
		return nil
	}

	var timestamp float64
	if err := json.Unmarshal(data, &timestamp); err == nil {
		e.IsEdited = true
		e.Timestamp = timestamp
		return nil
	}

	return fmt.Errorf("unrecognized type for 'edited' field: %s", s)
}

// MarshalJSON writes the form Reddit sends: false, true or a timestamp.
func (e Edited) MarshalJSON() ([]byte, error) {
	switch {
	case !e.IsEdited:
		return []byte("false"), nil
	case e.Timestamp == 0:
		return []byte("true"), nil
	default:
		return json.Marshal(e.Timestamp)
	}
}

// Response is the unparsed result of a dispatched request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// URL is the final request URL, including query parameters.
	URL string
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return fmt.Errorf("response is nil")
	}
	return json.Unmarshal(r.Body, v)
}

// SubredditData contains the data for a Subreddit.
type SubredditData struct {
	ThingData
	Created
	AccountsActive       int     `json:"accounts_active"`
	CommentScoreHideMins int     `json:"comment_score_hide_mins"`
	Description          string  `json:"description"`
	DisplayName          string  `json:"display_name"`
	DisplayNamePrefixed  string  `json:"display_name_prefixed"`
	HeaderImg            *string `json:"header_img"`
	HeaderTitle          *string `json:"header_title"`
	Over18               bool    `json:"over18"`
	PublicDescription    string  `json:"public_description"`
	Subscribers          *int64  `json:"subscribers"`
	SubmissionType       string  `json:"submission_type"`
	SubredditType        string  `json:"subreddit_type"`
	Title                string  `json:"title"`
	URL                  string  `json:"url"`
	UserIsBanned         *bool   `json:"user_is_banned"`
	UserIsModerator      *bool   `json:"user_is_moderator"`
	UserIsSubscriber     *bool   `json:"user_is_subscriber"`
}

// MessageData contains the data for a private Message.
type MessageData struct {
	ThingData
	Created
	Author       string  `json:"author"`
	Body         string  `json:"body"`
	Context      string  `json:"context"`
	Dest         string  `json:"dest"`
	FirstMessage *int64  `json:"first_message"`
	LinkTitle    string  `json:"link_title"`
	New          bool    `json:"new"`
	ParentID     *string `json:"parent_id"`
	Subject      string  `json:"subject"`
	Subreddit    *string `json:"subreddit"`
	WasComment   bool    `json:"was_comment"`
}

// AccountData contains the data for a user Account.
type AccountData struct {
	ThingData
	Created
	CommentKarma     int    `json:"comment_karma"`
	HasMail          *bool  `json:"has_mail"`
	HasModMail       *bool  `json:"has_mod_mail"`
	HasVerifiedEmail *bool  `json:"has_verified_email"`
	InboxCount       int    `json:"inbox_count,omitempty"`
	IsFriend         bool   `json:"is_friend"`
	IsGold           bool   `json:"is_gold"`
	IsMod            bool   `json:"is_mod"`
	LinkKarma        int    `json:"link_karma"`
	TotalKarma       int    `json:"total_karma"`
	Over18           bool   `json:"over_18"`
	IconImg          string `json:"icon_img"`
}

// MoreData represents a "more" object, a stub standing in for comments that
// were not included in the tree.
type MoreData struct {
	ThingData
	Count    int      `json:"count"`
	Depth    int      `json:"depth"`
	ParentID string   `json:"parent_id"`
	Children []string `json:"children"`
}

// Post represents a Reddit post with all its fields
type Post struct {
	ThingData
	Votable
	Created
	Author              string          `json:"author"`
	AuthorFlairText     *string         `json:"author_flair_text"`
	Domain              string          `json:"domain"`
	Hidden              bool            `json:"hidden"`
	IsSelf              bool            `json:"is_self"`
	LinkFlairText       *string         `json:"link_flair_text"`
	Locked              bool            `json:"locked"`
	Media               json.RawMessage `json:"media"`
	NumComments         int             `json:"num_comments"`
	Over18              bool            `json:"over_18"`
	Permalink           string          `json:"permalink"`
	Saved               bool            `json:"saved"`
	Score               int             `json:"score"`
	SelfText            string          `json:"selftext"`
	Subreddit           string          `json:"subreddit"`
	SubredditID         string          `json:"subreddit_id"`
	SubredditNamePrefix string          `json:"subreddit_name_prefixed"`
	Thumbnail           string          `json:"thumbnail"`
	Title               string          `json:"title"`
	URL                 string          `json:"url"`
	Edited              Edited          `json:"edited"` // Can be a boolean or a float64 timestamp
	Distinguished       *string         `json:"distinguished"`
	Stickied            bool            `json:"stickied"`
}

// Comment represents a Reddit comment with all its fields
type Comment struct {
	ThingData
	Votable
	Created
	Author        string  `json:"author"`
	Body          string  `json:"body"`
	Edited        Edited  `json:"edited"` // Can be a boolean (for old comments) or a float64 timestamp
	Gilded        int     `json:"gilded"`
	Depth         *int    `json:"depth,omitempty"`
	LinkAuthor    string  `json:"link_author,omitempty"`
	LinkID        string  `json:"link_id"`
	LinkTitle     string  `json:"link_title,omitempty"`
	LinkURL       string  `json:"link_url,omitempty"`
	ParentID      string  `json:"parent_id"`
	Permalink     string  `json:"permalink"`
	Replies       Replies `json:"replies"`
	Saved         bool    `json:"saved"`
	Score         int     `json:"score"`
	ScoreHidden   bool    `json:"score_hidden"`
	Stickied      bool    `json:"stickied"`
	Subreddit     string  `json:"subreddit"`
	SubredditID   string  `json:"subreddit_id"`
	Distinguished *string `json:"distinguished"`
}

// Replies holds the nested reply listing of a comment. Reddit sends an empty
// string instead of a listing when a comment has no replies; that decodes to
// a nil Listing.
type Replies struct {
	Listing *CommentListing
}

// UnmarshalJSON accepts a listing object, "" or null.
func (r *Replies) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || trimmed[0] == '"' {
		r.Listing = nil
		return nil
	}

	var listing CommentListing
	if err := json.Unmarshal(trimmed, &listing); err != nil {
		return fmt.Errorf("failed to parse replies listing: %w", err)
	}
	r.Listing = &listing
	return nil
}

// MarshalJSON writes the listing, or "" when there are no replies, matching
// what Reddit sends.
func (r Replies) MarshalJSON() ([]byte, error) {
	if r.Listing == nil {
		return []byte(`""`), nil
	}
	return json.Marshal(r.Listing)
}

// Children returns the reply nodes, or nil when there are none.
func (r Replies) Children() []CommentNode {
	if r.Listing == nil {
		return nil
	}
	return r.Listing.Data.Children
}

// CommentNode is one child of a comment listing: either a comment or a "more"
// stub. Exactly one of Comment and More is set.
type CommentNode struct {
	Kind    string
	Comment *Comment
	More    *MoreData
}

// UnmarshalJSON decodes the node's data according to its kind.
func (n *CommentNode) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.Kind = raw.Kind
	n.Comment = nil
	n.More = nil
	if len(raw.Data) == 0 {
		return fmt.Errorf("comment node of kind %q has no data", raw.Kind)
	}

	if raw.Kind == KindMore {
		var more MoreData
		if err := json.Unmarshal(raw.Data, &more); err != nil {
			return fmt.Errorf("failed to parse more data: %w", err)
		}
		n.More = &more
		return nil
	}

	var comment Comment
	if err := json.Unmarshal(raw.Data, &comment); err != nil {
		return fmt.Errorf("failed to parse comment data: %w", err)
	}
	n.Comment = &comment
	return nil
}

// MarshalJSON writes the node back in Reddit's {kind, data} form.
func (n CommentNode) MarshalJSON() ([]byte, error) {
	var data any = n.Comment
	if n.More != nil {
		data = n.More
	}
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Data any    `json:"data"`
	}{Kind: n.Kind, Data: data})
}

// ModeratorList is the response of /r/{sub}/about/moderators.
type ModeratorList struct {
	Kind string `json:"kind"`
	Data struct {
		Children []Moderator `json:"children"`
	} `json:"data"`
}

// Moderator is a single entry of a ModeratorList.
type Moderator struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Date           float64  `json:"date"`
	ModPermissions []string `json:"mod_permissions"`
}

// FriendResult is the response of the subreddit friend/unfriend endpoints.
type FriendResult struct {
	Success bool `json:"success"`
}

// ActionResult is the api_type=json envelope returned by write endpoints such
// as api/submit, api/comment and api/compose.
type ActionResult struct {
	JSON struct {
		// Errors holds [code, message, field] triples.
		Errors [][]any           `json:"errors"`
		Data   *ActionResultData `json:"data,omitempty"`
	} `json:"json"`
}

// ActionResultData carries what a write endpoint created or changed.
type ActionResultData struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name,omitempty"`
	URL    string  `json:"url,omitempty"`
	Things []Thing `json:"things,omitempty"`
}

// Failed reports whether Reddit rejected the action.
func (r *ActionResult) Failed() bool {
	return r != nil && len(r.JSON.Errors) > 0
}

// ErrorCodes returns the first element of every error triple, e.g.
// "RATELIMIT" or "SUBREDDIT_NOEXIST".
func (r *ActionResult) ErrorCodes() []string {
	if r == nil {
		return nil
	}
	codes := make([]string, 0, len(r.JSON.Errors))
	for _, e := range r.JSON.Errors {
		if len(e) == 0 {
			continue
		}
		if code, ok := e[0].(string); ok {
			codes = append(codes, code)
		}
	}
	return codes
}
