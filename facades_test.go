package graw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"testing"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
	"github.com/jamesprial/graw/test_helpers"
)

func loggedIn(t *testing.T) (*Client, *Me, *test_helpers.RedditMockServer) {
	t.Helper()
	client, mock := newMockClient(t)
	authed, err := client.ClientLogin(context.Background())
	if err != nil {
		t.Fatalf("ClientLogin: %v", err)
	}
	me, err := authed.Me()
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	return authed, me, mock
}

func TestSubreddit_Listings(t *testing.T) {
	t.Parallel()

	client, _, mock := loggedIn(t)
	sub, err := client.AuthSubreddit("test")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	listing := `{"kind":"Listing","data":{"after":"t3_b","children":[{"kind":"t3","data":{"id":"a","name":"t3_a","title":"A"}}]}}`
	for _, sort := range []string{"rising", "top", "new"} {
		mock.SetJSON("/r/test/"+sort+".json", http.StatusOK, listing)
	}

	tests := []struct {
		name      string
		call      func() (*types.Submissions, error)
		path      string
		wantQuery string
	}{
		{
			name:      "hot without cursor",
			call:      func() (*types.Submissions, error) { return sub.Hot(ctx, nil) },
			path:      "/r/test/hot.json",
			wantQuery: "raw_json=1",
		},
		{
			name:      "rising with limit",
			call:      func() (*types.Submissions, error) { return sub.Rising(ctx, &types.ListingCursor{Limit: 10}) },
			path:      "/r/test/rising.json",
			wantQuery: "raw_json=1&limit=10",
		},
		{
			name: "top with period",
			call: func() (*types.Submissions, error) {
				return sub.Top(ctx, &types.ListingCursor{Limit: 25, After: "t3_abc", Period: types.PeriodWeek})
			},
			path:      "/r/test/top.json",
			wantQuery: "raw_json=1&limit=25&after=t3_abc&t=week",
		},
		{
			name:      "latest maps to new",
			call:      func() (*types.Submissions, error) { return sub.Latest(ctx, &types.ListingCursor{Before: "t3_x", Count: 25}) },
			path:      "/r/test/new.json",
			wantQuery: "raw_json=1&before=t3_x&count=25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Len() != 1 {
				t.Errorf("expected 1 post, got %d", result.Len())
			}
			req, err := mock.GetLastRequest(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if req.RawQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", req.RawQuery, tt.wantQuery)
			}
		})
	}
}

func TestSubreddit_AboutAndModerators(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)
	sub, _ := client.AuthSubreddit("test")
	mock.SetJSON("/r/test/about/moderators.json", http.StatusOK,
		`{"kind":"UserList","data":{"children":[{"name":"mod1","id":"t2_1","mod_permissions":["all"]}]}}`)

	about, err := sub.About(context.Background())
	if err != nil {
		t.Fatalf("About: %v", err)
	}
	if about.DisplayName != "test" || about.Subscribers == nil || *about.Subscribers != 1000 {
		t.Errorf("unexpected about %+v", about)
	}

	mods, err := sub.Moderators(context.Background())
	if err != nil {
		t.Fatalf("Moderators: %v", err)
	}
	if len(mods.Data.Children) != 1 || mods.Data.Children[0].Name != "mod1" {
		t.Errorf("unexpected moderators %+v", mods)
	}
}

func TestSubreddit_CommentShapesAgree(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)
	sub, _ := client.AuthSubreddit("test")
	ctx := context.Background()

	forum, err := sub.LatestComments(ctx, &CommentOptions{Depth: 3, Limit: 50})
	if err != nil {
		t.Fatalf("LatestComments: %v", err)
	}
	post, err := sub.ArticleComments(ctx, "t3_1", nil)
	if err != nil {
		t.Fatalf("ArticleComments: %v", err)
	}
	if !reflect.DeepEqual(forum, post) {
		t.Error("forum and post scoped comments must normalize to the same tree")
	}

	req, _ := mock.GetLastRequest("/r/test/comments.json")
	if req.RawQuery != "raw_json=1&depth=3&limit=50" {
		t.Errorf("comment query = %q", req.RawQuery)
	}
	if err := mock.AssertRequestCount("/r/test/comments/1.json", 1); err != nil {
		t.Error(err)
	}

	tree := NewCommentTree(post)
	if tree.Count() != 2 || !reflect.DeepEqual(tree.MoreIDs(), []string{"c9"}) {
		t.Errorf("unexpected tree: count=%d more=%v", tree.Count(), tree.MoreIDs())
	}
}

func TestComments_NamedCommentsStayForumScoped(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)
	mock.SetJSON("/r/comments/comments.json", http.StatusOK, test_helpers.TestCommentListing)
	mock.SetJSON("/user/comments/comments.json", http.StatusOK, test_helpers.TestCommentListing)
	ctx := context.Background()

	sub, err := client.AuthSubreddit("comments")
	if err != nil {
		t.Fatal(err)
	}
	user, err := client.User("comments")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		call func() (*types.CommentListing, error)
	}{
		{"subreddit latest comments", func() (*types.CommentListing, error) { return sub.LatestComments(ctx, nil) }},
		{"user comments", func() (*types.CommentListing, error) { return user.Comments(ctx, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing, err := tt.call()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := NewCommentTree(listing).Count(); got != 2 {
				t.Errorf("Count() = %d, want 2", got)
			}
		})
	}
}

func TestSubreddit_EmptyArticleArray(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)
	sub, _ := client.AuthSubreddit("test")
	mock.SetJSON("/r/test/comments/zz.json", http.StatusOK, `[]`)

	_, err := sub.ArticleComments(context.Background(), "zz", nil)
	if !errors.Is(err, pkgerrs.ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape, got %v", err)
	}
	if _, err := sub.ArticleComments(context.Background(), "bad/id", nil); err == nil {
		t.Error("expected invalid article id to be rejected")
	}
}

func TestSubreddit_StatusErrorPassesThrough(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)
	sub, _ := client.AuthSubreddit("private")
	mock.SetJSON("/r/private/about.json", http.StatusForbidden, `{"reason":"private","message":"Forbidden","error":403}`)

	_, err := sub.About(context.Background())
	var statusErr *pkgerrs.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 StatusError, got %v", err)
	}
	if err := mock.AssertRequestCount("/r/private/about.json", 1); err != nil {
		t.Error(err)
	}
}

func TestUser_Endpoints(t *testing.T) {
	t.Parallel()

	client, mock := newMockClient(t)
	user, err := client.User("spez")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	mock.SetJSON("/user/spez/about.json", http.StatusOK, `{"kind":"t2","data":{"name":"spez","link_karma":10,"comment_karma":20}}`)
	mock.SetJSON("/user/spez/overview.json", http.StatusOK, `{"kind":"Listing","data":{"children":[
		{"kind":"t3","data":{"id":"p1","title":"post"}},
		{"kind":"t1","data":{"id":"c1","body":"comment","replies":""}}
	]}}`)
	mock.SetJSON("/user/spez/submitted.json", http.StatusOK, `{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"p1"}}]}}`)
	mock.SetJSON("/user/spez/comments.json", http.StatusOK, `{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"id":"c1","replies":""}}]}}`)

	about, err := user.About(ctx)
	if err != nil || about.Name != "spez" || about.CommentKarma != 20 {
		t.Fatalf("About = %+v, %v", about, err)
	}

	overview, err := user.Overview(ctx, &types.ListingCursor{Limit: 2})
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if _, err := overview.Data.Children[0].AsPost(); err != nil {
		t.Errorf("first overview child: %v", err)
	}
	if c, err := overview.Data.Children[1].AsComment(); err != nil || c.Body != "comment" {
		t.Errorf("second overview child: %+v, %v", c, err)
	}

	if submitted, err := user.Submitted(ctx, nil); err != nil || submitted.Len() != 1 {
		t.Errorf("Submitted = %v, %v", submitted, err)
	}
	if comments, err := user.Comments(ctx, nil); err != nil || comments.Len() != 1 {
		t.Errorf("Comments = %v, %v", comments, err)
	}
}

func TestMe_Writes(t *testing.T) {
	t.Parallel()

	_, me, mock := loggedIn(t)
	ctx := context.Background()
	ok := `{"json":{"errors":[],"data":{"id":"new1","name":"t3_new1","url":"https://reddit.com/x"}}}`
	for _, path := range []string{"/api/submit", "/api/comment", "/api/editusertext", "/api/compose"} {
		mock.SetJSON(path, http.StatusOK, ok)
	}

	tests := []struct {
		name string
		call func() (*types.ActionResult, error)
		path string
		form url.Values
	}{
		{
			name: "submit link",
			call: func() (*types.ActionResult, error) { return me.SubmitLink(ctx, "test", "Title", "https://go.dev") },
			path: "/api/submit",
			form: url.Values{"api_type": {"json"}, "kind": {"link"}, "sr": {"test"}, "title": {"Title"}, "url": {"https://go.dev"}},
		},
		{
			name: "submit text",
			call: func() (*types.ActionResult, error) { return me.SubmitText(ctx, "test", "Title", "body") },
			path: "/api/submit",
			form: url.Values{"api_type": {"json"}, "kind": {"self"}, "sr": {"test"}, "title": {"Title"}, "text": {"body"}},
		},
		{
			name: "submit richtext",
			call: func() (*types.ActionResult, error) {
				return me.SubmitRichtext(ctx, "test", "Title", json.RawMessage(`{"document":[]}`))
			},
			path: "/api/submit",
			form: url.Values{"api_type": {"json"}, "kind": {"self"}, "sr": {"test"}, "title": {"Title"}, "richtext_json": {`{"document":[]}`}},
		},
		{
			name: "comment",
			call: func() (*types.ActionResult, error) { return me.Comment(ctx, "t3_abc", "nice") },
			path: "/api/comment",
			form: url.Values{"api_type": {"json"}, "parent": {"t3_abc"}, "text": {"nice"}},
		},
		{
			name: "edit",
			call: func() (*types.ActionResult, error) { return me.Edit(ctx, "t1_def", "fixed") },
			path: "/api/editusertext",
			form: url.Values{"api_type": {"json"}, "thing_id": {"t1_def"}, "text": {"fixed"}},
		},
		{
			name: "compose",
			call: func() (*types.ActionResult, error) { return me.ComposeMessage(ctx, "bob", "hi", "hello bob") },
			path: "/api/compose",
			form: url.Values{"api_type": {"json"}, "to": {"bob"}, "subject": {"hi"}, "text": {"hello bob"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Failed() || result.JSON.Data == nil || result.JSON.Data.Name != "t3_new1" {
				t.Errorf("unexpected result %+v", result)
			}

			req, err := mock.GetLastRequest(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if req.Method != http.MethodPost {
				t.Errorf("method = %s", req.Method)
			}
			if req.Headers.Get("Authorization") != "Bearer "+test_helpers.MockToken {
				t.Errorf("missing bearer token")
			}
			form, err := url.ParseQuery(req.Body)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(form, tt.form) {
				t.Errorf("form = %v, want %v", form, tt.form)
			}
		})
	}
}

func TestMe_RejectedAction(t *testing.T) {
	t.Parallel()

	_, me, mock := loggedIn(t)
	mock.SetJSON("/api/submit", http.StatusOK, `{"json":{"errors":[["SUBREDDIT_NOEXIST","that subreddit doesn't exist","sr"]]}}`)

	result, err := me.SubmitText(context.Background(), "test", "t", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Failed() || !reflect.DeepEqual(result.ErrorCodes(), []string{"SUBREDDIT_NOEXIST"}) {
		t.Errorf("unexpected result %+v", result)
	}

	if _, err := me.SubmitRichtext(context.Background(), "test", "t", json.RawMessage(`{`)); err == nil {
		t.Error("expected invalid richtext to be rejected")
	}
}

func TestMe_ReadsAndMessages(t *testing.T) {
	t.Parallel()

	_, me, mock := loggedIn(t)
	ctx := context.Background()
	inbox := `{"kind":"Listing","data":{"children":[{"kind":"t4","data":{"id":"m1","name":"t4_m1","subject":"hi","new":true}}]}}`
	mixed := `{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"p1"}}]}}`
	mock.SetJSON("/api/v1/me", http.StatusOK, `{"name":"alice","id":"u1","link_karma":1}`)
	mock.SetJSON("/message/inbox.json", http.StatusOK, inbox)
	mock.SetJSON("/message/unread.json", http.StatusOK, inbox)
	mock.SetJSON("/api/read_message", http.StatusOK, `{}`)
	mock.SetJSON("/api/unread_message", http.StatusOK, `{}`)
	for _, kind := range []string{"saved", "upvoted", "downvoted"} {
		mock.SetJSON("/user/alice/"+kind+".json", http.StatusOK, mixed)
	}

	account, err := me.Me(ctx)
	if err != nil || account.Name != "alice" {
		t.Fatalf("Me = %+v, %v", account, err)
	}

	messages, err := me.Inbox(ctx, &types.ListingCursor{Limit: 10})
	if err != nil || messages.Len() != 1 || messages.Data.Children[0].Data.Subject != "hi" {
		t.Fatalf("Inbox = %+v, %v", messages, err)
	}
	if _, err := me.Unread(ctx, nil); err != nil {
		t.Fatalf("Unread: %v", err)
	}

	if err := me.MarkRead(ctx, "t4_m1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	req, _ := mock.GetLastRequest("/api/read_message")
	if req.Body != "id=t4_m1" {
		t.Errorf("MarkRead body = %q", req.Body)
	}
	if err := me.MarkUnread(ctx, "t4_m1"); err != nil {
		t.Fatalf("MarkUnread: %v", err)
	}

	for name, call := range map[string]func(context.Context, *types.ListingCursor) (*types.MixedListing, error){
		"saved":     me.Saved,
		"upvoted":   me.Upvoted,
		"downvoted": me.Downvoted,
	} {
		listing, err := call(ctx, nil)
		if err != nil || listing.Len() != 1 {
			t.Errorf("%s = %v, %v", name, listing, err)
		}
	}
}

func TestMe_SubredditFriends(t *testing.T) {
	t.Parallel()

	_, me, mock := loggedIn(t)
	ctx := context.Background()
	mock.SetJSON("/r/test/api/friend", http.StatusOK, `{"success":true}`)
	mock.SetJSON("/r/test/api/unfriend", http.StatusOK, `{"success":true}`)

	result, err := me.AddSubredditFriend(ctx, "test", "bob", "contributor")
	if err != nil || !result.Success {
		t.Fatalf("AddSubredditFriend = %+v, %v", result, err)
	}
	req, _ := mock.GetLastRequest("/r/test/api/friend")
	form, _ := url.ParseQuery(req.Body)
	if form.Get("name") != "bob" || form.Get("type") != "contributor" {
		t.Errorf("unexpected form %v", form)
	}

	if _, err := me.RemoveSubredditFriend(ctx, "test", "bob", "contributor"); err != nil {
		t.Fatalf("RemoveSubredditFriend: %v", err)
	}
	if _, err := me.AddSubredditFriend(ctx, "test", "bob", ""); err == nil {
		t.Error("expected empty relation to be rejected")
	}
}

func TestMe_Logout(t *testing.T) {
	t.Parallel()

	_, me, mock := loggedIn(t)
	if err := me.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	req, _ := mock.GetLastRequest("/api/v1/revoke_token")
	if req.Body != "access_token="+test_helpers.MockToken {
		t.Errorf("revoke body = %q", req.Body)
	}

	mock.SetJSON("/api/v1/revoke_token", http.StatusOK, `{}`)
	var statusErr *pkgerrs.StatusError
	if err := me.Logout(context.Background()); !errors.As(err, &statusErr) {
		t.Errorf("expected StatusError when revoke answers 200, got %v", err)
	}
}
