package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// recordingServer answers every request with status/body and keeps the
// requests it saw.
type recordingServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func newRecordingServer(t *testing.T, status int, body string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, r)
		rs.bodies = append(rs.bodies, string(payload))
		rs.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) last(t *testing.T) (*http.Request, string) {
	t.Helper()
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.requests) == 0 {
		t.Fatal("server saw no requests")
	}
	return rs.requests[len(rs.requests)-1], rs.bodies[len(rs.bodies)-1]
}

func newTestDispatcher(t *testing.T, baseURL, publicURL string, session Session) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherConfig{BaseURL: baseURL, PublicURL: publicURL}, session)
	if err != nil {
		t.Fatalf("NewDispatcher returned error: %v", err)
	}
	return d
}

func TestNewDispatcher_RejectsBadUserAgent(t *testing.T) {
	t.Parallel()

	for _, ua := range []string{"", "   ", "agent\r\nX-Evil: 1", strings.Repeat("a", 300)} {
		_, err := NewDispatcher(DispatcherConfig{BaseURL: "https://oauth.reddit.com", PublicURL: "https://www.reddit.com"},
			NewSession(Credentials{UserAgent: ua}))
		var cfgErr *pkgerrs.ConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "UserAgent" {
			t.Errorf("user agent %q: expected UserAgent ConfigError, got %v", ua, err)
		}
	}
}

func TestNewDispatcher_InvalidHosts(t *testing.T) {
	t.Parallel()

	session := NewSession(testCredentials())
	if _, err := NewDispatcher(DispatcherConfig{BaseURL: "://bad", PublicURL: "https://www.reddit.com"}, session); err == nil {
		t.Error("expected error for invalid base URL")
	}
	if _, err := NewDispatcher(DispatcherConfig{BaseURL: "https://oauth.reddit.com", PublicURL: "relative/path"}, session); err == nil {
		t.Error("expected error for relative public URL")
	}
}

func TestDispatcher_GetHeaders(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		token     string
		wantAuth  string
		wantOAuth bool
	}{
		{name: "anonymous uses public host", token: "", wantAuth: ""},
		{name: "bearer uses oauth host", token: "tok-123", wantAuth: "Bearer tok-123", wantOAuth: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			oauth := newRecordingServer(t, http.StatusOK, `{}`)
			public := newRecordingServer(t, http.StatusOK, `{}`)

			session := NewSession(testCredentials())
			if tc.token != "" {
				session = session.WithToken(tc.token)
			}
			d := newTestDispatcher(t, oauth.URL, public.URL, session)

			if _, err := d.Get(context.Background(), "r/golang/about.json", nil); err != nil {
				t.Fatalf("Get returned error: %v", err)
			}

			target := public
			if tc.wantOAuth {
				target = oauth
			}
			req, _ := target.last(t)
			if got := req.Header.Get("User-Agent"); got != "test-agent/1.0" {
				t.Errorf("User-Agent = %q", got)
			}
			if got := req.Header.Get("Authorization"); got != tc.wantAuth {
				t.Errorf("Authorization = %q, want %q", got, tc.wantAuth)
			}
			if req.URL.Path != "/r/golang/about.json" {
				t.Errorf("unexpected path %q", req.URL.Path)
			}
		})
	}
}

func TestDispatcher_GetAlwaysSendsRawJSON(t *testing.T) {
	t.Parallel()

	srv := newRecordingServer(t, http.StatusOK, `{}`)
	d := newTestDispatcher(t, srv.URL, srv.URL, NewSession(testCredentials()))
	ctx := context.Background()

	if _, err := d.Get(ctx, "r/rust/hot.json", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	req, _ := srv.last(t)
	if req.URL.RawQuery != "raw_json=1" {
		t.Errorf("plain Get query = %q", req.URL.RawQuery)
	}

	if _, err := d.Get(ctx, "r/rust/comments.json", url.Values{"limit": {"5"}, "depth": {"2"}}); err != nil {
		t.Fatalf("Get with query: %v", err)
	}
	req, _ = srv.last(t)
	if req.URL.RawQuery != "raw_json=1&depth=2&limit=5" {
		t.Errorf("Get with query = %q", req.URL.RawQuery)
	}

	u, err := d.URL("r/rust/top.json")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	(&types.ListingCursor{Limit: 25, After: "t3_abc", Period: types.PeriodDay}).Apply(u)
	if _, err := d.GetURL(ctx, u); err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	req, _ = srv.last(t)
	if req.URL.RawQuery != "raw_json=1&limit=25&after=t3_abc&t=day" {
		t.Errorf("GetURL query = %q", req.URL.RawQuery)
	}
	if u.RawQuery != "limit=25&after=t3_abc&t=day" {
		t.Errorf("GetURL modified the caller's URL: %q", u.RawQuery)
	}
}

func TestWithRawJSON(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"":                       "raw_json=1",
		"limit=5":                "raw_json=1&limit=5",
		"raw_json=0&limit=5":     "raw_json=1&limit=5",
		"limit=5&raw_json=1":     "raw_json=1&limit=5",
		"raw_json":               "raw_json=1",
		"after=t3_a&&before=t3b": "raw_json=1&after=t3_a&before=t3b",
	}
	for in, want := range testCases {
		if got := withRawJSON(in); got != want {
			t.Errorf("withRawJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDispatcher_PostForm(t *testing.T) {
	t.Parallel()

	srv := newRecordingServer(t, http.StatusOK, `{"json":{"errors":[]}}`)
	d := newTestDispatcher(t, srv.URL, srv.URL, NewSession(testCredentials()).WithToken("tok"))

	resp, err := d.Post(context.Background(), "api/comment", url.Values{"text": {"hi there"}, "parent": {"t3_abc"}})
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"json":{"errors":[]}}` {
		t.Errorf("unexpected response %+v", resp)
	}

	req, body := srv.last(t)
	if req.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", req.Method)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", ct)
	}
	if req.URL.RawQuery != "" {
		t.Errorf("POST must not carry a query, got %q", req.URL.RawQuery)
	}
	form, err := url.ParseQuery(body)
	if err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if form.Get("text") != "hi there" || form.Get("parent") != "t3_abc" {
		t.Errorf("unexpected form %v", form)
	}
	if req.Header.Get("Authorization") != "Bearer tok" {
		t.Errorf("expected bearer token on POST")
	}
}

func TestDispatcher_StatusError(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		srv := newRecordingServer(t, status, `{"message":"nope"}`)
		d := newTestDispatcher(t, srv.URL, srv.URL, NewSession(testCredentials()))

		resp, err := d.Get(context.Background(), "r/x/hot.json", nil)
		if resp != nil {
			t.Errorf("status %d: expected no response", status)
		}
		var statusErr *pkgerrs.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("status %d: expected StatusError, got %T: %v", status, err, err)
		}
		if statusErr.StatusCode != status || string(statusErr.Body) != `{"message":"nope"}` {
			t.Errorf("status %d: unexpected error %+v", status, statusErr)
		}
		if !strings.Contains(statusErr.URL, "raw_json=1") {
			t.Errorf("status %d: expected URL with query, got %q", status, statusErr.URL)
		}

		srv.mu.Lock()
		n := len(srv.requests)
		srv.mu.Unlock()
		if n != 1 {
			t.Errorf("status %d: expected a single attempt, got %d", status, n)
		}
	}
}

func TestDispatcher_TransportError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	httpClient := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, boom
	})}

	d, err := NewDispatcher(DispatcherConfig{
		HTTPClient: httpClient,
		BaseURL:    "https://oauth.example.com",
		PublicURL:  "https://www.example.com",
	}, NewSession(testCredentials()))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	_, err = d.Get(context.Background(), "r/x/hot.json", nil)
	var transportErr *pkgerrs.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if !strings.HasPrefix(transportErr.URL, "https://www.example.com/r/x/hot.json") {
		t.Errorf("unexpected URL %q", transportErr.URL)
	}
}

func TestDispatcher_CanceledContext(t *testing.T) {
	t.Parallel()

	srv := newRecordingServer(t, http.StatusOK, `{}`)
	d := newTestDispatcher(t, srv.URL, srv.URL, NewSession(testCredentials()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Get(ctx, "r/x/hot.json", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDispatcher_CloneKeepsSession(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, "https://oauth.example.com", "https://www.example.com", NewSession(testCredentials()))
	clone := d.Clone()
	authed := d.WithSession(d.Session().WithToken("tok"))

	if clone.Session().Authenticated() || d.Session().Authenticated() {
		t.Error("WithSession must not change existing dispatchers")
	}
	if !authed.Session().Authenticated() {
		t.Error("expected new dispatcher to carry the token")
	}
	if clone.client != d.client || authed.client != d.client {
		t.Error("clones must share the http client")
	}
	if got := authed.Host().Host; got != "oauth.example.com" {
		t.Errorf("authenticated host = %q", got)
	}
	if got := clone.Host().Host; got != "www.example.com" {
		t.Errorf("anonymous host = %q", got)
	}
}

func TestDispatcher_ConcurrentGets(t *testing.T) {
	t.Parallel()

	srv := newRecordingServer(t, http.StatusOK, `{}`)
	d := newTestDispatcher(t, srv.URL, srv.URL, NewSession(testCredentials()).WithToken("tok"))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Get(context.Background(), "api/v1/me", nil); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Get failed: %v", err)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	for _, req := range srv.requests {
		if req.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("request without bearer token")
		}
	}
}
