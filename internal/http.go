package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

// maxResponseBodyBytes bounds how much of a response body is read.
const maxResponseBodyBytes int64 = 10 << 20

// rawJSONParam stops Reddit from HTML-escaping text fields in GET responses.
const rawJSONParam = "raw_json=1"

// DispatcherConfig holds what NewDispatcher needs besides the session.
type DispatcherConfig struct {
	// HTTPClient is shared by every clone of the dispatcher. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client
	// BaseURL is used when the session holds a token (oauth.reddit.com).
	BaseURL string
	// PublicURL is used for anonymous sessions (www.reddit.com).
	PublicURL string
	// Logger receives debug traces. Nil discards.
	Logger *slog.Logger
}

// Dispatcher builds, sends and classifies requests for one Session.
//
// A Dispatcher is never modified after construction, so it is safe for
// concurrent use. Clone hands out an independent copy that shares only the
// underlying *http.Client.
type Dispatcher struct {
	client    *http.Client
	baseURL   *url.URL
	publicURL *url.URL
	session   Session
	logger    *slog.Logger
}

// NewDispatcher returns a dispatcher for session. It fails when the session's
// user agent is empty or unsafe, so every Dispatcher that exists sends one.
func NewDispatcher(cfg DispatcherConfig, session Session) (*Dispatcher, error) {
	if err := NewValidator().ValidateUserAgent(session.Credentials().UserAgent); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	publicURL, err := parseBaseURL(cfg.PublicURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "PublicURL", Message: err.Error()}
	}

	return &Dispatcher{
		client:    httpClient,
		baseURL:   baseURL,
		publicURL: publicURL,
		session:   session,
		logger:    logger,
	}, nil
}

// Session returns a copy of the dispatcher's session.
func (d *Dispatcher) Session() Session {
	return d.session
}

// Clone returns a copy of d. The copy owns its own Session value.
func (d *Dispatcher) Clone() *Dispatcher {
	cp := *d
	return &cp
}

// WithSession returns a copy of d that dispatches for session.
func (d *Dispatcher) WithSession(session Session) *Dispatcher {
	cp := d.Clone()
	cp.session = session
	return cp
}

// Host returns the base URL requests are resolved against: the oauth host
// for an authenticated session, the public host otherwise.
func (d *Dispatcher) Host() *url.URL {
	if d.session.Authenticated() {
		u := *d.baseURL
		return &u
	}
	u := *d.publicURL
	return &u
}

// URL resolves path against Host without sending anything. Facades use it to
// apply a ListingCursor before calling GetURL.
func (d *Dispatcher) URL(path string) (*url.URL, error) {
	u, err := d.Host().Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "path", Message: fmt.Sprintf("invalid request path %q: %v", path, err)}
	}
	return u, nil
}

// Get sends a GET for path. raw_json=1 is always the first query parameter,
// followed by query in key order.
func (d *Dispatcher) Get(ctx context.Context, path string, query url.Values) (*types.Response, error) {
	u, err := d.URL(path)
	if err != nil {
		return nil, err
	}
	AppendQuery(u, query)
	return d.GetURL(ctx, u)
}

// GetURL sends a GET for an already resolved URL, typically one a
// ListingCursor was applied to. raw_json=1 is inserted ahead of any query
// the URL already carries.
func (d *Dispatcher) GetURL(ctx context.Context, u *url.URL) (*types.Response, error) {
	target := *u
	target.RawQuery = withRawJSON(target.RawQuery)

	req, err := d.newRequest(ctx, http.MethodGet, &target, nil)
	if err != nil {
		return nil, err
	}
	return d.do(req)
}

// Post sends form URL-encoded to path.
func (d *Dispatcher) Post(ctx context.Context, path string, form url.Values) (*types.Response, error) {
	u, err := d.URL(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}

	req, err := d.newRequest(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return d.do(req)
}

// newRequest creates an API request with the user agent and, when the
// session has one, the bearer token attached.
func (d *Dispatcher) newRequest(ctx context.Context, method string, u *url.URL, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &pkgerrs.TransportError{Operation: method, URL: u.String(), Err: err}
	}

	req.Header.Set("User-Agent", d.session.Credentials().UserAgent)
	if token, ok := d.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// do sends req once. Transport failures become TransportError, 4xx/5xx
// become StatusError, everything else is returned unparsed.
func (d *Dispatcher) do(req *http.Request) (*types.Response, error) {
	requestID := uuid.NewString()
	started := time.Now()
	target := req.URL.String()

	d.logger.Debug("reddit request",
		"request_id", requestID,
		"method", req.Method,
		"url", target,
		"authenticated", d.session.Authenticated(),
	)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Debug("reddit request failed", "request_id", requestID, "error", err)
		return nil, &pkgerrs.TransportError{Operation: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxResponseBodyBytes)); err != nil {
		return nil, &pkgerrs.TransportError{Operation: req.Method, URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	d.logger.Debug("reddit response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", buf.Len(),
		"duration", time.Since(started),
	)

	if resp.StatusCode >= 400 {
		return nil, &pkgerrs.StatusError{
			Operation:  req.Method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Header:     resp.Header,
			Body:       buf.Bytes(),
		}
	}

	return &types.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       buf.Bytes(),
		URL:        target,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	return parsed, nil
}

// withRawJSON puts raw_json=1 in front of rawQuery, dropping any raw_json the
// caller already set.
func withRawJSON(rawQuery string) string {
	if rawQuery == "" {
		return rawJSONParam
	}
	kept := make([]string, 0, strings.Count(rawQuery, "&")+1)
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" || part == "raw_json" || strings.HasPrefix(part, "raw_json=") {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return rawJSONParam
	}
	return rawJSONParam + "&" + strings.Join(kept, "&")
}

// AppendQuery adds query to u.RawQuery in key order. Existing parameters are
// kept in front.
func AppendQuery(u *url.URL, query url.Values) {
	if len(query) == 0 {
		return
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, k := range keys {
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	u.RawQuery = b.String()
}
