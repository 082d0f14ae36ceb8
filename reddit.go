package graw

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jamesprial/graw/internal"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

const (
	// DefaultBaseURL is the API host used once a bearer token is held.
	DefaultBaseURL = "https://oauth.reddit.com/"
	// DefaultAuthURL is the host of the token and revoke endpoints.
	DefaultAuthURL = "https://www.reddit.com/"
	// DefaultPublicURL is the API host used by anonymous sessions.
	DefaultPublicURL = "https://www.reddit.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "graw/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// Config holds the configuration for the Reddit client.
//
// Only UserAgent is needed for anonymous reads of public listings. Login
// additionally needs ClientID, ClientSecret, Username and Password of a
// "script" app.
//
//	config := &Config{
//		Username:     "your-username",
//		Password:     "your-password",
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//		UserAgent:    "script:myapp:1.0 (by /u/yourusername)",
//	}
type Config struct {
	// Username and Password for the password grant.
	Username string
	Password string

	// ClientID and ClientSecret of the registered app, sent as HTTP basic
	// auth to the token endpoint.
	ClientID     string
	ClientSecret string

	// UserAgent identifies the application. Reddit throttles generic agents
	// hard, so set something unique. Defaults to DefaultUserAgent.
	UserAgent string

	// BaseURL is the authenticated API host. Defaults to DefaultBaseURL.
	BaseURL string

	// AuthURL is the OAuth host. Defaults to DefaultAuthURL.
	AuthURL string

	// PublicURL is the anonymous API host. Defaults to DefaultPublicURL.
	PublicURL string

	// HTTPClient to use for requests. It is shared by the client and every
	// facade derived from it. Defaults to a client with DefaultTimeout.
	HTTPClient *http.Client

	// Logger for structured diagnostics. Optional; nil discards.
	Logger *slog.Logger
}

// Client is the entry point of the library. It holds one Session: anonymous
// after NewClient, authenticated after ClientLogin. A Client never changes
// its session; logging in returns a new value.
type Client struct {
	config     Config
	auth       *internal.Authenticator
	dispatcher *internal.Dispatcher
	validator  *internal.Validator
	logger     *slog.Logger
}

// NewClient creates an anonymous client. No network call is made.
//
// Returns a ConfigError if config is nil, the user agent is unusable or one
// of the URLs cannot be parsed.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Field: "Config", Message: "config cannot be nil"}
	}

	cfg := *config
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = DefaultPublicURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	auth, err := internal.NewAuthenticator(cfg.HTTPClient, cfg.AuthURL, cfg.Logger)
	if err != nil {
		return nil, err
	}

	session := internal.NewSession(internal.Credentials{
		UserAgent:    cfg.UserAgent,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Username:     cfg.Username,
		Password:     cfg.Password,
	})
	dispatcher, err := internal.NewDispatcher(internal.DispatcherConfig{
		HTTPClient: cfg.HTTPClient,
		BaseURL:    cfg.BaseURL,
		PublicURL:  cfg.PublicURL,
		Logger:     cfg.Logger,
	}, session)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:     cfg,
		auth:       auth,
		dispatcher: dispatcher,
		validator:  internal.NewValidator(),
		logger:     cfg.Logger,
	}, nil
}

// IsAuthenticated reports whether the client holds a bearer token.
func (c *Client) IsAuthenticated() bool {
	return c.dispatcher.Session().Authenticated()
}

// login runs the password grant and returns a dispatcher for the new session.
func (c *Client) login(ctx context.Context) (*internal.Dispatcher, error) {
	session := c.dispatcher.Session()
	token, err := c.auth.Authenticate(ctx, session.Credentials())
	if err != nil {
		return nil, err
	}
	c.logger.Debug("logged in", "username", session.Credentials().Username)
	return c.dispatcher.WithSession(session.WithToken(token)), nil
}

// ClientLogin authenticates and returns a new Client bound to the
// authenticated session. The receiver, and every facade created from it,
// stays anonymous.
func (c *Client) ClientLogin(ctx context.Context) (*Client, error) {
	dispatcher, err := c.login(ctx)
	if err != nil {
		return nil, err
	}
	next := *c
	next.dispatcher = dispatcher
	return &next, nil
}

// Login authenticates and returns the Me facade for the logged-in user.
func (c *Client) Login(ctx context.Context) (*Me, error) {
	dispatcher, err := c.login(ctx)
	if err != nil {
		return nil, err
	}
	return newMe(dispatcher, c.auth, c.validator), nil
}

// Me returns the Me facade for the client's current session, which must
// already be authenticated.
func (c *Client) Me() (*Me, error) {
	if !c.IsAuthenticated() {
		return nil, &pkgerrs.MissingCredentialsError{Fields: []string{"AccessToken"}}
	}
	return newMe(c.dispatcher.Clone(), c.auth, c.validator), nil
}

// Subreddit logs in and returns a facade for r/name on the new session.
func (c *Client) Subreddit(ctx context.Context, name string) (*Subreddit, error) {
	if err := c.validator.ValidateSubredditName(name); err != nil {
		return nil, err
	}
	dispatcher, err := c.login(ctx)
	if err != nil {
		return nil, err
	}
	return newSubreddit(name, dispatcher, c.validator), nil
}

// AuthSubreddit returns a facade for r/name that reuses the client's current
// session, anonymous or not. No network call is made.
func (c *Client) AuthSubreddit(name string) (*Subreddit, error) {
	if err := c.validator.ValidateSubredditName(name); err != nil {
		return nil, err
	}
	return newSubreddit(name, c.dispatcher.Clone(), c.validator), nil
}

// User returns a facade for u/name on the client's current session.
func (c *Client) User(name string) (*User, error) {
	if err := c.validator.ValidateUsername(name); err != nil {
		return nil, err
	}
	return newUser(name, c.dispatcher.Clone(), c.validator), nil
}

// SearchSubreddits searches subreddit names and descriptions for query.
func (c *Client) SearchSubreddits(ctx context.Context, query string, cursor *types.ListingCursor) (*types.SubredditListing, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &pkgerrs.ConfigError{Field: "query", Message: "search query cannot be empty"}
	}
	return getListing[types.SubredditListing](ctx, c.dispatcher, c.validator, "search subreddits",
		"subreddits/search.json", url.Values{"q": {query}}, cursor)
}

// getListing fetches path with query followed by the cursor parameters and
// decodes the body into T.
func getListing[T any](ctx context.Context, d *internal.Dispatcher, v *internal.Validator, op, path string, query url.Values, cursor *types.ListingCursor) (*T, error) {
	resp, err := getRaw(ctx, d, v, path, query, cursor)
	if err != nil {
		return nil, err
	}
	return internal.Decode[T](op, resp)
}

// getComments fetches a comments endpoint and normalizes it as scope. The
// facade knows which endpoint it called, so the scope is never guessed from
// the path.
func getComments(ctx context.Context, d *internal.Dispatcher, v *internal.Validator, scope types.CommentScope, path string, query url.Values, cursor *types.ListingCursor) (*types.CommentListing, error) {
	resp, err := getRaw(ctx, d, v, path, query, cursor)
	if err != nil {
		return nil, err
	}
	return internal.NormalizeComments(resp.Body, scope)
}

func getRaw(ctx context.Context, d *internal.Dispatcher, v *internal.Validator, path string, query url.Values, cursor *types.ListingCursor) (*types.Response, error) {
	if err := v.ValidateCursor(cursor); err != nil {
		return nil, err
	}
	u, err := d.URL(path)
	if err != nil {
		return nil, err
	}
	internal.AppendQuery(u, query)
	cursor.Apply(u)
	return d.GetURL(ctx, u)
}
