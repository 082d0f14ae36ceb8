package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

const (
	defaultTokenEndpointPath  = "api/v1/access_token"
	defaultRevokeEndpointPath = "api/v1/revoke_token"
)

// Authenticator exchanges user credentials for a bearer token with the
// password grant, and revokes tokens on logout.
type Authenticator struct {
	client    *http.Client
	BaseURL   *url.URL
	tokenURL  *url.URL
	revokeURL *url.URL
	logger    *slog.Logger
}

// NewAuthenticator creates a new authenticator against baseURL (the
// www.reddit.com host in production). A nil httpClient means
// http.DefaultClient; a nil logger discards.
func NewAuthenticator(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Authenticator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsedURL, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "AuthURL", Message: err.Error()}
	}

	tokenURL, err := parsedURL.Parse(defaultTokenEndpointPath)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "AuthURL", Message: fmt.Sprintf("failed to resolve token endpoint: %v", err)}
	}
	revokeURL, err := parsedURL.Parse(defaultRevokeEndpointPath)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "AuthURL", Message: fmt.Sprintf("failed to resolve revoke endpoint: %v", err)}
	}

	return &Authenticator{
		client:    httpClient,
		BaseURL:   parsedURL,
		tokenURL:  tokenURL,
		revokeURL: revokeURL,
		logger:    logger,
	}, nil
}

// authResponse is the token endpoint's untagged union: a success body with an
// access token, or an error body with an error code.
type authResponse struct {
	Token *tokenResponse
	Err   *authErrorResponse
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

type authErrorResponse struct {
	Error string `json:"error"`
}

// UnmarshalJSON tries the success shape first and only then the error shape.
// A success body may well carry extra fields, so the order matters.
func (r *authResponse) UnmarshalJSON(data []byte) error {
	r.Token = nil
	r.Err = nil

	var success struct {
		AccessToken *string `json:"access_token"`
		TokenType   string  `json:"token_type"`
		ExpiresIn   int     `json:"expires_in"`
		Scope       string  `json:"scope"`
	}
	if err := json.Unmarshal(data, &success); err == nil && success.AccessToken != nil {
		r.Token = &tokenResponse{
			AccessToken: *success.AccessToken,
			TokenType:   success.TokenType,
			ExpiresIn:   success.ExpiresIn,
			Scope:       success.Scope,
		}
		return nil
	}

	var failure struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &failure); err == nil && failure.Error != nil {
		r.Err = &authErrorResponse{Error: *failure.Error}
		return nil
	}

	return fmt.Errorf("body matches neither the access token nor the error shape")
}

// Authenticate performs the password grant for creds and returns the bearer
// token. It never stores the token; the caller builds a new Session with it.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	if missing := creds.missingForLogin(); len(missing) > 0 {
		return "", &pkgerrs.MissingCredentialsError{Fields: missing}
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	status, body, err := a.post(ctx, "login", a.tokenURL, creds, form)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		a.logger.Debug("token request rejected", "status", status)
		return "", &pkgerrs.StatusError{
			Operation:  "login",
			URL:        a.tokenURL.String(),
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       body,
		}
	}

	var parsed authResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &pkgerrs.ParseError{Operation: "login", Err: err}
	}
	if parsed.Err != nil {
		a.logger.Debug("token request returned error body", "error", parsed.Err.Error)
		return "", &pkgerrs.AuthError{Code: parsed.Err.Error}
	}

	a.logger.Debug("token acquired", "token_type", parsed.Token.TokenType, "expires_in", parsed.Token.ExpiresIn, "scope", parsed.Token.Scope)
	return parsed.Token.AccessToken, nil
}

// Revoke invalidates token. Reddit answers 204 on success; any other status
// is returned as a StatusError.
func (a *Authenticator) Revoke(ctx context.Context, creds Credentials, token string) error {
	if token == "" {
		return &pkgerrs.MissingCredentialsError{Fields: []string{"AccessToken"}}
	}

	form := url.Values{}
	form.Set("access_token", token)

	status, body, err := a.post(ctx, "logout", a.revokeURL, creds, form)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &pkgerrs.StatusError{
			Operation:  "logout",
			URL:        a.revokeURL.String(),
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       body,
		}
	}
	return nil
}

func (a *Authenticator) post(ctx context.Context, op string, target *url.URL, creds Credentials, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, &pkgerrs.TransportError{Operation: op, URL: target.String(), Err: err}
	}

	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	req.Header.Set("User-Agent", creds.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, nil, &pkgerrs.TransportError{Operation: op, URL: target.String(), Err: err}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxResponseBodyBytes)); err != nil {
		return 0, nil, &pkgerrs.TransportError{Operation: op, URL: target.String(), Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return resp.StatusCode, buf.Bytes(), nil
}
