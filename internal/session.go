package internal

// Credentials identify the application and, optionally, the user it acts for.
// They are never modified after construction.
type Credentials struct {
	UserAgent    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// HasUserCredentials reports whether both username and password are set.
func (c Credentials) HasUserCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// missingForLogin lists the fields a password grant needs but does not have.
func (c Credentials) missingForLogin() []string {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "ClientID")
	}
	if c.Username == "" {
		missing = append(missing, "Username")
	}
	if c.Password == "" {
		missing = append(missing, "Password")
	}
	return missing
}

// Session is the state one client instance works with: its credentials and
// the bearer token from a successful login, if any.
//
// Session is a value. It is copied into every dispatcher and facade, and
// WithToken returns a new Session instead of changing the receiver, so a
// later login never reaches values that were handed out before it.
type Session struct {
	creds Credentials
	token string
}

// NewSession returns an anonymous session for creds.
func NewSession(creds Credentials) Session {
	return Session{creds: creds}
}

// Credentials returns the session's credentials.
func (s Session) Credentials() Credentials {
	return s.creds
}

// Token returns the bearer token and whether one is present.
func (s Session) Token() (string, bool) {
	return s.token, s.token != ""
}

// Authenticated reports whether the session holds a bearer token.
func (s Session) Authenticated() bool {
	return s.token != ""
}

// WithToken returns a copy of the session that carries token.
func (s Session) WithToken(token string) Session {
	s.token = token
	return s
}
