package internal

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
)

const (
	// Subreddit name constraints
	minSubredditLength = 2
	maxSubredditLength = 21

	// Username constraints
	minUsernameLength = 3
	maxUsernameLength = 20

	// Pagination constraints
	maxPaginationLimit = 100

	// User agent constraints
	maxUserAgentLength = 256
)

// Validator provides validation operations for Reddit API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubredditName checks a subreddit name against Reddit's naming
// rules. Multireddit forms joined with '+' (e.g. "golang+rust") are accepted
// when every part is valid.
func (v *Validator) ValidateSubredditName(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: "subreddit name cannot be empty"}
	}
	for _, part := range strings.Split(name, "+") {
		if err := validateNamePart("subreddit", part, minSubredditLength, maxSubredditLength, false); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUsername checks a Reddit username.
func (v *Validator) ValidateUsername(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "username", Message: "username cannot be empty"}
	}
	return validateNamePart("username", name, minUsernameLength, maxUsernameLength, true)
}

// ValidateCursor checks listing cursor bounds. A nil cursor is valid.
func (v *Validator) ValidateCursor(cursor *types.ListingCursor) error {
	if cursor == nil {
		return nil
	}
	if cursor.Limit < 0 {
		return &pkgerrs.ConfigError{Field: "cursor.Limit", Message: "limit cannot be negative"}
	}
	if cursor.Limit > maxPaginationLimit {
		return &pkgerrs.ConfigError{Field: "cursor.Limit", Message: fmt.Sprintf("limit cannot exceed %d", maxPaginationLimit)}
	}
	if cursor.Count < 0 {
		return &pkgerrs.ConfigError{Field: "cursor.Count", Message: "count cannot be negative"}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	if strings.TrimSpace(ua) == "" {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}

	// Check for newline characters that could be used for header injection
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}

	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}

	return nil
}

// ValidateID checks a base36 thing id such as a post id ("abc123").
// A fullname prefix ("t3_") is accepted.
func (v *Validator) ValidateID(field, id string) error {
	if id == "" {
		return &pkgerrs.ConfigError{Field: field, Message: "id cannot be empty"}
	}
	if i := strings.IndexByte(id, '_'); i == 2 && id[0] == 't' {
		id = id[3:]
	}
	for _, ch := range id {
		if !(ch >= '0' && ch <= '9') && !(ch >= 'a' && ch <= 'z') && !(ch >= 'A' && ch <= 'Z') {
			return &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("id contains invalid character '%c' (only alphanumeric allowed)", ch)}
		}
	}
	if id == "" {
		return &pkgerrs.ConfigError{Field: field, Message: "id cannot be empty"}
	}
	return nil
}

func validateNamePart(field, name string, minLen, maxLen int, allowHyphen bool) error {
	if len(name) < minLen {
		return &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, minLen)}
	}
	if len(name) > maxLen {
		return &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("%s cannot exceed %d characters", field, maxLen)}
	}
	for i, ch := range name {
		valid := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
		if allowHyphen && ch == '-' {
			valid = true
		}
		if !valid {
			return &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("%s contains invalid character '%c' at position %d", field, ch, i)}
		}
	}
	return nil
}
