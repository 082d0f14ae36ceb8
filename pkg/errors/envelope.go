package errors

import (
	stderrors "errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to envelopes produced by Envelope.
const (
	TextCodeMissingCredentials = "MISSING_CREDENTIALS"
	TextCodeAuthRejected       = "AUTH_REJECTED"
	TextCodeTransport          = "TRANSPORT_FAILURE"
	TextCodeStatus             = "UNEXPECTED_STATUS"
	TextCodeParse              = "PARSE_FAILURE"
	TextCodeConfig             = "INVALID_CONFIG"
	TextCodeInternal           = "INTERNAL"
)

// Envelope converts an error returned by the client into a go-errors
// envelope with a category, numeric code and text code. The original error
// stays reachable through Unwrap. A nil error yields nil.
func Envelope(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}

	var (
		missing   *MissingCredentialsError
		authErr   *AuthError
		transport *TransportError
		status    *StatusError
		parseErr  *ParseError
		configErr *ConfigError
	)

	switch {
	case stderrors.As(err, &missing):
		return envelope(err, goerrors.CategoryBadInput, http.StatusBadRequest, TextCodeMissingCredentials, map[string]any{
			"fields": append([]string(nil), missing.Fields...),
		})
	case stderrors.As(err, &authErr):
		return envelope(err, goerrors.CategoryAuth, http.StatusUnauthorized, TextCodeAuthRejected, map[string]any{
			"upstream_error": authErr.Code,
		})
	case stderrors.As(err, &status):
		return envelope(err, statusCategory(status.StatusCode), status.StatusCode, TextCodeStatus, map[string]any{
			"url":       status.URL,
			"operation": status.Operation,
		})
	case stderrors.As(err, &transport):
		return envelope(err, goerrors.CategoryExternal, http.StatusBadGateway, TextCodeTransport, map[string]any{
			"url":       transport.URL,
			"operation": transport.Operation,
		})
	case stderrors.As(err, &parseErr):
		return envelope(err, goerrors.CategoryOperation, http.StatusBadGateway, TextCodeParse, map[string]any{
			"operation":        parseErr.Operation,
			"unexpected_shape": stderrors.Is(err, ErrUnexpectedShape),
		})
	case stderrors.As(err, &configErr):
		return envelope(err, goerrors.CategoryValidation, http.StatusBadRequest, TextCodeConfig, map[string]any{
			"field": configErr.Field,
		})
	default:
		return envelope(err, goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal, nil)
	}
}

func envelope(source error, category goerrors.Category, code int, textCode string, metadata map[string]any) *goerrors.Error {
	rich := goerrors.Wrap(source, category, source.Error()).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		rich.WithMetadata(metadata)
	}
	return rich
}

func statusCategory(code int) goerrors.Category {
	switch {
	case code == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case code == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case code == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case code == http.StatusConflict:
		return goerrors.CategoryConflict
	case code == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case code >= http.StatusInternalServerError:
		return goerrors.CategoryExternal
	default:
		return goerrors.CategoryBadInput
	}
}
