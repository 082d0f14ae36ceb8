// Package cliconfig loads the graw command line configuration from an
// optional YAML file and REDDIT_* environment variables.
package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// DefaultUserAgent is used when neither the file nor the environment set one.
const DefaultUserAgent = "graw-cli/0.1"

// Config is everything the CLI needs to build a client.
type Config struct {
	ClientID     string        `yaml:"client_id" validate:"required_with=Username Password"`
	ClientSecret string        `yaml:"client_secret"`
	Username     string        `yaml:"username" validate:"required_with=Password"`
	Password     string        `yaml:"password" validate:"required_with=Username"`
	UserAgent    string        `yaml:"user_agent" validate:"required,max=256,printascii"`
	BaseURL      string        `yaml:"base_url" validate:"omitempty,url"`
	AuthURL      string        `yaml:"auth_url" validate:"omitempty,url"`
	PublicURL    string        `yaml:"public_url" validate:"omitempty,url"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
	Log          LogConfig     `yaml:"log"`
}

// LogConfig configures the CLI's own logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// HasLogin reports whether the configuration can perform a password grant.
func (c *Config) HasLogin() bool {
	return c.ClientID != "" && c.Username != "" && c.Password != ""
}

// Default returns the configuration used before any file or variable is
// applied.
func Default() *Config {
	return &Config{
		UserAgent: DefaultUserAgent,
		Timeout:   30 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then environment variables, then validation.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, &pkgerrs.ConfigError{Field: "config", Message: fmt.Sprintf("open %s: %v", path, err)}
		}
		defer f.Close()
		if err := Decode(f, cfg); err != nil {
			return nil, err
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func Decode(r io.Reader, cfg *Config) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return &pkgerrs.ConfigError{Field: "config", Message: err.Error()}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return &pkgerrs.ConfigError{Field: "config", Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	return nil
}

type envBinding struct {
	key string
	set func(*Config, string) error
}

func stringField(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

var envBindings = []envBinding{
	{"REDDIT_CLIENT_ID", stringField(func(c *Config) *string { return &c.ClientID })},
	{"REDDIT_CLIENT_SECRET", stringField(func(c *Config) *string { return &c.ClientSecret })},
	{"REDDIT_USERNAME", stringField(func(c *Config) *string { return &c.Username })},
	{"REDDIT_PASSWORD", stringField(func(c *Config) *string { return &c.Password })},
	{"REDDIT_USER_AGENT", stringField(func(c *Config) *string { return &c.UserAgent })},
	{"REDDIT_BASE_URL", stringField(func(c *Config) *string { return &c.BaseURL })},
	{"REDDIT_AUTH_URL", stringField(func(c *Config) *string { return &c.AuthURL })},
	{"REDDIT_PUBLIC_URL", stringField(func(c *Config) *string { return &c.PublicURL })},
	{"REDDIT_LOG_LEVEL", stringField(func(c *Config) *string { return &c.Log.Level })},
	{"REDDIT_LOG_FORMAT", stringField(func(c *Config) *string { return &c.Log.Format })},
	{"REDDIT_TIMEOUT", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &pkgerrs.ConfigError{Field: "REDDIT_TIMEOUT", Message: err.Error()}
		}
		c.Timeout = d
		return nil
	}},
}

// applyEnv overlays every REDDIT_* variable that is set and not blank.
func applyEnv(cfg *Config, lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(b.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := b.set(cfg, strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg's struct tags. Every violation is reported as a
// ConfigError; several are joined.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &pkgerrs.ConfigError{Field: "config", Message: err.Error()}
	}

	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &pkgerrs.ConfigError{Field: fe.Namespace(), Message: describe(fe)})
	}
	return errors.Join(out...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return fmt.Sprintf("is required when %s is set", fe.Param())
	case "url":
		return "must be an absolute URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "printascii":
		return "must be printable ASCII"
	case "gte":
		return "must not be negative"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
