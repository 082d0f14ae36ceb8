// Command graw reads Reddit listings, comment trees and account data from the
// command line.
//
// Credentials come from an optional YAML file (--config) and the REDDIT_*
// environment variables. Without credentials every read is anonymous.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jamesprial/graw"
	"github.com/jamesprial/graw/internal/cliconfig"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup cliconfig.LookupFunc) int {
	a := &app{lookup: lookup, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.reportError(err)
		return 1
	}
	return 0
}

// app carries what PersistentPreRunE builds for the subcommands.
type app struct {
	lookup cliconfig.LookupFunc
	stderr io.Writer

	configPath string
	verbose    bool
	output     string
	limit      int
	login      bool

	cfg    *cliconfig.Config
	log    zerolog.Logger
	client *graw.Client
}

func newRootCmd(a *app) *cobra.Command {
	a.log = newLogger(logOptions{Level: "info", Format: "console", Writer: a.stderr})

	cmd := &cobra.Command{
		Use:           "graw",
		Short:         "Browse Reddit from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every request the client sends")
	flags.StringVarP(&a.output, "output", "o", "text", "output format: text or json")
	flags.IntVar(&a.limit, "limit", 25, "items per page (1-100)")
	flags.BoolVar(&a.login, "login", false, "log in before reading, using the configured credentials")

	cmd.AddCommand(
		newListingCmd(a, "hot", "Show the hot listing of a subreddit"),
		newListingCmd(a, "new", "Show the newest posts of a subreddit"),
		newListingCmd(a, "rising", "Show the rising listing of a subreddit"),
		newListingCmd(a, "top", "Show the top listing of a subreddit"),
		newCommentsCmd(a),
		newAboutCmd(a),
		newUserCmd(a),
		newMeCmd(a),
		newSearchCmd(a),
		newWatchCmd(a),
		newStatsCmd(a),
	)
	return cmd
}

// setup loads the configuration and builds the logger and client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := cliconfig.Load(a.configPath, a.lookup)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.log = newLogger(logOptions{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: cmd.ErrOrStderr()})

	if a.output != "text" && a.output != "json" {
		return &pkgerrs.ConfigError{Field: "output", Message: fmt.Sprintf("unknown format %q (want text or json)", a.output)}
	}

	clientCfg := &graw.Config{
		Username:     cfg.Username,
		Password:     cfg.Password,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		UserAgent:    cfg.UserAgent,
		BaseURL:      cfg.BaseURL,
		AuthURL:      cfg.AuthURL,
		PublicURL:    cfg.PublicURL,
		HTTPClient:   &http.Client{Timeout: cfg.Timeout},
	}
	if a.verbose {
		clientCfg.Logger = newSlogLogger(a.log.With().Str("source", "client").Logger())
	}

	client, err := graw.NewClient(clientCfg)
	if err != nil {
		return err
	}

	if a.login {
		client, err = client.ClientLogin(cmd.Context())
		if err != nil {
			return err
		}
		a.log.Debug().Str("username", cfg.Username).Msg("logged in")
	}
	a.client = client
	return nil
}

// reportError logs err with the category and codes of its envelope.
func (a *app) reportError(err error) {
	rich := pkgerrs.Envelope(err)
	ev := a.log.Error().
		Str("category", fmt.Sprint(rich.Category)).
		Str("text_code", rich.TextCode).
		Int("code", rich.Code)
	if len(rich.Metadata) > 0 {
		ev = ev.Interface("metadata", rich.Metadata)
	}
	ev.Msg(err.Error())
}
