package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesprial/graw"
	"github.com/jamesprial/graw/pkg/types"
)

// maxSeenPosts bounds the watcher's memory of post ids.
const maxSeenPosts = 1000

func newWatchCmd(a *app) *cobra.Command {
	var (
		interval time.Duration
		polls    int
	)

	cmd := &cobra.Command{
		Use:   "watch <subreddit>",
		Short: "Poll a subreddit and print new posts as they appear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.client.AuthSubreddit(args[0])
			if err != nil {
				return err
			}
			w := &watcher{
				sub:   sub,
				limit: a.limit,
				out:   cmd.OutOrStdout(),
				seen:  make(map[string]struct{}),
				app:   a,
			}
			a.log.Info().Str("subreddit", sub.Name).Dur("interval", interval).Msg("watching")
			return w.run(cmd.Context(), interval, polls)
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&interval, "interval", 30*time.Second, "time between polls")
	flags.IntVar(&polls, "polls", 0, "stop after this many polls (0 runs until interrupted)")
	return cmd
}

type watcher struct {
	sub   *graw.Subreddit
	limit int
	out   io.Writer
	seen  map[string]struct{}
	app   *app
}

// run polls until ctx is done or polls is reached. The first poll's failure
// is returned; later failures are logged and polling continues.
func (w *watcher) run(ctx context.Context, interval time.Duration, polls int) error {
	if _, err := w.poll(ctx); err != nil {
		return fmt.Errorf("initial fetch failed: %w", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for done := 1; polls <= 0 || done < polls; done++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if _, err := w.poll(ctx); err != nil {
			w.app.log.Warn().Err(err).Str("subreddit", w.sub.Name).Msg("poll failed")
		}
	}
	return nil
}

// poll fetches the newest page and prints unseen posts oldest first. It
// returns the number of new posts.
func (w *watcher) poll(ctx context.Context) (int, error) {
	page, err := w.sub.Latest(ctx, &types.ListingCursor{Limit: w.limit})
	if err != nil {
		return 0, err
	}
	posts := types.Posts(page)

	fresh := 0
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		if _, ok := w.seen[p.ID]; ok {
			continue
		}
		w.seen[p.ID] = struct{}{}
		fresh++
		if err := w.print(p); err != nil {
			return fresh, err
		}
	}

	if len(w.seen) > maxSeenPosts {
		w.seen = make(map[string]struct{}, len(posts))
		for _, p := range posts {
			w.seen[p.ID] = struct{}{}
		}
	}

	w.app.log.Debug().Int("new", fresh).Int("seen", len(w.seen)).Msg("poll complete")
	return fresh, nil
}

func (w *watcher) print(p *types.Post) error {
	if w.app.output == "json" {
		return w.app.writeJSON(w.out, p)
	}
	kind := "link"
	if p.IsSelf {
		kind = "self"
	}
	_, err := fmt.Fprintf(w.out, "%-10s  %-4s  u/%-20s  %s\n", p.ID, kind, p.Author, p.Title)
	return err
}
