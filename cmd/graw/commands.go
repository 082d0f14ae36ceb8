package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jamesprial/graw"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
	"github.com/jamesprial/graw/pkg/types"
	"github.com/jamesprial/graw/pkg/validation"
)

// pageInterval spaces out page fetches when --max spans several pages.
const pageInterval = time.Second

func (a *app) cursor() *types.ListingCursor {
	return &types.ListingCursor{Limit: a.limit}
}

func newListingCmd(a *app, sort, short string) *cobra.Command {
	var (
		period string
		max    int
		after  string
	)

	cmd := &cobra.Command{
		Use:   sort + " <subreddit>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.client.AuthSubreddit(args[0])
			if err != nil {
				return err
			}

			if after != "" && !validation.IsValidFullname(after) {
				return &pkgerrs.ConfigError{Field: "after", Message: fmt.Sprintf("%q is not a fullname like t3_abc123", after)}
			}
			cursor := a.cursor()
			cursor.After = after
			if period != "" {
				p, ok := types.ParsePeriod(period)
				if !ok {
					return &pkgerrs.ConfigError{Field: "period", Message: fmt.Sprintf("unknown period %q", period)}
				}
				cursor.Period = p
			}

			fetch := listingFunc(sub, sort)
			if max <= 0 {
				page, err := fetch(cmd.Context(), cursor)
				if err != nil {
					return err
				}
				return a.printPosts(cmd, types.Posts(page), page.After())
			}

			it := graw.NewPostIterator(cmd.Context(), *cursor, fetch).
				WithLimiter(rate.NewLimiter(rate.Every(pageInterval), 1))
			posts, err := it.Collect(max)
			if err != nil {
				return err
			}
			a.log.Debug().Int("pages", it.Pages()).Int("posts", len(posts)).Msg("listing collected")
			return a.printPosts(cmd, posts, "")
		},
	}

	flags := cmd.Flags()
	if sort == "top" {
		flags.StringVar(&period, "period", "", "time window: hour, day, week, month, year or all")
	}
	flags.IntVar(&max, "max", 0, "follow pages until this many posts are read")
	flags.StringVar(&after, "after", "", "start after this fullname (e.g. t3_abc123)")
	return cmd
}

func listingFunc(sub *graw.Subreddit, sort string) graw.ListingFunc {
	switch sort {
	case "new":
		return sub.Latest
	case "rising":
		return sub.Rising
	case "top":
		return sub.Top
	default:
		return sub.Hot
	}
}

func newCommentsCmd(a *app) *cobra.Command {
	var (
		depth int
		check bool
	)

	cmd := &cobra.Command{
		Use:   "comments <subreddit> [article]",
		Short: "Show a post's comment tree, or the newest comments of a subreddit",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.client.AuthSubreddit(args[0])
			if err != nil {
				return err
			}
			opts := &graw.CommentOptions{Depth: depth, Limit: a.limit}

			var listing *types.CommentListing
			if len(args) == 2 {
				listing, err = sub.ArticleComments(cmd.Context(), args[1], opts)
			} else {
				listing, err = sub.LatestComments(cmd.Context(), opts)
			}
			if err != nil {
				return err
			}
			if check {
				if err := validation.CheckCommentListing(listing); err != nil {
					a.log.Warn().Err(err).Msg("comment tree is malformed")
				}
			}
			return a.printComments(cmd, listing)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "maximum reply depth to request")
	cmd.Flags().BoolVar(&check, "check", false, "warn about structural problems in the returned tree")
	return cmd
}

func newAboutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "about <subreddit>",
		Short: "Show subreddit metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.client.AuthSubreddit(args[0])
			if err != nil {
				return err
			}
			about, err := sub.About(cmd.Context())
			if err != nil {
				return err
			}
			return a.printSubreddit(cmd, about)
		},
	}
}

func newUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "user <name> [about|overview|submitted|comments]",
		Short:     "Show a user's profile or history",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"about", "overview", "submitted", "comments"},
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.User(args[0])
			if err != nil {
				return err
			}

			view := "about"
			if len(args) == 2 {
				view = strings.ToLower(args[1])
			}

			ctx := cmd.Context()
			switch view {
			case "about":
				account, err := user.About(ctx)
				if err != nil {
					return err
				}
				return a.printAccount(cmd, account)
			case "overview":
				listing, err := user.Overview(ctx, a.cursor())
				if err != nil {
					return err
				}
				return a.printThings(cmd, listing)
			case "submitted":
				page, err := user.Submitted(ctx, a.cursor())
				if err != nil {
					return err
				}
				return a.printPosts(cmd, types.Posts(page), page.After())
			case "comments":
				listing, err := user.Comments(ctx, a.cursor())
				if err != nil {
					return err
				}
				return a.printComments(cmd, listing)
			default:
				return &pkgerrs.ConfigError{Field: "view", Message: fmt.Sprintf("unknown view %q", view)}
			}
		},
	}
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Log in and show the authenticated account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.client
			if !client.IsAuthenticated() {
				var err error
				client, err = client.ClientLogin(cmd.Context())
				if err != nil {
					return err
				}
			}
			me, err := client.Me()
			if err != nil {
				return err
			}
			account, err := me.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.printAccount(cmd, account)
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search subreddit names and descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := a.client.SearchSubreddits(cmd.Context(), strings.Join(args, " "), a.cursor())
			if err != nil {
				return err
			}
			return a.printSubreddits(cmd, listing)
		},
	}
}
