package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesprial/graw/pkg/types"
)

func (a *app) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printPosts(cmd *cobra.Command, posts []*types.Post, after string) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		return a.writeJSON(out, struct {
			Posts []*types.Post `json:"posts"`
			After string        `json:"after,omitempty"`
		}{posts, after})
	}

	for _, p := range posts {
		fmt.Fprintf(out, "%6d  %-10s  %s\n", p.Score, p.ID, p.Title)
	}
	if after != "" {
		fmt.Fprintf(out, "next: --after %s\n", after)
	}
	return nil
}

func (a *app) printComments(cmd *cobra.Command, listing *types.CommentListing) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		return a.writeJSON(out, listing)
	}
	writeCommentNodes(out, listing.Data.Children, 0)
	return nil
}

func writeCommentNodes(w io.Writer, nodes []types.CommentNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch {
		case n.Comment != nil:
			c := n.Comment
			fmt.Fprintf(w, "%s[%d] %s: %s\n", indent, c.Score, c.Author, firstLine(c.Body))
			writeCommentNodes(w, c.Replies.Children(), depth+1)
		case n.More != nil:
			fmt.Fprintf(w, "%s(%d more)\n", indent, n.More.Count)
		}
	}
}

func (a *app) printThings(cmd *cobra.Command, listing *types.MixedListing) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		return a.writeJSON(out, listing)
	}

	for i := range listing.Data.Children {
		thing := &listing.Data.Children[i]
		switch thing.Kind {
		case types.KindLink:
			post, err := thing.AsPost()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "post     %6d  %s\n", post.Score, post.Title)
		case types.KindComment:
			c, err := thing.AsComment()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "comment  %6d  %s\n", c.Score, firstLine(c.Body))
		default:
			fmt.Fprintf(out, "%-8s\n", thing.Kind)
		}
	}
	return nil
}

func (a *app) printSubreddit(cmd *cobra.Command, sr *types.SubredditData) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		return a.writeJSON(out, sr)
	}

	fmt.Fprintf(out, "%s\n%s\n", sr.DisplayNamePrefixed, sr.Title)
	if sr.Subscribers != nil {
		fmt.Fprintf(out, "subscribers: %d\n", *sr.Subscribers)
	}
	if sr.PublicDescription != "" {
		fmt.Fprintf(out, "\n%s\n", sr.PublicDescription)
	}
	return nil
}

func (a *app) printSubreddits(cmd *cobra.Command, listing *types.SubredditListing) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		return a.writeJSON(out, listing)
	}

	for _, child := range listing.Data.Children {
		sr := child.Data
		var subs int64
		if sr.Subscribers != nil {
			subs = *sr.Subscribers
		}
		fmt.Fprintf(out, "%-24s %10d  %s\n", sr.DisplayName, subs, firstLine(sr.PublicDescription))
	}
	return nil
}

func (a *app) printAccount(cmd *cobra.Command, acct *types.AccountData) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		return a.writeJSON(out, acct)
	}

	fmt.Fprintf(out, "u/%s\n", acct.Name)
	fmt.Fprintf(out, "link karma:    %d\n", acct.LinkKarma)
	fmt.Fprintf(out, "comment karma: %d\n", acct.CommentKarma)
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
