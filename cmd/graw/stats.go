package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jamesprial/graw"
	"github.com/jamesprial/graw/pkg/types"
)

const deletedAuthor = "[deleted]"

// commentStats summarizes one comment tree.
type commentStats struct {
	Comments      int           `json:"comments"`
	Deleted       int           `json:"deleted"`
	UniqueAuthors int           `json:"unique_authors"`
	TotalScore    int           `json:"total_score"`
	AverageScore  float64       `json:"average_score"`
	MaxScore      int           `json:"max_score"`
	MinScore      int           `json:"min_score"`
	MaxDepth      int           `json:"max_depth"`
	TopLevel      int           `json:"top_level"`
	Unloaded      int           `json:"unloaded"`
	TopAuthors    []authorStats `json:"top_authors"`
}

type authorStats struct {
	Author   string `json:"author"`
	Comments int    `json:"comments"`
	Score    int    `json:"score"`
}

// computeStats walks tree once. top limits TopAuthors; ties are broken by
// author name so the output is stable.
func computeStats(tree graw.CommentTree, top int) commentStats {
	s := commentStats{
		MaxDepth: tree.GetDepth(),
		TopLevel: len(tree.GetTopLevel()),
		Unloaded: len(tree.MoreIDs()),
	}

	byAuthor := make(map[string]*authorStats)
	first := true
	tree.Walk(func(c *types.Comment) {
		s.Comments++
		s.TotalScore += c.Score
		if first || c.Score > s.MaxScore {
			s.MaxScore = c.Score
		}
		if first || c.Score < s.MinScore {
			s.MinScore = c.Score
		}
		first = false

		if c.Author == deletedAuthor {
			s.Deleted++
			return
		}
		a, ok := byAuthor[c.Author]
		if !ok {
			a = &authorStats{Author: c.Author}
			byAuthor[c.Author] = a
		}
		a.Comments++
		a.Score += c.Score
	})

	if s.Comments > 0 {
		s.AverageScore = float64(s.TotalScore) / float64(s.Comments)
	}
	s.UniqueAuthors = len(byAuthor)

	for _, a := range byAuthor {
		s.TopAuthors = append(s.TopAuthors, *a)
	}
	sort.Slice(s.TopAuthors, func(i, j int) bool {
		if s.TopAuthors[i].Comments != s.TopAuthors[j].Comments {
			return s.TopAuthors[i].Comments > s.TopAuthors[j].Comments
		}
		return s.TopAuthors[i].Author < s.TopAuthors[j].Author
	})
	if top > 0 && len(s.TopAuthors) > top {
		s.TopAuthors = s.TopAuthors[:top]
	}
	return s
}

func newStatsCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats <subreddit> <article>",
		Short: "Summarize the discussion under a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.client.AuthSubreddit(args[0])
			if err != nil {
				return err
			}
			listing, err := sub.ArticleComments(cmd.Context(), args[1], &graw.CommentOptions{Limit: a.limit})
			if err != nil {
				return err
			}

			s := computeStats(graw.NewCommentTree(listing), top)
			out := cmd.OutOrStdout()
			if a.output == "json" {
				return a.writeJSON(out, s)
			}

			fmt.Fprintf(out, "comments:       %d (%d top level, %d deleted)\n", s.Comments, s.TopLevel, s.Deleted)
			fmt.Fprintf(out, "authors:        %d\n", s.UniqueAuthors)
			fmt.Fprintf(out, "deepest reply:  %d\n", s.MaxDepth)
			fmt.Fprintf(out, "score:          total %d, avg %.2f, max %d, min %d\n", s.TotalScore, s.AverageScore, s.MaxScore, s.MinScore)
			if s.Unloaded > 0 {
				fmt.Fprintf(out, "not loaded:     %d\n", s.Unloaded)
			}
			for i, au := range s.TopAuthors {
				fmt.Fprintf(out, "%2d. u/%s  %d comments, score %d\n", i+1, au.Author, au.Comments, au.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "number of most active authors to list")
	return cmd
}
