// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/svg-gallery/cliparse"
	"github.com/danielhkuo/svg-gallery/httpx"
	"github.com/danielhkuo/svg-gallery/listing"
	"github.com/danielhkuo/svg-gallery/models"
	"github.com/danielhkuo/svg-gallery/ranking"
	"github.com/danielhkuo/svg-gallery/votes"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		q          listing.Query
		listingURL string
		token      string
		ext        string
		noVotes    bool
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the assets of a folder in gallery order",
		Long: `List the assets of a repository folder, ranked by up-votes from the
gallery server and then by name.

Examples:
  # Rank a folder using the local server's votes
  galleryctl list --repo owner/icons --path svgs

  # Name order only, without contacting the gallery server
  galleryctl list --repo owner/icons --path svgs --no-votes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lc := listing.NewClient(listing.Options{
				BaseURL:   listingURL,
				Token:     token,
				Extension: ext,
				HTTP:      httpx.New(httpx.Options{RetryMax: opts.retryMax}),
			})
			entries, err := lc.Fetch(ctx, q)
			if err != nil {
				return err
			}
			entries, _ = listing.DedupeTitles(entries, lc.Extension())

			counts := map[string]models.VoteCount{}
			if !noVotes {
				titles := make([]string, len(entries))
				for i, e := range entries {
					titles[i] = listing.Title(e.Name, lc.Extension())
				}
				counts, err = votes.NewClient(opts.server, opts.retryMax).Counts(ctx, titles)
				if err != nil {
					return fmt.Errorf("failed to read votes: %w", err)
				}
			}
			ranked := ranking.Rank(entries, counts, lc.Extension())

			out := cmd.OutOrStdout()
			if outputJSON {
				cards := make([]models.Card, len(ranked))
				for i, e := range ranked {
					title := listing.Title(e.Name, lc.Extension())
					cards[i] = models.Card{
						Entry:        e,
						Title:        title,
						DisplayTitle: listing.DisplayTitle(e.Name, lc.Extension()),
						Votes:        countFor(counts, title),
					}
				}
				data, err := json.MarshalIndent(cards, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(ranked) == 0 {
				fmt.Fprintf(out, "No %s files found in %s\n", lc.Extension(), q.Folder)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tTITLE\tSIZE\tUP\tDOWN")
			for i, e := range ranked {
				c := countFor(counts, listing.Title(e.Name, lc.Extension()))
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1,
					listing.DisplayTitle(e.Name, lc.Extension()), humanize.Bytes(uint64(max(e.Size, 0))),
					humanize.Comma(int64(c.UpCount)), humanize.Comma(int64(c.DownCount)))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&q.Repo, "repo", "", "Repository (owner/name)")
	cmd.Flags().StringVar(&q.Folder, "path", "", "Folder path")
	cmd.Flags().StringVar(&q.Branch, "branch", "", "Branch (default main)")
	cmd.Flags().StringVar(&listingURL, "listing-url", cliparse.DefaultListingBaseURL, "Listing API base URL")
	cmd.Flags().StringVar(&token, "github-token", "", "Listing API token")
	cmd.Flags().StringVar(&ext, "ext", cliparse.DefaultExtension, "File extension to list")
	cmd.Flags().BoolVar(&noVotes, "no-votes", false, "Skip the vote read and list in name order")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	cmd.MarkFlagRequired("repo")
	cmd.MarkFlagRequired("path")

	return cmd
}

func countFor(counts map[string]models.VoteCount, title string) models.VoteCount {
	if c, ok := counts[title]; ok {
		return c
	}
	return models.VoteCount{Title: title}
}
