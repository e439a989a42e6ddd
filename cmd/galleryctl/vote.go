// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/svg-gallery/auth"
	"github.com/danielhkuo/svg-gallery/models"
	"github.com/danielhkuo/svg-gallery/votes"
)

func newVoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "vote <up|down> <title>",
		Short:     "Cast one vote for a title",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(models.DirectionUp), string(models.DirectionDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir, title := models.Direction(args[0]), args[1]
			if !dir.Valid() {
				return fmt.Errorf("direction must be up or down, got %q", args[0])
			}

			out := cmd.OutOrStdout()
			ledger := votes.NewLedger(votes.NewClient(opts.server, opts.retryMax))
			ledger.OnChange(func(c votes.Change) {
				fmt.Fprintf(out, "%-11s %s  up %s  down %s\n", c.Phase, c.Title,
					humanize.Comma(int64(c.Count.UpCount)), humanize.Comma(int64(c.Count.DownCount)))
			})
			ledger.OnNotice(func(n votes.Notice) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Vote submission failed for %s: %v\n", n.Title, n.Err)
			})

			if err := ledger.Load(ctx, []string{title}); err != nil {
				return err
			}
			if _, err := ledger.Vote(ctx, title, dir); err != nil {
				if errors.Is(err, votes.ErrVoteFailed) {
					return errors.New("vote was rolled back")
				}
				return err
			}
			return nil
		},
	}
}

func newCountsCmd(opts *rootOptions) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "counts [title...]",
		Short: "Show vote counters (all titles when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := votes.NewClient(opts.server, opts.retryMax).Counts(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				data, err := json.MarshalIndent(models.CountsResponse{Counts: counts}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			titles := make([]string, 0, len(counts))
			for t := range counts {
				titles = append(titles, t)
			}
			sort.Strings(titles)
			for _, t := range titles {
				c := counts[t]
				fmt.Fprintf(out, "%s\tup %s\tdown %s\n", t, humanize.Comma(int64(c.UpCount)), humanize.Comma(int64(c.DownCount)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	return cmd
}

func newAdminKeyCmd() *cobra.Command {
	var salt string

	cmd := &cobra.Command{
		Use:   "admin-key",
		Short: "Print the admin key for a salt (env ADMIN_KEY_SALT)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if salt == "" {
				salt = os.Getenv("ADMIN_KEY_SALT")
			}
			if salt == "" {
				return errors.New("salt required (use --salt or ADMIN_KEY_SALT env)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateAdminKey(auth.AdminScope, salt))
			return nil
		},
	}
	cmd.Flags().StringVar(&salt, "salt", "", "Admin key salt")
	return cmd
}
