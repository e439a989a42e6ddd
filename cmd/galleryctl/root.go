// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/svg-gallery/cliparse"
)

const defaultServer = "http://localhost:3318"

type rootOptions struct {
	server   string
	retryMax int
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "galleryctl",
		Short:         "Browse and vote on an SVG gallery",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cliparse.LoadDotEnv(); err != nil {
				return err
			}
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			if !cmd.Flags().Changed("server") {
				if v := os.Getenv("GALLERY_SERVER"); v != "" {
					opts.server = v
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", defaultServer, "Gallery server base URL (env GALLERY_SERVER)")
	rootCmd.PersistentFlags().IntVar(&opts.retryMax, "retry-max", cliparse.DefaultRetryMax, "Retries for remote reads")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newCountsCmd(opts))
	rootCmd.AddCommand(newVoteCmd(opts))
	rootCmd.AddCommand(newAdminKeyCmd())

	return rootCmd
}
