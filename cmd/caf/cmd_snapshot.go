package main

import (
	"fmt"
	"os"

	"github.com/caf-vcs/caf/pkg/repo"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	var message string
	var author string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store the working directory as a tree, optionally committing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			root, err := r.Snapshot()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tree %s\n", root)

			if message == "" {
				return nil
			}

			h, err := r.CreateCommit(root, resolveAuthor(r, author), message, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", h)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "also create a commit with this message")
	cmd.Flags().StringVar(&author, "author", "", "commit author (defaults to repo config, then $USER)")
	return cmd
}

// resolveAuthor picks the commit author: flag, then repo config, then the
// current user.
func resolveAuthor(r *repo.Repo, flag string) string {
	if flag != "" {
		return flag
	}
	if cfg, err := r.ReadConfig(); err == nil && cfg.Author != "" {
		return cfg.Author
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}
