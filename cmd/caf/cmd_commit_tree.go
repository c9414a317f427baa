package main

import (
	"fmt"

	"github.com/caf-vcs/caf/pkg/object"
	"github.com/caf-vcs/caf/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd() *cobra.Command {
	var message string
	var author string
	var parents []string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree-hash>",
		Short: "Create a commit object for an existing tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			tree := object.Hash(args[0])
			if !r.Store.Has(tree) {
				return fmt.Errorf("tree %s: %w", tree, object.ErrNotFound)
			}

			parentHashes := make([]object.Hash, 0, len(parents))
			for _, p := range parents {
				parentHashes = append(parentHashes, object.Hash(p))
			}

			h, err := r.CreateCommit(tree, resolveAuthor(r, author), message, parentHashes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "commit author (defaults to repo config, then $USER)")
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit hash (repeatable, order preserved)")
	return cmd
}
