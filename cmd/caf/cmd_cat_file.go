package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/caf-vcs/caf/pkg/object"
	"github.com/caf-vcs/caf/pkg/repo"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "cat-file (blob|tree|commit) <hash>",
		Short:     "Print a stored object",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"blob", "tree", "commit"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			kind, hash := args[0], object.Hash(args[1])
			out := cmd.OutOrStdout()

			switch kind {
			case "blob":
				h, err := r.Store.OpenForReading(hash)
				if err != nil {
					return err
				}
				defer h.Close()
				_, err = io.Copy(out, h)
				return err

			case "tree":
				tree, err := r.Store.LoadTree(hash)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tree.Records))
				for name := range tree.Records {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					rec := tree.Records[name]
					fmt.Fprintf(out, "%s %s\t%s\n", rec.Kind, rec.Hash, rec.Name)
				}
				return nil

			case "commit":
				c, err := r.Store.LoadCommit(hash)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "tree %s\n", c.TreeHash)
				for _, p := range c.Parents {
					fmt.Fprintf(out, "parent %s\n", p)
				}
				fmt.Fprintf(out, "author %s\n", c.Author)
				fmt.Fprintf(out, "timestamp %d\n", c.Timestamp)
				fmt.Fprintf(out, "\n%s\n", c.Message)
				return nil

			default:
				return fmt.Errorf("unknown object kind %q", kind)
			}
		},
	}
}
