package main

import (
	"fmt"

	"github.com/caf-vcs/caf/pkg/object"
	"github.com/caf-vcs/caf/pkg/repo"
	"github.com/spf13/cobra"
)

func newHashObjectCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute a file's content hash, optionally storing the content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var h object.Hash
			var err error

			if write {
				r, err2 := repo.Open(".")
				if err2 != nil {
					return err2
				}
				var blob object.Blob
				blob, err = r.SaveFile(args[0])
				h = blob.Hash
			} else {
				h, err = object.HashFile(args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "store the content in the object store")
	return cmd
}
