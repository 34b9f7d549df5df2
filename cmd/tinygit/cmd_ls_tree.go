package main

import (
	"fmt"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(a *app) *cobra.Command {
	var recursive, nameOnly bool
	cmd := &cobra.Command{
		Use:   "ls-tree [-r] [--name-only] <tree-hash>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			r, err := a.openRepo(cmd)
			if err != nil {
				return err
			}
			entries, err := r.ListTree(h, recursive)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				if nameOnly {
					fmt.Fprintln(out, e.Path)
					continue
				}
				fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, e.Kind, e.Hash, e.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list only entry names")
	return cmd
}
