package main

import (
	"fmt"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <hash>...",
		Short: "Verify every object reachable from the given trees or blobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := make([]object.Hash, 0, len(args))
			for _, arg := range args {
				h, err := object.ParseHash(arg)
				if err != nil {
					return err
				}
				roots = append(roots, h)
			}
			r, err := a.openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := r.Store.Verify(roots)
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"ok: verified %d tree(s), %d blob(s)\n",
				report.Trees,
				report.Blobs,
			)
			return nil
		},
	}
}
