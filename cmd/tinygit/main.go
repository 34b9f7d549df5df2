package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/tinygit/pkg/repo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "tinygit 0.1.0-dev"

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand.
type app struct {
	fs      afero.Fs
	dir     string
	verbose bool
	log     *zap.Logger
}

func newRootCmd(fsys afero.Fs) *cobra.Command {
	a := &app{fs: fsys, log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "tinygit",
		Short:         "Minimal content-addressed object store with git's loose object format",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.verbose {
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			a.log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "run as if started in this directory")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log object writes to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newHashObjectCmd(a))
	root.AddCommand(newCatFileCmd(a))
	root.AddCommand(newLsTreeCmd(a))
	root.AddCommand(newWriteTreeCmd(a))
	root.AddCommand(newVerifyCmd(a))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func (a *app) openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	return repo.Open(cmd.Context(), a.fs, a.dir, repo.WithLogger(a.log))
}

// resolve interprets p relative to the --dir flag.
func (a *app) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.dir, p)
}
