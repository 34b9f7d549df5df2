package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd(a *app) *cobra.Command {
	var pretty, showType, showSize bool
	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -s) <hash> | cat-file <type> <hash>",
		Short: "Show the content, type or size of a stored object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagged := pretty || showType || showSize; flagged == (len(args) == 2) {
				return errors.New("cat-file: give exactly one of -p, -t, -s or an object type")
			}
			h, err := object.ParseHash(args[len(args)-1])
			if err != nil {
				return err
			}
			r, err := a.openRepo(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				return catTyped(out, r.Store, args[0], h)
			}

			o, err := r.Store.Read(h)
			if err != nil {
				return err
			}
			switch {
			case showType:
				fmt.Fprintln(out, o.Kind)
			case showSize:
				fmt.Fprintln(out, o.Size())
			case o.Kind == object.KindTree:
				entries, err := object.DecodeTree(o.Body)
				if err != nil {
					return fmt.Errorf("cat-file %s: %w", h, err)
				}
				printEntries(out, entries)
			default:
				_, err := out.Write(o.Body)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show the object size")
	cmd.MarkFlagsMutuallyExclusive("pretty", "type", "size")
	return cmd
}

// catTyped prints h, failing unless it is of the named kind. Trees are
// printed one entry per line.
func catTyped(out io.Writer, s *object.Store, kindArg string, h object.Hash) error {
	kind, err := object.ParseKind(kindArg)
	if err != nil {
		return err
	}
	if kind == object.KindTree {
		t, err := s.ReadTree(h)
		if err != nil {
			return err
		}
		printEntries(out, t.Entries)
		return nil
	}
	data, err := s.ReadBlob(h)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func printEntries(out io.Writer, entries []object.TreeEntry) {
	for _, e := range entries {
		fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, entryKind(e), e.Hash, e.Name)
	}
}

func entryKind(e object.TreeEntry) object.Kind {
	if e.IsDir() {
		return object.KindTree
	}
	return object.KindBlob
}
