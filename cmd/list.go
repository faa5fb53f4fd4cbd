package cmd

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/multiplot/internal/manifest"
	"github.com/KaramelBytes/multiplot/internal/table"
)

var (
	listGroups    bool
	listManifests bool
	listGroupBy   string
	listSheet     string
)

var listCmd = &cobra.Command{
	Use:   "list (--groups <data-file> --group-by <col> | --manifests [dir])",
	Short: "List the groups of a table or the manifests in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listGroups == listManifests { // either both true or both false
			return errors.New("specify exactly one of --groups or --manifests")
		}
		out := cmd.OutOrStdout()
		if listManifests {
			explicit := ""
			if len(args) == 1 {
				explicit = args[0]
			}
			dir, err := manifestsDir(explicit)
			if err != nil {
				return err
			}
			ms, err := manifest.Discover(dir)
			var skipped *multierror.Error
			if errors.As(err, &skipped) {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: skipped unreadable manifests: %v\n", err)
			} else if err != nil {
				return err
			}
			if len(ms) == 0 {
				fmt.Fprintln(out, "(no manifests)")
				return nil
			}
			for _, m := range ms {
				fmt.Fprintf(out, "- %s: %s (%s)\n", m.Name, m.Path(), m.ID)
			}
			return nil
		}

		if len(args) != 1 {
			return errors.New("--groups needs a data file")
		}
		if listGroupBy == "" {
			return errors.New("--group-by is required when using --groups")
		}
		t, err := table.Load(args[0], table.LoadOptions{
			Delimiter:     settings().DelimiterRune(),
			Sheet:         listSheet,
			StringColumns: []string{listGroupBy},
		})
		if err != nil {
			return err
		}
		groups, err := t.SplitOn(listGroupBy)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Fprintln(out, "(no groups)")
			return nil
		}
		for _, g := range groups {
			fmt.Fprintf(out, "- %s (%d rows)\n", g.Key, g.Table.Rows())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listGroups, "groups", false, "list the groups of a data file")
	listCmd.Flags().BoolVar(&listManifests, "manifests", false, "list manifests (default manifests_dir from config)")
	listCmd.Flags().StringVarP(&listGroupBy, "group-by", "g", "", "categorical column for --groups")
	listCmd.Flags().StringVar(&listSheet, "sheet", "", "XLSX: sheet name for --groups")
}
