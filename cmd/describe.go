package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/multiplot/internal/analysis"
	cfgpkg "github.com/KaramelBytes/multiplot/internal/config"
	"github.com/KaramelBytes/multiplot/internal/table"
	"github.com/KaramelBytes/multiplot/internal/utils"
)

var (
	descGroupBy    string
	descColumns    []string
	descOutputPath string
	descDelimiter  string
	descSheet      string
	descJSON       bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <data-file>",
	Short: "Summarize numeric columns per group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if descGroupBy == "" {
			return errors.New("--group-by is required")
		}
		delim := settings().DelimiterRune()
		if descDelimiter != "" {
			delim = cfgpkg.ParseDelimiter(descDelimiter)
		}
		t, err := table.Load(args[0], table.LoadOptions{
			Delimiter:     delim,
			Sheet:         descSheet,
			StringColumns: []string{descGroupBy},
		})
		if err != nil {
			return err
		}
		groups, err := t.SplitOn(descGroupBy)
		if err != nil {
			return err
		}
		rep, err := analysis.Describe(groups, descColumns)
		if err != nil {
			return err
		}
		rep.Name = t.Name()
		rep.GroupBy = descGroupBy

		var out []byte
		if descJSON {
			if out, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}
		if descOutputPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}
		if err := utils.SafeWriteFile(descOutputPath, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descGroupBy, "group-by", "g", "", "categorical column to split on (required)")
	describeCmd.Flags().StringSliceVarP(&descColumns, "columns", "c", nil, "comma-separated numeric columns; the first two are correlated")
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary")
	describeCmd.Flags().StringVar(&descDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	describeCmd.Flags().StringVar(&descSheet, "sheet", "", "XLSX: sheet name")
	describeCmd.Flags().BoolVar(&descJSON, "json", false, "emit JSON instead of Markdown")
}
