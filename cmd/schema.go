package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/multiplot/internal/manifest"
	"github.com/KaramelBytes/multiplot/internal/utils"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the manifest format",
	Long: `Print the JSON schema of the manifest format. Point a YAML language server at
it to get completion and validation while editing manifests.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := utils.PrettyJSON(manifest.Schema())
		if err != nil {
			return err
		}
		if schemaOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		if err := utils.SafeWriteFile(schemaOutput, append(b, '\n')); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote schema to %s\n", schemaOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "write the schema to a file instead of stdout")
}
