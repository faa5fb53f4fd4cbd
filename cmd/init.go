package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/multiplot/internal/manifest"
	"github.com/KaramelBytes/multiplot/internal/multiplot"
)

var (
	initDir     string
	initData    string
	initGroupBy string
	initX       string
	initY       string
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Write a skeleton manifest for a new page",
	Long: `Write a skeleton manifest for a new page. The file name is the kebab-cased
name, so "MLB 2012" becomes mlb-2012.yaml.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("invalid manifest name %q", args[0])
		}
		dir, err := manifestsDir(initDir)
		if err != nil {
			return err
		}
		base := strcase.ToKebab(name)
		if base == "" {
			return fmt.Errorf("invalid manifest name %q", args[0])
		}
		path := filepath.Join(dir, base+".yaml")
		// Refuse to overwrite an existing manifest.
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("manifest already exists at %s", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat manifest: %w", err)
		}

		m := manifest.New(name, path)
		m.Title = name
		m.Data = firstNonEmpty(initData, "data.csv")
		m.GroupBy = firstNonEmpty(initGroupBy, "group")
		m.X = firstNonEmpty(initX, "x")
		m.Y = firstNonEmpty(initY, "y")
		m.TitleFormat = multiplot.DefaultTitleFormat
		m.Output = base + ".html"
		if err := m.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Manifest initialized: %s\n", path)
		return nil
	},
}

// manifestsDir resolves an explicit directory or the configured
// manifests_dir, expanding a leading ~.
func manifestsDir(explicit string) (string, error) {
	dir := firstNonEmpty(explicit, settings().ManifestsDir, ".")
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = strings.TrimPrefix(dir, "~")
		dir = strings.TrimPrefix(dir, string(os.PathSeparator))
		dir = strings.TrimPrefix(dir, "/")
		dir = filepath.Join(home, dir)
	}
	return filepath.Clean(dir), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDir, "dir", "d", "", "directory for the manifest (default manifests_dir from config)")
	initCmd.Flags().StringVar(&initData, "data", "", "data file, relative to the manifest")
	initCmd.Flags().StringVar(&initGroupBy, "group-by", "", "categorical column to split on")
	initCmd.Flags().StringVarP(&initX, "x", "x", "", "numeric column for the x axis")
	initCmd.Flags().StringVarP(&initY, "y", "y", "", "numeric column for the y axis")
}
