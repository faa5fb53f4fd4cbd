package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/multiplot/internal/manifest"
	"github.com/KaramelBytes/multiplot/internal/multiplot"
	"github.com/KaramelBytes/multiplot/internal/table"
)

// resetFlags restores every flag to its default so invocations do not leak
// state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command in an isolated HOME and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(os.Getenv("HOME"), "config.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func copyFixture(t *testing.T, dir string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/baseball.csv")
	require.NoError(t, err)
	path := filepath.Join(dir, "baseball.csv")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func TestCLI_PlotWritesPage(t *testing.T) {
	home := isolate(t)
	data := copyFixture(t, home)
	out := filepath.Join(home, "site", "leagues.html")

	stdout, err := runCmd(t, "plot", data,
		"--group-by", "League", "-x", "BA", "-y", "W",
		"--x-title", "Batting Average", "--y-title", "Wins",
		"--group", "AL=American League Wins vs BA",
		"--group", "NL=National League Wins vs BA",
		"--expect-groups", "2",
		"-o", out, "--no-open")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Wrote "+out+" (2 charts: AL, NL, renderer echarts)")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	doc := string(b)
	assert.Contains(t, doc, "<div id='plot1'")
	assert.Contains(t, doc, "<div id='plot2'")
	assert.Contains(t, doc, "echarts.min.js")
	assert.Less(t, strings.Index(doc, "American League Wins vs BA"), strings.Index(doc, "National League Wins vs BA"))
	assert.True(t, strings.HasSuffix(doc, "</body>\n</html>"))
}

func TestCLI_PlotSVGRenderer(t *testing.T) {
	home := isolate(t)
	data := copyFixture(t, home)
	out := filepath.Join(home, "svg.html")

	stdout, err := runCmd(t, "plot", data, "-g", "League", "-x", "OBP", "-y", "RS",
		"--renderer", "svg", "--trend", "-o", out, "--no-open")
	require.NoError(t, err)
	assert.Contains(t, stdout, "renderer svg")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "<script src=")
	assert.Contains(t, string(b), `.innerHTML = "`)
}

func TestCLI_PlotErrors(t *testing.T) {
	home := isolate(t)
	data := copyFixture(t, home)

	_, err := runCmd(t, "plot", data, "-g", "League", "-x", "BA", "-y", "W", "--group", "MLB", "--no-open")
	require.ErrorIs(t, err, table.ErrGroupNotFound)

	_, err = runCmd(t, "plot", data, "-g", "League", "-x", "BA", "-y", "W", "--expect-groups", "3", "--no-open")
	require.ErrorIs(t, err, table.ErrInsufficientGroups)

	_, err = runCmd(t, "plot", data, "-g", "League", "-x", "BA", "-y", "W", "--renderer", "plotly", "--no-open")
	require.Error(t, err)

	_, err = os.Stat("multiplot.html")
	assert.True(t, os.IsNotExist(err), "failed runs write nothing")
}

func TestCLI_InitRenderList(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "pages")

	stdout, err := runCmd(t, "init", "leagues", "-d", dir,
		"--data", "baseball.csv", "--group-by", "League", "-x", "BA", "-y", "W")
	require.NoError(t, err)
	manifestPath := filepath.Join(dir, "leagues.yaml")
	assert.Contains(t, stdout, "✓ Manifest initialized: "+manifestPath)

	_, err = runCmd(t, "init", "leagues", "-d", dir)
	require.Error(t, err, "init refuses to overwrite")

	copyFixture(t, dir)
	stdout, err = runCmd(t, "render", manifestPath, "--no-open")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(2 charts: NL, AL")
	_, err = os.Stat(filepath.Join(dir, "leagues.html"))
	require.NoError(t, err)

	stdout, err = runCmd(t, "list", "--manifests", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "- leagues: "+manifestPath)
}

func TestCLI_RenderAll(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "pages")

	for _, name := range []string{"MLB 2012", "wins by league"} {
		_, err := runCmd(t, "init", name, "-d", dir,
			"--data", "baseball.csv", "--group-by", "League", "-x", "OBP", "-y", "W")
		require.NoError(t, err)
	}
	copyFixture(t, dir)

	stdout, err := runCmd(t, "render", "--all", "-d", dir, "-j", "2", "--no-open")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(stdout, "✓ Wrote "))
	for _, page := range []string{"mlb-2012.html", "wins-by-league.html"} {
		_, err = os.Stat(filepath.Join(dir, page))
		require.NoError(t, err, page)
	}

	_, err = runCmd(t, "render", "--all", filepath.Join(dir, "mlb-2012.yaml"))
	require.Error(t, err)

	_, err = runCmd(t, "render", "--all", "-d", home)
	require.Error(t, err, "no manifests")
}

func TestCLI_Schema(t *testing.T) {
	home := isolate(t)

	stdout, err := runCmd(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"group_by"`)

	out := filepath.Join(home, "manifest.schema.json")
	stdout, err = runCmd(t, "schema", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Wrote schema to "+out)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), manifest.SchemaID)
}

func TestCLI_ListGroups(t *testing.T) {
	home := isolate(t)
	data := copyFixture(t, home)

	stdout, err := runCmd(t, "list", "--groups", data, "--group-by", "League")
	require.NoError(t, err)
	assert.Equal(t, "- NL (4 rows)\n- AL (4 rows)\n", stdout)

	_, err = runCmd(t, "list")
	require.Error(t, err)
}

func TestCLI_Describe(t *testing.T) {
	home := isolate(t)
	data := copyFixture(t, home)

	stdout, err := runCmd(t, "describe", data, "-g", "League", "--columns", "BA,W")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[GROUP-BY SUMMARY]\nFile: baseball.csv\nGrouped by: League (2 groups)\n")
	assert.Contains(t, stdout, "[CORRELATIONS]")

	out := filepath.Join(home, "summary.json")
	_, err = runCmd(t, "describe", data, "-g", "League", "-c", "W", "--json", "-o", out)
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"group_by": "League"`)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)

	_, err := runCmd(t, "config", "set", "renderer", "svg")
	require.NoError(t, err)
	stdout, err := runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "renderer: svg\n")
	assert.Contains(t, stdout, "output: multiplot.html\n")

	_, err = runCmd(t, "config", "set", "nope", "1")
	require.Error(t, err)
}

func TestParseGroupFlags(t *testing.T) {
	got, err := parseGroupFlags([]string{"AL=American League Wins vs BA", " NL ", "X=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []multiplot.GroupSpec{
		{Key: "AL", Title: "American League Wins vs BA"},
		{Key: "NL"},
		{Key: "X", Title: "a=b"},
	}, got)

	_, err = parseGroupFlags([]string{"=Title"})
	require.Error(t, err)
}
