package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/multiplot/internal/manifest"
	"github.com/KaramelBytes/multiplot/internal/multiplot"
)

func baseball(dir string) *manifest.Manifest {
	m := manifest.New("baseball", filepath.Join(dir, "baseball.yaml"))
	m.Title = "MLB 2012"
	m.Data = "data/baseball.csv"
	m.GroupBy = "League"
	m.X, m.Y = "BA", "W"
	m.XTitle, m.YTitle = "Batting Average", "Wins"
	m.Groups = []manifest.Group{{Key: "AL", Title: "American League Wins vs BA"}, {Key: "NL"}}
	m.ExpectGroups = 2
	m.Delimiter = ";"
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := baseball(dir)
	require.NoError(t, m.Save())

	got, err := manifest.Load(m.Path())
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Groups, got.Groups)
	assert.Equal(t, "League", got.GroupBy)
	assert.True(t, got.CreatedAt.Equal(m.CreatedAt))
	assert.Equal(t, m.Path(), got.Path())
	require.NoError(t, got.Validate())
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := manifest.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, manifest.ErrNotFound)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	t.Parallel()

	m := manifest.New("", filepath.Join(t.TempDir(), "bad.yaml"))
	m.ID = "not-a-uuid"
	m.Groups = []manifest.Group{{Key: "AL"}, {Key: "AL"}, {}}
	m.Renderer = "plotly"

	err := m.Validate()
	require.ErrorIs(t, err, manifest.ErrInvalid)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	// id, name, data, group_by, x, y, duplicate key, empty key, renderer
	assert.Len(t, merr.Errors, 9)
}

func TestRequestResolvesRelativePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := baseball(dir)

	req, err := m.Request()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "baseball.csv"), req.DataPath)
	assert.Equal(t, filepath.Join(dir, "baseball.html"), req.Output)
	assert.Equal(t, ';', req.Delimiter)
	assert.Equal(t, "MLB 2012", req.PageTitle)
	assert.Equal(t, 2, req.ExpectGroups)
	assert.Equal(t, []multiplot.GroupSpec{{Key: "AL", Title: "American League Wins vs BA"}, {Key: "NL"}}, req.Groups)

	abs := filepath.Join(t.TempDir(), "elsewhere.html")
	m.Output = abs
	req, err = m.Request()
	require.NoError(t, err)
	assert.Equal(t, abs, req.Output)

	m.X = ""
	_, err = m.Request()
	require.ErrorIs(t, err, manifest.ErrInvalid)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, baseball(dir).Save())
	a := manifest.New("attendance", filepath.Join(dir, "attendance.yml"))
	a.Data, a.GroupBy, a.X, a.Y = "gate.csv", "Division", "Price", "Attendance"
	require.NoError(t, a.Save())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("foo: bar\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	got, err := manifest.Discover(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
	require.Len(t, got, 2)
	assert.Equal(t, "attendance", got[0].Name)
	assert.Equal(t, "baseball", got[1].Name)
}
