package copier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
)

func TestMarkerPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/store", "goose", ".bridle-commit-work.json"),
		MarkerPath(filepath.Join("/store", "goose", "work")))
}

func TestPendingAndOrphans(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "work")
	stage := filepath.Join(dir, stagePrefix+"op1")
	stray := filepath.Join(dir, previousPrefix+"op0")
	for _, d := range []string{stage, stray, filepath.Join(dir, "other")} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}
	require.NoError(t, fileutil.AtomicWriteJSON(MarkerPath(target), &Manifest{
		Version:     ManifestVersion,
		OperationID: "op1",
		StageDir:    stage,
	}))

	pending, err := Pending(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{target}, pending)

	orphans, err := Orphans(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{stray}, orphans, "the staged directory belongs to the marker")

	require.NoError(t, Recover(target))
	assert.NoFileExists(t, MarkerPath(target))
	assert.NoDirExists(t, stage)

	pending, err = Pending(dir)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPending_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	pending, err := Pending(dir)
	require.NoError(t, err)
	assert.Empty(t, pending)

	orphans, err := Orphans(dir)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestReadManifest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bridle-commit-work.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := ReadManifest(path)
	assert.ErrorContains(t, err, "parsing commit marker")
}
