package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreProjects(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "merged.json")
	store := NewFileStore(dataPath, filepath.Join(dir, "export.xlsx"))

	_, err := store.Projects()
	assert.ErrorIs(t, err, ErrNoData)

	require.NoError(t, os.WriteFile(dataPath, []byte(`{"not": "a list"}`), 0644))
	_, err = store.Projects()
	assert.ErrorIs(t, err, ErrInvalidData)

	payload := `[{"BUIDL ID": 1, "BUIDL name": "Alpha", "Extra": [1, 2]}]`
	require.NoError(t, os.WriteFile(dataPath, []byte(payload), 0644))
	raw, err := store.Projects()
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}

func TestFileStoreExportPath(t *testing.T) {
	dir := t.TempDir()
	exportPath := filepath.Join(dir, "final_dorahacks_data.xlsx")
	store := NewFileStore(filepath.Join(dir, "merged.json"), exportPath)

	_, err := store.ExportPath()
	assert.ErrorIs(t, err, ErrNoExport)

	require.NoError(t, os.WriteFile(exportPath, []byte("PK"), 0644))
	path, err := store.ExportPath()
	require.NoError(t, err)
	assert.Equal(t, exportPath, path)
}
