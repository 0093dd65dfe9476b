package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-codegen-pipeline/internal/model"
)

func TestOutputManager_Destination(t *testing.T) {
	base := t.TempDir()
	om := NewOutputManager(base)

	assert.Equal(t, filepath.Join(base, "job-1"), om.Destination("job-1", model.OutputLooseImages))
	assert.Equal(t, filepath.Join(base, "job-1", "codes.pdf"), om.Destination("job-1", model.OutputPaginatedDocument))
	assert.Equal(t, filepath.Join(base, "job-1", "codes.zip"), om.Destination("job-1", model.OutputArchive))
	assert.NoDirExists(t, filepath.Join(base, "job-1"))

	dir, err := om.CreateJobOutputDir("job-1")
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestOutputManager_ListFiles(t *testing.T) {
	base := t.TempDir()
	om := NewOutputManager(base)

	files, err := om.ListFiles("nothing")
	require.NoError(t, err)
	assert.Empty(t, files)

	dir, err := om.CreateJobOutputDir("job-2")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.svg"), []byte("<svg/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	files, err = om.ListFiles("job-2")
	require.NoError(t, err)
	assert.Equal(t, []OutputFile{
		{Name: "a.png", Type: "image", Size: 3, URL: "/api/v1/download/job-2/a.png"},
		{Name: "b.svg", Type: "vector", Size: 6, URL: "/api/v1/download/job-2/b.svg"},
	}, files)
}

func TestOutputManager_FilePath(t *testing.T) {
	om := NewOutputManager("/srv/out")

	p, err := om.FilePath("job", "codes.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/out", "job", "codes.zip"), p)

	for _, bad := range [][2]string{{"..", "x"}, {"job", "../x"}, {"a/b", "x"}, {"job", ""}, {"job", ".."}} {
		_, err := om.FilePath(bad[0], bad[1])
		assert.Error(t, err, bad)
	}
}

func TestGetFileType(t *testing.T) {
	om := NewOutputManager("")
	assert.Equal(t, "image", om.GetFileType("A.PNG"))
	assert.Equal(t, "document", om.GetFileType("codes.pdf"))
	assert.Equal(t, "archive", om.GetFileType("codes.zip"))
	assert.Equal(t, "unknown", om.GetFileType("notes.txt"))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, ParseDuration("250ms", time.Second))
	assert.Equal(t, time.Second, ParseDuration("", time.Second))
	assert.Equal(t, time.Second, ParseDuration("soon", time.Second))
	assert.Equal(t, time.Second, ParseDuration("-1s", time.Second))

	assert.Equal(t, 20, ParseLimit("20", 50))
	assert.Equal(t, 50, ParseLimit("", 50))
	assert.Equal(t, 50, ParseLimit("0", 50))
	assert.Equal(t, 50, ParseLimit("many", 50))
}
