package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-codegen-pipeline/internal/model"
)

// OutputManager handles per-run output directories and download paths.
type OutputManager struct {
	BaseOutputDir string
}

// OutputFile describes one file produced by a run.
type OutputFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// CreateJobOutputDir creates the directory holding one job's outputs.
func (om *OutputManager) CreateJobOutputDir(jobID string) (string, error) {
	jobDir := filepath.Join(om.BaseOutputDir, filepath.Base(jobID))

	err := os.MkdirAll(jobDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}

	return jobDir, nil
}

// Destination returns where a run of the given kind writes inside the job
// directory: the directory itself for loose images, a single file otherwise.
func (om *OutputManager) Destination(jobID string, kind model.OutputKind) string {
	jobDir := filepath.Join(om.BaseOutputDir, filepath.Base(jobID))
	switch kind {
	case model.OutputPaginatedDocument:
		return filepath.Join(jobDir, "codes.pdf")
	case model.OutputArchive:
		return filepath.Join(jobDir, "codes.zip")
	default:
		return jobDir
	}
}

// FilePath resolves a file inside a job directory, refusing path traversal.
func (om *OutputManager) FilePath(jobID, fileName string) (string, error) {
	if jobID == "" || fileName == "" || filepath.Base(jobID) != jobID || filepath.Base(fileName) != fileName ||
		strings.HasPrefix(jobID, ".") || strings.HasPrefix(fileName, "..") {
		return "", fmt.Errorf("invalid output path %s/%s", jobID, fileName)
	}
	return filepath.Join(om.BaseOutputDir, jobID, fileName), nil
}

// GetDownloadURL generates a download URL for a file
func (om *OutputManager) GetDownloadURL(jobID, fileName string) string {
	cleanFileName := filepath.Base(fileName)
	return fmt.Sprintf("/api/v1/download/%s/%s", jobID, cleanFileName)
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".png":
		return "image"
	case ".svg":
		return "vector"
	case ".pdf":
		return "document"
	case ".zip":
		return "archive"
	default:
		return "unknown"
	}
}

// ListFiles returns the files of a job sorted by name. A job without a
// directory has no files.
func (om *OutputManager) ListFiles(jobID string) ([]OutputFile, error) {
	entries, err := os.ReadDir(filepath.Join(om.BaseOutputDir, filepath.Base(jobID)))
	if errors.Is(err, os.ErrNotExist) {
		return []OutputFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]OutputFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, OutputFile{
			Name: e.Name(),
			Type: om.GetFileType(e.Name()),
			Size: info.Size(),
			URL:  om.GetDownloadURL(jobID, e.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}
