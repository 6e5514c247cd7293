package export

import (
	"context"
	"path/filepath"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
	"github.com/dmitrijs2005/scanpilot/internal/filex"
)

// FileExporter writes <dir>/result-<id>.json, replacing any previous export.
type FileExporter struct {
	dir string
}

func NewFileExporter(dir string) *FileExporter {
	if dir == "" {
		dir = "."
	}
	return &FileExporter{dir: dir}
}

func (e *FileExporter) Export(_ context.Context, res *models.AnalysisResult) (string, error) {
	data, err := encode(res)
	if err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(e.dir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ObjectName(res.ID))
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
