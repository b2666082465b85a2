package workspace

import (
	"os"

	"tradescape/internal/model"
)

// Repository persists workspaces between sessions. It is injected into the
// coordinator so persistence is a collaborator, not ambient global state.
type Repository interface {
	Load() (model.Workspace, error)
	Save(ws model.Workspace) error
}

// FileRepository stores the workspace as a JSON file.
type FileRepository struct {
	Path string
}

// NewFileRepository creates a file-backed repository.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{Path: path}
}

// Load reads the workspace from disk. A missing file yields the defaults.
// A corrupt file also yields the defaults, plus the parse error so the
// caller can log the degradation; it never crashes the process.
func (r *FileRepository) Load() (model.Workspace, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), err
	}
	ws, err := Decode(data)
	if err != nil {
		return Default(), err
	}
	return ws, nil
}

// Save writes the workspace to disk.
func (r *FileRepository) Save(ws model.Workspace) error {
	data, err := Encode(ws)
	if err != nil {
		return err
	}
	return os.WriteFile(r.Path, data, 0644)
}
