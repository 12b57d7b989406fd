package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/taskweave/taskweave/pkg/errors"
	"github.com/taskweave/taskweave/pkg/graph"
)

// FileStore persists the snapshot as one JSON file.
// Writes go through a temp file and rename so a crash mid-write can never
// leave a truncated snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. Parent directories are
// created as needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotStore, err, "create snapshot dir")
	}
	return &FileStore{path: path}, nil
}

// Load reads the snapshot file. A missing file reports ok=false.
func (s *FileStore) Load(ctx context.Context) (graph.GraphData, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return graph.GraphData{}, false, nil
	}
	if err != nil {
		return graph.GraphData{}, false, errors.Wrap(errors.ErrCodeSnapshotStore, err, "read %s", s.path)
	}

	g, err := graph.UnmarshalGraphData(data)
	if err != nil {
		return graph.GraphData{}, false, errors.Wrap(errors.ErrCodeSnapshotDecode, err, "decode %s", s.path)
	}
	return g, true, nil
}

// Save atomically replaces the snapshot file.
func (s *FileStore) Save(ctx context.Context, data graph.GraphData) error {
	raw, err := data.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotStore, err, "encode snapshot")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeSnapshotStore, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeSnapshotStore, err, "replace %s", s.path)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

var _ Store = (*FileStore)(nil)
