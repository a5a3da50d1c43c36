package launch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/domain/bootstrap"
)

// Repository defines persistence operations for the last launch record.
type Repository interface {
	Load(ctx context.Context) (*bootstrap.LaunchRecord, error)
	Save(ctx context.Context, record *bootstrap.LaunchRecord) error
}

// FileRepository persists the launch record to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON record.
	path string
	// mu protects concurrent access to the record file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no launch has been recorded yet.
	ErrNotFound = errors.New("launch record not found")
	// errRecordIsNotSet is returned when saving a nil record.
	errRecordIsNotSet = errors.New("launch record is not set")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the record from disk.
func (r *FileRepository) Load(_ context.Context) (*bootstrap.LaunchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read launch record: %w", err)
	}

	var record bootstrap.LaunchRecord
	if err = json.Unmarshal(contents, &record); err != nil {
		return nil, fmt.Errorf("decode launch record: %w", err)
	}

	return &record, nil
}

// Save replaces the record on disk.
func (r *FileRepository) Save(_ context.Context, record *bootstrap.LaunchRecord) error {
	if record == nil {
		return errRecordIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode launch record: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write launch record: %w", err)
	}

	return nil
}
