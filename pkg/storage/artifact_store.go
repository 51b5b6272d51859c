package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactStore keeps generated export artifacts on local disk. Artifacts
// are addressed by a path relative to the base directory and are treated as
// disposable: anything past its TTL can be swept.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore ensures the base directory exists and returns a handle.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if dir == "" {
		dir = "./exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Write stores the bytes under the given relative name.
func (s *ArtifactStore) Write(name string, data []byte) error {
	path := s.AbsPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

// Open returns a read-only handle for a stored artifact.
func (s *ArtifactStore) Open(name string) (*os.File, error) {
	file, err := os.Open(s.AbsPath(name))
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", name, err)
	}
	return file, nil
}

// Remove deletes an artifact; a missing file is not an error.
func (s *ArtifactStore) Remove(name string) error {
	if err := os.Remove(s.AbsPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact %s: %w", name, err)
	}
	return nil
}

// Sweep deletes artifacts older than the TTL and reports how many went.
func (s *ArtifactStore) Sweep(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	removed := 0
	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweep artifacts: %w", err)
	}
	return removed, nil
}

// AbsPath resolves a relative artifact name against the base directory.
func (s *ArtifactStore) AbsPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
