package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ArtifactInfo describes one stored artifact.
type ArtifactInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ArtifactStore persists agent work products as files under a fixed root.
// Identity is the filename; writes overwrite with last-writer-wins.
type ArtifactStore struct {
	root string
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{root: dir}
}

// ValidateFilename rejects names that would escape the storage root.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename is required")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("filename must not contain path separators")
	}
	if name == "." || name == ".." || strings.HasPrefix(name, "..") {
		return fmt.Errorf("invalid filename")
	}
	return nil
}

// Save writes content under name, overwriting any previous version.
func (s *ArtifactStore) Save(name, content string) error {
	if err := ValidateFilename(name); err != nil {
		return err
	}

	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}
	return nil
}

// Read returns the content of the named artifact, or ErrNotFound.
func (s *ArtifactStore) Read(name string) (string, error) {
	if err := ValidateFilename(name); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return string(data), nil
}

// List returns all artifacts sorted by name.
func (s *ArtifactStore) List() ([]ArtifactInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	infos := make([]ArtifactInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, ArtifactInfo{
			Name:     entry.Name(),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos, nil
}
