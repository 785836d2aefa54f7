package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("template not found")
	ErrInvalidFilename = errors.New("invalid template filename")
)

type TemplateInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

// TemplateStore keeps named template blobs as flat files under a base
// directory. The directory listing is the index; there is no manifest.
// Concurrent saves to the same name race at the filesystem level and the
// last writer wins, which is acceptable for operator-managed templates.
type TemplateStore struct {
	base string
	ext  string
}

func NewTemplateStore(base string) (*TemplateStore, error) {
	if base == "" {
		base = "./templates"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &TemplateStore{base: base, ext: ".docx"}, nil
}

func (s *TemplateStore) List() ([]TemplateInfo, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return nil, err
	}
	out := make([]TemplateInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, TemplateInfo{Name: e.Name(), Size: info.Size(), ModifiedTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *TemplateStore) Save(data []byte, filename string) (string, error) {
	if err := s.checkName(filename); err != nil {
		return "", err
	}
	dst := filepath.Join(s.base, filename)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *TemplateStore) Read(name string) ([]byte, error) {
	if err := s.checkName(name); err != nil {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(s.base, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return b, nil
}

func (s *TemplateStore) checkName(name string) error {
	if name == "" ||
		strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) ||
		!strings.HasSuffix(name, s.ext) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}
