// Package seed loads project fixtures into the store at startup.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/vos-cloud/vshell/internal/store"
)

// Manifest is one .vproj YAML file: a project id plus its initial tree.
type Manifest struct {
	Project string `yaml:"project"`
	Files   []struct {
		Path    string `yaml:"path"`
		Kind    string `yaml:"kind,omitempty"`
		Content string `yaml:"content,omitempty"`
	} `yaml:"files"`
}

// Seeder loads manifests from a directory.
type Seeder struct {
	store store.Store
	dir   string
	log   *zap.Logger
}

func New(st store.Store, dir string, log *zap.Logger) *Seeder {
	return &Seeder{store: st, dir: dir, log: log}
}

// Seed loads every .vproj manifest under the seed directory. A missing
// directory is not an error; the server just starts empty.
func (s *Seeder) Seed(ctx context.Context) error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.log.Info("seed directory not found, starting empty", zap.String("dir", s.dir))
		return nil
	}

	var loaded, failed int
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".vproj") {
			return nil
		}
		if err := s.loadManifest(ctx, path); err != nil {
			s.log.Warn("manifest failed", zap.String("path", path), zap.Error(err))
			failed++
			return nil
		}
		loaded++
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("seeding complete", zap.Int("loaded", loaded), zap.Int("failed", failed))
	return nil
}

func (s *Seeder) loadManifest(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if m.Project == "" {
		return fmt.Errorf("%s: missing project id", filepath.Base(path))
	}

	files := make([]store.File, 0, len(m.Files))
	for _, f := range m.Files {
		kind := store.KindFile
		if f.Kind == "folder" {
			kind = store.KindFolder
		}
		files = append(files, store.File{
			ProjectID: m.Project,
			Path:      f.Path,
			Kind:      kind,
			Content:   f.Content,
		})
	}
	return s.store.CreateBulk(ctx, m.Project, files)
}
