// Package project persists projects, templates and application settings to
// disk as JSON.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

// FileExtension is the extension used for saved projects.
const FileExtension = ".gapfind"

// ErrInvalidProject is returned when a loaded project holds a rectangle
// with a negative size.
var ErrInvalidProject = errors.New("invalid project")

// Save writes the project to path as indented JSON.
func Save(path string, proj model.Project) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads a project from path. Rectangles are checked on the way in, so
// a hand-edited file cannot smuggle a negative size into the finder.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project file: %w", err)
	}
	proj := model.NewProject()
	if err := json.Unmarshal(data, &proj); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if proj.Layout.Obstacles == nil {
		proj.Layout.Obstacles = []model.Obstacle{}
	}
	if err := validate(proj); err != nil {
		return model.Project{}, err
	}
	return proj, nil
}

func validate(proj model.Project) error {
	if !proj.Layout.Outer.Valid() {
		return fmt.Errorf("%w: outer %v: %w", ErrInvalidProject, proj.Layout.Outer, geom.ErrNegativeSize)
	}
	for i, o := range proj.Layout.Obstacles {
		if !o.Rect.Valid() {
			return fmt.Errorf("%w: obstacle %d (%s) %v: %w", ErrInvalidProject, i, o.Label, o.Rect, geom.ErrNegativeSize)
		}
	}
	if proj.Settings.Tolerance < 0 {
		return fmt.Errorf("%w: negative tolerance %g", ErrInvalidProject, proj.Settings.Tolerance)
	}
	return nil
}

// WithExtension appends FileExtension to path unless it is already there.
func WithExtension(path string) string {
	if filepath.Ext(path) == FileExtension {
		return path
	}
	return path + FileExtension
}
