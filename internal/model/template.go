package model

import (
	"time"

	"github.com/google/uuid"
)

// LayoutTemplate is a reusable layout with its settings but no results.
type LayoutTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Layout      Layout   `json:"layout"`
	Settings    Settings `json:"settings"`
}

// NewLayoutTemplate creates a new template from the given project data.
// It copies the layout and settings but intentionally excludes results.
func NewLayoutTemplate(name, description string, layout Layout, settings Settings) LayoutTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return LayoutTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Layout:      Layout{Outer: layout.Outer, Obstacles: copyObstacles(layout.Obstacles)},
		Settings:    settings,
	}
}

// ToProject creates a new Project from this template.
// Obstacles get fresh IDs so they are independent of the template.
func (t LayoutTemplate) ToProject(projectName string) Project {
	obstacles := make([]Obstacle, len(t.Layout.Obstacles))
	for i, o := range t.Layout.Obstacles {
		obstacles[i] = Obstacle{
			ID:    uuid.New().String()[:8],
			Label: o.Label,
			Rect:  o.Rect,
		}
	}

	return Project{
		Name:     projectName,
		Layout:   Layout{Outer: t.Layout.Outer, Obstacles: obstacles},
		Settings: t.Settings,
	}
}

// TemplateStore holds a collection of layout templates.
type TemplateStore struct {
	Templates []LayoutTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []LayoutTemplate{},
	}
}

func (ts *TemplateStore) Add(t LayoutTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *LayoutTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns a list of template names for UI dropdowns.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *LayoutTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func copyObstacles(obstacles []Obstacle) []Obstacle {
	if obstacles == nil {
		return []Obstacle{}
	}
	cp := make([]Obstacle, len(obstacles))
	copy(cp, obstacles)
	return cp
}
