package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultTolerance     float64 `json:"default_tolerance"`
	DefaultExpandStrips  bool    `json:"default_expand_strips"`
	DefaultMinWidth      float64 `json:"default_min_width"`
	DefaultMinHeight     float64 `json:"default_min_height"`
	DefaultAllowRotation bool    `json:"default_allow_rotation"`
	DefaultUnits         Units   `json:"default_units"`

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
	Theme          string   `json:"theme"`     // "light", "dark", "system"
	LogLevel       string   `json:"log_level"` // "debug", "info", "warn", "error"
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultTolerance:     defaults.Tolerance,
		DefaultExpandStrips:  defaults.ExpandStrips,
		DefaultMinWidth:      defaults.MinWidth,
		DefaultMinHeight:     defaults.MinHeight,
		DefaultAllowRotation: defaults.AllowRotation,
		DefaultUnits:         defaults.Units,
		RecentProjects:       []string{},
		Theme:                "system",
		LogLevel:             "info",
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Tolerance = c.DefaultTolerance
	s.ExpandStrips = c.DefaultExpandStrips
	s.MinWidth = c.DefaultMinWidth
	s.MinHeight = c.DefaultMinHeight
	s.AllowRotation = c.DefaultAllowRotation
	if c.DefaultUnits != "" {
		s.Units = c.DefaultUnits
	}
}

const maxRecentProjects = 10

// AddRecentProject moves path to the front of the recent list, dropping
// duplicates and trimming the list.
func (c *AppConfig) AddRecentProject(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	c.RecentProjects = recent
}
