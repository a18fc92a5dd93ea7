package model

import (
	"fmt"
	"testing"
)

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultTolerance != defaults.Tolerance {
		t.Errorf("Tolerance mismatch: config=%f settings=%f", cfg.DefaultTolerance, defaults.Tolerance)
	}
	if cfg.DefaultExpandStrips != defaults.ExpandStrips {
		t.Errorf("ExpandStrips mismatch: config=%v settings=%v", cfg.DefaultExpandStrips, defaults.ExpandStrips)
	}
	if cfg.DefaultUnits != defaults.Units {
		t.Errorf("Units mismatch: config=%s settings=%s", cfg.DefaultUnits, defaults.Units)
	}
	if cfg.Theme != "system" {
		t.Errorf("expected default theme=system, got %s", cfg.Theme)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultTolerance = 1e-6
	cfg.DefaultExpandStrips = false
	cfg.DefaultMinWidth = 12
	cfg.DefaultUnits = UnitsPixels

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.Tolerance != 1e-6 {
		t.Errorf("expected Tolerance=1e-6, got %g", s.Tolerance)
	}
	if s.ExpandStrips {
		t.Error("expected ExpandStrips=false")
	}
	if s.MinWidth != 12 {
		t.Errorf("expected MinWidth=12, got %f", s.MinWidth)
	}
	if s.Units != UnitsPixels {
		t.Errorf("expected Units=px, got %s", s.Units)
	}
}

func TestApplyToSettingsKeepsUnitsWhenUnset(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultUnits = ""

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)
	if s.Units != UnitsWorld {
		t.Errorf("expected Units to stay %s, got %s", UnitsWorld, s.Units)
	}
}

func TestAddRecentProject(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentProject("/a.gapfind")
	cfg.AddRecentProject("/b.gapfind")
	cfg.AddRecentProject("/a.gapfind")

	if len(cfg.RecentProjects) != 2 {
		t.Fatalf("expected 2 recent projects, got %d", len(cfg.RecentProjects))
	}
	if cfg.RecentProjects[0] != "/a.gapfind" {
		t.Errorf("expected most recent first, got %s", cfg.RecentProjects[0])
	}

	for i := 0; i < 20; i++ {
		cfg.AddRecentProject(fmt.Sprintf("/p%d.gapfind", i))
	}
	if len(cfg.RecentProjects) != maxRecentProjects {
		t.Errorf("expected list capped at %d, got %d", maxRecentProjects, len(cfg.RecentProjects))
	}
}
