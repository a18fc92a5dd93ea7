// GapFinder: Maximal Empty Rectangle Finder
//
// A cross-platform desktop application that finds every maximal free
// rectangle inside an outer rectangle with obstacles, and suggests where
// new elements fit.
//
// Build:
//   go build -o gapfinder ./cmd/gapfinder
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o gapfinder.exe ./cmd/gapfinder
//   GOOS=darwin  GOARCH=amd64 go build -o gapfinder-darwin ./cmd/gapfinder
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/piwi3910/gapfinder/internal/project"
	"github.com/piwi3910/gapfinder/internal/ui"
)

func main() {
	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: project.LogLevel(cfg),
	}))
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("failed to read app config", "error", err)
	}

	application := app.NewWithID("com.piwi3910.gapfinder")
	window := application.NewWindow("GapFinder: Maximal Empty Rectangle Finder")

	appUI := ui.NewApp(application, window, logger)
	appUI.SetupMenus()
	window.SetContent(fynetooltip.AddWindowToolTipLayer(appUI.Build(), window.Canvas()))
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()
	window.ShowAndRun()
}
