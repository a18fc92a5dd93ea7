package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/gapfinder/internal/model"
	"github.com/piwi3910/gapfinder/internal/project"
)

// showSettingsDialog displays the application preferences editor.
func (a *App) showSettingsDialog() {
	cfg := a.config

	floatEntry := func(val *float64) *widget.Entry {
		e := floatField(*val)
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil && v >= 0 {
				*val = v
			}
		}
		return e
	}

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	logSelect := widget.NewSelect([]string{"debug", "info", "warn", "error"}, func(selected string) {
		cfg.LogLevel = selected
	})
	logSelect.SetSelected(cfg.LogLevel)

	expandCheck := widget.NewCheck("", func(b bool) { cfg.DefaultExpandStrips = b })
	expandCheck.Checked = cfg.DefaultExpandStrips
	rotationCheck := widget.NewCheck("", func(b bool) { cfg.DefaultAllowRotation = b })
	rotationCheck.Checked = cfg.DefaultAllowRotation

	unitSelect := widget.NewSelect([]string{
		string(model.UnitsWorld), string(model.UnitsPixels), string(model.UnitsMillimeters),
	}, func(selected string) {
		cfg.DefaultUnits = model.Units(selected)
	})
	unitSelect.SetSelected(string(cfg.DefaultUnits))

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("Log Level (restart)", logSelect),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Tolerance", floatEntry(&cfg.DefaultTolerance)),
		widget.NewFormItem("Default Expand Strips", expandCheck),
		widget.NewFormItem("Default Min Width", floatEntry(&cfg.DefaultMinWidth)),
		widget.NewFormItem("Default Min Height", floatEntry(&cfg.DefaultMinHeight)),
		widget.NewFormItem("Default Allow Rotation", rotationCheck),
		widget.NewFormItem("Default Units", unitSelect),
	}

	d := dialog.NewForm("Preferences", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			a.config = cfg
			a.theme.SetVariantName(cfg.Theme)
			a.app.Settings().SetTheme(a.theme)
			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), a.window)
			} else {
				dialog.ShowInformation("Settings Saved", "Preferences apply to new projects.", a.window)
			}
		},
		a.window,
	)
	d.Resize(fyne.NewSize(500, 450))
	d.Show()
}

// showImportExportDialog displays the backup import/export dialog.
func (a *App) showImportExportDialog() {
	exportBtn := widget.NewButton("Export All Data...", func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()
			path := writer.URI().Path()
			if err := project.ExportAllData(path, a.config, a.templates); err != nil {
				dialog.ShowError(err, a.window)
			} else {
				a.logger.Info("backup exported", "path", path)
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("All application data exported to:\n%s", path), a.window)
			}
		}, a.window)
		d.SetFileName("gapfinder-backup.json")
		d.Show()
	})

	importBtn := widget.NewButton("Import All Data...", func() {
		dialog.ShowConfirm("Import Data",
			"Importing data will replace your preferences and templates.\n\nAre you sure you want to continue?",
			func(ok bool) {
				if !ok {
					return
				}
				d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
					if err != nil || reader == nil {
						return
					}
					defer reader.Close()
					backup, err := project.ImportAllData(reader.URI().Path())
					if err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					a.config = backup.Config
					a.templates = backup.Templates
					if err := a.saveConfig(); err != nil {
						dialog.ShowError(fmt.Errorf("failed to save imported settings: %w", err), a.window)
						return
					}
					if err := project.SaveDefaultTemplates(a.templates); err != nil {
						dialog.ShowError(fmt.Errorf("failed to save imported templates: %w", err), a.window)
						return
					}
					a.SetupMenus()
					dialog.ShowInformation("Import Complete",
						fmt.Sprintf("Data imported successfully from backup created at %s.", backup.CreatedAt), a.window)
				}, a.window)
				d.Show()
			},
			a.window,
		)
	})

	content := container.NewVBox(
		widget.NewLabel("Export preferences and layout templates to a backup file,\nor import from a previously exported backup."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d := dialog.NewCustom("Import / Export Data", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

// saveConfig persists the current app config to disk.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(project.DefaultConfigPath(), a.config)
}
