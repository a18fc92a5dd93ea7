package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/gapfinder/internal/engine"
	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/importer"
	"github.com/piwi3910/gapfinder/internal/model"
	"github.com/piwi3910/gapfinder/internal/project"
	"github.com/piwi3910/gapfinder/internal/ui/widgets"
)

const (
	tabLayout = iota
	tabSettings
	tabResults
)

// App holds all application state and UI references.
type App struct {
	app       fyne.App
	window    fyne.Window
	logger    *slog.Logger
	theme     *GapFinderTheme
	project   model.Project
	config    model.AppConfig
	templates model.TemplateStore
	history   *History
	tabs      *container.AppTabs

	// UI references for dynamic updates
	outerContainer    *fyne.Container
	obstacleContainer *fyne.Container
	settingsContainer *fyne.Container
	resultContainer   *fyne.Container
	resultCanvas      *widgets.LayoutCanvas
	statusLabel       *widget.Label
}

// NewApp creates the application state. Config and templates are loaded
// from the user's config directory; failures fall back to defaults.
func NewApp(application fyne.App, window fyne.Window, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		app:     application,
		window:  window,
		logger:  logger,
		history: NewHistory(),
	}

	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		logger.Warn("failed to load app config, using defaults", "error", err)
		cfg = model.DefaultAppConfig()
	}
	a.config = cfg

	templates, err := project.LoadDefaultTemplates()
	if err != nil {
		logger.Warn("failed to load templates", "error", err)
	}
	a.templates = templates

	a.theme = NewGapFinderTheme(cfg.Theme)
	application.Settings().SetTheme(a.theme)

	a.project = a.newProject()
	return a
}

// newProject creates an empty project with the user's default settings.
func (a *App) newProject() model.Project {
	proj := model.NewProject()
	a.config.ApplyToSettings(&proj.Settings)
	return proj
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	recentItem := fyne.NewMenuItem("Open Recent", nil)
	recentItem.ChildMenu = a.recentMenu()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", a.newProjectAction),
		fyne.NewMenuItem("New From Template...", a.showTemplateManager),
		fyne.NewMenuItem("Open Project...", a.loadProject),
		recentItem,
		fyne.NewMenuItem("Save Project...", a.saveProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Obstacles from CSV...", func() {
			a.importFile("CSV", []string{".csv", ".txt"}, importer.ImportCSV)
		}),
		fyne.NewMenuItem("Import Obstacles from Excel...", func() {
			a.importFile("Excel", []string{".xlsx"}, importer.ImportExcel)
		}),
		fyne.NewMenuItem("Import Layout from DXF...", func() {
			a.importFile("DXF", []string{".dxf"}, importer.ImportDXF)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF Report...", a.exportPDF),
		fyne.NewMenuItem("Export Excel Workbook...", a.exportXLSX),
		fyne.NewMenuItem("Export Free Space Labels...", a.exportLabels),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear All Obstacles", func() {
			a.pushHistory("Clear Obstacles")
			a.project.Layout.Obstacles = []model.Obstacle{}
			a.layoutChanged()
		}),
		fyne.NewMenuItem("Save Layout as Template...", a.showSaveTemplateDialog),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Find Free Space", func() {
			a.runFinder()
			a.tabs.SelectIndex(tabResults)
		}),
		fyne.NewMenuItem("Place Element...", a.showPlaceDialog),
		fyne.NewMenuItem("Verify Result", a.verifyResult),
		fyne.NewMenuItem("Compare Settings...", a.showCompareDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", a.showSettingsDialog),
		fyne.NewMenuItem("Import / Export Data...", a.showImportExportDialog),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))
}

func (a *App) recentMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, path := range a.config.RecentProjects {
		p := path
		items = append(items, fyne.NewMenuItem(p, func() { a.openProject(p) }))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("No recent projects", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return fyne.NewMenu("Open Recent", items...)
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About GapFinder",
		"GapFinder: Maximal Empty Rectangle Finder\n\n"+
			"Finds every maximal free rectangle left inside an outer\n"+
			"rectangle by a set of obstacles, for placing new elements.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	layoutTab := container.NewTabItem("Layout", a.buildLayoutPanel())
	settingsTab := container.NewTabItem("Settings", a.buildSettingsPanel())
	resultsTab := container.NewTabItem("Results", a.buildResultsPanel())

	a.tabs = container.NewAppTabs(layoutTab, settingsTab, resultsTab)
	a.tabs.SetTabLocation(container.TabLocationTop)

	a.statusLabel = widget.NewLabel("")
	a.updateStatus()

	return container.NewBorder(a.buildToolbar(), a.statusLabel, nil, nil, a.tabs)
}

func (a *App) buildToolbar() fyne.CanvasObject {
	return container.NewHBox(
		newIconButtonWithTooltip(theme.FileIcon(), "New project", a.newProjectAction),
		newIconButtonWithTooltip(theme.FolderOpenIcon(), "Open project", a.loadProject),
		newIconButtonWithTooltip(theme.DocumentSaveIcon(), "Save project", a.saveProject),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.ContentUndoIcon(), "Undo", a.undo),
		newIconButtonWithTooltip(theme.ContentRedoIcon(), "Redo", a.redo),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.SearchIcon(), "Find free space", func() {
			a.runFinder()
			a.tabs.SelectIndex(tabResults)
		}),
		newIconButtonWithTooltip(theme.ContentAddIcon(), "Place an element", a.showPlaceDialog),
		newIconButtonWithTooltip(theme.ConfirmIcon(), "Verify the result", a.verifyResult),
		layout.NewSpacer(),
	)
}

func (a *App) updateStatus() {
	if a.statusLabel == nil {
		return
	}
	status := fmt.Sprintf("%s | %d obstacles", a.project.Name, len(a.project.Layout.Obstacles))
	if a.project.Result != nil {
		status += fmt.Sprintf(" | %d free rectangles", len(a.project.Result.Free))
	} else {
		status += " | not computed"
	}
	a.statusLabel.SetText(status)
}

// ─── Layout Panel ──────────────────────────────────────────

func (a *App) buildLayoutPanel() fyne.CanvasObject {
	a.outerContainer = container.NewVBox()
	a.obstacleContainer = container.NewVBox()
	a.refreshOuter()
	a.refreshObstacleList()

	addBtn := widget.NewButtonWithIcon("Add Obstacle", theme.ContentAddIcon(), func() {
		a.showObstacleDialog(-1)
	})

	return container.NewBorder(
		container.NewVBox(
			a.outerContainer,
			container.NewHBox(
				widget.NewLabelWithStyle("Obstacles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
				layout.NewSpacer(),
				addBtn,
			),
		),
		nil, nil, nil,
		container.NewVScroll(a.obstacleContainer),
	)
}

func (a *App) refreshOuter() {
	a.outerContainer.RemoveAll()

	o := a.project.Layout.Outer
	leftEntry := floatField(o.Left)
	topEntry := floatField(o.Top)
	widthEntry := floatField(o.Width)
	heightEntry := floatField(o.Height)

	applyBtn := widget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), func() {
		r, err := parseRectFields(leftEntry.Text, topEntry.Text, widthEntry.Text, heightEntry.Text)
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if r == a.project.Layout.Outer {
			return
		}
		a.pushHistory("Change Outer")
		a.project.Layout.Outer = r
		a.layoutChanged()
	})

	units := string(a.project.Settings.Units)
	a.outerContainer.Add(widget.NewCard("Outer Rectangle", "", container.NewGridWithColumns(5,
		widget.NewLabel("Left ("+units+")"),
		widget.NewLabel("Top ("+units+")"),
		widget.NewLabel("Width ("+units+")"),
		widget.NewLabel("Height ("+units+")"),
		widget.NewLabel(""),
		leftEntry, topEntry, widthEntry, heightEntry, applyBtn,
	)))
}

func (a *App) refreshObstacleList() {
	a.obstacleContainer.RemoveAll()

	if len(a.project.Layout.Obstacles) == 0 {
		a.obstacleContainer.Add(widget.NewLabel("No obstacles yet. Click 'Add Obstacle' or import a file."))
		return
	}

	units := string(a.project.Settings.Units)
	bold := fyne.TextStyle{Bold: true}
	header := container.NewGridWithColumns(7,
		widget.NewLabelWithStyle("Label", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Left ("+units+")", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Top ("+units+")", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Width", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Height", fyne.TextAlignLeading, bold),
		widget.NewLabel(""),
		widget.NewLabel(""),
	)
	a.obstacleContainer.Add(header)
	a.obstacleContainer.Add(widget.NewSeparator())

	for i := range a.project.Layout.Obstacles {
		idx := i
		o := a.project.Layout.Obstacles[idx]
		row := container.NewGridWithColumns(7,
			widget.NewLabel(o.Label),
			widget.NewLabel(formatNumber(o.Rect.Left)),
			widget.NewLabel(formatNumber(o.Rect.Top)),
			widget.NewLabel(formatNumber(o.Rect.Width)),
			widget.NewLabel(formatNumber(o.Rect.Height)),
			widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
				a.showObstacleDialog(idx)
			}),
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.pushHistory("Delete Obstacle")
				obstacles := a.project.Layout.Obstacles
				a.project.Layout.Obstacles = append(obstacles[:idx:idx], obstacles[idx+1:]...)
				a.layoutChanged()
			}),
		)
		a.obstacleContainer.Add(row)
	}
}

// showObstacleDialog adds a new obstacle when idx is negative and edits
// obstacle idx otherwise.
func (a *App) showObstacleDialog(idx int) {
	title, confirm := "Add Obstacle", "Add"
	o := model.Obstacle{Label: fmt.Sprintf("Obstacle %d", len(a.project.Layout.Obstacles)+1)}
	if idx >= 0 {
		title, confirm = "Edit Obstacle", "Save"
		o = a.project.Layout.Obstacles[idx]
	}

	labelEntry := widget.NewEntry()
	labelEntry.SetPlaceHolder("Obstacle name")
	labelEntry.SetText(o.Label)

	leftEntry := floatField(o.Rect.Left)
	topEntry := floatField(o.Rect.Top)
	widthEntry := floatField(o.Rect.Width)
	heightEntry := floatField(o.Rect.Height)

	form := dialog.NewForm(title, confirm, "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Label", labelEntry),
			widget.NewFormItem("Left", leftEntry),
			widget.NewFormItem("Top", topEntry),
			widget.NewFormItem("Width", widthEntry),
			widget.NewFormItem("Height", heightEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			r, err := parseRectFields(leftEntry.Text, topEntry.Text, widthEntry.Text, heightEntry.Text)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			if !a.project.Layout.Outer.Contains(r, a.project.Settings.Tolerance) {
				dialog.ShowError(fmt.Errorf("obstacle %v is not inside the outer rectangle %v", r, a.project.Layout.Outer), a.window)
				return
			}

			if idx < 0 {
				a.pushHistory("Add Obstacle")
				added, _ := model.NewObstacle(labelEntry.Text, r.Left, r.Top, r.Width, r.Height)
				a.project.Layout.Obstacles = append(a.project.Layout.Obstacles, added)
			} else {
				a.pushHistory("Edit Obstacle")
				a.project.Layout.Obstacles[idx].Label = labelEntry.Text
				a.project.Layout.Obstacles[idx].Rect = r
			}
			a.layoutChanged()
		},
		a.window,
	)
	form.Resize(fyne.NewSize(400, 350))
	form.Show()
}

// ─── Settings Panel ────────────────────────────────────────

func (a *App) buildSettingsPanel() fyne.CanvasObject {
	a.settingsContainer = container.NewVBox()
	a.refreshSettings()
	return container.NewVScroll(a.settingsContainer)
}

func (a *App) refreshSettings() {
	a.settingsContainer.RemoveAll()
	s := &a.project.Settings

	// Settings edits invalidate the result but are not recorded in history
	// per keystroke.
	floatEntry := func(val *float64) *widget.Entry {
		e := floatField(*val)
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil && v >= 0 {
				*val = v
				a.invalidateResult()
			}
		}
		return e
	}

	expandCheck := widget.NewCheck("", func(b bool) {
		s.ExpandStrips = b
		a.invalidateResult()
	})
	expandCheck.Checked = s.ExpandStrips

	rotationCheck := widget.NewCheck("", func(b bool) { s.AllowRotation = b })
	rotationCheck.Checked = s.AllowRotation

	unitSelect := widget.NewSelect([]string{
		string(model.UnitsWorld), string(model.UnitsPixels), string(model.UnitsMillimeters),
	}, func(selected string) {
		s.Units = model.Units(selected)
	})
	unitSelect.SetSelected(string(s.Units))

	finderSection := widget.NewCard("Finder", "", container.NewGridWithColumns(2,
		widget.NewLabel("Tolerance (0 = exact)"), floatEntry(&s.Tolerance),
		widget.NewLabel("Expand Strips to Maximal"), expandCheck,
	))

	usableSection := widget.NewCard("Usable Free Space", "Smaller rectangles are hidden from reports",
		container.NewGridWithColumns(2,
			widget.NewLabel("Minimum Width"), floatEntry(&s.MinWidth),
			widget.NewLabel("Minimum Height"), floatEntry(&s.MinHeight),
		))

	placementSection := widget.NewCard("Placement", "", container.NewGridWithColumns(2,
		widget.NewLabel("Allow Rotation"), rotationCheck,
		widget.NewLabel("Units"), unitSelect,
	))

	a.settingsContainer.Add(finderSection)
	a.settingsContainer.Add(usableSection)
	a.settingsContainer.Add(placementSection)
}

// ─── Results Panel ─────────────────────────────────────────

func (a *App) buildResultsPanel() fyne.CanvasObject {
	a.resultContainer = container.NewStack()
	a.refreshResults()
	return a.resultContainer
}

func (a *App) refreshResults() {
	a.resultContainer.RemoveAll()

	view, lc := widgets.RenderResult(a.project)
	a.resultCanvas = lc
	if a.project.Result == nil {
		a.resultContainer.Add(view)
		a.resultContainer.Refresh()
		return
	}

	usable := a.project.Result.Usable(a.project.Settings.MinWidth, a.project.Settings.MinHeight)
	list := widget.NewList(
		func() int { return len(usable) },
		func() fyne.CanvasObject { return widget.NewLabel("free rectangle") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			r := usable[id].Rect
			obj.(*widget.Label).SetText(fmt.Sprintf("%s  %s x %s @ (%s, %s)",
				usable[id].ID, formatNumber(r.Width), formatNumber(r.Height),
				formatNumber(r.Left), formatNumber(r.Top)))
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		r := usable[id].Rect
		a.resultCanvas.SetHighlight(&r)
	}

	side := container.NewBorder(
		widget.NewLabelWithStyle(fmt.Sprintf("Usable Free Space (%d)", len(usable)),
			fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewButton("Clear Highlight", func() {
			list.UnselectAll()
			a.resultCanvas.SetHighlight(nil)
		}),
		nil, nil,
		list,
	)

	split := container.NewHSplit(view, side)
	split.Offset = 0.7
	a.resultContainer.Add(split)
	a.resultContainer.Refresh()
}

// ─── Actions ───────────────────────────────────────────────

func (a *App) runFinder() {
	finder := engine.New(a.project.Settings)
	finder.Logger = a.logger
	result, err := finder.Run(a.project.Layout)
	if err != nil {
		a.logger.Error("finder failed", "error", err)
		dialog.ShowError(err, a.window)
		return
	}
	a.logger.Info("free space computed",
		"obstacles", len(a.project.Layout.Obstacles),
		"free", len(result.Free))
	a.project.Result = &result
	a.refreshResults()
	a.updateStatus()
}

// invalidateResult drops a result that no longer matches the layout or settings.
func (a *App) invalidateResult() {
	if a.project.Result == nil {
		return
	}
	a.project.Result = nil
	a.refreshResults()
	a.updateStatus()
}

// layoutChanged refreshes every view that shows the layout.
func (a *App) layoutChanged() {
	a.project.Result = nil
	a.refreshOuter()
	a.refreshObstacleList()
	a.refreshResults()
	a.updateStatus()
}

// projectReplaced refreshes every view after the whole project changed.
func (a *App) projectReplaced() {
	a.refreshSettings()
	a.layoutChanged()
}

func (a *App) newProjectAction() {
	a.project = a.newProject()
	a.history.Clear()
	a.projectReplaced()
}

func (a *App) pushHistory(label string) {
	a.history.Push(MakeSnapshot(a.project.Layout, a.project.Settings, label))
}

func (a *App) restore(s Snapshot) {
	a.project.Layout = s.Layout
	a.project.Settings = s.Settings
	a.projectReplaced()
}

func (a *App) undo() {
	current := MakeSnapshot(a.project.Layout, a.project.Settings, "")
	if s, ok := a.history.Undo(current); ok {
		a.logger.Debug("undo", "action", s.Label)
		a.restore(s)
	}
}

func (a *App) redo() {
	current := MakeSnapshot(a.project.Layout, a.project.Settings, "")
	if s, ok := a.history.Redo(current); ok {
		a.logger.Debug("redo", "action", s.Label)
		a.restore(s)
	}
}

func (a *App) saveProject() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := project.WithExtension(writer.URI().Path())
		if err := project.Save(path, a.project); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.logger.Info("project saved", "path", path)
		a.rememberProject(path)
	}, a.window)
	d.SetFileName(a.project.Name + project.FileExtension)
	d.Show()
}

func (a *App) loadProject() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.openProject(reader.URI().Path())
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{project.FileExtension}))
	d.Show()
}

func (a *App) openProject(path string) {
	proj, err := project.Load(path)
	if err != nil {
		a.logger.Error("failed to open project", "path", path, "error", err)
		dialog.ShowError(err, a.window)
		return
	}
	a.project = proj
	a.history.Clear()
	a.refreshSettings()
	a.refreshOuter()
	a.refreshObstacleList()
	a.refreshResults()
	a.updateStatus()
	a.rememberProject(path)
}

// rememberProject records path in the recent list and persists the config.
func (a *App) rememberProject(path string) {
	a.config.AddRecentProject(path)
	if err := a.saveConfig(); err != nil {
		a.logger.Warn("failed to save recent projects", "error", err)
	}
	a.SetupMenus()
}

// ─── Import Functions ───────────────────────────────────────

func (a *App) importFile(kind string, extensions []string, load func(string) importer.ImportResult) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		result := load(path)
		a.logger.Info("import finished", "kind", kind, "path", path,
			"obstacles", len(result.Obstacles), "errors", len(result.Errors))
		a.handleImportResult(result)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter(extensions))
	d.Show()
}

func (a *App) handleImportResult(result importer.ImportResult) {
	for _, w := range result.Warnings {
		a.logger.Warn("import warning", "message", w)
	}

	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(errors.New(errorMsg), a.window)
	}

	if len(result.Obstacles) == 0 && !result.HasOuter {
		return
	}

	a.pushHistory("Import")
	a.project.Layout = result.Layout()
	a.layoutChanged()

	msg := fmt.Sprintf("Imported %d obstacles.", len(result.Obstacles))
	if !result.HasOuter {
		msg += "\n\nNo outer rectangle in the file; using the bounding box of all obstacles."
	}
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\nHowever, %d rows had errors and were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

// ─── Form helpers ───────────────────────────────────────────

// formatNumber prints a coordinate without trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatField(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(formatNumber(v))
	return e
}

// parseRectFields parses the four text fields of a rectangle form.
func parseRectFields(left, top, width, height string) (geom.Rect, error) {
	fields := []struct {
		name string
		text string
	}{
		{"left", left}, {"top", top}, {"width", width}, {"height", height},
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.text), 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("invalid %s %q", f.name, f.text)
		}
		vals[i] = v
	}
	return geom.NewRect(vals[0], vals[1], vals[2], vals[3])
}
