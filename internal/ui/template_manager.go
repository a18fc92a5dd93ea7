package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/gapfinder/internal/model"
	"github.com/piwi3910/gapfinder/internal/project"
	"github.com/piwi3910/gapfinder/internal/ui/widgets"
)

// showTemplateManager opens the template window where users can browse,
// use, duplicate and delete saved layout templates.
func (a *App) showTemplateManager() {
	w := a.app.NewWindow("Layout Templates")
	w.Resize(fyne.NewSize(800, 500))

	selectedIdx := -1
	detailContainer := container.NewVBox(
		widget.NewLabel("Select a template to view details."),
	)
	resetDetail := func() {
		selectedIdx = -1
		detailContainer.RemoveAll()
		detailContainer.Add(widget.NewLabel("Select a template to view details."))
		detailContainer.Refresh()
	}

	listWidget := widget.NewList(
		func() int {
			return len(a.templates.Templates)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.DocumentIcon()),
				widget.NewLabel("Template Name"),
				layout.NewSpacer(),
				widget.NewLabel("(0 obstacles)"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			t := a.templates.Templates[id]
			box.Objects[1].(*widget.Label).SetText(t.Name)
			box.Objects[3].(*widget.Label).SetText(fmt.Sprintf("(%d obstacles)", len(t.Layout.Obstacles)))
		},
	)

	listWidget.OnSelected = func(id widget.ListItemID) {
		selectedIdx = id
		showTemplateDetail(detailContainer, a.templates.Templates[id])
	}

	withSelection := func(action string, fn func(t model.LayoutTemplate)) func() {
		return func() {
			if selectedIdx < 0 || selectedIdx >= len(a.templates.Templates) {
				dialog.ShowInformation("No Selection", "Select a template to "+action+".", w)
				return
			}
			fn(a.templates.Templates[selectedIdx])
		}
	}

	useBtn := widget.NewButtonWithIcon("Use", theme.ConfirmIcon(), withSelection("use", func(t model.LayoutTemplate) {
		a.project = t.ToProject(t.Name)
		a.history.Clear()
		a.projectReplaced()
		a.logger.Info("project created from template", "template", t.Name)
		w.Close()
	}))

	duplicateBtn := widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), withSelection("duplicate", func(t model.LayoutTemplate) {
		dup := model.NewLayoutTemplate(t.Name+" (Copy)", "Copy of "+t.Name, t.Layout, t.Settings)
		a.templates.Add(dup)
		a.persistTemplates(w)
		listWidget.Refresh()
	}))

	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), withSelection("delete", func(t model.LayoutTemplate) {
		dialog.ShowConfirm("Delete Template",
			fmt.Sprintf("Delete template %q?", t.Name),
			func(ok bool) {
				if !ok {
					return
				}
				a.templates.Remove(t.ID)
				a.persistTemplates(w)
				listWidget.UnselectAll()
				listWidget.Refresh()
				resetDetail()
			},
			w,
		)
	}))

	toolbar := container.NewHBox(useBtn, duplicateBtn, deleteBtn)

	listPanel := container.NewBorder(
		widget.NewLabelWithStyle("Templates", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		toolbar,
		nil, nil,
		listWidget,
	)

	detailPanel := container.NewBorder(
		widget.NewLabelWithStyle("Template Details", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewVScroll(detailContainer),
	)

	split := container.NewHSplit(listPanel, detailPanel)
	split.SetOffset(0.35)

	w.SetContent(split)
	w.Show()
}

// showTemplateDetail populates the detail pane with a template preview.
func showTemplateDetail(c *fyne.Container, t model.LayoutTemplate) {
	c.RemoveAll()

	bold := fyne.TextStyle{Bold: true}
	outer := t.Layout.Outer
	c.Add(widget.NewLabelWithStyle(t.Name, fyne.TextAlignLeading, bold))
	if t.Description != "" {
		c.Add(widget.NewLabel(t.Description))
	}
	c.Add(widget.NewSeparator())
	c.Add(container.NewGridWithColumns(2,
		widget.NewLabelWithStyle("Outer:", fyne.TextAlignLeading, bold),
		widget.NewLabel(fmt.Sprintf("%s x %s %s", formatNumber(outer.Width), formatNumber(outer.Height), t.Settings.Units)),
		widget.NewLabelWithStyle("Obstacles:", fyne.TextAlignLeading, bold),
		widget.NewLabel(fmt.Sprintf("%d", len(t.Layout.Obstacles))),
		widget.NewLabelWithStyle("Occupancy:", fyne.TextAlignLeading, bold),
		widget.NewLabel(fmt.Sprintf("%.1f%%", t.Layout.Occupancy())),
		widget.NewLabelWithStyle("Updated:", fyne.TextAlignLeading, bold),
		widget.NewLabel(t.UpdatedAt),
	))
	c.Add(widget.NewSeparator())
	c.Add(widgets.NewLayoutCanvas(t.Layout, nil, 400, 280))
	c.Refresh()
}

// showSaveTemplateDialog stores the current layout and settings as a template.
func (a *App) showSaveTemplateDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(a.project.Name)
	descEntry := widget.NewMultiLineEntry()
	descEntry.SetPlaceHolder("Optional description")

	form := dialog.NewForm("Save Layout as Template", "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Template Name", nameEntry),
			widget.NewFormItem("Description", descEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			name := strings.TrimSpace(nameEntry.Text)
			if name == "" {
				dialog.ShowError(fmt.Errorf("template name cannot be empty"), a.window)
				return
			}
			if existing := a.templates.FindByName(name); existing != nil {
				dialog.ShowError(fmt.Errorf("a template named %q already exists", name), a.window)
				return
			}
			a.templates.Add(model.NewLayoutTemplate(name, descEntry.Text, a.project.Layout, a.project.Settings))
			a.persistTemplates(a.window)
		},
		a.window,
	)
	form.Resize(fyne.NewSize(400, 250))
	form.Show()
}

// persistTemplates saves the template store, reporting failures in w.
func (a *App) persistTemplates(w fyne.Window) {
	if err := project.SaveDefaultTemplates(a.templates); err != nil {
		a.logger.Error("failed to save templates", "error", err)
		dialog.ShowError(fmt.Errorf("failed to save templates: %w", err), w)
	}
}
