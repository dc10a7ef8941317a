package ui

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"net/url"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-web-downloader/internal/config"
	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/render"
	"github.com/ytget/yt-web-downloader/internal/session"
)

// Controller is the session API the view drives.
type Controller interface {
	StartDownload(ctx context.Context, rawURL string, format model.Format) error
	LoadFiles(ctx context.Context) error
	SetMessages(m session.Messages)
}

// Options configures a RootUI.
type Options struct {
	Settings     *config.Settings
	Localization *Localization
	// ResolveURL turns a server-relative file link into an absolute URL
	ResolveURL func(ref string) (*url.URL, error)
	// OnSettingsSaved runs after the settings dialog is confirmed
	OnSettingsSaved func()
}

// RootUI represents the main UI structure. It implements session.Presenter.
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	resolveURL   func(ref string) (*url.URL, error)
	onSaved      func()

	urlEntry     *widget.Entry
	formatGroup  *widget.RadioGroup
	startBtn     *widget.Button
	settingsBtn  *widget.Button
	statusBox    *fyne.Container
	statusLabel  *widget.Label
	progressBar  *widget.ProgressBar
	progressText *widget.Label
	filesTitle   *widget.Label
	refreshBtn   *widget.Button
	filesList    *widget.List
	emptyLabel   *widget.Label

	mu    sync.Mutex
	ctx   context.Context
	ctrl  Controller
	files []model.FileEntry

	pending sync.WaitGroup
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, opts Options) *RootUI {
	loc := opts.Localization
	if loc == nil {
		loc = NewLocalization()
		if opts.Settings != nil {
			loc.SetLanguage(opts.Settings.GetLanguage())
		}
	}

	ui := &RootUI{
		window:       window,
		settings:     opts.Settings,
		localization: loc,
		resolveURL:   opts.ResolveURL,
		onSaved:      opts.OnSettingsSaved,
		ctx:          context.Background(),
	}

	window.SetTitle(loc.GetText(KeyAppTitle))
	ui.setupUI()
	return ui
}

// Bind attaches the controller, pushes localized messages to it and loads
// the initial file list.
func (ui *RootUI) Bind(ctx context.Context, ctrl Controller) {
	ui.mu.Lock()
	ui.ctx = ctx
	ui.ctrl = ctrl
	ui.mu.Unlock()

	ctrl.SetMessages(ui.localization.Messages())
	ui.runAsync(func(ctx context.Context, c Controller) {
		_ = c.LoadFiles(ctx)
	})
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	if ui.settings != nil {
		ui.createMenu()
	}

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	// Trigger download when user presses Enter in the URL field
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onDownloadClick()
	}

	ui.formatGroup = widget.NewRadioGroup(ui.formatLabels(), nil)
	ui.formatGroup.Horizontal = true
	ui.formatGroup.Required = true
	ui.selectFormat(ui.defaultFormat())

	ui.startBtn = widget.NewButton(ui.localization.GetText(KeyDownload), ui.onDownloadClick)
	ui.startBtn.Importance = widget.HighImportance

	ui.settingsBtn = widget.NewButton(IconSettings, ui.onShowSettings)
	ui.settingsBtn.Importance = widget.LowImportance
	if ui.settings == nil {
		ui.settingsBtn.Hide()
	}

	topPanel := container.NewBorder(nil, nil, ui.settingsBtn, ui.startBtn, ui.urlEntry)

	// Status panel is hidden until the first update
	ui.statusLabel = widget.NewLabel("")
	ui.statusLabel.Wrapping = fyne.TextWrapWord
	ui.progressBar = widget.NewProgressBar()
	ui.progressBar.TextFormatter = func() string { return "" }
	ui.progressText = widget.NewLabel("")
	ui.statusBox = container.NewVBox(
		ui.statusLabel,
		container.NewBorder(nil, nil, nil, ui.progressText, ui.progressBar),
	)
	ui.statusBox.Hide()

	ui.filesTitle = widget.NewLabelWithStyle(ui.localization.GetText(KeyFiles), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ui.refreshBtn = widget.NewButton(IconRefresh, ui.onRefreshClick)
	ui.refreshBtn.Importance = widget.LowImportance
	ui.emptyLabel = widget.NewLabel(ui.localization.GetText(KeyNoFiles))
	ui.emptyLabel.Alignment = fyne.TextAlignCenter

	ui.filesList = widget.NewList(
		func() int {
			ui.mu.Lock()
			defer ui.mu.Unlock()
			return len(ui.files)
		},
		func() fyne.CanvasObject { return newFileRow(ui.localization.GetText(KeyFileLink)) },
		func(id widget.ListItemID, obj fyne.CanvasObject) { ui.updateFileRow(id, obj) },
	)
	ui.filesList.Hide()

	header := container.NewVBox(
		topPanel,
		container.NewHBox(widget.NewLabel(ui.localization.GetText(KeyFormat)+":"), ui.formatGroup),
		ui.statusBox,
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, ui.refreshBtn, ui.filesTitle),
	)

	// Keeps the list area from collapsing while it is empty.
	filesMin := canvas.NewRectangle(color.Transparent)
	filesMin.SetMinSize(fyne.NewSize(0, FilesListHeight))

	content := container.NewBorder(
		header, // top
		nil,    // bottom
		nil,    // left
		nil,    // right
		container.NewStack(filesMin, ui.emptyLabel, ui.filesList), // center
	)

	ui.window.SetContent(content)
	ui.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code // Capture for closure
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	if ui.settings != nil {
		ui.settings.SetLanguage(langCode)
	}

	ui.refreshUITexts()
	if ui.settings != nil {
		ui.createMenu()
	}

	if ctrl := ui.controller(); ctrl != nil {
		ctrl.SetMessages(ui.localization.Messages())
	}
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.startBtn.SetText(ui.localization.GetText(KeyDownload))
	ui.filesTitle.SetText(ui.localization.GetText(KeyFiles))
	ui.emptyLabel.SetText(ui.localization.GetText(KeyNoFiles))

	selected := ui.selectedFormat()
	ui.formatGroup.Options = ui.formatLabels()
	ui.selectFormat(selected)
	ui.formatGroup.Refresh()

	ui.filesList.Refresh()
}

func (ui *RootUI) formatLabels() []string {
	return []string{
		ui.localization.GetText(KeyFormatVideo),
		ui.localization.GetText(KeyFormatAudio),
	}
}

func (ui *RootUI) defaultFormat() model.Format {
	if ui.settings == nil {
		return model.DefaultFormat
	}
	return ui.settings.GetDefaultFormat()
}

func (ui *RootUI) selectFormat(f model.Format) {
	for i, candidate := range model.Formats() {
		if candidate == f {
			ui.formatGroup.SetSelected(ui.formatGroup.Options[i])
			return
		}
	}
}

// selectedFormat maps the radio selection back to a Format
func (ui *RootUI) selectedFormat() model.Format {
	for i, label := range ui.formatGroup.Options {
		if label == ui.formatGroup.Selected {
			return model.Formats()[i]
		}
	}
	return model.DefaultFormat
}

func (ui *RootUI) controller() Controller {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.ctrl
}

// runAsync runs fn off the UI goroutine with the bound controller.
func (ui *RootUI) runAsync(fn func(ctx context.Context, c Controller)) {
	ui.mu.Lock()
	ctx, ctrl := ui.ctx, ui.ctrl
	ui.mu.Unlock()
	if ctrl == nil {
		log.Printf("UI action ignored: no controller bound")
		return
	}

	ui.pending.Add(1)
	go func() {
		defer ui.pending.Done()
		fn(ctx, ctrl)
	}()
}

// onDownloadClick handles the download button click
func (ui *RootUI) onDownloadClick() {
	rawURL := ui.urlEntry.Text
	format := ui.selectedFormat()
	ui.runAsync(func(ctx context.Context, c Controller) {
		// Failures are rendered through the Presenter methods.
		_ = c.StartDownload(ctx, rawURL, format)
	})
}

func (ui *RootUI) onRefreshClick() {
	ui.runAsync(func(ctx context.Context, c Controller) {
		_ = c.LoadFiles(ctx)
	})
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	if ui.settings == nil {
		return
	}
	NewSettingsDialog(ui.settings, ui.localization, ui.window, func() {
		ui.selectFormat(ui.settings.GetDefaultFormat())
		if lang := ui.settings.GetLanguage(); lang != ui.localization.GetCurrentLanguage() {
			ui.onLanguageChange(lang)
		}
		if ui.onSaved != nil {
			ui.onSaved()
		}
	}).Show()
}

func (ui *RootUI) updateFileRow(id widget.ListItemID, obj fyne.CanvasObject) {
	ui.mu.Lock()
	if id < 0 || id >= len(ui.files) {
		ui.mu.Unlock()
		return
	}
	f := ui.files[id]
	ui.mu.Unlock()

	row, ok := obj.(*fileRow)
	if !ok {
		return
	}

	var link *url.URL
	if ui.resolveURL != nil {
		u, err := ui.resolveURL(f.URL)
		if err != nil {
			log.Printf("Invalid file URL %q: %v", f.URL, err)
		} else {
			link = u
		}
	}
	row.set(f, ui.localization.GetText(KeyFileLink), link)
}

// ShowStatus implements session.Presenter.
func (ui *RootUI) ShowStatus(message string, progress int) {
	fyne.Do(func() {
		ui.setStatus(message, widget.MediumImportance, float64(progress)/100, fmt.Sprintf(ProgressLabelFormat, progress))
	})
}

// ShowSuccess implements session.Presenter.
func (ui *RootUI) ShowSuccess(message, filename string) {
	fyne.Do(func() {
		ui.setStatus(fmt.Sprintf(SuccessFormat, message, filename), widget.SuccessImportance, 1, fmt.Sprintf(ProgressLabelFormat, 100))
	})
}

// ShowError implements session.Presenter.
func (ui *RootUI) ShowError(message string) {
	fyne.Do(func() {
		ui.setStatus(ErrorPrefix+message, widget.DangerImportance, 0, "")
	})
}

func (ui *RootUI) setStatus(text string, importance widget.Importance, value float64, progressText string) {
	ui.statusLabel.Importance = importance
	ui.statusLabel.SetText(text)
	ui.progressBar.SetValue(value)
	ui.progressText.SetText(progressText)
	ui.statusBox.Show()
}

// SetStartEnabled implements session.Presenter.
func (ui *RootUI) SetStartEnabled(enabled bool) {
	fyne.Do(func() {
		if enabled {
			ui.startBtn.Enable()
		} else {
			ui.startBtn.Disable()
		}
	})
}

// ClearURL implements session.Presenter.
func (ui *RootUI) ClearURL() {
	fyne.Do(func() {
		ui.urlEntry.SetText("")
	})
}

// Alert implements session.Presenter.
func (ui *RootUI) Alert(message string) {
	fyne.Do(func() {
		dialog.ShowInformation(ui.localization.GetText(KeyNotice), message, ui.window)
	})
}

// RenderFiles implements session.Presenter.
func (ui *RootUI) RenderFiles(files []model.FileEntry) {
	ui.mu.Lock()
	ui.files = append([]model.FileEntry(nil), files...)
	empty := len(ui.files) == 0
	ui.mu.Unlock()

	fyne.Do(func() {
		if empty {
			ui.filesList.Hide()
			ui.emptyLabel.Show()
		} else {
			ui.emptyLabel.Hide()
			ui.filesList.Show()
		}
		ui.filesList.Refresh()
	})
}

// fileRow renders one downloaded file: name, size and a download link.
type fileRow struct {
	widget.BaseWidget

	name    *widget.Label
	size    *widget.Label
	link    *widget.Hyperlink
	content *fyne.Container
}

func newFileRow(linkText string) *fileRow {
	r := &fileRow{
		name: widget.NewLabel(""),
		size: widget.NewLabel(""),
		link: widget.NewHyperlink(linkText, nil),
	}
	r.name.Truncation = fyne.TextTruncateEllipsis
	r.size.Alignment = fyne.TextAlignTrailing
	r.content = container.NewBorder(nil, nil, nil,
		container.NewHBox(container.NewGridWrap(fyne.NewSize(SizeLabelWidth, r.size.MinSize().Height), r.size), r.link),
		r.name,
	)
	r.ExtendBaseWidget(r)
	return r
}

func (r *fileRow) set(f model.FileEntry, linkText string, u *url.URL) {
	r.name.SetText(f.Name)
	r.size.SetText(render.FormatBytes(f.Size))
	r.link.SetText(linkText)
	if u != nil {
		r.link.SetURL(u)
		r.link.Show()
	} else {
		r.link.Hide()
	}
}

// CreateRenderer implements fyne.Widget.
func (r *fileRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.content)
}
