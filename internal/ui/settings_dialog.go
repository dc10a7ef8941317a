package ui

import (
	"sort"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-web-downloader/internal/config"
	"github.com/ytget/yt-web-downloader/internal/model"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	serverURLEntry    *widget.Entry
	formatSelect      *widget.Select
	pollIntervalEntry *widget.Entry
	languageSelect    *widget.Select
	languageCodes     []string
}

// NewSettingsDialog creates a new settings dialog. onSaved runs after
// values were stored.
func NewSettingsDialog(settings *config.Settings, loc *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: loc,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	sd.serverURLEntry = widget.NewEntry()
	sd.serverURLEntry.SetPlaceHolder(config.DefaultServerURL)
	sd.serverURLEntry.Validator = config.ValidateServerURL

	formatOptions := make([]string, 0, len(model.Formats()))
	for _, f := range model.Formats() {
		formatOptions = append(formatOptions, f.String())
	}
	sd.formatSelect = widget.NewSelect(formatOptions, nil)

	sd.pollIntervalEntry = widget.NewEntry()
	sd.pollIntervalEntry.SetPlaceHolder(strconv.Itoa(int(config.DefaultPollInterval / time.Millisecond)))

	// Language selection, shown by display name
	languageLabels := sd.settings.GetLanguageOptions()
	for code := range languageLabels {
		sd.languageCodes = append(sd.languageCodes, code)
	}
	sort.Strings(sd.languageCodes)
	languageOptions := make([]string, 0, len(sd.languageCodes))
	for _, code := range sd.languageCodes {
		languageOptions = append(languageOptions, languageLabels[code])
	}
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	form := widget.NewForm(
		widget.NewFormItem(sd.localization.GetText(KeyServerURL), sd.serverURLEntry),
		widget.NewFormItem(sd.localization.GetText(KeyDefaultFormat), sd.formatSelect),
		widget.NewFormItem(sd.localization.GetText(KeyPollInterval), sd.pollIntervalEntry),
		widget.NewFormItem(sd.localization.GetText(KeyLanguage), sd.languageSelect),
	)

	sd.dialog = dialog.NewCustomConfirm(
		sd.localization.GetText(KeySettings),
		sd.localization.GetText(KeySave),
		sd.localization.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(480, 300))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.serverURLEntry.SetText(sd.settings.GetServerURL())
	sd.formatSelect.SetSelected(sd.settings.GetDefaultFormat().String())
	sd.pollIntervalEntry.SetText(strconv.Itoa(int(sd.settings.GetPollInterval() / time.Millisecond)))

	current := sd.settings.GetLanguage()
	for i, code := range sd.languageCodes {
		if code == current {
			sd.languageSelect.SetSelectedIndex(i)
		}
	}
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if err := sd.settings.SetServerURL(sd.serverURLEntry.Text); err != nil {
		dialog.ShowError(err, sd.window)
		return
	}

	if f, err := model.ParseFormat(sd.formatSelect.Selected); err == nil {
		sd.settings.SetDefaultFormat(f)
	}

	if ms, err := strconv.Atoi(sd.pollIntervalEntry.Text); err == nil {
		sd.settings.SetPollInterval(time.Duration(ms) * time.Millisecond)
	}

	if i := sd.languageSelect.SelectedIndex(); i >= 0 && i < len(sd.languageCodes) {
		sd.settings.SetLanguage(sd.languageCodes[i])
	}

	if sd.onSaved != nil {
		sd.onSaved()
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}
