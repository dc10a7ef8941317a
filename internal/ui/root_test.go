package ui

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-web-downloader/internal/config"
	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/session"
)

type fakeController struct {
	mu       sync.Mutex
	starts   []string
	formats  []model.Format
	loads    int
	messages []session.Messages
}

func (c *fakeController) StartDownload(_ context.Context, rawURL string, format model.Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts = append(c.starts, rawURL)
	c.formats = append(c.formats, format)
	return nil
}

func (c *fakeController) LoadFiles(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return nil
}

func (c *fakeController) SetMessages(m session.Messages) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
}

func newTestUI(t *testing.T) (*RootUI, *fakeController, *config.Settings) {
	t.Helper()

	app := test.NewApp()
	t.Cleanup(app.Quit)
	window := test.NewWindow(nil)
	t.Cleanup(window.Close)

	settings := config.NewSettings(app)
	base, _ := url.Parse("http://localhost:5067")
	ui := NewRootUI(window, Options{
		Settings: settings,
		ResolveURL: func(ref string) (*url.URL, error) {
			r, err := url.Parse(ref)
			if err != nil {
				return nil, err
			}
			return base.ResolveReference(r), nil
		},
	})

	ctrl := &fakeController{}
	ui.Bind(context.Background(), ctrl)
	ui.pending.Wait()
	return ui, ctrl, settings
}

func TestNewRootUI_InitialState(t *testing.T) {
	ui, ctrl, _ := newTestUI(t)

	if ui.statusBox.Visible() {
		t.Error("Status box should be hidden before the first update")
	}
	if ui.startBtn.Disabled() {
		t.Error("Start button should be enabled initially")
	}
	if got := ui.selectedFormat(); got != model.FormatVideo {
		t.Errorf("Expected default format video, got %s", got)
	}
	if ctrl.loads != 1 {
		t.Errorf("Expected one initial file load, got %d", ctrl.loads)
	}
	if len(ctrl.messages) != 1 || ctrl.messages[0].EnterURL != "Please enter a URL" {
		t.Errorf("Expected English messages pushed on bind, got %+v", ctrl.messages)
	}
}

func TestOnDownloadClick(t *testing.T) {
	ui, ctrl, _ := newTestUI(t)

	ui.formatGroup.SetSelected(ui.localization.GetText(KeyFormatAudio))
	ui.urlEntry.SetText("https://youtube.com/watch?v=abc")
	test.Tap(ui.startBtn)
	ui.pending.Wait()

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.starts) != 1 || ctrl.starts[0] != "https://youtube.com/watch?v=abc" {
		t.Fatalf("Expected one start with the typed URL, got %v", ctrl.starts)
	}
	if ctrl.formats[0] != model.FormatAudio {
		t.Errorf("Expected audio format, got %s", ctrl.formats[0])
	}
}

func TestPresenter_StatusRendering(t *testing.T) {
	ui, _, _ := newTestUI(t)

	ui.ShowStatus("Downloading...", 55)
	if !ui.statusBox.Visible() {
		t.Error("Status box should be visible")
	}
	if ui.statusLabel.Text != "Downloading..." || ui.progressText.Text != "55%" {
		t.Errorf("Unexpected status %q / %q", ui.statusLabel.Text, ui.progressText.Text)
	}
	if ui.progressBar.Value != 0.55 {
		t.Errorf("Expected progress 0.55, got %v", ui.progressBar.Value)
	}

	ui.ShowSuccess("Download completed!", "clip.mp4")
	if ui.statusLabel.Text != "Download completed! (clip.mp4)" {
		t.Errorf("Unexpected success text %q", ui.statusLabel.Text)
	}
	if ui.statusLabel.Importance != widget.SuccessImportance {
		t.Error("Success should use success importance")
	}
	if ui.progressBar.Value != 1 || ui.progressText.Text != "100%" {
		t.Errorf("Expected full progress, got %v / %q", ui.progressBar.Value, ui.progressText.Text)
	}

	ui.ShowError("disk full")
	if ui.statusLabel.Text != "Error: disk full" {
		t.Errorf("Unexpected error text %q", ui.statusLabel.Text)
	}
	if ui.statusLabel.Importance != widget.DangerImportance {
		t.Error("Error should use danger importance")
	}
	if ui.progressBar.Value != 0 || ui.progressText.Text != "" {
		t.Errorf("Expected empty progress, got %v / %q", ui.progressBar.Value, ui.progressText.Text)
	}
}

func TestPresenter_Controls(t *testing.T) {
	ui, _, _ := newTestUI(t)

	ui.SetStartEnabled(false)
	if !ui.startBtn.Disabled() {
		t.Error("Start button should be disabled")
	}
	ui.SetStartEnabled(true)
	if ui.startBtn.Disabled() {
		t.Error("Start button should be enabled")
	}

	ui.urlEntry.SetText("https://example.com/v")
	ui.ClearURL()
	if ui.urlEntry.Text != "" {
		t.Errorf("Expected URL cleared, got %q", ui.urlEntry.Text)
	}
}

func TestPresenter_Alert(t *testing.T) {
	ui, _, _ := newTestUI(t)

	ui.Alert("Please enter a URL")
	if ui.window.Canvas().Overlays().Top() == nil {
		t.Error("Expected an alert dialog overlay")
	}
}

func TestPresenter_RenderFiles(t *testing.T) {
	ui, _, _ := newTestUI(t)

	ui.RenderFiles(nil)
	if !ui.emptyLabel.Visible() || ui.filesList.Visible() {
		t.Error("Empty state should show the empty label only")
	}
	if ui.emptyLabel.Text != "No files downloaded yet" {
		t.Errorf("Unexpected empty text %q", ui.emptyLabel.Text)
	}

	files := []model.FileEntry{
		{Name: "a.mp3", Size: 1536, URL: "/downloads/a.mp3"},
		{Name: "b.mp4", Size: 1048576, URL: "/downloads/b.mp4"},
	}
	ui.RenderFiles(files)
	if ui.emptyLabel.Visible() || !ui.filesList.Visible() {
		t.Error("File list should be visible")
	}
	if got := ui.filesList.Length(); got != 2 {
		t.Fatalf("Expected 2 rows, got %d", got)
	}

	row := newFileRow("Download")
	ui.updateFileRow(1, row)
	if row.name.Text != "b.mp4" || row.size.Text != "1 MB" {
		t.Errorf("Unexpected row %q / %q", row.name.Text, row.size.Text)
	}
	if row.link.URL == nil || row.link.URL.String() != "http://localhost:5067/downloads/b.mp4" {
		t.Errorf("Unexpected link %v", row.link.URL)
	}

	// Out of range ids are ignored
	ui.updateFileRow(5, row)
	if row.name.Text != "b.mp4" {
		t.Error("Out of range update should not change the row")
	}
}

func TestLanguageChange(t *testing.T) {
	ui, ctrl, settings := newTestUI(t)

	ui.formatGroup.SetSelected(ui.localization.GetText(KeyFormatAudio))
	ui.onLanguageChange("ru")

	if settings.GetLanguage() != "ru" {
		t.Errorf("Expected language saved, got %s", settings.GetLanguage())
	}
	if ui.startBtn.Text != "Скачать" {
		t.Errorf("Expected localized button, got %q", ui.startBtn.Text)
	}
	if got := ui.selectedFormat(); got != model.FormatAudio {
		t.Errorf("Format selection should survive a language change, got %s", got)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	last := ctrl.messages[len(ctrl.messages)-1]
	if last.EnterURL != "Пожалуйста, введите URL" {
		t.Errorf("Expected Russian messages pushed to controller, got %q", last.EnterURL)
	}
}

func TestDefaultFormatFromSettings(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	window := test.NewWindow(nil)
	defer window.Close()

	settings := config.NewSettings(app)
	settings.SetDefaultFormat(model.FormatAudio)

	ui := NewRootUI(window, Options{Settings: settings})
	if got := ui.selectedFormat(); got != model.FormatAudio {
		t.Errorf("Expected audio preselected, got %s", got)
	}

	// Without a bound controller clicks are ignored
	ui.onDownloadClick()
	ui.pending.Wait()
}

func TestFilesAreaKeepsMinimumHeight(t *testing.T) {
	ui, _, _ := newTestUI(t)

	if got := ui.window.Content().MinSize().Height; got < FilesListHeight {
		t.Errorf("content min height = %v, want at least %v", got, FilesListHeight)
	}
}
