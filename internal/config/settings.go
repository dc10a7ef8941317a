package config

import (
	"net/url"
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"github.com/ytget/yt-web-downloader/internal/model"
)

// Settings keys for Fyne preferences
const (
	KeyServerURL      = "server_url"
	KeyDefaultFormat  = "default_format"
	KeyLanguage       = "app_language"
	KeyPollIntervalMs = "poll_interval_ms"
)

// Default values
const (
	DefaultServerURL    = "http://localhost:5067"
	DefaultFormat       = model.FormatVideo
	DefaultLanguage     = "system"
	DefaultPollInterval = time.Second
	MinPollInterval     = 250 * time.Millisecond
	MaxPollInterval     = 10 * time.Second
)

// Settings manages client configuration stored in Fyne preferences
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetServerURL returns the configured server base URL
func (s *Settings) GetServerURL() string {
	raw := s.app.Preferences().String(KeyServerURL)
	if raw == "" {
		s.app.Preferences().SetString(KeyServerURL, DefaultServerURL)
		return DefaultServerURL
	}
	return raw
}

// SetServerURL stores a server base URL. Only absolute http(s) URLs are
// accepted; the trailing slash is dropped.
func (s *Settings) SetServerURL(raw string) error {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if err := ValidateServerURL(raw); err != nil {
		return err
	}
	s.app.Preferences().SetString(KeyServerURL, raw)
	return nil
}

// ValidateServerURL checks that raw is an absolute http or https URL
func ValidateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &FieldError{Field: "server_url", Message: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &FieldError{Field: "server_url", Message: "must be an absolute http(s) URL"}
	}
	return nil
}

// GetDefaultFormat returns the format preselected in the UI
func (s *Settings) GetDefaultFormat() model.Format {
	f, err := model.ParseFormat(s.app.Preferences().String(KeyDefaultFormat))
	if err != nil {
		s.SetDefaultFormat(DefaultFormat)
		return DefaultFormat
	}
	return f
}

// SetDefaultFormat sets the preselected format
func (s *Settings) SetDefaultFormat(f model.Format) {
	if !f.Valid() {
		f = DefaultFormat
	}
	s.app.Preferences().SetString(KeyDefaultFormat, f.String())
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}

// GetPollInterval returns how often the client polls download status
func (s *Settings) GetPollInterval() time.Duration {
	ms := s.app.Preferences().Int(KeyPollIntervalMs)
	if ms <= 0 {
		s.SetPollInterval(DefaultPollInterval)
		return DefaultPollInterval
	}
	return time.Duration(ms) * time.Millisecond
}

// SetPollInterval sets the poll interval, clamped to [MinPollInterval, MaxPollInterval]
func (s *Settings) SetPollInterval(d time.Duration) {
	if d < MinPollInterval {
		d = MinPollInterval
	}
	if d > MaxPollInterval {
		d = MaxPollInterval
	}
	s.app.Preferences().SetInt(KeyPollIntervalMs, int(d/time.Millisecond))
}
