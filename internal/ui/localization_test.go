package ui

import (
	"fmt"
	"strings"
	"testing"
)

func TestLocalization_Fallbacks(t *testing.T) {
	l := NewLocalization()

	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Expected default language en, got %s", l.GetCurrentLanguage())
	}

	l.SetLanguage("system")
	if l.GetCurrentLanguage() != "en" {
		t.Errorf("System language should resolve to en, got %s", l.GetCurrentLanguage())
	}

	l.SetLanguage("xx")
	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Unknown language should be ignored, got %s", l.GetCurrentLanguage())
	}

	if got := l.GetText("missing_key"); got != "missing_key" {
		t.Errorf("Missing key should return itself, got %s", got)
	}
}

func TestLocalization_AllKeysTranslated(t *testing.T) {
	l := NewLocalization()

	for lang := range l.GetAvailableLanguages() {
		for key := range l.texts["en"] {
			if _, ok := l.texts[lang][key]; !ok {
				t.Errorf("Language %s is missing key %s", lang, key)
			}
		}
	}
}

func TestLocalization_Messages(t *testing.T) {
	l := NewLocalization()

	m := l.Messages()
	if m.EnterURL != "Please enter a URL" || m.Downloading != "Downloading..." ||
		m.Completed != "Download completed!" || m.DownloadFailed != "Download failed" {
		t.Errorf("Unexpected English messages: %+v", m)
	}
	if got := fmt.Sprintf(m.Starting, "audio"); got != "Starting audio download..." {
		t.Errorf("Unexpected starting message %q", got)
	}

	// Every language must keep exactly one format verb in the starting pattern
	for lang := range l.GetAvailableLanguages() {
		l.SetLanguage(lang)
		if n := strings.Count(l.Messages().Starting, "%s"); n != 1 {
			t.Errorf("Language %s starting pattern has %d verbs", lang, n)
		}
	}
}
