package ui

import "github.com/ytget/yt-web-downloader/internal/session"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyDownload          = "download"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyEnterURL          = "enter_url"
	KeyFormat            = "format"
	KeyFormatVideo       = "format_video"
	KeyFormatAudio       = "format_audio"
	KeyFiles             = "files"
	KeyRefresh           = "refresh"
	KeyNoFiles           = "no_files"
	KeyFileLink          = "file_link"
	KeyNotice            = "notice"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyStarting          = "starting"
	KeyDownloading       = "downloading"
	KeyDownloadCompleted = "download_completed"
	KeyDownloadFailed    = "download_failed"
	KeyServerURL         = "server_url"
	KeyDefaultFormat     = "default_format"
	KeyPollInterval      = "poll_interval"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeySettingsSaved     = "settings_saved"
	KeyInvalidURL        = "invalid_url"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// Messages returns the session strings for the current language
func (l *Localization) Messages() session.Messages {
	return session.Messages{
		EnterURL:       l.GetText(KeyPleaseEnterURL),
		Starting:       l.GetText(KeyStarting),
		Downloading:    l.GetText(KeyDownloading),
		Completed:      l.GetText(KeyDownloadCompleted),
		DownloadFailed: l.GetText(KeyDownloadFailed),
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "YT Web Downloader",
		KeyDownload:          "Download",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyEnterURL:          "Enter video URL (https://youtube.com/watch?v=...)",
		KeyFormat:            "Format",
		KeyFormatVideo:       "Video (MP4)",
		KeyFormatAudio:       "Audio (MP3)",
		KeyFiles:             "Downloaded Files",
		KeyRefresh:           "Refresh",
		KeyNoFiles:           "No files downloaded yet",
		KeyFileLink:          "Download",
		KeyNotice:            "Notice",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyStarting:          "Starting %s download...",
		KeyDownloading:       "Downloading...",
		KeyDownloadCompleted: "Download completed!",
		KeyDownloadFailed:    "Download failed",
		KeyServerURL:         "Server URL",
		KeyDefaultFormat:     "Default Format",
		KeyPollInterval:      "Poll Interval (ms)",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyInvalidURL:        "Invalid URL",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "YT Веб-загрузчик",
		KeyDownload:          "Скачать",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyEnterURL:          "Введите URL видео (https://youtube.com/watch?v=...)",
		KeyFormat:            "Формат",
		KeyFormatVideo:       "Видео (MP4)",
		KeyFormatAudio:       "Аудио (MP3)",
		KeyFiles:             "Загруженные файлы",
		KeyRefresh:           "Обновить",
		KeyNoFiles:           "Файлов пока нет",
		KeyFileLink:          "Скачать",
		KeyNotice:            "Уведомление",
		KeyPleaseEnterURL:    "Пожалуйста, введите URL",
		KeyStarting:          "Начинается загрузка (%s)...",
		KeyDownloading:       "Загрузка...",
		KeyDownloadCompleted: "Загрузка завершена!",
		KeyDownloadFailed:    "Ошибка загрузки",
		KeyServerURL:         "URL сервера",
		KeyDefaultFormat:     "Формат по умолчанию",
		KeyPollInterval:      "Интервал опроса (мс)",
		KeySave:              "Сохранить",
		KeyCancel:            "Отмена",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyInvalidURL:        "Неверный URL",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "YT Web Downloader",
		KeyDownload:          "Baixar",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyEnterURL:          "Digite a URL do vídeo (https://youtube.com/watch?v=...)",
		KeyFormat:            "Formato",
		KeyFormatVideo:       "Vídeo (MP4)",
		KeyFormatAudio:       "Áudio (MP3)",
		KeyFiles:             "Arquivos Baixados",
		KeyRefresh:           "Atualizar",
		KeyNoFiles:           "Nenhum arquivo baixado ainda",
		KeyFileLink:          "Baixar",
		KeyNotice:            "Aviso",
		KeyPleaseEnterURL:    "Por favor, digite uma URL",
		KeyStarting:          "Iniciando download de %s...",
		KeyDownloading:       "Baixando...",
		KeyDownloadCompleted: "Download concluído!",
		KeyDownloadFailed:    "Falha no download",
		KeyServerURL:         "URL do Servidor",
		KeyDefaultFormat:     "Formato Padrão",
		KeyPollInterval:      "Intervalo de Consulta (ms)",
		KeySave:              "Salvar",
		KeyCancel:            "Cancelar",
		KeySettingsSaved:     "Configurações salvas com sucesso!",
		KeyInvalidURL:        "URL inválida",
	}
}
