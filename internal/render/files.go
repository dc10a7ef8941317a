package render

import (
	"strings"

	"github.com/ytget/yt-web-downloader/internal/model"
)

// EmptyFilesMessage is shown when the server has no downloaded files.
const EmptyFilesMessage = "No files downloaded yet"

// FileListHTML renders the files list fragment: one file-item block per
// entry, or the empty-state paragraph when files is empty.
func FileListHTML(files []model.FileEntry) string {
	if len(files) == 0 {
		return `<p class="empty-message">` + EmptyFilesMessage + `</p>`
	}

	var b strings.Builder
	for _, f := range files {
		b.WriteString(`<div class="file-item">`)
		b.WriteString(`<div class="file-info">`)
		b.WriteString(`<div class="file-name">`)
		b.WriteString(EscapeHTML(f.Name))
		b.WriteString(`</div>`)
		b.WriteString(`<div class="file-size">`)
		b.WriteString(FormatBytes(f.Size))
		b.WriteString(`</div>`)
		b.WriteString(`</div>`)
		b.WriteString(`<a href="`)
		b.WriteString(EscapeHTML(f.URL))
		b.WriteString(`" class="file-download" download>Download</a>`)
		b.WriteString(`</div>`)
	}
	return b.String()
}
