package download

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-web-downloader/internal/model"
)

// Defaults used by YTDLPFetcher when a field is left empty.
const (
	DefaultFilenameTemplate = "%(title)s.%(ext)s"
	DefaultAudioCodec       = "mp3"
	DefaultAudioQuality     = "192"
	VideoSelector           = "best"
	AudioSelector           = "bestaudio"
	progressInterval        = 500 * time.Millisecond
)

// YTDLPFetcher runs the yt-dlp binary.
type YTDLPFetcher struct {
	FilenameTemplate string
	AudioCodec       string
	AudioQuality     string
	Logger           *log.Logger
	Debug            bool
}

// Fetch downloads req.URL into req.Dir, extracting audio for FormatAudio.
func (f *YTDLPFetcher) Fetch(ctx context.Context, req FetchRequest, progress func(Progress)) error {
	template := f.FilenameTemplate
	if template == "" {
		template = DefaultFilenameTemplate
	}

	dl := ytdlp.New().
		ForceOverwrites().
		NoPlaylist().
		Output(filepath.Join(req.Dir, template))

	if req.Format == model.FormatAudio {
		codec := f.AudioCodec
		if codec == "" {
			codec = DefaultAudioCodec
		}
		quality := f.AudioQuality
		if quality == "" {
			quality = DefaultAudioQuality
		}
		dl = dl.Format(AudioSelector).
			ExtractAudio().
			AudioFormat(codec).
			AudioQuality(quality)
	} else {
		dl = dl.Format(VideoSelector)
	}

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		p := Progress{
			Downloaded: int64(update.DownloadedBytes),
			Total:      int64(update.TotalBytes),
		}
		if update.Info != nil && update.Info.Title != nil {
			p.Title = *update.Info.Title
		}
		if f.Debug && f.Logger != nil {
			f.Logger.Printf("yt-dlp progress %s: %d/%d", req.URL, p.Downloaded, p.Total)
		}
		if progress != nil {
			progress(p)
		}
	})

	_, err := dl.Run(ctx, req.URL)
	return err
}
