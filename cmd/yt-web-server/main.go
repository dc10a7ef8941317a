// Command yt-web-server serves the download API, the file library and
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ytget/yt-web-downloader/internal/config"
	"github.com/ytget/yt-web-downloader/internal/download"
	"github.com/ytget/yt-web-downloader/internal/metrics"
	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/platform"
	"github.com/ytget/yt-web-downloader/internal/server"
	"github.com/ytget/yt-web-downloader/internal/storage"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitStorageError = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := loadConfig(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg)
}

// loadConfig layers defaults or the -config file, .env files, YTWEB_*
// variables and finally explicitly set flags, then validates the result.
func loadConfig(args []string, stderr io.Writer) (config.ServerConfig, error) {
	fs := flag.NewFlagSet("yt-web-server", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath string
		host       string
		port       int
		folder     string
		debug      bool
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&host, "host", "", "Host to bind to")
	fs.IntVar(&port, "p", 0, "Port to listen on")
	fs.IntVar(&port, "port", 0, "Port to listen on")
	fs.StringVar(&folder, "d", "", "Folder to store downloaded files")
	fs.StringVar(&folder, "download-folder", "", "Folder to store downloaded files")
	fs.BoolVar(&debug, "debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `Usage: yt-web-server [options]

Serve the download API on http://<host>:<port>. Settings come from the
config file, then .env/.env.local and YTWEB_* variables, then flags.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return config.ServerConfig{}, err
	}

	fail := func(err error) (config.ServerConfig, error) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return config.ServerConfig{}, err
	}

	if err := config.LoadEnvFiles("."); err != nil {
		return fail(err)
	}

	cfg := config.DefaultServerConfig()
	if configPath != "" {
		loaded, err := config.LoadServerConfigFile(configPath)
		if err != nil {
			return fail(err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return fail(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = host
		case "p", "port":
			cfg.Port = port
		case "d", "download-folder":
			cfg.DownloadFolder = folder
			cfg.BucketURL = ""
		case "debug":
			cfg.Debug = debug
		}
	})

	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.ServerConfig) int {
	logger := log.New(os.Stderr, "[yt-web] ", log.LstdFlags)

	bucketURL := cfg.BucketURL
	if bucketURL == "" {
		if err := platform.CreateDirectoryIfNotExists(cfg.DownloadFolder); err != nil {
			logger.Printf("Failed to create download folder: %v", err)
			return ExitStorageError
		}
		u, err := storage.DirBucketURL(cfg.DownloadFolder)
		if err != nil {
			logger.Printf("Invalid download folder: %v", err)
			return ExitStorageError
		}
		bucketURL = u
	}

	lib, err := storage.Open(ctx, bucketURL)
	if err != nil {
		logger.Printf("Failed to open storage: %v", err)
		return ExitStorageError
	}
	defer lib.Close()

	m := metrics.New(metrics.DefaultNamespace)

	svc, err := download.NewService(download.Options{
		StagingDir:  cfg.StagingFolder,
		MaxParallel: cfg.MaxParallel,
		Fetcher: &download.YTDLPFetcher{
			FilenameTemplate: cfg.YTDLP.FilenameTemplate,
			AudioCodec:       cfg.YTDLP.AudioCodec,
			AudioQuality:     cfg.YTDLP.AudioQuality,
			Logger:           logger,
			Debug:            cfg.Debug,
		},
		Importer: lib,
		Recorder: m,
		Logger:   logger,
		Debug:    cfg.Debug,
	})
	if err != nil {
		logger.Printf("Failed to start download service: %v", err)
		return ExitGeneralError
	}
	if cfg.Debug {
		svc.SetUpdateCallback(func(task *model.DownloadTask) {
			logger.Printf("Task %s: %s %d%% %s", task.ID, task.Status, task.Percent, task.GetDisplayTitle())
		})
	}

	srv, err := server.New(server.Options{
		Downloads:           svc,
		Files:               lib,
		Metrics:             m,
		Logger:              logger,
		Debug:               cfg.Debug,
		RequestsPerSecond:   cfg.RateLimit.RequestsPerSecond,
		Burst:               cfg.RateLimit.Burst,
		ServeBytesPerSecond: cfg.ServeBytesPerSecond,
	})
	if err != nil {
		logger.Printf("Failed to build server: %v", err)
		return ExitGeneralError
	}

	logger.Printf("Storing downloads in %s", bucketURL)
	runErr := srv.Run(ctx, cfg.Addr())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Downloads did not stop in time: %v", err)
	}

	if runErr != nil {
		logger.Printf("Server error: %v", runErr)
		return ExitGeneralError
	}
	return ExitSuccess
}
