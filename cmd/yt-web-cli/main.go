// Command yt-web-cli starts a download on a yt-web-server and follows it
// until it completes, printing progress lines.
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

	"github.com/ytget/yt-web-downloader/internal/client"
	"github.com/ytget/yt-web-downloader/internal/config"
	"github.com/ytget/yt-web-downloader/internal/console"
	"github.com/ytget/yt-web-downloader/internal/model"
	"github.com/ytget/yt-web-downloader/internal/session"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitServerNotReach = 3
	ExitDownloadFailed = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("yt-web-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	serverURL := fs.String("server", config.DefaultServerURL, "Server base URL")
	format := fs.String("format", model.DefaultFormat.String(), `Download format: "video" or "audio"`)
	list := fs.Bool("list", false, "List downloaded files and exit")
	interval := fs.Duration("interval", session.DefaultPollInterval, "Status poll interval")
	timeout := fs.Duration("timeout", 30*time.Second, "Per-request timeout")
	debug := fs.Bool("debug", false, "Log every status check")

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: yt-web-cli [options] <url>
       yt-web-cli -list [options]

Start a download on the server and follow it until it finishes.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	f, err := model.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if !*list && fs.NArg() != 1 {
		fs.Usage()
		return ExitInvalidArgs
	}

	api, err := client.New(*serverURL, client.Options{Timeout: *timeout})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	view := console.NewPresenter(stdout, api.BaseURL())
	ctrl := session.NewController(api, view, session.Options{
		PollInterval: *interval,
		Logger:       log.New(stderr, console.Prefix+" ", 0),
		Debug:        *debug,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *list {
		if err := ctrl.LoadFiles(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitServerNotReach
		}
		return ExitSuccess
	}

	return follow(ctx, ctrl, view, fs.Arg(0), f, stderr)
}

// follow starts the download and blocks until the session ends or ctx is
// cancelled.
func follow(ctx context.Context, ctrl *session.Controller, view *console.Presenter, rawURL string, f model.Format, stderr io.Writer) int {
	if err := ctrl.StartDownload(ctx, rawURL, f); err != nil {
		if errors.Is(err, session.ErrEmptyURL) {
			return ExitInvalidArgs
		}
		if _, ok := client.ServerMessage(err); ok {
			return ExitDownloadFailed
		}
		return ExitServerNotReach
	}

	done := make(chan struct{})
	go func() {
		ctrl.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Fprintln(stderr, "\n"+console.Prefix+" Received interrupt, no longer following the download")
		ctrl.Close()
		return ExitGeneralError
	}

	if view.Failed() || !view.Succeeded() {
		return ExitDownloadFailed
	}
	return ExitSuccess
}
