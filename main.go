package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"github.com/ytget/yt-web-downloader/internal/client"
	"github.com/ytget/yt-web-downloader/internal/config"
	"github.com/ytget/yt-web-downloader/internal/session"
	"github.com/ytget/yt-web-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.yt-web-downloader"
	AppName = "YT Web Downloader"
)

// clientSession holds the controller for the current server URL.
type clientSession struct {
	mu   sync.Mutex
	ctrl *session.Controller
	api  *client.Client
}

func (s *clientSession) replace(ctrl *session.Controller, api *client.Client) {
	s.mu.Lock()
	old := s.ctrl
	s.ctrl, s.api = ctrl, api
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

func (s *clientSession) resolve(ref string) (*url.URL, error) {
	s.mu.Lock()
	api := s.api
	s.mu.Unlock()
	if api == nil {
		return nil, fmt.Errorf("no server configured")
	}
	return api.ResolveURL(ref)
}

func main() {
	log.Printf("%s v%s starting...", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	settings := config.NewSettings(myApp)
	sess := &clientSession{}
	ctx := context.Background()

	var view *ui.RootUI
	connect := func() {
		api, err := client.New(settings.GetServerURL(), client.Options{})
		if err != nil {
			dialog.ShowError(err, myWindow)
			return
		}
		ctrl := session.NewController(api, view, session.Options{
			PollInterval: settings.GetPollInterval(),
		})
		sess.replace(ctrl, api)
		view.Bind(ctx, ctrl)
		log.Printf("Connected to %s", api.BaseURL())
	}

	view = ui.NewRootUI(myWindow, ui.Options{
		Settings:        settings,
		ResolveURL:      sess.resolve,
		OnSettingsSaved: connect,
	})
	connect()

	myWindow.SetOnClosed(func() {
		sess.replace(nil, nil)
	})
	myWindow.ShowAndRun()
}
