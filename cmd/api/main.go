// Package main starts the HTTP server behind the scene composer front end.
// It owns one editing session: the node graph, its generated code, the
// preview renders and the optional AI assistant.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/efficientmanim/core/cmd/api/middleware"
	"github.com/efficientmanim/core/internal/assist"
	"github.com/efficientmanim/core/internal/catalog"
	"github.com/efficientmanim/core/internal/config"
	"github.com/efficientmanim/core/internal/handlers"
	"github.com/efficientmanim/core/internal/render"
	"github.com/efficientmanim/core/internal/studio"
)

func newRenderer(srv config.Server, settings config.Settings) *render.ManimRenderer {
	width, height, _ := settings.Dimensions()
	return render.NewManimRenderer(render.Options{
		Binary:     srv.ManimBinary,
		Workspace:  srv.Workspace,
		Quality:    string(settings.Quality),
		Resolution: fmt.Sprintf("%dx%d", width, height),
		FPS:        settings.FPS,
	})
}

// newBridge returns a bridge without a generator when no API key is set.
func newBridge(ctx context.Context, apiKey string) *assist.Bridge {
	gemini, err := assist.NewGemini(ctx, apiKey, "")
	if err != nil {
		log.Printf("Assistant disabled: %v", err)
		return assist.NewBridge(nil)
	}
	return assist.NewBridge(gemini)
}

func newHandler(s *studio.Studio, bridge *assist.Bridge, sessionLog, origin string) http.Handler {
	mux := http.NewServeMux()
	handlers.NewAPI(s, bridge, sessionLog).Register(mux)
	return middleware.Cors(origin)(mux)
}

func main() {
	srv := config.ServerFromEnv()
	logFile := config.SetupLogging(srv.LogDir)
	defer logFile.Close()

	settings := config.LoadSettings(srv.SettingsPath)
	cat := catalog.Discover()

	s := studio.New(cat, newRenderer(srv, settings), srv.Debounce)
	defer s.Close()

	bridge := newBridge(context.Background(), settings.APIKey)
	handler := newHandler(s, bridge, config.SessionLogPath(srv.LogDir), srv.AllowedOrigin)

	log.Printf("🚀 Server starting on %s", srv.Addr)
	if err := http.ListenAndServe(srv.Addr, handler); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
