// Package config loads user settings and server environment, and sets up
// the session log.
package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const SessionLogName = "session.log"

type Server struct {
	Addr          string
	AllowedOrigin string
	Workspace     string
	ManimBinary   string
	SettingsPath  string
	LogDir        string
	Debounce      time.Duration
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// ServerFromEnv reads the server configuration from EFM_* variables.
func ServerFromEnv() Server {
	debounce, err := time.ParseDuration(getEnv("EFM_DEBOUNCE", "300ms"))
	if err != nil || debounce <= 0 {
		log.Printf("Config: invalid EFM_DEBOUNCE, using 300ms")
		debounce = 300 * time.Millisecond
	}

	return Server{
		Addr:          getEnv("EFM_ADDR", ":8080"),
		AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),
		Workspace:     getEnv("EFM_WORKSPACE", filepath.Join(os.TempDir(), "efficient_manim_workspace")),
		ManimBinary:   getEnv("EFM_MANIM_BIN", "manim"),
		SettingsPath:  getEnv("EFM_SETTINGS", DefaultSettingsPath()),
		LogDir:        getEnv("EFM_LOG_DIR", filepath.Join(homeDir(), ".efficientmanim", "logs")),
		Debounce:      debounce,
	}
}

// SetupLogging sends the standard logger to stderr and to session.log in
// dir. If the log file cannot be opened, logging stays on stderr only.
func SetupLogging(dir string) io.Closer {
	log.SetFlags(log.Ltime)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Logging: cannot create %s: %v", dir, err)
		return io.NopCloser(nil)
	}
	f, err := os.OpenFile(SessionLogPath(dir), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Logging: cannot open session log: %v", err)
		return io.NopCloser(nil)
	}

	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f
}

func SessionLogPath(dir string) string {
	return filepath.Join(dir, SessionLogName)
}
