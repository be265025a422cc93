// Package config loads user settings and server environment, and sets up
// the session log.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Quality string

const (
	QualityLow    Quality = "ql"
	QualityMedium Quality = "qm"
	QualityHigh   Quality = "qh"
	QualityQHD    Quality = "qp"
	Quality4K     Quality = "qk"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type Settings struct {
	APIKey     string  `json:"api_key"`
	FPS        int     `json:"fps"`
	Resolution string  `json:"resolution"`
	Quality    Quality `json:"quality"`
	Theme      Theme   `json:"theme"`
}

// settingsFile accepts the older gemini_api_key spelling as well.
type settingsFile struct {
	Settings
	GeminiAPIKey string `json:"gemini_api_key"`
}

func DefaultSettings() Settings {
	return Settings{
		APIKey:     os.Getenv("GEMINI_API_KEY"),
		FPS:        30,
		Resolution: "1280x720",
		Quality:    QualityLow,
		Theme:      ThemeDark,
	}
}

func DefaultSettingsPath() string {
	return filepath.Join(homeDir(), ".efficientmanim", "config", "settings.json")
}

// LoadSettings reads the settings file. A missing file or missing keys
// fall back to defaults; a malformed file is ignored entirely.
func LoadSettings(path string) Settings {
	defaults := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Settings: cannot read %s: %v", path, err)
		}
		return defaults
	}

	file := settingsFile{Settings: defaults}
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("Settings: ignoring malformed %s: %v", path, err)
		return defaults
	}
	if file.APIKey == defaults.APIKey && file.GeminiAPIKey != "" {
		file.APIKey = file.GeminiAPIKey
	}

	if err := file.Settings.Validate(); err != nil {
		log.Printf("Settings: ignoring invalid %s: %v", path, err)
		return defaults
	}
	return file.Settings
}

func (s Settings) Validate() error {
	if s.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", s.FPS)
	}
	if _, _, err := s.Dimensions(); err != nil {
		return err
	}
	switch s.Quality {
	case QualityLow, QualityMedium, QualityHigh, QualityQHD, Quality4K:
	default:
		return fmt.Errorf("unknown quality %q", s.Quality)
	}
	switch s.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	return nil
}

// Dimensions parses the "WxH" resolution.
func (s Settings) Dimensions() (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s.Resolution), "x")
	if !ok {
		return 0, 0, fmt.Errorf("resolution %q is not WxH", s.Resolution)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("resolution %q has invalid width", s.Resolution)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q has invalid height", s.Resolution)
	}
	return width, height, nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
