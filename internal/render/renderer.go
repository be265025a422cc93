// Package render runs generated scenes through the manim command line
// tool and schedules those runs behind a debounce window.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ScriptName   = "scene_gen.py"
	scriptModule = "scene_gen"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Result is the outcome of one render. Failures carry the captured logs.
type Result struct {
	Success bool   `json:"success"`
	Logs    string `json:"logs"`
	Path    string `json:"path,omitempty"`
}

// Job is one render request. Final jobs use the configured output
// quality instead of the fast preview mode.
type Job struct {
	Code  string
	Final bool
}

type Renderer interface {
	Render(ctx context.Context, job Job) Result
}

// Options configure the manim invocation.
type Options struct {
	Binary    string
	Workspace string
	SceneName string

	// Final render settings. Preview renders always use -ql.
	Quality    string
	Resolution string
	FPS        int
}

func DefaultWorkspace() string {
	return filepath.Join(os.TempDir(), "efficient_manim_workspace")
}

type ManimRenderer struct {
	opts Options
}

func NewManimRenderer(opts Options) *ManimRenderer {
	if opts.Binary == "" {
		opts.Binary = "manim"
	}
	if opts.Workspace == "" {
		opts.Workspace = DefaultWorkspace()
	}
	if abs, err := filepath.Abs(opts.Workspace); err == nil {
		opts.Workspace = abs
	}
	if opts.SceneName == "" {
		opts.SceneName = "Output"
	}
	if opts.Quality == "" {
		opts.Quality = "ql"
	}
	return &ManimRenderer{opts: opts}
}

func (m *ManimRenderer) ScriptPath() string {
	return filepath.Join(m.opts.Workspace, ScriptName)
}

// ImageDir is where manim writes still frames for the scratch script.
func (m *ManimRenderer) ImageDir() string {
	return filepath.Join(m.opts.Workspace, "images", scriptModule)
}

// Args builds the manim command line for a job.
func (m *ManimRenderer) Args(job Job) []string {
	quality := "-ql"
	if job.Final {
		quality = "-" + m.opts.Quality
	}

	args := []string{quality, "--format=png", "--save_last_frame"}
	if job.Final {
		if res := strings.Replace(m.opts.Resolution, "x", ",", 1); res != "" {
			args = append(args, "-r", res)
		}
		if m.opts.FPS > 0 {
			args = append(args, "--fps", fmt.Sprint(m.opts.FPS))
		}
	}
	return append(args, "--media_dir", m.opts.Workspace, m.ScriptPath(), m.opts.SceneName)
}

// Render writes the script to the workspace and runs manim on it. It
// blocks until the process exits and never returns an error. The render
// succeeds when manim left a frame in the image dir.
func (m *ManimRenderer) Render(ctx context.Context, job Job) Result {
	if err := os.MkdirAll(m.opts.Workspace, 0o755); err != nil {
		return Result{Logs: fmt.Sprintf("create workspace: %v", err)}
	}
	if err := os.WriteFile(m.ScriptPath(), []byte(job.Code), 0o644); err != nil {
		return Result{Logs: fmt.Sprintf("write script: %v", err)}
	}
	// Frames from a previous run must not count as this run's output.
	if err := os.RemoveAll(m.ImageDir()); err != nil {
		return Result{Logs: fmt.Sprintf("clear images: %v", err)}
	}

	cmd := exec.CommandContext(ctx, m.opts.Binary, m.Args(job)...)
	cmd.Dir = m.opts.Workspace
	out, runErr := cmd.CombinedOutput()
	logs := string(out)

	// The exit status is only reported: a written frame is what counts.
	if runErr != nil {
		if logs != "" && !strings.HasSuffix(logs, "\n") {
			logs += "\n"
		}
		logs += runErr.Error()
	}

	image, err := findImage(m.ImageDir())
	if err != nil {
		return Result{Logs: logs + err.Error()}
	}
	if image == "" {
		return Result{Logs: logs}
	}
	return Result{Success: true, Logs: logs, Path: image}
}

// findImage returns the first image in dir by name, or "" if none.
func findImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read image dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}
