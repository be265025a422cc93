// efmgen generates the Manim scene script for a saved project and can
// render it without starting the server.
//
// Usage:
//
//	efmgen -input=intro.efp [-output=scene.py] [-render [-final]]
//
// Rendering uses the same workspace, manim binary and settings file as
// the server (EFM_WORKSPACE, EFM_MANIM_BIN, EFM_SETTINGS).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/efficientmanim/core/internal/catalog"
	"github.com/efficientmanim/core/internal/codegen"
	"github.com/efficientmanim/core/internal/config"
	"github.com/efficientmanim/core/internal/project"
	"github.com/efficientmanim/core/internal/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("efmgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputFile := fs.String("input", "", "project archive (.efp) to read (required)")
	outputFile := fs.String("output", "", "write the script here instead of stdout")
	doRender := fs.Bool("render", false, "render the scene with manim")
	final := fs.Bool("final", false, "render with the configured output quality")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *inputFile == "" {
		fmt.Fprintln(stderr, "efmgen: -input flag is required")
		fs.Usage()
		return 2
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		fmt.Fprintf(stderr, "efmgen: cannot read input file: %v\n", err)
		return 1
	}

	g, err := project.Load(data, catalog.Discover())
	if err != nil {
		fmt.Fprintf(stderr, "efmgen: %v\n", err)
		return 1
	}
	code := codegen.Generate(g)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(code), 0o644); err != nil {
			fmt.Fprintf(stderr, "efmgen: cannot write output file: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Generated: %s\n", *outputFile)
	} else if !*doRender {
		io.WriteString(stdout, code)
	}

	if !*doRender {
		return 0
	}

	srv := config.ServerFromEnv()
	settings := config.LoadSettings(srv.SettingsPath)
	renderer := render.NewManimRenderer(render.Options{
		Binary:     srv.ManimBinary,
		Workspace:  srv.Workspace,
		Quality:    string(settings.Quality),
		Resolution: settings.Resolution,
		FPS:        settings.FPS,
	})

	result := renderer.Render(context.Background(), render.Job{Code: code, Final: *final})
	io.WriteString(stderr, result.Logs)
	if !result.Success {
		fmt.Fprintln(stderr, "efmgen: render failed")
		return 1
	}
	fmt.Fprintln(stdout, result.Path)
	return 0
}
