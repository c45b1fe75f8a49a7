// pmxexport converts YAML and glTF scenes into PMX models.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/Faultbox/pmx-export/internal/config"
	"github.com/Faultbox/pmx-export/internal/export"
	"github.com/Faultbox/pmx-export/internal/logger"
	"github.com/Faultbox/pmx-export/internal/sceneio"
	"github.com/Faultbox/pmx-export/pkg/pmx"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "inspect", "info":
		cmdInspect(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pmxexport - scene to PMX model exporter

Usage:
  pmxexport <command> [options]

Commands:
  convert [flags] <scene> <out.pmx>  Export a .yaml/.gltf/.glb scene
  inspect [-dump] <file.pmx>         Show model tables
  config [-write path]               Print (or save) the effective config

Convert flags:
  -config path      Config file (default ./pmxexport.yaml)
  -encoding name    utf-16le or utf-8
  -path-mode mode   absolute or relative
  -root dir         Root for relative texture paths (default: scene dir)
  -objects sel      all, visible or selection
  -no-modifiers     Export base geometry
  -debug            Debug logging
  -log path         Also log to file

Examples:
  pmxexport convert hero.glb hero.pmx
  pmxexport convert -encoding utf-8 -path-mode absolute room.yaml room.pmx
  pmxexport inspect hero.pmx`)
}

// loadConfig parses flags for a subcommand and initializes logging.
func loadConfig(name string, args []string, extra func(*flag.FlagSet)) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	f := config.BindFlags(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs
}

func cmdConvert(args []string) {
	cfg, fs := loadConfig("convert", args, nil)
	defer logger.Sync()

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: pmxexport convert [flags] <scene.yaml|scene.gltf|scene.glb> <out.pmx>")
		logger.Exit(1)
	}
	in, out := fs.Arg(0), fs.Arg(1)

	opts, err := cfg.Export.Options(filepath.Dir(in))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Exit(1)
	}
	logger.Sugar.Debugf("Options: %+v", opts)

	objs, err := sceneio.Load(in)
	if err != nil {
		logger.Fatal("failed to load scene", zap.String("path", in), zap.Error(err))
	}

	exp, err := export.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Exit(1)
	}

	stats, err := exp.Export(objs, out)
	if err != nil {
		logger.Error("export failed", zap.Error(err))
		logger.Exit(1)
	}

	fmt.Printf("Exported: %s\n", out)
	fmt.Printf("Objects:  %d (%d skipped)\n", stats.Objects, stats.Skipped)
	fmt.Printf("Vertices: %d\n", stats.Vertices)
	fmt.Printf("Faces:    %d\n", stats.Faces)
	fmt.Printf("Indices:  %s\n", stats.Sizes)
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Dump the full decoded document")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pmxexport inspect [-dump] <file.pmx>")
		os.Exit(1)
	}

	doc, err := pmx.ParseFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *dump {
		spew.Dump(doc)
		return
	}

	m := doc.Model
	fmt.Printf("File:      %s\n", fs.Arg(0))
	fmt.Printf("Version:   %.1f\n", doc.Header.Version)
	fmt.Printf("Encoding:  %s\n", doc.Header.Encoding)
	fmt.Printf("Indices:   %s\n", doc.Header.IndexSizes)
	fmt.Printf("Vertices:  %d\n", len(m.Vertices))
	fmt.Printf("Faces:     %d\n", len(m.Faces))
	fmt.Printf("Bones:     %d\n", len(m.Bones))
	fmt.Printf("Frames:    %d\n", len(m.DisplayFrames))
	fmt.Println()

	fmt.Printf("Textures (%d):\n", len(m.Textures))
	for i, t := range m.Textures {
		fmt.Printf("  [%d] %s\n", i, t)
	}

	fmt.Printf("Materials (%d):\n", len(m.Materials))
	for i, mat := range m.Materials {
		tex := "-"
		if mat.Texture >= 0 && mat.Texture < len(m.Textures) {
			tex = m.Textures[mat.Texture]
		}
		fmt.Printf("  [%d] %-24s faces=%-6d texture=%s\n", i, mat.Name, mat.SurfaceCount/3, tex)
	}
}

func cmdConfig(args []string) {
	var write *string
	cfg, _ := loadConfig("config", args, func(fs *flag.FlagSet) {
		write = fs.String("write", "", "Save the effective config to this path")
	})
	defer logger.Sync()

	if *write != "" {
		if err := cfg.SaveTo(*write); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			logger.Exit(1)
		}
		fmt.Printf("Saved: %s\n", *write)
		return
	}

	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Exit(1)
	}
	os.Stdout.Write(data)
}
