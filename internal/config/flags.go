package config

import "flag"

// Flags holds command-line overrides bound to a FlagSet.
type Flags struct {
	Config      *string
	Debug       *bool
	Encoding    *string
	PathMode    *string
	Root        *string
	Objects     *string
	NoModifiers *bool
	LogFile     *string
}

// BindFlags registers the config overrides on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:      fs.String("config", "", "Path to config file"),
		Debug:       fs.Bool("debug", false, "Enable debug logging"),
		Encoding:    fs.String("encoding", "", "Text encoding: utf-16le or utf-8"),
		PathMode:    fs.String("path-mode", "", "Texture paths: absolute or relative"),
		Root:        fs.String("root", "", "Root directory for relative texture paths"),
		Objects:     fs.String("objects", "", "Objects to export: all, visible or selection"),
		NoModifiers: fs.Bool("no-modifiers", false, "Export geometry without applying modifiers"),
		LogFile:     fs.String("log", "", "Also write logs to this file"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.Config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
	if *f.Encoding != "" {
		cfg.Export.Encoding = *f.Encoding
	}
	if *f.PathMode != "" {
		cfg.Export.PathMode = *f.PathMode
	}
	if *f.Root != "" {
		cfg.Export.TextureRoot = *f.Root
	}
	if *f.Objects != "" {
		cfg.Export.Objects = *f.Objects
	}
	if *f.NoModifiers {
		cfg.Export.ApplyModifiers = false
	}
}
