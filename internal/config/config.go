// Package config handles exporter configuration loading and management.
package config

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the PMX export options.
type ExportConfig struct {
	Encoding       string `yaml:"encoding"`        // utf-16le | utf-8
	PathMode       string `yaml:"path_mode"`       // absolute | relative
	TextureRoot    string `yaml:"texture_root"`    // empty = scene file directory
	Objects        string `yaml:"objects"`         // all | visible | selection
	ApplyModifiers bool   `yaml:"apply_modifiers"` // evaluate modifiers before export
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Encoding:       "utf-16le",
			PathMode:       "relative",
			TextureRoot:    "",
			Objects:        "all",
			ApplyModifiers: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
