// Package config holds engine-level defaults that live outside the
// .EAR container itself: log level/file, default output directory, and
// default worker count. cmd/ear applies only the logging settings; the
// output and render sections are loaded but not read by the engine.
package config

// Config holds engine-level defaults loaded from an optional YAML file.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
}

// LoggingConfig controls internal/logger.Init.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// OutputConfig holds a default output directory. The engine does not read
// it: relative listener filenames resolve against the scene file's
// directory.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// RenderConfig holds a default worker count. The engine does not read it;
// the worker count comes from the scene's own settings.
type RenderConfig struct {
	MaxThreads int `yaml:"max_threads"`
}

// Default returns the engine's built-in defaults, used when no config
// file is found.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", LogFile: ""},
		Output:  OutputConfig{Directory: "."},
		Render:  RenderConfig{MaxThreads: 0},
	}
}
