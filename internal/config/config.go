package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jbtool/jbt/internal/utils"
)

// Default configuration values
const (
	DefaultMainSourceDir = "src/main/java"
	DefaultTestSourceDir = "src/test/java"
	DefaultMainBuildDir  = "build/main"
	DefaultTestBuildDir  = "build/test"
	DefaultLibDir        = ".jbt"
	DefaultRelease       = "17"
	DefaultSilent        = false
	DefaultVerbose       = false
)

// Holds the configuration options for jbt
type Config struct {
	// Directories scanned recursively for main sources
	MainSourceDirs []string

	// Directories scanned recursively for test sources
	TestSourceDirs []string

	// Build destination for the main unit
	MainBuildDir string

	// Build destination for the test unit
	TestBuildDir string

	// Directory holding the fingerprint cache and local tool state
	LibDir string

	// Classpath entries for the main unit
	Classpath []string

	// Extra classpath entries for the test unit, appended to Classpath
	TestClasspath []string

	// Module path entries
	ModulePath []string

	// Java release passed as --release
	Release string

	// Main class embedded into a compiled module descriptor
	MainClass string

	// Raw extra compiler options
	Options []string

	// Files tokenized into extra compiler options
	OptionsFiles []string

	// Suppress the success notice
	Silent bool

	// Enable verbose output
	Verbose bool

	// Disable the compiled-artifact cache
	NoCache bool
}

func Load() (*Config, error) {
	cfg := &Config{
		MainSourceDirs: viper.GetStringSlice("main_source_dirs"),
		TestSourceDirs: viper.GetStringSlice("test_source_dirs"),
		MainBuildDir:   viper.GetString("main_build_dir"),
		TestBuildDir:   viper.GetString("test_build_dir"),
		LibDir:         viper.GetString("lib_dir"),
		Classpath:      viper.GetStringSlice("classpath"),
		TestClasspath:  viper.GetStringSlice("test_classpath"),
		ModulePath:     viper.GetStringSlice("module_path"),
		Release:        viper.GetString("release"),
		MainClass:      viper.GetString("main_class"),
		Options:        viper.GetStringSlice("options"),
		OptionsFiles:   viper.GetStringSlice("options_file"),
		Silent:         viper.GetBool("silent"),
		Verbose:        viper.GetBool("verbose"),
		NoCache:        viper.GetBool("no-cache"),
	}

	// Apply defaults if not set
	if len(cfg.MainSourceDirs) == 0 {
		cfg.MainSourceDirs = []string{DefaultMainSourceDir}
	}

	if len(cfg.TestSourceDirs) == 0 {
		cfg.TestSourceDirs = []string{DefaultTestSourceDir}
	}

	if cfg.MainBuildDir == "" {
		cfg.MainBuildDir = DefaultMainBuildDir
	}

	if cfg.TestBuildDir == "" {
		cfg.TestBuildDir = DefaultTestBuildDir
	}

	if cfg.LibDir == "" {
		cfg.LibDir = DefaultLibDir
	}

	if cfg.Release == "" {
		cfg.Release = DefaultRelease
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	// Validate release
	if !utils.IsValidRelease(c.Release) {
		return fmt.Errorf("invalid java release: %s", c.Release)
	}

	// Resolve build directories
	for _, dir := range []*string{&c.MainBuildDir, &c.TestBuildDir, &c.LibDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return fmt.Errorf("invalid build directory path: %v", err)
		}

		*dir = abs
	}

	// Resolve source directories
	for _, dirs := range [][]string{c.MainSourceDirs, c.TestSourceDirs} {
		for i, dir := range dirs {
			if dir != "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return fmt.Errorf("invalid source directory path: %v", err)
				}

				dirs[i] = abs
			}
		}
	}

	return nil
}
