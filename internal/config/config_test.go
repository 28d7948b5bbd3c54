package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	abs := func(path string) string {
		resolved, err := filepath.Abs(path)
		require.NoError(t, err)
		return resolved
	}

	tests := []struct {
		name        string
		setupViper  func()
		wantConfig  *Config
		wantErr     bool
		errContains string
	}{
		{
			name: "load with all defaults",
			setupViper: func() {
				viper.Reset()
				viper.SetDefault("release", DefaultRelease)
				viper.SetDefault("silent", DefaultSilent)
				viper.SetDefault("verbose", DefaultVerbose)
			},
			wantConfig: &Config{
				MainSourceDirs: []string{abs(DefaultMainSourceDir)},
				TestSourceDirs: []string{abs(DefaultTestSourceDir)},
				MainBuildDir:   abs(DefaultMainBuildDir),
				TestBuildDir:   abs(DefaultTestBuildDir),
				LibDir:         abs(DefaultLibDir),
				Release:        DefaultRelease,
				Silent:         false,
				Verbose:        false,
			},
			wantErr: false,
		},
		{
			name: "load with custom values",
			setupViper: func() {
				viper.Reset()
				viper.Set("main_source_dirs", []string{"sources/main"})
				viper.Set("test_source_dirs", []string{"sources/test"})
				viper.Set("main_build_dir", "out/classes")
				viper.Set("test_build_dir", "out/test-classes")
				viper.Set("classpath", []string{"lib/guava.jar"})
				viper.Set("test_classpath", []string{"lib/junit.jar"})
				viper.Set("module_path", []string{"mods"})
				viper.Set("release", "21")
				viper.Set("main_class", "com.example.Main")
				viper.Set("options", []string{"-Xlint:all"})
				viper.Set("options_file", []string{"javac.opts"})
				viper.Set("silent", true)
				viper.Set("verbose", true)
				viper.Set("no-cache", true)
			},
			wantConfig: &Config{
				MainSourceDirs: []string{abs("sources/main")},
				TestSourceDirs: []string{abs("sources/test")},
				MainBuildDir:   abs("out/classes"),
				TestBuildDir:   abs("out/test-classes"),
				LibDir:         abs(DefaultLibDir),
				Classpath:      []string{"lib/guava.jar"},
				TestClasspath:  []string{"lib/junit.jar"},
				ModulePath:     []string{"mods"},
				Release:        "21",
				MainClass:      "com.example.Main",
				Options:        []string{"-Xlint:all"},
				OptionsFiles:   []string{"javac.opts"},
				Silent:         true,
				Verbose:        true,
				NoCache:        true,
			},
			wantErr: false,
		},
		{
			name: "empty release gets default",
			setupViper: func() {
				viper.Reset()
				viper.Set("release", "")
			},
			wantConfig: &Config{
				MainSourceDirs: []string{abs(DefaultMainSourceDir)},
				TestSourceDirs: []string{abs(DefaultTestSourceDir)},
				MainBuildDir:   abs(DefaultMainBuildDir),
				TestBuildDir:   abs(DefaultTestBuildDir),
				LibDir:         abs(DefaultLibDir),
				Release:        DefaultRelease,
			},
			wantErr: false,
		},
		{
			name: "invalid release",
			setupViper: func() {
				viper.Reset()
				viper.Set("release", "invalid")
			},
			wantErr:     true,
			errContains: "invalid java release",
		},
		{
			name: "release below minimum",
			setupViper: func() {
				viper.Reset()
				viper.Set("release", "7")
			},
			wantErr:     true,
			errContains: "invalid java release",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupViper()

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig.MainSourceDirs, cfg.MainSourceDirs)
			assert.Equal(t, tt.wantConfig.TestSourceDirs, cfg.TestSourceDirs)
			assert.Equal(t, tt.wantConfig.MainBuildDir, cfg.MainBuildDir)
			assert.Equal(t, tt.wantConfig.TestBuildDir, cfg.TestBuildDir)
			assert.Equal(t, tt.wantConfig.LibDir, cfg.LibDir)
			assert.Equal(t, tt.wantConfig.Classpath, cfg.Classpath)
			assert.Equal(t, tt.wantConfig.TestClasspath, cfg.TestClasspath)
			assert.Equal(t, tt.wantConfig.ModulePath, cfg.ModulePath)
			assert.Equal(t, tt.wantConfig.Release, cfg.Release)
			assert.Equal(t, tt.wantConfig.MainClass, cfg.MainClass)
			assert.Equal(t, tt.wantConfig.Options, cfg.Options)
			assert.Equal(t, tt.wantConfig.OptionsFiles, cfg.OptionsFiles)
			assert.Equal(t, tt.wantConfig.Silent, cfg.Silent)
			assert.Equal(t, tt.wantConfig.Verbose, cfg.Verbose)
			assert.Equal(t, tt.wantConfig.NoCache, cfg.NoCache)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		wantErr     bool
		errContains string
		checkFields func(*testing.T, *Config)
	}{
		{
			name: "valid config with all fields",
			config: &Config{
				MainSourceDirs: []string{"src/main/java"},
				TestSourceDirs: []string{"src/test/java"},
				MainBuildDir:   "build/main",
				TestBuildDir:   "build/test",
				LibDir:         ".jbt",
				Release:        "17",
			},
			wantErr: false,
			checkFields: func(t *testing.T, cfg *Config) {
				// Paths should be absolute
				assert.True(t, filepath.IsAbs(cfg.MainBuildDir))
				assert.True(t, filepath.IsAbs(cfg.TestBuildDir))
				assert.True(t, filepath.IsAbs(cfg.LibDir))
				assert.True(t, filepath.IsAbs(cfg.MainSourceDirs[0]))
				assert.True(t, filepath.IsAbs(cfg.TestSourceDirs[0]))
			},
		},
		{
			name: "minimum release is accepted",
			config: &Config{
				MainBuildDir: "build/main",
				TestBuildDir: "build/test",
				LibDir:       ".jbt",
				Release:      "8",
			},
			wantErr: false,
		},
		{
			name: "invalid release - empty",
			config: &Config{
				MainBuildDir: "build/main",
				TestBuildDir: "build/test",
				LibDir:       ".jbt",
				Release:      "",
			},
			wantErr:     true,
			errContains: "invalid java release",
		},
		{
			name: "invalid release - below minimum",
			config: &Config{
				MainBuildDir: "build/main",
				TestBuildDir: "build/test",
				LibDir:       ".jbt",
				Release:      "6",
			},
			wantErr:     true,
			errContains: "invalid java release",
		},
		{
			name: "empty source directory is skipped",
			config: &Config{
				MainSourceDirs: []string{"", "src/main/java"},
				MainBuildDir:   "build/main",
				TestBuildDir:   "build/test",
				LibDir:         ".jbt",
				Release:        "17",
			},
			wantErr: false,
			checkFields: func(t *testing.T, cfg *Config) {
				assert.Len(t, cfg.MainSourceDirs, 2)
				assert.Empty(t, cfg.MainSourceDirs[0])
				assert.True(t, filepath.IsAbs(cfg.MainSourceDirs[1]))
			},
		},
		{
			name: "relative paths are resolved",
			config: &Config{
				MainSourceDirs: []string{"java"},
				MainBuildDir:   "classes",
				TestBuildDir:   "test-classes",
				LibDir:         "lib",
				Release:        "17",
			},
			wantErr: false,
			checkFields: func(t *testing.T, cfg *Config) {
				assert.True(t, filepath.IsAbs(cfg.MainBuildDir))
				assert.True(t, filepath.IsAbs(cfg.TestBuildDir))
				assert.True(t, filepath.IsAbs(cfg.LibDir))
				assert.True(t, filepath.IsAbs(cfg.MainSourceDirs[0]))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.checkFields != nil {
				tt.checkFields(t, tt.config)
			}
		})
	}
}
