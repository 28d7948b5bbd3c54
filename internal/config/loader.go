package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForCompile loads configuration specifically for compile operations
func (l *Loader) LoadForCompile(cmd *cobra.Command, projectDir string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(projectDir)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("main_build_dir", DefaultMainBuildDir)
	viper.SetDefault("test_build_dir", DefaultTestBuildDir)
	viper.SetDefault("lib_dir", DefaultLibDir)
	viper.SetDefault("release", DefaultRelease)
	viper.SetDefault("silent", DefaultSilent)
	viper.SetDefault("verbose", DefaultVerbose)
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return
	}

	globalDir := filepath.Join(configHome, "jbt")

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads local configuration from the project directory
func (l *Loader) loadLocalConfig(projectDir string) {
	if projectDir == "" {
		return
	}

	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return // silently ignore, config.Load() will handle validation
	}

	localPath := FindLocalConfig(absDir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.ReadInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("release", cmd.Flags().Lookup("release"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	_ = viper.BindPFlag("silent", cmd.Flags().Lookup("silent"))
	_ = viper.BindPFlag("main_class", cmd.Flags().Lookup("main-class"))
	_ = viper.BindPFlag("classpath", cmd.Flags().Lookup("classpath"))
	_ = viper.BindPFlag("module_path", cmd.Flags().Lookup("module-path"))
	_ = viper.BindPFlag("options_file", cmd.Flags().Lookup("options-file"))
	_ = viper.BindPFlag("no-cache", cmd.Flags().Lookup("no-cache"))
}
