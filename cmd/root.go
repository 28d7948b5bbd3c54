package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jbtool/jbt/internal/compile"
	"github.com/jbtool/jbt/internal/version"
)

// Exit codes. Diagnostics are an expected compile outcome and stay
// distinguishable from configuration and environment failures.
const (
	exitDiagnostics = 1
	exitFatal       = 2
)

var rootCmd = &cobra.Command{
	Use:          "jbt",
	Short:        "Build-avoidance Java compile tool",
	Long:         `Compile the main and test sources of a Java project, skipping work that cached fingerprints and artifacts prove unnecessary.`,
	RunE:         runCompile,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, compile.ErrDiagnostics) {
			os.Exit(exitDiagnostics)
		}

		os.Exit(exitFatal)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("release", "r", "", "Java release to compile for (e.g., 17, 21)")
	rootCmd.PersistentFlags().BoolP("silent", "s", false, "Suppress the success notice")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("main-class", "", "Main class recorded in the compiled module descriptor")
	rootCmd.PersistentFlags().StringSlice("classpath", []string{}, "Compilation classpath entries")
	rootCmd.PersistentFlags().StringSlice("module-path", []string{}, "Compilation module path entries")
	rootCmd.PersistentFlags().StringSlice("options-file", []string{}, "Files with extra compiler options, one @file per entry")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the compiled-artifact cache")
	rootCmd.PersistentPreRun = setupLogging
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(cacheCmd)
}

func setupLogging(cmd *cobra.Command, args []string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
