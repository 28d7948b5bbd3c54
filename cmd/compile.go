package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jbtool/jbt/internal/args"
	"github.com/jbtool/jbt/internal/cache"
	"github.com/jbtool/jbt/internal/compile"
	"github.com/jbtool/jbt/internal/config"
	"github.com/jbtool/jbt/internal/ui"
)

var compileCmd = &cobra.Command{
	Use:          "compile [project-dir] [@options-file...]",
	Short:        "Compile main and test sources",
	Long:         `Compile the main and test units of a Java project. Arguments starting with @ name files whose tokens become extra compiler options.`,
	RunE:         runCompile,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
}

// compileUnit carries one unit through hashing, restore and compilation.
type compileUnit struct {
	name        string
	destination string
	sources     []string
	classpath   []string

	hash     string
	restored bool
}

func runCompile(cmd *cobra.Command, argv []string) error {
	projectDir, optionFiles, err := splitArgs(argv)
	if err != nil {
		return err
	}

	loader := config.NewLoader()
	cfg, err := loader.LoadForCompile(cmd, projectDir)
	if err != nil {
		return err
	}

	options, err := buildOptions(cfg, optionFiles)
	if err != nil {
		return err
	}

	units, err := gatherUnits(cfg)
	if err != nil {
		return err
	}

	// The unit hash covers classpath entries by path only; the fingerprint
	// ledger covers their content by modification time. Restoring cached
	// outputs is safe only when both agree that nothing changed.
	classpathEntries := make([]string, 0, len(cfg.Classpath)+len(cfg.TestClasspath))
	classpathEntries = append(classpathEntries, cfg.Classpath...)
	classpathEntries = append(classpathEntries, cfg.TestClasspath...)

	fingerprints := cache.NewFingerprints(cfg.LibDir, nil)
	fingerprints.FingerprintExtensions(nil, classpathEntries, false, false)
	classpathFresh := fingerprints.IsExtensionsHashValid()

	var store *cache.Store
	if !cfg.NoCache {
		store, err = cache.OpenStore(filepath.Join(projectDir, cache.DefaultStoreDir))
		if err != nil {
			return err
		}

		defer store.Close()
	}

	for _, unit := range units {
		if len(unit.sources) == 0 || unit.destination == "" {
			continue
		}

		hash, err := cache.HashUnit(unit.sources, unit.classpath, cfg.ModulePath, options, unit.destination, cfg.MainClass)
		if err != nil {
			log.Debug().Err(err).Str("unit", unit.name).Msg("unit not hashable, cache skipped")
			continue
		}

		unit.hash = hash

		if store == nil || !classpathFresh {
			continue
		}

		entry, err := store.Get(hash)
		if err != nil || entry == nil || !entry.Success {
			continue
		}

		if err := store.Restore(entry, unit.destination); err == nil {
			log.Debug().Str("unit", unit.name).Str("hash", hash).Msg("restored from cache")
			unit.restored = true
		}
	}

	op := compile.NewOperation().
		Options(options...).
		ModuleMainClass(cfg.MainClass).
		Silent(true)

	for _, unit := range units {
		if unit.restored {
			continue
		}

		switch unit.name {
		case compile.UnitMain:
			op.MainDestination(unit.destination).
				MainClasspath(unit.classpath...).
				MainModulePath(cfg.ModulePath...).
				MainSourceFiles(unit.sources...)
		case compile.UnitTest:
			op.TestDestination(unit.destination).
				TestClasspath(unit.classpath...).
				TestModulePath(cfg.ModulePath...).
				TestSourceFiles(unit.sources...)
		}
	}

	if err := op.Execute(); err != nil {
		if errors.Is(err, compile.ErrDiagnostics) {
			fmt.Fprintln(os.Stderr, ui.RenderSummary(problems(op.Diagnostics())))
		}

		return err
	}

	if store != nil {
		for _, unit := range units {
			if unit.restored || unit.hash == "" || len(unit.sources) == 0 {
				continue
			}

			if err := store.Put(unit.hash, unit.name, unit.destination, true); err != nil {
				log.Debug().Err(err).Str("unit", unit.name).Msg("failed to cache outputs")
			}
		}
	}

	if err := fingerprints.WriteCache(classpathEntries); err != nil {
		return err
	}

	if !cfg.Silent {
		fmt.Println(ui.RenderSuccess())
	}

	return nil
}

// splitArgs separates the optional project directory from @-prefixed
// option-file arguments.
func splitArgs(argv []string) (string, []string, error) {
	projectDir := "."
	seenDir := false

	var optionFiles []string

	for _, arg := range argv {
		if strings.HasPrefix(arg, "@") {
			optionFiles = append(optionFiles, strings.TrimPrefix(arg, "@"))
			continue
		}

		if seenDir {
			return "", nil, fmt.Errorf("unexpected argument: %s", arg)
		}

		projectDir = arg
		seenDir = true
	}

	return projectDir, optionFiles, nil
}

// buildOptions combines configured options, tokenized option files and the
// release flag into the raw option list handed to the pipeline.
func buildOptions(cfg *config.Config, optionFiles []string) ([]string, error) {
	options := make([]string, 0, len(cfg.Options))
	options = append(options, cfg.Options...)

	files := make([]string, 0, len(cfg.OptionsFiles)+len(optionFiles))
	files = append(files, cfg.OptionsFiles...)
	files = append(files, optionFiles...)

	fileOptions, err := args.ParseFiles(files)
	if err != nil {
		return nil, err
	}

	options = append(options, fileOptions...)

	if cfg.Release != "" {
		options = append(options, "--release", cfg.Release)
	}

	return options, nil
}

// gatherUnits scans the configured source directories and pairs each unit
// with its destination and classpath. The test unit sees the main build
// output ahead of its own classpath additions.
func gatherUnits(cfg *config.Config) ([]*compileUnit, error) {
	mainSources, err := compile.GatherSources(nil, cfg.MainSourceDirs)
	if err != nil {
		return nil, err
	}

	testSources, err := compile.GatherSources(nil, cfg.TestSourceDirs)
	if err != nil {
		return nil, err
	}

	mainClasspath := make([]string, 0, len(cfg.Classpath))
	mainClasspath = append(mainClasspath, cfg.Classpath...)

	testClasspath := make([]string, 0, 1+len(cfg.Classpath)+len(cfg.TestClasspath))
	testClasspath = append(testClasspath, cfg.MainBuildDir)
	testClasspath = append(testClasspath, cfg.Classpath...)
	testClasspath = append(testClasspath, cfg.TestClasspath...)

	return []*compileUnit{
		{
			name:        compile.UnitMain,
			destination: cfg.MainBuildDir,
			sources:     mainSources,
			classpath:   mainClasspath,
		},
		{
			name:        compile.UnitTest,
			destination: cfg.TestBuildDir,
			sources:     testSources,
			classpath:   testClasspath,
		},
	}, nil
}

func problems(diagnostics []compile.Diagnostic) []ui.Problem {
	out := make([]ui.Problem, 0, len(diagnostics))
	for _, diagnostic := range diagnostics {
		out = append(out, ui.Problem{
			Severity: string(diagnostic.Severity),
			File:     diagnostic.File,
			Line:     diagnostic.Line,
			Message:  diagnostic.Message,
		})
	}

	return out
}
