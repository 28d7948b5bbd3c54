// Package compile orchestrates javac invocations for the main and test
// compile units.
//
// Both units are always attempted, whatever the outcome of the first:
// failure is decided only after both have had the chance to contribute
// diagnostics, which maximizes the diagnostics yield of a single run.
// Classpath and module path entries supplied as raw options are merged
// with the configured entry lists so javac never sees the same flag
// twice.
package compile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jbtool/jbt/internal/classfile"
	"github.com/jbtool/jbt/internal/codes"
	"github.com/jbtool/jbt/internal/tools"
)

// Compiler option flags recognized by the merge step.
const (
	optionDestination = "-d"
	optionCp          = "-cp"
	optionClassPath   = "--class-path"
	optionClasspath   = "--classpath"
	optionP           = "-p"
	optionModulePath  = "--module-path"
)

// ErrDiagnostics signals that one or more compile units produced
// diagnostics. It is distinguishable from fatal configuration errors such
// as a missing compiler.
var ErrDiagnostics = errors.New("compilation failed")

// Unit names.
const (
	UnitMain = "main"
	UnitTest = "test"
)

// Operation compiles the main and test sources of a project. Configure it
// with the fluent setters, then call Execute. Slices passed to setters are
// copied; slices returned by getters are copies as well.
type Operation struct {
	mainDestination string
	testDestination string
	mainClasspath   []string
	testClasspath   []string
	mainModulePath  []string
	testModulePath  []string
	mainSourceFiles []string
	testSourceFiles []string
	mainSourceDirs  []string
	testSourceDirs  []string
	options         []string
	moduleMainClass string
	silent          bool

	registry *tools.Registry
	stdout   io.Writer
	stderr   io.Writer

	diagnostics []Diagnostic
}

// NewOperation creates a compile operation with a JDK tool registry and
// standard output streams.
func NewOperation() *Operation {
	return &Operation{
		registry: tools.NewRegistry(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// MainDestination sets the build destination for the main unit.
func (op *Operation) MainDestination(dir string) *Operation {
	op.mainDestination = dir
	return op
}

// TestDestination sets the build destination for the test unit.
func (op *Operation) TestDestination(dir string) *Operation {
	op.testDestination = dir
	return op
}

// MainClasspath appends entries to the main compilation classpath.
func (op *Operation) MainClasspath(entries ...string) *Operation {
	op.mainClasspath = append(op.mainClasspath, entries...)
	return op
}

// TestClasspath appends entries to the test compilation classpath.
func (op *Operation) TestClasspath(entries ...string) *Operation {
	op.testClasspath = append(op.testClasspath, entries...)
	return op
}

// MainModulePath appends entries to the main compilation module path.
func (op *Operation) MainModulePath(entries ...string) *Operation {
	op.mainModulePath = append(op.mainModulePath, entries...)
	return op
}

// TestModulePath appends entries to the test compilation module path.
func (op *Operation) TestModulePath(entries ...string) *Operation {
	op.testModulePath = append(op.testModulePath, entries...)
	return op
}

// MainSourceFiles appends explicit main source files.
func (op *Operation) MainSourceFiles(files ...string) *Operation {
	op.mainSourceFiles = append(op.mainSourceFiles, files...)
	return op
}

// TestSourceFiles appends explicit test source files.
func (op *Operation) TestSourceFiles(files ...string) *Operation {
	op.testSourceFiles = append(op.testSourceFiles, files...)
	return op
}

// MainSourceDirectories appends directories scanned recursively for main
// sources.
func (op *Operation) MainSourceDirectories(dirs ...string) *Operation {
	op.mainSourceDirs = append(op.mainSourceDirs, dirs...)
	return op
}

// TestSourceDirectories appends directories scanned recursively for test
// sources.
func (op *Operation) TestSourceDirectories(dirs ...string) *Operation {
	op.testSourceDirs = append(op.testSourceDirs, dirs...)
	return op
}

// Options appends raw compiler option tokens. Classpath and module path
// flags found here are merged into the computed path flags at execution.
func (op *Operation) Options(options ...string) *Operation {
	op.options = append(op.options, options...)
	return op
}

// ModuleMainClass sets the main class embedded into a compiled
// module-info.class.
func (op *Operation) ModuleMainClass(name string) *Operation {
	op.moduleMainClass = name
	return op
}

// Silent suppresses the success notice.
func (op *Operation) Silent(silent bool) *Operation {
	op.silent = silent
	return op
}

// Registry replaces the tool registry, mainly for tests.
func (op *Operation) Registry(registry *tools.Registry) *Operation {
	op.registry = registry
	return op
}

// Streams replaces the output writers, mainly for tests.
func (op *Operation) Streams(stdout, stderr io.Writer) *Operation {
	op.stdout = stdout
	op.stderr = stderr
	return op
}

// Diagnostics returns a copy of the diagnostics accumulated so far, in
// tool emission order across both units.
func (op *Operation) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(op.diagnostics))
	copy(out, op.diagnostics)

	return out
}

// Execute runs the compile pipeline: ensure the build directories exist,
// compile the main unit, compile the test unit, then evaluate. Diagnostics
// from either unit fail the whole operation with ErrDiagnostics; fatal
// errors (missing compiler, descriptor patch failure) abort immediately.
func (op *Operation) Execute() error {
	if err := op.createBuildDirectories(); err != nil {
		return err
	}

	if err := op.buildMainSources(); err != nil {
		return err
	}

	if err := op.buildTestSources(); err != nil {
		return err
	}

	if len(op.diagnostics) > 0 {
		return ErrDiagnostics
	}

	if !op.silent {
		fmt.Fprintln(op.stdout, "Compilation finished successfully.")
	}

	return nil
}

func (op *Operation) createBuildDirectories() error {
	for _, dir := range []string{op.mainDestination, op.testDestination} {
		if dir == "" {
			continue
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create build directory: %w", err)
		}
	}

	return nil
}

func (op *Operation) buildMainSources() error {
	sources, err := GatherSources(op.mainSourceFiles, op.mainSourceDirs)
	if err != nil {
		return err
	}

	return op.buildSources(op.mainClasspath, op.mainModulePath, sources, op.mainDestination)
}

func (op *Operation) buildTestSources() error {
	sources, err := GatherSources(op.testSourceFiles, op.testSourceDirs)
	if err != nil {
		return err
	}

	return op.buildSources(op.testClasspath, op.testModulePath, sources, op.testDestination)
}

// buildSources compiles one unit. A unit with no sources or no destination
// is a silent no-op, not an error.
func (op *Operation) buildSources(classpath, modulePath, sources []string, destination string) error {
	if len(sources) == 0 || destination == "" {
		return nil
	}

	options := []string{optionDestination, destination}

	if len(classpath) > 0 {
		joined := strings.Join(classpath, string(os.PathListSeparator))
		joined = op.mergePathOption(joined, optionCp)
		joined = op.mergePathOption(joined, optionClassPath)
		joined = op.mergePathOption(joined, optionClasspath)

		options = append(options, optionCp, joined)
	}

	if len(modulePath) > 0 {
		joined := strings.Join(modulePath, string(os.PathListSeparator))
		joined = op.mergePathOption(joined, optionP)
		joined = op.mergePathOption(joined, optionModulePath)

		options = append(options, optionP, joined)
	}

	options = append(options, op.options...)
	options = append(options, sources...)

	compiler, err := op.registry.Find(tools.Javac)
	if err != nil {
		return err
	}

	var toolOutput bytes.Buffer
	status, err := compiler.Run(op.stdout, &toolOutput, options...)
	if err != nil {
		return err
	}

	if !codes.IsSuccess(status) {
		log.Debug().Int("status", status).Str("reason", codes.GetErrorMessage(status)).Msg("compiler reported failure")

		diagnostics := ParseDiagnostics(toolOutput.String())
		op.diagnostics = append(op.diagnostics, diagnostics...)

		for _, diagnostic := range diagnostics {
			fmt.Fprintln(op.stderr, diagnostic.Raw)
		}
	} else {
		// Warnings on a successful run pass through unparsed.
		io.Copy(op.stderr, &toolOutput)
	}

	moduleInfo := filepath.Join(destination, "module-info.class")
	if op.moduleMainClass != "" {
		if _, err := os.Stat(moduleInfo); err == nil {
			if err := patchModuleDescriptor(moduleInfo, op.moduleMainClass); err != nil {
				return err
			}
		}
	}

	return nil
}

// mergePathOption removes the first occurrence of flag and its value from
// the raw option list and appends the value to base. The flag only counts
// when found strictly before the last two positions; a trailing flag with
// no usable value slot is treated as not found.
func (op *Operation) mergePathOption(base, flag string) string {
	idx := slices.Index(op.options, flag)
	if idx != -1 && idx+1 < len(op.options)-1 {
		op.options = slices.Delete(op.options, idx, idx+1)
		value := op.options[idx]
		op.options = slices.Delete(op.options, idx, idx+1)

		return base + string(os.PathListSeparator) + value
	}

	return base
}

// patchModuleDescriptor rewrites a compiled module descriptor in place to
// embed the main-class attribute. Failures here abort the compile step
// immediately; the tool invocation already succeeded and a half-patched
// descriptor must not survive silently.
func patchModuleDescriptor(path, mainClass string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read module descriptor: %w", err)
	}

	patched, err := classfile.PatchModuleMainClass(original, mainClass)
	if err != nil {
		return fmt.Errorf("failed to patch module descriptor: %w", err)
	}

	if err := os.WriteFile(path, patched, 0o644); err != nil {
		return fmt.Errorf("failed to write module descriptor: %w", err)
	}

	return nil
}

// GatherSources combines explicit files with a recursive scan of the given
// directories for .java sources. Scan order is deterministic.
func GatherSources(files, dirs []string) ([]string, error) {
	sources := make([]string, 0, len(files))
	sources = append(sources, files...)

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) && path == dir {
					return nil // missing source directory contributes nothing
				}

				return err
			}

			if !d.IsDir() && strings.HasSuffix(d.Name(), ".java") {
				sources = append(sources, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan source directory %s: %w", dir, err)
		}
	}

	return sources, nil
}
