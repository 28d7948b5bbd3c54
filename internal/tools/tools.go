// Package tools locates and runs external command-line tools by name.
// JDK tools are resolved from JBT_JAVA_HOME or JAVA_HOME first and the
// PATH second. A tool that cannot be found is a configuration error, not
// a build failure.
package tools

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Javac is the name of the JDK compiler the pipeline invokes.
const Javac = "javac"

// ErrNotFound indicates the requested tool is unavailable in this
// environment.
var ErrNotFound = errors.New("tool not found")

// Tool runs an external tool with an argument list and reports its exit
// status. A non-zero status is not an error; failing to launch is.
type Tool interface {
	Name() string
	Run(stdout, stderr io.Writer, args ...string) (int, error)
}

// Commander interface for testing
type Commander interface {
	Run() error
}

// Registry resolves tools by name. Explicitly registered tools take
// precedence over JDK lookup, which gives tests and embedders a seam.
type Registry struct {
	tools       map[string]Tool
	lookPath    func(string) (string, error)
	execCommand func(path string, stdout, stderr io.Writer, args ...string) Commander
}

// NewRegistry creates a registry that resolves unregistered names against
// the local JDK installation.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		lookPath: exec.LookPath,
		execCommand: func(path string, stdout, stderr io.Writer, args ...string) Commander {
			cmd := exec.Command(path, args...)
			cmd.Stdout = stdout
			cmd.Stderr = stderr

			return cmd
		},
	}
}

// Register adds or replaces a tool under its own name.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Find returns the tool registered under name, or resolves it from the
// JDK installation. Returns ErrNotFound when neither succeeds.
func (r *Registry) Find(name string) (Tool, error) {
	if tool, ok := r.tools[name]; ok {
		return tool, nil
	}

	path, err := r.resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return &execTool{name: name, path: path, execCommand: r.execCommand}, nil
}

// resolve searches JBT_JAVA_HOME/bin, JAVA_HOME/bin, then the PATH.
func (r *Registry) resolve(name string) (string, error) {
	binary := name
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}

	for _, env := range []string{"JBT_JAVA_HOME", "JAVA_HOME"} {
		home := os.Getenv(env)
		if home == "" {
			continue
		}

		candidate := filepath.Join(home, "bin", binary)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return r.lookPath(binary)
}

// execTool runs a resolved binary through the registry's exec seam.
type execTool struct {
	name        string
	path        string
	execCommand func(path string, stdout, stderr io.Writer, args ...string) Commander
}

func (t *execTool) Name() string {
	return t.name
}

func (t *execTool) Run(stdout, stderr io.Writer, args ...string) (int, error) {
	c := t.execCommand(t.path, stdout, stderr, args...)

	err := c.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}

		return -1, fmt.Errorf("failed to run %s: %w", t.name, err)
	}

	return 0, nil
}
