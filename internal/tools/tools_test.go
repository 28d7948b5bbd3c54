package tools

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool implements Tool for testing
type fakeTool struct {
	name   string
	status int
	stderr string
}

func (f *fakeTool) Name() string {
	return f.name
}

func (f *fakeTool) Run(stdout, stderr io.Writer, args ...string) (int, error) {
	if f.stderr != "" {
		io.WriteString(stderr, f.stderr)
	}

	return f.status, nil
}

func TestRegistry_RegisteredToolWins(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeTool{name: Javac, status: 0})

	tool, err := registry.Find(Javac)
	require.NoError(t, err)
	assert.Equal(t, Javac, tool.Name())

	status, err := tool.Run(io.Discard, io.Discard)
	require.NoError(t, err)
	assert.Zero(t, status)
}

func TestRegistry_NotFound(t *testing.T) {
	registry := NewRegistry()
	registry.lookPath = func(string) (string, error) {
		return "", exec.ErrNotFound
	}

	t.Setenv("JBT_JAVA_HOME", "")
	t.Setenv("JAVA_HOME", "")

	_, err := registry.Find("no-such-tool")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_ResolvesFromJavaHome(t *testing.T) {
	home := t.TempDir()
	binDir := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))

	binary := Javac
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}
	require.NoError(t, os.WriteFile(filepath.Join(binDir, binary), []byte("#!/bin/sh\n"), 0o755))

	t.Setenv("JBT_JAVA_HOME", "")
	t.Setenv("JAVA_HOME", home)

	registry := NewRegistry()
	registry.lookPath = func(string) (string, error) {
		return "", exec.ErrNotFound
	}

	tool, err := registry.Find(Javac)
	require.NoError(t, err)
	assert.Equal(t, Javac, tool.Name())
}

// mockCommander implements Commander interface for testing
type mockCommander struct {
	runFunc func() error
}

func (m *mockCommander) Run() error {
	return m.runFunc()
}

func TestExecTool_Run(t *testing.T) {
	tests := []struct {
		name       string
		runErr     error
		wantStatus int
		wantErr    bool
	}{
		{
			name:       "clean run",
			runErr:     nil,
			wantStatus: 0,
		},
		{
			name:    "launch failure",
			runErr:  errors.New("fork/exec: permission denied"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &execTool{
				name: Javac,
				path: "/opt/jdk/bin/javac",
				execCommand: func(path string, stdout, stderr io.Writer, args ...string) Commander {
					return &mockCommander{runFunc: func() error { return tt.runErr }}
				},
			}

			status, err := tool.Run(io.Discard, io.Discard)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestExecTool_WiresWriters(t *testing.T) {
	var gotStdout, gotStderr io.Writer

	tool := &execTool{
		name: Javac,
		path: "/opt/jdk/bin/javac",
		execCommand: func(path string, stdout, stderr io.Writer, args ...string) Commander {
			gotStdout = stdout
			gotStderr = stderr

			return &mockCommander{runFunc: func() error { return nil }}
		},
	}

	var out, errBuf bytes.Buffer
	_, err := tool.Run(&out, &errBuf, "-version")
	require.NoError(t, err)
	assert.Equal(t, &out, gotStdout)
	assert.Equal(t, &errBuf, gotStderr)
}
