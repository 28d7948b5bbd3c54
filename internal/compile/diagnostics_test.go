package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagnostics(t *testing.T) {
	output := `src/Main.java:5: error: ';' expected
        int x = 1
                 ^
src/Main.java:9: warning: [rawtypes] found raw type: List
        List l;
        ^
Note: Some input files use unchecked or unsafe operations.
2 errors
`

	diagnostics := ParseDiagnostics(output)
	require.Len(t, diagnostics, 3)

	assert.Equal(t, SeverityError, diagnostics[0].Severity)
	assert.Equal(t, "src/Main.java", diagnostics[0].File)
	assert.Equal(t, 5, diagnostics[0].Line)
	assert.Equal(t, "';' expected", diagnostics[0].Message)
	assert.Contains(t, diagnostics[0].Raw, "^", "caret lines attach to the diagnostic")

	assert.Equal(t, SeverityWarning, diagnostics[1].Severity)
	assert.Equal(t, 9, diagnostics[1].Line)

	assert.Equal(t, SeverityNote, diagnostics[2].Severity)
	assert.Equal(t, "Some input files use unchecked or unsafe operations.", diagnostics[2].Message)
}

func TestParseDiagnostics_Empty(t *testing.T) {
	assert.Empty(t, ParseDiagnostics(""))
	assert.Empty(t, ParseDiagnostics("\n\n"))
	assert.Empty(t, ParseDiagnostics("1 error\n2 warnings\n"))
}

func TestParseDiagnostics_UnattributableLine(t *testing.T) {
	diagnostics := ParseDiagnostics("javac: invalid flag: -bogus\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, SeverityOther, diagnostics[0].Severity)
	assert.Equal(t, "javac: invalid flag: -bogus", diagnostics[0].Message)
}
