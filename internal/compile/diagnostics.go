package compile

import (
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a compiler diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
	SeverityOther   Severity = "other"
)

// Diagnostic is one message emitted by the compiler, with its source
// location when javac provided one. Raw preserves the original text,
// including caret and context lines, so output order and formatting
// survive re-printing.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Message  string
	Raw      string
}

// javac: "path/File.java:12: error: ';' expected"
var diagnosticPattern = regexp.MustCompile(`^(.+\.java):(\d+): (error|warning): (.*)$`)

// summary lines like "1 error" or "2 warnings"
var summaryPattern = regexp.MustCompile(`^\d+ (error|warning)s?$`)

// ParseDiagnostics turns javac's stderr output into a diagnostic list.
// Context lines (source excerpts, carets) attach to the preceding
// diagnostic; unattributable lines become diagnostics of their own so
// nothing the tool said is discarded. Trailing count summaries are
// dropped, the individual diagnostics already carry that information.
func ParseDiagnostics(output string) []Diagnostic {
	var diagnostics []Diagnostic

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if summaryPattern.MatchString(strings.TrimSpace(line)) {
			continue
		}

		if match := diagnosticPattern.FindStringSubmatch(line); match != nil {
			lineNumber, _ := strconv.Atoi(match[2])

			severity := SeverityError
			if match[3] == "warning" {
				severity = SeverityWarning
			}

			diagnostics = append(diagnostics, Diagnostic{
				Severity: severity,
				File:     match[1],
				Line:     lineNumber,
				Message:  match[4],
				Raw:      line,
			})

			continue
		}

		if strings.HasPrefix(line, "Note: ") {
			diagnostics = append(diagnostics, Diagnostic{
				Severity: SeverityNote,
				Message:  strings.TrimPrefix(line, "Note: "),
				Raw:      line,
			})

			continue
		}

		// Source excerpt or caret line following a located diagnostic.
		if len(diagnostics) > 0 {
			last := &diagnostics[len(diagnostics)-1]
			last.Raw += "\n" + line

			continue
		}

		diagnostics = append(diagnostics, Diagnostic{
			Severity: SeverityOther,
			Message:  line,
			Raw:      line,
		})
	}

	return diagnostics
}
