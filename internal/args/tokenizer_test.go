package args

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain tokens",
			input: "foo bar baz",
			want:  []string{"foo", "bar", "baz"},
		},
		{
			name:  "quoted tokens keep whitespace",
			input: `foo "bar baz" 'qux'`,
			want:  []string{"foo", "bar baz", "qux"},
		},
		{
			name:  "mixed quote types nest literally",
			input: `"it's fine" 'say "hi"'`,
			want:  []string{"it's fine", `say "hi"`},
		},
		{
			name:  "escape table",
			input: `a\nb c\td e\rf g\fh`,
			want:  []string{"a\nb", "c\td", "e\rf", "g\fh"},
		},
		{
			name:  "unknown escape is literal",
			input: `a\xb \"quoted\"`,
			want:  []string{"axb", `"quoted"`},
		},
		{
			name:  "escape inside quotes",
			input: `"a\nb"`,
			want:  []string{"a\nb"},
		},
		{
			name:  "trailing backslash is literal",
			input: `tail\`,
			want:  []string{`tail\`},
		},
		{
			name:  "full line comment",
			input: "# comment\nreal",
			want:  []string{"real"},
		},
		{
			name:  "comment runs to end of line",
			input: "first\n# skip me\nsecond # trailing comment",
			want:  []string{"first", "second"},
		},
		{
			name:  "hash inside a token is literal",
			input: "foo#bar",
			want:  []string{"foo#bar"},
		},
		{
			name:  "only comments and whitespace",
			input: "  # one\n\t# two\n   ",
			want:  nil,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "unterminated quote runs to end of stream",
			input: `"open`,
			want:  []string{"open"},
		},
		{
			name:  "empty quoted token",
			input: `"" x`,
			want:  []string{"", "x"},
		},
		{
			name:  "newlines separate tokens",
			input: "one\ntwo\r\nthree",
			want:  []string{"one", "two", "three"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tokens)
		})
	}
}

func TestTokenizer_NotRestartable(t *testing.T) {
	tokenizer := NewTokenizer(strings.NewReader("only"))

	token, ok, err := tokenizer.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "only", token)

	_, ok, err = tokenizer.Next()
	require.NoError(t, err)
	assert.False(t, ok, "exhausted tokenizer should keep reporting end of stream")

	_, ok, err = tokenizer.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestTokenizer_ReadErrorPropagates(t *testing.T) {
	tokenizer := NewTokenizer(failingReader{})

	_, _, err := tokenizer.Next()
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "javac.args")

	content := "# compiler options\n-Xlint:all\n--release 17\n\"-Amessage=hello world\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tokens, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"-Xlint:all", "--release", "17", "-Amessage=hello world"}, tokens)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.args"))
	assert.Error(t, err)
}

func TestParseFiles_ConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()

	first := filepath.Join(dir, "first.args")
	require.NoError(t, os.WriteFile(first, []byte("-verbose"), 0o644))

	second := filepath.Join(dir, "second.args")
	require.NoError(t, os.WriteFile(second, []byte("-g"), 0o644))

	tokens, err := ParseFiles([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"-verbose", "-g"}, tokens)
}
