// Package args tokenizes option files into flat argument lists.
//
// Option files are plain text: whitespace separates tokens, '#' starts a
// whole-line comment, single or double quotes group tokens containing
// whitespace, and backslash escapes the next character through a fixed
// table. Files are always decoded as UTF-8 regardless of the environment
// so the same file produces the same tokens on every platform.
package args

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Tokenizer lexes a character stream into argument tokens. It reads the
// stream exactly once; create a new Tokenizer to re-tokenize.
type Tokenizer struct {
	input   *bufio.Reader
	ch      rune
	eof     bool
	pending error
	buf     strings.Builder
}

// NewTokenizer creates a tokenizer over r.
func NewTokenizer(r io.Reader) *Tokenizer {
	t := &Tokenizer{input: bufio.NewReader(r)}
	t.pending = t.read()

	return t
}

// Next returns the next token. The second return value is false once the
// stream is exhausted; an empty string with true is a valid empty token.
func (t *Tokenizer) Next() (string, bool, error) {
	if t.pending != nil {
		return "", false, t.pending
	}

	if err := t.skipWhitespaceAndComments(); err != nil {
		return "", false, err
	}

	if t.eof {
		return "", false, nil
	}

	t.buf.Reset()

	var quote rune
	for !t.eof {
		switch {
		case t.ch == '\'' || t.ch == '"':
			switch quote {
			case 0:
				quote = t.ch
			case t.ch:
				quote = 0
			default:
				t.buf.WriteRune(t.ch)
			}
		case t.ch == '\\':
			if err := t.read(); err != nil {
				return "", false, err
			}

			t.buf.WriteRune(t.unescape())
		case quote == 0 && unicode.IsSpace(t.ch):
			return t.buf.String(), true, nil
		default:
			t.buf.WriteRune(t.ch)
		}

		if err := t.read(); err != nil {
			return "", false, err
		}
	}

	// An unterminated quote simply runs to the end of the stream.
	return t.buf.String(), true, nil
}

// unescape decodes the character following a backslash. A backslash at the
// end of the stream stands for itself.
func (t *Tokenizer) unescape() rune {
	if t.eof {
		return '\\'
	}

	switch t.ch {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'f':
		return '\f'
	default:
		return t.ch
	}
}

func (t *Tokenizer) skipWhitespaceAndComments() error {
	for !t.eof {
		switch {
		case unicode.IsSpace(t.ch):
			if err := t.read(); err != nil {
				return err
			}
		case t.ch == '#':
			for !t.eof && t.ch != '\n' && t.ch != '\r' {
				if err := t.read(); err != nil {
					return err
				}
			}
		default:
			return nil
		}
	}

	return nil
}

func (t *Tokenizer) read() error {
	r, _, err := t.input.ReadRune()
	if err != nil {
		t.eof = true
		t.ch = 0

		if err == io.EOF {
			return nil
		}

		return err
	}

	t.ch = r

	return nil
}

// Parse tokenizes an entire stream into a slice.
func Parse(r io.Reader) ([]string, error) {
	tokenizer := NewTokenizer(r)

	var tokens []string
	for {
		token, ok, err := tokenizer.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize arguments: %w", err)
		}

		if !ok {
			return tokens, nil
		}

		tokens = append(tokens, token)
	}
}

// ParseFile tokenizes the contents of a file. Read errors propagate; a
// partial token list is never returned.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open arguments file: %w", err)
	}

	defer f.Close()

	tokens, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read arguments from %s: %w", path, err)
	}

	return tokens, nil
}

// ParseFiles tokenizes several files and concatenates their tokens in
// file order.
func ParseFiles(paths []string) ([]string, error) {
	var tokens []string

	for _, path := range paths {
		fileTokens, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, fileTokens...)
	}

	return tokens, nil
}
