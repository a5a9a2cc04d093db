// Package envfile parses flat NAME=VALUE environment files.
//
// The grammar is intentionally small: blank lines and lines starting with '#'
// are skipped, the first '=' separates name from value, and a value wrapped in
// a matching pair of single or double quotes loses exactly one layer of them.
// There is no variable expansion and no escape processing.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrBadFormat indicates a line that is not a NAME=VALUE assignment.
var ErrBadFormat = errors.New("bad env format")

// EnvFormatError reports a malformed line. Line is 0-based.
type EnvFormatError struct {
	Line int
	Text string
}

func (e *EnvFormatError) Error() string {
	return fmt.Sprintf("%s %q on line %d", ErrBadFormat, e.Text, e.Line)
}

// Is lets errors.Is match EnvFormatError against ErrBadFormat.
func (e *EnvFormatError) Is(target error) bool {
	return target == ErrBadFormat
}

// ParseFile opens path and parses it with Parse.
// A missing file is reported with the unwrapped *fs.PathError from os.Open.
func ParseFile(path, prefix string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, prefix)
}

// Parse reads NAME=VALUE lines from r. Later definitions of a name replace
// earlier ones. When prefix is non-empty only names starting with it are kept;
// the filter runs after the whole input has been validated.
func Parse(r io.Reader, prefix string) (*Mapping, error) {
	result := NewMapping()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for ln := 0; scanner.Scan(); ln++ {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok || name == "" {
			return nil, &EnvFormatError{Line: ln, Text: line}
		}

		result.Set(name, unquote(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}

	if prefix != "" {
		return result.Filter(prefix), nil
	}
	return result, nil
}

// unquote strips one layer of matching single or double quotes.
// A lone quote character counts as both ends and unquotes to "".
func unquote(value string) string {
	if value == "" {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first != last || (first != '"' && first != '\'') {
		return value
	}
	if len(value) == 1 {
		return ""
	}
	return value[1 : len(value)-1]
}
