package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// errNotInPlace marks an edit that cannot be expressed as a byte patch of the
// original text. The caller falls back to re-encoding the document.
var errNotInPlace = errors.New("edit cannot be applied in place")

var itemPrefixPattern = regexp.MustCompile(`^ *- +$`)

type patch struct {
	start int
	end   int
	data  []byte
	seq   int // stable order for equal start
}

// surgeon collects byte patches against the original manifest text.
// After the first failure every further call is a no-op and apply reports it.
type surgeon struct {
	raw        []byte
	lineStarts []int
	newline    string
	patches    []patch
	eofBreak   bool
	err        error
}

func newSurgeon(raw []byte) *surgeon {
	s := &surgeon{raw: raw, lineStarts: []int{0}, newline: "\n"}
	for i, b := range raw {
		if b == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	if bytes.Contains(raw, []byte("\r\n")) {
		s.newline = "\r\n"
	}
	return s
}

func (s *surgeon) fail(format string, args ...any) {
	if s.err == nil {
		s.err = fmt.Errorf("%w: %s", errNotInPlace, fmt.Sprintf(format, args...))
	}
}

func (s *surgeon) add(start, end int, data string) {
	s.patches = append(s.patches, patch{start: start, end: end, data: []byte(data), seq: len(s.patches)})
}

// offset converts a 1-based line and rune column into a byte offset.
func (s *surgeon) offset(line, col int) (int, bool) {
	if line < 1 || line > len(s.lineStarts) || col < 1 {
		return 0, false
	}
	pos := s.lineStarts[line-1]
	for i := 1; i < col; i++ {
		if pos >= len(s.raw) || s.raw[pos] == '\n' {
			return 0, false
		}
		_, size := utf8.DecodeRune(s.raw[pos:])
		pos += size
	}
	return pos, true
}

// lineEnd returns the offset of the end of a line's content, before any CR or LF.
func (s *surgeon) lineEnd(line int) int {
	start := s.lineStarts[line-1]
	end := len(s.raw)
	if i := bytes.IndexByte(s.raw[start:], '\n'); i >= 0 {
		end = start + i
	}
	if end > start && s.raw[end-1] == '\r' {
		end--
	}
	return end
}

// lineBreakEnd returns the offset just past a line's terminating newline.
func (s *surgeon) lineBreakEnd(line int) int {
	start := s.lineStarts[line-1]
	if i := bytes.IndexByte(s.raw[start:], '\n'); i >= 0 {
		return start + i + 1
	}
	return len(s.raw)
}

func (s *surgeon) lineText(line int) string {
	return string(s.raw[s.lineStarts[line-1]:s.lineEnd(line)])
}

// insertAfter inserts lines of text after the given line.
func (s *surgeon) insertAfter(line int, lines []string) {
	if s.err != nil {
		return
	}
	pos := s.lineBreakEnd(line)
	var b strings.Builder
	if pos == len(s.raw) && !bytes.HasSuffix(s.raw, []byte("\n")) && !s.eofBreak {
		b.WriteString(s.newline)
		s.eofBreak = true
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(s.newline)
	}
	s.add(pos, pos, b.String())
}

// scalarSpan locates the bytes of a single-line scalar token.
func (s *surgeon) scalarSpan(n *yaml.Node, flow bool) (int, int, error) {
	if n.Kind != yaml.ScalarNode || n.Style&(yaml.LiteralStyle|yaml.FoldedStyle|yaml.TaggedStyle) != 0 {
		return 0, 0, fmt.Errorf("%w: unsupported scalar at line %d", errNotInPlace, n.Line)
	}
	start, ok := s.offset(n.Line, n.Column)
	if !ok {
		return 0, 0, fmt.Errorf("%w: bad position %d:%d", errNotInPlace, n.Line, n.Column)
	}
	end := s.lineEnd(n.Line)

	switch {
	case n.Style&yaml.DoubleQuotedStyle != 0:
		if start >= end || s.raw[start] != '"' {
			break
		}
		for i := start + 1; i < end; i++ {
			switch s.raw[i] {
			case '\\':
				i++
			case '"':
				return start, i + 1, nil
			}
		}
	case n.Style&yaml.SingleQuotedStyle != 0:
		if start >= end || s.raw[start] != '\'' {
			break
		}
		for i := start + 1; i < end; i++ {
			if s.raw[i] != '\'' {
				continue
			}
			if i+1 < end && s.raw[i+1] == '\'' {
				i++
				continue
			}
			return start, i + 1, nil
		}
	default:
		if n.Value == "" {
			break
		}
		stop := start
		for stop < end {
			c := s.raw[stop]
			if c == '#' && stop > start && (s.raw[stop-1] == ' ' || s.raw[stop-1] == '\t') {
				break
			}
			if flow && (c == ',' || c == ']' || c == '}') {
				break
			}
			// A mapping key ends at ": " or at ":" closing the line.
			if c == ':' && (stop+1 == end || s.raw[stop+1] == ' ' || s.raw[stop+1] == '\t') {
				break
			}
			stop++
		}
		for stop > start && (s.raw[stop-1] == ' ' || s.raw[stop-1] == '\t') {
			stop--
		}
		if string(s.raw[start:stop]) == n.Value {
			return start, stop, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: cannot locate scalar at line %d", errNotInPlace, n.Line)
}

// lastLine returns the last line occupied by n. ownerIndent is the
// indentation of the key or item that owns n and bounds block scalars.
func (s *surgeon) lastLine(n *yaml.Node, ownerIndent int, flow bool) (int, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return n.Line, nil
	case yaml.ScalarNode:
		if n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
			return s.blockScalarEnd(n, ownerIndent), nil
		}
		if n.Value == "" && n.Style == 0 {
			// Implicit nulls carry the position of the following token.
			return 0, nil
		}
		if _, _, err := s.scalarSpan(n, flow); err != nil {
			return 0, err
		}
		return n.Line, nil
	case yaml.MappingNode, yaml.SequenceNode:
		flow = flow || n.Style&yaml.FlowStyle != 0
		last := n.Line
		for i, c := range n.Content {
			indent := ownerIndent
			if n.Kind == yaml.MappingNode && i%2 == 1 {
				indent = n.Content[i-1].Column - 1
			}
			l, err := s.lastLine(c, indent, flow)
			if err != nil {
				return 0, err
			}
			if l > last {
				last = l
			}
		}
		return last, nil
	}
	return 0, fmt.Errorf("%w: unexpected node kind at line %d", errNotInPlace, n.Line)
}

func (s *surgeon) blockScalarEnd(n *yaml.Node, ownerIndent int) int {
	last := n.Line
	for l := n.Line + 1; l <= len(s.lineStarts); l++ {
		text := s.lineText(l)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if len(text)-len(strings.TrimLeft(text, " ")) <= ownerIndent {
			break
		}
		last = l
	}
	return last
}

// itemPrefix returns the text before the first key of a block sequence item,
// such as "  - ".
func (s *surgeon) itemPrefix(item *yaml.Node) (string, error) {
	if item.Kind != yaml.MappingNode || item.Style&yaml.FlowStyle != 0 || len(item.Content) == 0 {
		return "", fmt.Errorf("%w: sequence item at line %d is not a block mapping", errNotInPlace, item.Line)
	}
	key := item.Content[0]
	pos, ok := s.offset(key.Line, key.Column)
	if !ok {
		return "", fmt.Errorf("%w: bad position %d:%d", errNotInPlace, key.Line, key.Column)
	}
	prefix := string(s.raw[s.lineStarts[key.Line-1]:pos])
	if !itemPrefixPattern.MatchString(prefix) {
		return "", fmt.Errorf("%w: unexpected item prefix %q", errNotInPlace, prefix)
	}
	return prefix, nil
}

// envLines renders env entries as block sequence items.
func envLines(prefix string, vars []EnvVar) []string {
	cont := strings.Repeat(" ", len(prefix))
	lines := make([]string, 0, 2*len(vars))
	for _, v := range vars {
		lines = append(lines,
			prefix+"name: "+renderScalar(v.Name, scalarStyle(v.Name, 0)),
			cont+"value: "+renderScalar(v.Value, scalarStyle(v.Value, 0)),
		)
	}
	return lines
}

// replaceScalar rewrites the value token of an existing scalar.
func (s *surgeon) replaceScalar(parent, n *yaml.Node, value string) {
	if s.err != nil {
		return
	}
	start, end, err := s.scalarSpan(n, parent.Style&yaml.FlowStyle != 0)
	if err != nil {
		s.err = err
		return
	}
	s.add(start, end, renderScalar(value, scalarStyle(value, n.Style)))
}

// addKey appends "key: value" at the end of a block mapping.
func (s *surgeon) addKey(m *yaml.Node, key, value string) {
	if s.err != nil {
		return
	}
	if m.Style&yaml.FlowStyle != 0 || len(m.Content) == 0 {
		s.fail("mapping at line %d is not a block mapping", m.Line)
		return
	}
	indent := m.Content[0].Column - 1
	last, err := s.lastLine(m, indent, false)
	if err != nil {
		s.err = err
		return
	}
	line := strings.Repeat(" ", indent) + key + ": " + renderScalar(value, scalarStyle(value, 0))
	s.insertAfter(last, []string{line})
}

// appendItems adds env entries after the last item of a block sequence.
func (s *surgeon) appendItems(seq *yaml.Node, vars []EnvVar) {
	if s.err != nil {
		return
	}
	if seq.Style&yaml.FlowStyle != 0 || len(seq.Content) == 0 {
		s.fail("sequence at line %d is not a block sequence", seq.Line)
		return
	}
	item := seq.Content[len(seq.Content)-1]
	prefix, err := s.itemPrefix(item)
	if err != nil {
		s.err = err
		return
	}
	last, err := s.lastLine(item, len(prefix)-1, false)
	if err != nil {
		s.err = err
		return
	}
	s.insertAfter(last, envLines(prefix, vars))
}

// createEnv adds an env key with the given entries at the end of a container.
func (s *surgeon) createEnv(container *yaml.Node, vars []EnvVar, seqIndent int) {
	if s.err != nil {
		return
	}
	if container.Style&yaml.FlowStyle != 0 || len(container.Content) == 0 {
		s.fail("container at line %d is not a block mapping", container.Line)
		return
	}
	indent := container.Content[0].Column - 1
	last, err := s.lastLine(container, indent, false)
	if err != nil {
		s.err = err
		return
	}

	pad := strings.Repeat(" ", indent)
	if len(vars) == 0 {
		s.insertAfter(last, []string{pad + "env: []"})
		return
	}
	lines := []string{pad + "env:"}
	lines = append(lines, envLines(pad+strings.Repeat(" ", seqIndent)+"- ", vars)...)
	s.insertAfter(last, lines)
}

// fillEnv replaces an empty env value written on the key line ("env:",
// "env: null", "env: ~" or "env: []") with a block list.
func (s *surgeon) fillEnv(key, value *yaml.Node, vars []EnvVar, seqIndent int) {
	if s.err != nil {
		return
	}
	_, keyEnd, err := s.scalarSpan(key, false)
	if err != nil {
		s.err = err
		return
	}
	end := s.lineEnd(key.Line)
	colon := keyEnd
	for colon < end && (s.raw[colon] == ' ' || s.raw[colon] == '\t') {
		colon++
	}
	if colon >= end || s.raw[colon] != ':' {
		s.fail("env key at line %d is not followed by a colon", key.Line)
		return
	}

	rest := string(s.raw[colon+1 : end])
	tokenEnd := len(rest)
	if i := strings.Index(rest, "#"); i >= 0 {
		if i > 0 && rest[i-1] != ' ' && rest[i-1] != '\t' {
			s.fail("unexpected text after env key at line %d", key.Line)
			return
		}
		tokenEnd = i
	}
	token := strings.TrimSpace(rest[:tokenEnd])

	switch {
	case token == "" && value.Kind == yaml.ScalarNode && value.Value == "":
	case token == "[]" && value.Kind == yaml.SequenceNode && len(value.Content) == 0:
	case value.Kind == yaml.ScalarNode && token == value.Value && isNull(value):
	default:
		s.fail("env value at line %d cannot be replaced in place", key.Line)
		return
	}

	indent := key.Column - 1
	pad := strings.Repeat(" ", indent)
	if len(vars) == 0 {
		if tokenEnd == len(rest) {
			s.add(colon+1, end, " []")
		} else {
			s.add(colon+1, colon+1+tokenEnd, " [] ")
		}
		return
	}

	if tokenEnd == len(rest) {
		s.add(colon+1, end, "")
	} else {
		s.add(colon+1, colon+1+tokenEnd, " ")
	}
	s.insertAfter(key.Line, envLines(pad+strings.Repeat(" ", seqIndent)+"- ", vars))
}

// sequenceIndent returns how far the items of the block sequence under key
// are indented relative to the key, defaulting to 2.
func (s *surgeon) sequenceIndent(key, seq *yaml.Node) int {
	if seq == nil || seq.Kind != yaml.SequenceNode || seq.Style&yaml.FlowStyle != 0 || len(seq.Content) == 0 {
		return 2
	}
	prefix, err := s.itemPrefix(seq.Content[0])
	if err != nil {
		return 2
	}
	dash := strings.IndexByte(prefix, '-')
	if step := dash - (key.Column - 1); step >= 0 && step <= 8 {
		return step
	}
	return 2
}

// apply produces the patched text.
func (s *surgeon) apply() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}

	patches := append([]patch(nil), s.patches...)
	sort.SliceStable(patches, func(i, j int) bool {
		if patches[i].start == patches[j].start {
			if patches[i].end == patches[j].end {
				return patches[i].seq < patches[j].seq
			}
			return patches[i].end < patches[j].end
		}
		return patches[i].start < patches[j].start
	})
	for i := 1; i < len(patches); i++ {
		prev, cur := patches[i-1], patches[i]
		if prev.end > cur.start {
			return nil, fmt.Errorf("%w: overlapping edits at offset %d", errNotInPlace, cur.start)
		}
	}

	var out bytes.Buffer
	out.Grow(len(s.raw) + 256)
	cursor := 0
	for _, p := range patches {
		out.Write(s.raw[cursor:p.start])
		out.Write(p.data)
		cursor = p.end
	}
	out.Write(s.raw[cursor:])
	return out.Bytes(), nil
}

// sameContent reports whether out decodes to the same data as root.
func sameContent(root *yaml.Node, out []byte) bool {
	var want, got any
	if err := root.Decode(&want); err != nil {
		return false
	}
	if err := yaml.Unmarshal(out, &got); err != nil {
		return false
	}
	return reflect.DeepEqual(want, got)
}
