package manifest

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// scalarStyle picks the quoting style for a string written into the manifest.
// Quoted originals keep their quote character; plain is used only when both
// YAML 1.2 and the YAML 1.1 rules used by Kubernetes read the value back as
// the same string.
func scalarStyle(value string, original yaml.Style) yaml.Style {
	switch {
	case strings.ContainsAny(value, "\n\r\t") || !utf8.ValidString(value):
		return yaml.DoubleQuotedStyle
	case original&yaml.SingleQuotedStyle != 0:
		return yaml.SingleQuotedStyle
	case original&yaml.DoubleQuotedStyle != 0:
		return yaml.DoubleQuotedStyle
	case isPlainSafe(value):
		return 0
	default:
		return yaml.DoubleQuotedStyle
	}
}

// renderScalar formats value as an inline YAML scalar in the given style.
func renderScalar(value string, style yaml.Style) string {
	switch {
	case style&yaml.SingleQuotedStyle != 0:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	case style&yaml.DoubleQuotedStyle != 0:
		return strconv.Quote(value)
	default:
		return value
	}
}

// isPlainSafe reports whether value can be written without quotes.
func isPlainSafe(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return false
	}
	doc := []byte("v: " + value)

	var v3 map[string]any
	if err := yaml.Unmarshal(doc, &v3); err != nil {
		return false
	}
	if s, ok := v3["v"].(string); !ok || s != value {
		return false
	}

	var v1 map[string]any
	if err := sigsyaml.Unmarshal(doc, &v1); err != nil {
		return false
	}
	s, ok := v1["v"].(string)
	return ok && s == value
}

// setScalar rewrites n in place as a string scalar.
func setScalar(n *yaml.Node, value string) {
	style := scalarStyle(value, n.Style)
	n.Kind = yaml.ScalarNode
	n.Tag = "!!str"
	n.Value = value
	n.Style = style
	n.Content = nil
	n.Alias = nil
}

// newScalar builds a string scalar with the style used for inserted text.
func newScalar(value string) *yaml.Node {
	n := strNode(value)
	n.Style = scalarStyle(value, 0)
	return n
}
