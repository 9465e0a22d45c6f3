package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRules is wrapped by every error caused by a malformed rules
// document.
var ErrInvalidRules = errors.New("invalid rules")

// ConfigError describes a malformed rules document.
type ConfigError struct {
	Path   []string // category, subcategory, term index
	Line   int      // 1-based source line, 0 if unknown
	Reason string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("invalid rules")
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " at %s", strings.Join(e.Path, " > "))
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ConfigError) Unwrap() error { return ErrInvalidRules }

// Load reads and compiles a rules document (JSON or YAML) from disk.
func Load(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening rules: %w", ErrInvalidRules, err)
	}
	defer f.Close()

	rs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading rules %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and compiles a rules document.
func Parse(r io.Reader) (*RuleSet, error) {
	raw, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Compile(raw), nil
}

// Decode reads a rules document of the shape
//
//	{"Category": {"Subcategory": ["term", ...]}}
//
// keeping declaration order. Documents opening with "{" are read as JSON;
// anything else (or JSON that fails to tokenize but is valid flow-style
// YAML) is read as YAML.
func Decode(r io.Reader) (Raw, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if looksLikeJSON(data) {
		raw, jerr := decodeJSON(data)
		var serr *json.SyntaxError
		if jerr == nil || !errors.As(jerr, &serr) {
			return raw, jerr
		}
		if raw, yerr := decodeYAML(data); yerr == nil {
			return raw, nil
		}
		return nil, jerr
	}
	return decodeYAML(data)
}

func decodeYAML(data []byte) (Raw, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Reason: "empty document"}
		}
		return nil, &ConfigError{Reason: err.Error()}
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, &ConfigError{Reason: "empty document"}
		}
		root = root.Content[0]
	}
	root = deref(root)
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigError{Line: root.Line, Reason: "expected a mapping of categories"}
	}

	var raw Raw
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, err := keyString(root.Content[i], nil)
		if err != nil {
			return nil, err
		}
		rc, err := decodeCategory(name, deref(root.Content[i+1]))
		if err != nil {
			return nil, err
		}
		raw = append(raw, rc)
	}
	return raw, nil
}

func decodeCategory(name string, n *yaml.Node) (RawCategory, error) {
	path := []string{name}
	if n.Kind != yaml.MappingNode {
		return RawCategory{}, &ConfigError{Path: path, Line: n.Line, Reason: "expected a mapping of subcategories"}
	}

	rc := RawCategory{Name: name}
	for i := 0; i+1 < len(n.Content); i += 2 {
		sub, err := keyString(n.Content[i], path)
		if err != nil {
			return RawCategory{}, err
		}
		terms, err := decodeTerms(append(path, sub), deref(n.Content[i+1]))
		if err != nil {
			return RawCategory{}, err
		}
		rc.Subcategories = append(rc.Subcategories, RawSubcategory{Name: sub, Terms: terms})
	}
	return rc, nil
}

func decodeTerms(path []string, n *yaml.Node) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, &ConfigError{Path: path, Line: n.Line, Reason: "expected a list of terms"}
	}

	terms := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		item = deref(item)
		if !isString(item) {
			return nil, &ConfigError{
				Path:   append(path, fmt.Sprintf("[%d]", i)),
				Line:   item.Line,
				Reason: fmt.Sprintf("term must be a string, got %s", describe(item)),
			}
		}
		terms = append(terms, item.Value)
	}
	return terms, nil
}

func keyString(n *yaml.Node, path []string) (string, error) {
	n = deref(n)
	if n.Kind != yaml.ScalarNode {
		return "", &ConfigError{Path: path, Line: n.Line, Reason: "names must be scalars"}
	}
	return n.Value, nil
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return strings.TrimPrefix(n.ShortTag(), "!!")
	default:
		return "unknown node"
	}
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
