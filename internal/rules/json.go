package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte("\xef\xbb\xbf")

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// jsonDecoder walks a JSON rules document token by token so that object
// keys keep their declaration order (and duplicates survive for Compile).
type jsonDecoder struct {
	data []byte
	dec  *json.Decoder
}

func decodeJSON(data []byte) (Raw, error) {
	d := &jsonDecoder{data: data, dec: json.NewDecoder(bytes.NewReader(data))}
	d.dec.UseNumber()

	tok, err := d.token(nil)
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, &ConfigError{Line: d.line(), Reason: "expected a mapping of categories"}
	}

	var raw Raw
	for d.dec.More() {
		name, err := d.key(nil)
		if err != nil {
			return nil, err
		}
		rc, err := d.category(name)
		if err != nil {
			return nil, err
		}
		raw = append(raw, rc)
	}
	if _, err := d.token(nil); err != nil {
		return nil, err
	}

	if _, err := d.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Line: d.line(), Reason: "unexpected data after the rules document"}
	}
	return raw, nil
}

func (d *jsonDecoder) category(name string) (RawCategory, error) {
	path := []string{name}
	tok, err := d.token(path)
	if err != nil {
		return RawCategory{}, err
	}
	if tok != json.Delim('{') {
		return RawCategory{}, &ConfigError{Path: path, Line: d.line(), Reason: "expected a mapping of subcategories"}
	}

	rc := RawCategory{Name: name}
	for d.dec.More() {
		sub, err := d.key(path)
		if err != nil {
			return RawCategory{}, err
		}
		terms, err := d.terms(append(path, sub))
		if err != nil {
			return RawCategory{}, err
		}
		rc.Subcategories = append(rc.Subcategories, RawSubcategory{Name: sub, Terms: terms})
	}
	if _, err := d.token(path); err != nil {
		return RawCategory{}, err
	}
	return rc, nil
}

func (d *jsonDecoder) terms(path []string) ([]string, error) {
	tok, err := d.token(path)
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('[') {
		return nil, &ConfigError{Path: path, Line: d.line(), Reason: "expected a list of terms"}
	}

	terms := []string{}
	for i := 0; d.dec.More(); i++ {
		tok, err := d.token(path)
		if err != nil {
			return nil, err
		}
		term, ok := tok.(string)
		if !ok {
			return nil, &ConfigError{
				Path:   append(path, fmt.Sprintf("[%d]", i)),
				Line:   d.line(),
				Reason: fmt.Sprintf("term must be a string, got %s", describeToken(tok)),
			}
		}
		terms = append(terms, term)
	}
	if _, err := d.token(path); err != nil {
		return nil, err
	}
	return terms, nil
}

func (d *jsonDecoder) key(path []string) (string, error) {
	tok, err := d.token(path)
	if err != nil {
		return "", err
	}
	name, ok := tok.(string)
	if !ok {
		return "", &ConfigError{Path: path, Line: d.line(), Reason: "names must be strings"}
	}
	return name, nil
}

func (d *jsonDecoder) token(path []string) (json.Token, error) {
	tok, err := d.dec.Token()
	if err == nil {
		return tok, nil
	}

	var serr *json.SyntaxError
	switch {
	case errors.As(err, &serr):
		return nil, &syntaxError{
			ConfigError: ConfigError{Path: path, Line: d.lineAt(serr.Offset), Reason: err.Error()},
			err:         serr,
		}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, &ConfigError{Path: path, Line: d.lineAt(int64(len(d.data))), Reason: "unexpected end of document"}
	default:
		return nil, &ConfigError{Path: path, Line: d.line(), Reason: err.Error()}
	}
}

// line is the source line of the token just read.
func (d *jsonDecoder) line() int { return d.lineAt(d.dec.InputOffset()) }

func (d *jsonDecoder) lineAt(offset int64) int {
	if offset > int64(len(d.data)) {
		offset = int64(len(d.data))
	}
	return 1 + bytes.Count(d.data[:offset], []byte("\n"))
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '{' {
			return "mapping"
		}
		return "list"
	case json.Number:
		if strings.ContainsAny(string(v), ".eE") {
			return "float"
		}
		return "int"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// syntaxError is a ConfigError caused by malformed JSON. Decode uses it to
// retry the document as flow-style YAML.
type syntaxError struct {
	ConfigError
	err *json.SyntaxError
}

func (e *syntaxError) Unwrap() []error { return []error{&e.ConfigError, e.err} }
