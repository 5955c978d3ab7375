// Package output encodes command results as JSON or YAML.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format is a result encoding.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHuman, FormatJSON, FormatYAML:
		return Format(s), nil
	case "":
		return FormatHuman, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format %q (want human, json or yaml)", s)
}

// EncodeJSON produces indented JSON without HTML escaping and without a
// trailing newline.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeYAML produces YAML whose keys follow the value's JSON tags. The
// value is round-tripped through JSON so both encodings agree on names;
// map keys come out sorted.
func EncodeYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes v in the given machine format and writes it to w.
func Write(w io.Writer, v any, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = EncodeJSON(v)
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = EncodeYAML(v)
	default:
		return fmt.Errorf("format %q is not a machine encoding", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
