// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jsonutil encodes JSON without escaping <, > and &. Generated
// sources are full of markup, and the escaped form is unreadable when the
// values are written to disk or stored for later inspection.
package jsonutil

import (
	"bytes"
	"encoding/json"
)

// MarshalNoEscape encodes v without HTML escaping.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder always appends a newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent encodes v with indentation and without HTML escaping.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// StringOrJSON returns v when it is a string, "" when it is nil, and the
// indented encoding of v otherwise. Models occasionally emit a file body
// such as package.json as a nested object instead of a string.
func StringOrJSON(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, err := MarshalNoEscapeIndent(x, "", "  ")
		if err != nil {
			return ""
		}
		return string(b)
	}
}
