package coder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field is one coded column.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered set of columns. Order follows first appearance.
type Fields []Field

// Set replaces the value of key in place, or appends it.
func (f *Fields) Set(key, value string) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: value})
}

// Get returns the value of key.
func (f Fields) Get(key string) (string, bool) {
	for _, fld := range f {
		if fld.Key == key {
			return fld.Value, true
		}
	}
	return "", false
}

// Map returns the fields as a map, for JSON responses.
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, fld := range f {
		m[fld.Key] = fld.Value
	}
	return m
}

// ParseFields decodes a JSON object keeping its key order. Strings are
// kept as-is, null becomes "", any other value its compact JSON text.
func ParseFields(raw string) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("response is not a JSON object")
	}

	var fields Fields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields.Set(key, scalarText(value))
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func scalarText(v json.RawMessage) string {
	switch {
	case bytes.Equal(v, []byte("null")):
		return ""
	case len(v) > 0 && v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}
