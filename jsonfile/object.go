// Package jsonfile implements reading, flattening, rebuilding, and writing
// of nested JSON locale files.
//
// A locale file is an arbitrarily nested JSON object whose translatable
// leaves are strings:
//
//	{
//	    "menu": {
//	        "title": "Settings",
//	        "items": { "save": "Save", "close": "Close" }
//	    }
//	}
//
// Parsing preserves the key order of the source file so that two walks of
// the same document always visit leaves in the same order. Numbers, booleans,
// null, and arrays are parsed and round-tripped by Marshal, but they are
// never translated and never appear in flattened paths.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Object is a JSON object that preserves key insertion order.
// Values are string, json.Number, bool, nil, []any, or *Object.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set assigns a value, appending the key if it is new.
func (o *Object) Set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value for key and whether it exists.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a JSON locale file.
func ParseFile(path string) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	obj, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return obj, nil
}

// Parse parses JSON data into an ordered Object. The top-level value
// must be a JSON object.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("top-level JSON value must be an object, got %T", v)
	}
	return obj, nil
}

// parseValue decodes the next complete JSON value from the token stream,
// preserving object key order.
func parseValue(dec *json.Decoder) (any, error) {
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := t.(json.Delim)
	if !ok {
		// string, json.Number, bool, or nil
		return t, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("expected string key, got %v", kt)
			}
			val, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil

	case '[':
		var arr []any
		for dec.More() {
			val, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil
	}

	return nil, fmt.Errorf("unexpected token %v", t)
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteFile writes the object to path as indented JSON, creating the
// parent directory if needed.
func (o *Object) WriteFile(path string) error {
	data, err := o.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Marshal produces JSON output with 4-space indentation, preserving
// key order.
func (o *Object) Marshal() ([]byte, error) {
	var b bytes.Buffer
	if err := writeValue(&b, o, 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

const indentUnit = "    "

func writeValue(b *bytes.Buffer, v any, depth int) error {
	switch v := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(strconv.Quote(v))
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case json.Number:
		b.WriteString(v.String())
	case float64:
		// Values assembled in code rather than parsed from a file.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(data)
	case []any:
		if len(v) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, elem := range v {
			writeIndent(b, depth+1)
			if err := writeValue(b, elem, depth+1); err != nil {
				return err
			}
			if i < len(v)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte(']')
	case *Object:
		if v.Len() == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, key := range v.keys {
			writeIndent(b, depth+1)
			b.WriteString(strconv.Quote(key))
			b.WriteString(": ")
			if err := writeValue(b, v.values[key], depth+1); err != nil {
				return err
			}
			if i < len(v.keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		writeIndent(b, depth)
		b.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func writeIndent(b *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentUnit)
	}
}
