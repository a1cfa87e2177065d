package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// DecodeJSON parses a single JSON document, preserving object key order and
// number literals.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q at offset %d", t, dec.InputOffset())
		}
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at offset %d", dec.InputOffset())
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (*Array, error) {
	arr := &Array{Items: []Value{}}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", len(arr.Items), err)
		}
		arr.Items = append(arr.Items, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// EncodeJSON writes v with two-space indentation and a trailing newline.
// Non-ASCII text is written as UTF-8 and HTML characters are not escaped.
func EncodeJSON(w io.Writer, v Value) error {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

// MarshalJSON returns the EncodeJSON form of v.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) error {
	switch node := v.(type) {
	case *Object:
		if node.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		i := 0
		for k, child := range node.All() {
			indent(buf, depth+1)
			if err := encodeString(buf, k); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := encodeValue(buf, child, depth+1); err != nil {
				return err
			}
			if i++; i < node.Len() {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte('}')
	case *Array:
		if len(node.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range node.Items {
			indent(buf, depth+1)
			if err := encodeValue(buf, item, depth+1); err != nil {
				return err
			}
			if i < len(node.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte(']')
	case String:
		return encodeString(buf, string(node))
	case Number:
		if !json.Valid([]byte(node)) {
			return fmt.Errorf("invalid number literal %q", string(node))
		}
		buf.WriteString(string(node))
	case Bool:
		if node {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Null, nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	b, err := gojson.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func indent(buf *bytes.Buffer, depth int) {
	for range depth {
		buf.WriteString("  ")
	}
}

// Compact renders v as single-line JSON. Strings are returned without
// quotes, which suits log fields and review notes.
func Compact(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	var out bytes.Buffer
	if err := json.Compact(&out, buf.Bytes()); err != nil {
		return buf.String()
	}
	return out.String()
}
