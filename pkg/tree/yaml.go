package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a single YAML document. Mapping order is preserved and
// scalars are resolved by their YAML tag.
func DecodeYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return fromNode(&doc)
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			v, err := fromNode(valNode)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := &Array{Items: make([]Value, 0, len(n.Content))}
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		if json.Valid([]byte(n.Value)) {
			return Number(n.Value), nil
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return Int(i), nil
	case "!!float":
		if json.Valid([]byte(n.Value)) {
			return Number(n.Value), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}

// EncodeYAML writes v as a YAML document with two-space indentation.
func EncodeYAML(w io.Writer, v Value) error {
	n, err := toNode(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return err
	}
	return enc.Close()
}

// MarshalYAML returns the EncodeYAML form of v.
func MarshalYAML(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeYAML(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNode(v Value) (*yaml.Node, error) {
	switch node := v.(type) {
	case *Object:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, child := range node.All() {
			c, err := toNode(child)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, c)
		}
		return out, nil
	case *Array:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range node.Items {
			c, err := toNode(item)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, c)
		}
		return out, nil
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(node)}, nil
	case Number:
		tag := "!!float"
		if _, err := strconv.ParseInt(string(node), 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(node)}, nil
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(node))}, nil
	case Null, nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

// Format is a document serialization.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Decode parses data in the given format.
func Decode(f Format, data []byte) (Value, error) {
	switch f {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatJSON:
		return DecodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// Marshal serializes v in the given format.
func Marshal(f Format, v Value) ([]byte, error) {
	switch f {
	case FormatYAML:
		return MarshalYAML(v)
	case FormatJSON:
		return MarshalJSON(v)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// HasYAMLComments reports whether data carries any YAML comment. Comments do
// not survive a decode and re-encode round trip.
func HasYAMLComments(data []byte) bool {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	return nodeHasComment(&doc)
}

func nodeHasComment(n *yaml.Node) bool {
	if n.HeadComment != "" || n.LineComment != "" || n.FootComment != "" {
		return true
	}
	for _, c := range n.Content {
		if nodeHasComment(c) {
			return true
		}
	}
	return false
}
