package common

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML file into a node tree, keeping order and comments.
func LoadYAML(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("unmarshal to node: %w", err)
	}
	return &node, nil
}

// EncodeYAML renders a node tree with two-space indentation.
func EncodeYAML(node *yaml.Node) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteYAML encodes node and writes it to path.
func WriteYAML(path string, node *yaml.Node) error {
	data, err := EncodeYAML(node)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// YamlToMap unmarshals b and returns the top-level mapping.
func YamlToMap(b []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("expected top-level map")
	}
	return out, nil
}

// GetChildByKey returns the value paired with key in a MappingNode.
func GetChildByKey(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// SetMappingValue replaces mapNode[key] or appends it when missing.
func SetMappingValue(mapNode *yaml.Node, key string, valNode *yaml.Node) {
	if mapNode == nil || mapNode.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value == key {
			mapNode.Content[i+1] = valNode
			return
		}
	}
	mapNode.Content = append(mapNode.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, valNode)
}

// DeleteMappingKey removes key from mapNode and returns the removed value.
func DeleteMappingKey(mapNode *yaml.Node, key string) *yaml.Node {
	if mapNode == nil || mapNode.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value == key {
			val := mapNode.Content[i+1]
			mapNode.Content = append(mapNode.Content[:i], mapNode.Content[i+2:]...)
			return val
		}
	}
	return nil
}

// WriteToPath sets a scalar in the tree at a dot-delimited path, creating
// missing mappings on the way. Numeric segments index into sequences and may
// append one element past the end.
func WriteToPath(root *yaml.Node, path []string, val string) (*yaml.Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	val = strings.Trim(val, `"'`)

	cur := root
	if cur.Kind == yaml.DocumentNode && len(cur.Content) > 0 {
		cur = cur.Content[0]
	}

	for i, seg := range path {
		last := i == len(path)-1

		switch cur.Kind {
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("segment %q: expected sequence index", seg)
			}
			if idx == len(cur.Content) {
				cur.Content = append(cur.Content, &yaml.Node{Kind: yaml.MappingNode})
			}
			if idx < 0 || idx >= len(cur.Content) {
				return nil, fmt.Errorf("segment %q: index out of range", seg)
			}
			cur = cur.Content[idx]
			if last {
				writeScalar(cur, val)
			}

		case yaml.MappingNode:
			child := GetChildByKey(cur, seg)
			if child == nil {
				child = &yaml.Node{Kind: yaml.MappingNode}
				SetMappingValue(cur, seg, child)
			}
			cur = child
			if last {
				writeScalar(cur, val)
			}

		default:
			return nil, fmt.Errorf("segment %q: parent is a scalar", seg)
		}
	}

	return root, nil
}

// writeScalar keeps integers and booleans untagged and quotes everything else.
func writeScalar(node *yaml.Node, val string) {
	node.Kind = yaml.ScalarNode
	node.Content = nil
	node.Value = val
	if _, err := strconv.Atoi(val); err == nil || val == "true" || val == "false" {
		node.Tag = ""
		node.Style = 0
		return
	}
	node.Tag = "!!str"
	node.Style = yaml.DoubleQuotedStyle
}

// ListYaml writes the YAML file at filePath to w, preserving order and comments.
func ListYaml(w io.Writer, filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", filePath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", filePath)
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported extension %q: only .yaml/.yml allowed", ext)
	}

	root, err := LoadYAML(filePath)
	if err != nil {
		return fmt.Errorf("failed to read or parse %s: %w", filePath, err)
	}
	data, err := EncodeYAML(root)
	if err != nil {
		return fmt.Errorf("failed to emit %s: %w", filePath, err)
	}
	_, err = w.Write(data)
	return err
}
