package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "null"
	}
}

// Value is a decoded front-matter value. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	seq  []Value
	m    *Mapping
}

func NullValue() Value            { return Value{} }
func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

func SequenceValue(items ...Value) Value {
	return Value{kind: KindSequence, seq: items}
}

func MappingValue(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, m: m}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsSequence() ([]Value, bool) { return v.seq, v.kind == KindSequence }

func (v Value) AsMapping() (*Mapping, bool) { return v.m, v.kind == KindMapping }

// Strings returns a string view of a scalar or of a sequence of scalars.
// Nested sequences and mappings inside a sequence are skipped.
func (v Value) Strings() []string {
	switch v.kind {
	case KindString, KindNumber, KindBool:
		return []string{v.String()}
	case KindSequence:
		out := make([]string, 0, len(v.seq))
		for _, item := range v.seq {
			switch item.kind {
			case KindString, KindNumber, KindBool:
				out = append(out, item.String())
			}
		}
		return out
	default:
		return nil
	}
}

// Contains reports whether s is one of v's string items. A single string
// scalar counts as a one-item sequence, which is how Obsidian treats
// `tags: capitale`.
func (v Value) Contains(s string) bool {
	for _, item := range v.Strings() {
		if item == s {
			return true
		}
	}
	return false
}

// String returns the display form of v.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, item := range v.seq {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		return v.m.String()
	default:
		return ""
	}
}

// Equal reports deep equality. It also lets go-cmp compare Values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.m.Equal(o.m)
	default:
		return true
	}
}

// UnmarshalYAML converts a yaml node into the matching variant. Timestamps
// and any other non-core scalar tags are kept as strings.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			*v = NullValue()
			return nil
		}
		return v.UnmarshalYAML(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			*v = NullValue()
			return nil
		}
		return v.UnmarshalYAML(node.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			var item Value
			if err := item.UnmarshalYAML(child); err != nil {
				return err
			}
			items = append(items, item)
		}
		*v = SequenceValue(items...)
		return nil
	case yaml.MappingNode:
		m := NewMapping()
		if err := m.UnmarshalYAML(node); err != nil {
			return err
		}
		*v = MappingValue(m)
		return nil
	case yaml.ScalarNode:
		return v.decodeScalar(node)
	default:
		return fmt.Errorf("line %d: unsupported yaml node kind %d", node.Line, node.Kind)
	}
}

func (v *Value) decodeScalar(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		*v = NullValue()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			// Out of int64 range; keep the literal.
			*v = StringValue(node.Value)
			return nil
		}
		*v = NumberValue(float64(n))
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = NumberValue(f)
	default:
		*v = StringValue(node.Value)
	}
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindNumber:
		if isIntegral(v.num) {
			return int64(v.num), nil
		}
		return v.num, nil
	case KindBool:
		return v.b, nil
	case KindSequence:
		if v.seq == nil {
			return []Value{}, nil
		}
		return v.seq, nil
	case KindMapping:
		return v.m.MarshalYAML()
	default:
		return nil, nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindSequence:
		if v.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.seq)
	case KindMapping:
		return v.m.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<53
}

// Mapping is an insertion-ordered string-keyed map of Values.
type Mapping struct {
	keys   []string
	values map[string]Value
}

func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

// Set stores value under key. An existing key keeps its position.
func (m *Mapping) Set(key string, value Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Mapping) Equal(o *Mapping) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		if !m.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

func (m *Mapping) String() string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		parts = append(parts, k+": "+m.values[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// UnmarshalYAML fills m from a mapping node. Merge keys (`<<`) contribute
// the keys the mapping does not already define.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, nodeKindName(node))
	}

	var merges []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.ShortTag() == "!!merge" {
			merges = append(merges, val)
			continue
		}
		if key.Kind == yaml.AliasNode && key.Alias != nil {
			key = key.Alias
		}
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars, got %s", key.Line, nodeKindName(key))
		}
		var decoded Value
		if err := decoded.UnmarshalYAML(val); err != nil {
			return err
		}
		m.Set(key.Value, decoded)
	}

	for _, merge := range merges {
		src := NewMapping()
		if err := src.UnmarshalYAML(merge); err != nil {
			return err
		}
		for _, k := range src.keys {
			if _, ok := m.values[k]; !ok {
				m.Set(k, src.values[k])
			}
		}
	}
	return nil
}

func (m *Mapping) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.Keys() {
		var kn, vn yaml.Node
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		if err := vn.Encode(m.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &kn, &vn)
	}
	return node, nil
}

func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func nodeKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar " + node.ShortTag()
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}
