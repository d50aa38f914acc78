package llms

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Parameter names used in the registry documents.
const (
	ParamContextLength    = "context_length"
	ParamTemperature      = "temperature"
	ParamTopP             = "top_p"
	ParamTopK             = "top_k"
	ParamRepeatPenalty    = "repeat_penalty"
	ParamPresencePenalty  = "presence_penalty"
	ParamFrequencyPenalty = "frequency_penalty"
	ParamStopSequences    = "stop_sequences"
	ParamMirostat         = "mirostat"
	ParamMirostatEta      = "mirostat_eta"
	ParamMaxTokens        = "max_tokens"
	ParamSeed             = "seed"
)

// Params is a flat set of inference parameters, keyed by option name.
// Values are scalars or lists of scalars.
type Params map[string]any

// Clone returns a shallow copy of the params,
// list values are copied so the clone can be modified.
func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		switch typ := v.(type) {
		case []string:
			c[k] = slices.Clone(typ)
		case []any:
			c[k] = slices.Clone(typ)
		default:
			c[k] = v
		}
	}
	return c
}

// Merge returns a copy of p with all keys of overrides applied on top.
// Override keys always win, nested values are not merged.
func (p Params) Merge(overrides Params) Params {
	merged := p.Clone()
	for k, v := range overrides.Clone() {
		merged[k] = v
	}
	return merged
}

// Normalize converts whole float values and sized integers to int in place,
// so params decoded through JSON compare equal to params decoded from YAML.
// A whole-valued float changes type: `temperature: 1.0` becomes int 1.
// Use Float to read a value regardless of its stored type.
func (p Params) Normalize() Params {
	for k, v := range p {
		switch typ := v.(type) {
		case float64:
			if typ == math.Trunc(typ) && math.Abs(typ) < math.MaxInt32 {
				p[k] = int(typ)
			}
		case int64, int32, uint64, uint32:
			p[k] = cast.ToInt(typ)
		}
	}
	return p
}

// Has returns true if the key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Float returns the value as float64.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the value as int.
func (p Params) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Strings returns the value as a list of strings,
// a single string value is returned as a list of one.
func (p Params) Strings(key string) ([]string, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	if s, ok := v.(string); ok {
		return []string{s}, true
	}
	list, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, false
	}
	return list, true
}

// Keys returns the sorted parameter names.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MarshalYAML writes the params with sorted keys.
// Strings with control characters, such as "\n\n" stop sequences, are
// double-quoted, block scalars do not load back unchanged.
func (p Params) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range p.Keys() {
		v, err := yamlNode(p[k])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid param: %s", k)
		}
		n.Content = append(n.Content, stringNode(k), v)
	}
	return n, nil
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.ContainsFunc(s, unicode.IsControl) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func yamlNode(v any) (*yaml.Node, error) {
	switch typ := v.(type) {
	case string:
		return stringNode(typ), nil
	case []string:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range typ {
			n.Content = append(n.Content, stringNode(s))
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range typ {
			c, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	}

	n := new(yaml.Node)
	if err := n.Encode(v); err != nil {
		return nil, errors.WithStack(err)
	}
	return n, nil
}
