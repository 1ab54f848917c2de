package setting

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes the record in its flat form with `ver` and `pos`
// first and socket keys sorted.
func (r Record) MarshalYAML() (any, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value any) error {
		var v yaml.Node
		if err := v.Encode(value); err != nil {
			return fmt.Errorf("encode %q: %w", key, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &v)
		return nil
	}

	flat := r.Flatten()
	if err := add(keyVersion, flat[keyVersion]); err != nil {
		return nil, err
	}
	pos := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range flat[keyPosition].([]float64) {
		var n yaml.Node
		if err := n.Encode(c); err != nil {
			return nil, err
		}
		pos.Content = append(pos.Content, &n)
	}
	doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: keyPosition}, pos)

	for _, id := range r.Keys() {
		key := id.String()
		if _, ok := flat[key]; !ok {
			continue
		}
		if err := add(key, flat[key]); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// UnmarshalYAML decodes the flat form, tolerating unknown keys.
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	var flat map[string]any
	if err := value.Decode(&flat); err != nil {
		return fmt.Errorf("decode setting record: %w", err)
	}
	*r = FromFlat(flat)
	return nil
}
