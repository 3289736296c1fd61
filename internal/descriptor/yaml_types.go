package descriptor

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"entity-sync/internal/common"
)

// StringOrArray is a string list that can be written as a single string.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if common.IsSingle(s) {
		return s[0], nil
	}

	return []string(s), nil
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// plainColumn avoids recursing into Column's own unmarshaling.
type plainColumn Column

// UnmarshalYAML accepts "Name" or {name: Name, length: 15, default: "0"}.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}

		*c = Column{Name: name}

		return nil

	case yaml.MappingNode:
		var pc plainColumn
		if err := node.Decode(&pc); err != nil {
			return err
		}

		*c = Column(pc)

		return nil

	default:
		return fmt.Errorf("expected column name or column object, got %v", node.Kind)
	}
}

// MarshalYAML writes bare names for columns without extra attributes.
func (c Column) MarshalYAML() (any, error) {
	if c.Length == 0 && c.Default == nil {
		return c.Name, nil
	}

	return plainColumn(c), nil
}

// UnmarshalYAML accepts a single column (name or object) or a list of them.
func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode, yaml.MappingNode:
		var col Column
		if err := node.Decode(&col); err != nil {
			return err
		}

		if col.Name == "" {
			*c = Columns{}
			return nil
		}

		*c = Columns{col}

		return nil

	case yaml.SequenceNode:
		cols := make(Columns, 0, len(node.Content))
		for _, item := range node.Content {
			var col Column
			if err := item.Decode(&col); err != nil {
				return err
			}

			cols = append(cols, col)
		}

		*c = cols

		return nil

	default:
		return fmt.Errorf("expected column or list of columns, got %v", node.Kind)
	}
}

// MarshalYAML writes a single column without the surrounding list.
func (c Columns) MarshalYAML() (any, error) {
	if common.IsSingle(c) {
		return c[0], nil
	}

	return []Column(c), nil
}
