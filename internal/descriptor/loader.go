package descriptor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the descriptor schema version written by this package.
const CurrentVersion = "1"

// LoadFile loads and parses a YAML descriptor file from the given path.
func LoadFile(path string) (*MappingSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a MappingSet.
func Parse(data []byte) (*MappingSet, error) {
	var set MappingSet

	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor YAML: %w", err)
	}

	ApplyDefaults(&set)

	return &set, nil
}

// ApplyDefaults fills in default values for optional fields.
// Descriptor sources other than YAML call it before handing a set to the builder.
func ApplyDefaults(set *MappingSet) {
	if set.Version == "" {
		set.Version = CurrentVersion
	}

	for i := range set.Types {
		td := &set.Types[i]
		if td.Namespace == "" {
			td.Namespace = set.Namespace
		}

		if td.Identifier != nil {
			applyIdentifierDefaults(td.Identifier, td.Namespace)
		}

		applyPropertyDefaults(td.Properties, td.Namespace)
	}
}

func applyIdentifierDefaults(id *Identifier, namespace string) {
	if !id.IsComposite() && len(id.Columns) == 0 && id.Name != "" {
		id.Columns = Columns{{Name: id.Name}}
	}

	applyPropertyDefaults(id.Members, namespace)
}

func applyPropertyDefaults(props []Property, namespace string) {
	for i := range props {
		p := &props[i]

		if p.Kind == "" {
			switch {
			case p.Component != nil:
				p.Kind = KindComponent
			case p.Association != nil:
				p.Kind = KindAssociation
			default:
				p.Kind = KindScalar
			}
		}

		if p.Kind == KindScalar && len(p.Columns) == 0 && p.Name != "" {
			p.Columns = Columns{{Name: p.Name}}
		}

		if p.Component != nil {
			if p.Component.Namespace == "" {
				p.Component.Namespace = namespace
			}

			applyPropertyDefaults(p.Component.Properties, p.Component.Namespace)
		}
	}
}

// Marshal serializes a MappingSet to YAML.
func Marshal(set *MappingSet) ([]byte, error) {
	return yaml.Marshal(set)
}

// WriteFile writes a MappingSet to the given path.
func WriteFile(set *MappingSet, path string) error {
	data, err := Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptors: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write descriptor file %s: %w", path, err)
	}

	return nil
}
