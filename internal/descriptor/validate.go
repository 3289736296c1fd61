package descriptor

import (
	"fmt"
	"maps"
	"slices"

	"entity-sync/internal/diagnostic"
)

// Validate performs structural validation of a descriptor set.
// It does not resolve foreign keys; the catalog builder owns that step.
func Validate(set *MappingSet) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if set == nil {
		res.AddError("set_is_nil", "descriptor set is nil", "", "")
		return res
	}

	if len(set.Types) == 0 {
		res.AddWarning("no_types", "descriptor set declares no types", "", "")
	}

	seen := map[string]struct{}{}

	for i := range set.Types {
		td := &set.Types[i]
		if td.Name == "" {
			res.AddError("missing_type_name", fmt.Sprintf("type #%d has no name", i), "", "")
			continue
		}

		qn := td.QualifiedName()
		if _, ok := seen[qn]; ok {
			res.AddError("duplicate_type", fmt.Sprintf("type %q declared more than once", qn), td.Name, "")
			continue
		}

		seen[qn] = struct{}{}

		validateType(res, set, td)
	}

	return res
}

func validateType(res *diagnostic.Diagnostics, set *MappingSet, td *TypeDescriptor) {
	if td.Base != "" {
		if _, ok := set.Lookup(td.Base); !ok {
			res.AddError("unknown_base_type",
				diagnostic.DidYouMean(fmt.Sprintf("base type %q not found", td.Base), td.Base, set.typeNames()), td.Name, "")
		}
	}

	if td.Identifier == nil && td.Base == "" {
		res.AddWarning("no_identifier", "type has no identifier and no base type", td.Name, "")
	}

	if id := td.Identifier; id != nil {
		if id.Name == "" && !id.IsComposite() {
			res.AddError("empty_identifier", "identifier needs a name or composite members", td.Name, "")
		}

		validateProperties(res, set, td.Name, id.Members)
	}

	validateProperties(res, set, td.Name, td.Properties)

	names := propertyNames(td)
	declared := slices.Sorted(maps.Keys(names))

	for _, nk := range td.NaturalKey {
		if _, ok := names[nk]; !ok {
			res.AddWarning("unknown_natural_key",
				diagnostic.DidYouMean(fmt.Sprintf("natural key property %q not declared", nk), nk, declared), td.Name, nk)
		}
	}

	if td.Version != "" {
		if _, ok := names[td.Version]; !ok {
			res.AddWarning("unknown_version",
				diagnostic.DidYouMean(fmt.Sprintf("version property %q not declared", td.Version), td.Version, declared),
				td.Name, td.Version)
		}
	}
}

func validateProperties(res *diagnostic.Diagnostics, set *MappingSet, typeName string, props []Property) {
	seen := map[string]struct{}{}

	for i := range props {
		p := &props[i]
		if p.Name == "" {
			res.AddError("missing_property_name", fmt.Sprintf("property #%d has no name", i), typeName, "")
			continue
		}

		if _, ok := seen[p.Name]; ok {
			res.AddError("duplicate_property", fmt.Sprintf("property %q declared more than once", p.Name), typeName, p.Name)
		}

		seen[p.Name] = struct{}{}

		if !p.Kind.IsValid() {
			res.AddError("invalid_kind", fmt.Sprintf("invalid property kind %q", p.Kind), typeName, p.Name)
			continue
		}

		switch p.Kind {
		case KindScalar:
			if p.Type == "" {
				res.AddError("missing_type", "scalar property needs a data type", typeName, p.Name)
			}

		case KindComponent:
			if p.Component == nil || p.Component.Name == "" {
				res.AddError("missing_component", "component property needs a named component", typeName, p.Name)
				continue
			}

			for _, cp := range p.Component.Properties {
				if cp.IsAssociation() {
					res.AddError("association_in_component", "components cannot hold associations", p.Component.Name, cp.Name)
				}
			}

			validateProperties(res, set, p.Component.Name, p.Component.Properties)

		case KindAssociation:
			validateAssociation(res, set, typeName, p)
		}
	}
}

func validateAssociation(res *diagnostic.Diagnostics, set *MappingSet, typeName string, p *Property) {
	a := p.Association
	if a == nil || a.Target == "" {
		res.AddError("missing_target", "association needs a target type", typeName, p.Name)
		return
	}

	if _, ok := set.Lookup(a.Target); !ok {
		res.AddError("unknown_target",
			diagnostic.DidYouMean(fmt.Sprintf("association target %q not found", a.Target), a.Target, set.typeNames()),
			typeName, p.Name)
	}

	if !a.Collection && !a.OneToOne && len(p.Columns) == 0 {
		res.AddError("missing_fk_columns", "scalar association needs foreign key columns", typeName, p.Name)
	}
}

func propertyNames(td *TypeDescriptor) map[string]struct{} {
	names := map[string]struct{}{}
	for _, p := range td.Properties {
		names[p.Name] = struct{}{}
	}

	if td.Identifier != nil {
		if td.Identifier.Name != "" {
			names[td.Identifier.Name] = struct{}{}
		}

		for _, m := range td.Identifier.Members {
			names[m.Name] = struct{}{}
		}
	}

	return names
}

// typeNames lists the short names of every declared type.
func (s *MappingSet) typeNames() []string {
	names := make([]string, 0, len(s.Types))
	for _, td := range s.Types {
		names = append(names, td.Name)
	}

	return names
}
