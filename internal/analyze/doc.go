// Package analyze is the static descriptor source: it loads Go packages
// and derives mapping descriptors from gorm-tagged structs without
// compiling them into the caller.
//
// It uses golang.org/x/tools/go/packages with AST and go/types
// to build a canonical in-memory model of structs and their fields,
// then reads gorm tags with gorm's own tag parser and naming strategy.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/external)
//   - FieldInfo: describes field name, type, tags, and embedding
//   - Describer: turns the models of one package into a descriptor set
package analyze
