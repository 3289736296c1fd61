package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDir sets the directory relative patterns are resolved against.
func WithDir(dir string) Option {
	return func(a *Analyzer) {
		a.dir = dir
	}
}

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	dir       string
	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // Cache to handle recursive types
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:     NewTypeGraph(),
		typeCache: make(map[types.Type]*TypeInfo),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./northwind", "entity-sync/northwind").
// It returns the import paths of the loaded packages in pattern order.
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) ([]string, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	paths := make([]string, 0, len(pkgs))

	// Register every package first so named types of any loaded package
	// are not mistaken for external ones.
	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
		paths = append(paths, pkg.PkgPath)
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return paths, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts exported named types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := a.graph.Packages[pkg.PkgPath]

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		typeID := TypeID{
			PkgPath: pkg.PkgPath,
			Name:    name,
		}

		typeInfo := a.analyzeType(typeName.Type())
		typeInfo.ID = typeID

		a.graph.Types[typeID] = typeInfo
		pkgInfo.Types = append(pkgInfo.Types, typeID)
	}
}

// analyzeType recursively analyzes a go/types.Type and returns a TypeInfo.
func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	if alias, ok := t.(*types.Alias); ok {
		return a.analyzeType(types.Unalias(alias))
	}

	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{
		GoType: t,
	}

	// Pre-cache to handle recursive types (we'll fill in details)
	a.typeCache[t] = info

	switch tt := t.(type) {
	case *types.Named:
		a.analyzeNamedType(tt, info)

	case *types.Basic:
		info.Kind = TypeKindBasic

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Array:
		info.Kind = TypeKindArray
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(tt, info)

	default:
		// Maps, interfaces, channels, etc. are marked as unknown (unsupported)
		info.Kind = TypeKindUnknown
	}

	return info
}

func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()
	if obj.Pkg() == nil {
		// predeclared, e.g. error
		info.Kind = TypeKindUnknown
		return
	}

	info.ID = TypeID{
		PkgPath: obj.Pkg().Path(),
		Name:    obj.Name(),
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(ut, info)

	case *types.Basic:
		// e.g. type ProductStatus string
		info.Kind = TypeKindAlias
		info.Underlying = a.analyzeType(ut)

	default:
		if a.isExternalPackage(obj.Pkg().Path()) {
			info.Kind = TypeKindExternal
		} else {
			info.Kind = TypeKindAlias
			info.Underlying = a.analyzeType(ut)
		}
	}
}

// isExternalPackage returns true if the package is not in our analyzed set.
func (a *Analyzer) isExternalPackage(pkgPath string) bool {
	_, ok := a.graph.Packages[pkgPath]
	return !ok
}

func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo) {
	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Exported: true,
			Type:     a.analyzeType(field.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
		})
	}
}

// GetStruct returns the TypeInfo for a named struct.
func (a *Analyzer) GetStruct(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}

	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}

	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is not a struct (kind: %s)", id, info.Kind)
	}

	return info, nil
}
