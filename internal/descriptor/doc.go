// Package descriptor defines mapping descriptors: the per-type metadata a
// relational mapping layer exposes about how the store represents a type
// (columns, identifier strategy, components and associations).
//
// Descriptors are the input of the catalog builder. They can be written by
// hand in YAML, produced at runtime from gorm models (package ormschema) or
// extracted statically from Go source (package analyze).
//
// # YAML Overview
//
//	version: "1"
//	namespace: Northwind.Model
//	types:
//	  - name: Order
//	    id:
//	      name: OrderID
//	      type: Int32
//	      generator: identity
//	    version: RowVersion
//	    properties:
//	      - name: ShipCountry
//	        type: String
//	        nullable: true
//	        columns: {name: ShipCountry, length: 15}
//	      - name: CustomerID
//	        type: String
//	        nullable: true
//	      - name: ShipTo
//	        component:
//	          name: Location
//	          properties:
//	            - {name: City, type: String, nullable: true}
//	      - name: Customer
//	        association: {target: Customer}
//	        columns: CustomerID
//
// # Property kinds
//
//   - scalar: a single mapped value (default when no component/association is given)
//   - component: an embedded value object, mapped as a complex type
//   - association: a reference to another mapped entity type
//
// # Column lists
//
// Columns accept a single name, a list of names, a single column object or a
// list of column objects. Scalars without columns default to a column named
// after the property.
package descriptor
