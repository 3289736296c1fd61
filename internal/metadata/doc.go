// Package metadata builds the structural type catalog from mapping descriptors.
//
// The catalog lists every mapped entity type and every distinct complex
// (component) type reachable from them. Each entry carries its data
// properties, navigation properties and validators in the shape the client
// runtime expects:
//
//	{
//	  "localQueryComparisonOptions": "caseInsensitiveSQL",
//	  "structuralTypes": [...],
//	  "resourceEntityTypeMap": {"Orders": "Order:#Northwind.Model"},
//	  "fkMap": {"Order.Customer": "CustomerID"}
//	}
//
// Building runs two explicit passes per type. The first registers scalar
// and component properties and indexes scalars by their column signature;
// the second registers associations and resolves their foreign keys
// through that index. A catalog is immutable once built and safe for
// concurrent reads.
package metadata
