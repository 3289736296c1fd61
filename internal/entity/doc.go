// Package entity holds the client-side graph of tracked entities.
//
// A Manager owns the entities of one client session. It indexes them by
// key and tracks each entity's state plus the original values of every
// property changed since the last AcceptChanges. Complex (component)
// values are ComplexObjects that keep their own original values and mark
// their owning entity as modified.
//
// Entity property names are client names; the Manager's naming
// convention maps them to the server names used by the catalog. The
// Manager is not safe for concurrent mutation.
package entity
