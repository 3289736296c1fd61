package save

import "entity-sync/internal/entity"

// KeyMapping pairs the temporary key an entity was saved with and the key
// the server assigned.
type KeyMapping struct {
	Temp entity.Key
	Real entity.Key
}

// Result is the reconciled outcome of one save.
type Result struct {
	// Entities are the tracked entities for the documents the server
	// returned, in response order.
	Entities []*entity.Entity

	KeyMappings []KeyMapping
}

// RealKey returns the server key for a temporary key.
func (r *Result) RealKey(temp entity.Key) (entity.Key, bool) {
	for _, km := range r.KeyMappings {
		if km.Temp.Equal(temp) {
			return km.Real, true
		}
	}

	return entity.Key{}, false
}
