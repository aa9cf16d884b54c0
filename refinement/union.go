package refinement

import "github.com/poiesic/podmap/core"

// Union concatenates fragments in argument order. Duplicates are kept and
// the result is always structurally complete.
func Union(fragments ...core.GraphFragment) core.GraphFragment {
	var entities, relationships, details int
	for _, f := range fragments {
		entities += len(f.Entities)
		relationships += len(f.Relationships)
		details += len(f.Details)
	}

	union := core.GraphFragment{
		Entities:      make([]core.Entity, 0, entities),
		Relationships: make([]core.Relationship, 0, relationships),
		Details:       make([]core.Detail, 0, details),
	}
	for _, f := range fragments {
		union.Entities = append(union.Entities, f.Entities...)
		union.Relationships = append(union.Relationships, f.Relationships...)
		union.Details = append(union.Details, f.Details...)
	}
	return union
}
