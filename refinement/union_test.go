package refinement

import (
	"testing"

	"github.com/poiesic/podmap/core"
	"github.com/stretchr/testify/assert"
)

func fragmentWith(entities ...string) core.GraphFragment {
	f := core.EmptyFragment()
	for _, name := range entities {
		f.Entities = append(f.Entities, core.Entity{Name: name, Type: core.EntityTypePerson})
		f.Details = append(f.Details, core.Detail{Entity: name, Text: name + " spoke"})
	}
	return f
}

func TestUnion(t *testing.T) {
	a := fragmentWith("Alice")
	a.Relationships = append(a.Relationships, core.Relationship{Source: "Alice", Target: "Bob", Description: "knows"})
	b := core.EmptyFragment()
	c := fragmentWith("Alice", "Carol")

	union := Union(a, b, c)

	ea, ra, da := a.Counts()
	eb, rb, db := b.Counts()
	ec, rc, dc := c.Counts()
	entities, relationships, details := union.Counts()
	assert.Equal(t, ea+eb+ec, entities)
	assert.Equal(t, ra+rb+rc, relationships)
	assert.Equal(t, da+db+dc, details)

	// Input order is preserved and duplicates are kept.
	names := make([]string, len(union.Entities))
	for i, e := range union.Entities {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"Alice", "Alice", "Carol"}, names)
}

func TestUnion_Empty(t *testing.T) {
	for _, union := range []core.GraphFragment{Union(), Union(core.EmptyFragment(), core.GraphFragment{})} {
		assert.True(t, union.IsEmpty())
		assert.NotNil(t, union.Entities)
		assert.NotNil(t, union.Relationships)
		assert.NotNil(t, union.Details)
	}
}

func TestUnion_DoesNotAliasInputs(t *testing.T) {
	a := fragmentWith("Alice")
	union := Union(a)
	union.Entities[0].Name = "Changed"
	assert.Equal(t, "Alice", a.Entities[0].Name)
}
