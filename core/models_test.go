package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_DifferentContent(t *testing.T) {
	assert.NotEqual(t, IDFromContent("Alice"), IDFromContent("Bob"))
}

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		in   string
		want EntityType
	}{
		{"Person", EntityTypePerson},
		{"person", EntityTypePerson},
		{" Organization ", EntityTypeOrganization},
		{"Event", EntityTypeEvent},
		{"Concept", EntityTypeConcept},
		{"Source Material", EntityTypeSourceMaterial},
		{"source_material", EntityTypeSourceMaterial},
		{"SourceMaterial", EntityTypeSourceMaterial},
		{"Planet", EntityTypeConcept},
		{"", EntityTypeConcept},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEntityType(tt.in))
		})
	}
}

func TestEntityType_UnmarshalJSON(t *testing.T) {
	var e Entity
	err := json.Unmarshal([]byte(`{"name":"Dune","type":"Source Material","summary":"A novel."}`), &e)
	require.NoError(t, err)
	assert.Equal(t, "Dune", e.Name)
	assert.Equal(t, EntityTypeSourceMaterial, e.Type)

	err = json.Unmarshal([]byte(`{"name":"Dune","type":7}`), &e)
	assert.Error(t, err)
}

func TestEmptyFragment(t *testing.T) {
	f := EmptyFragment()

	assert.NotNil(t, f.Entities)
	assert.NotNil(t, f.Relationships)
	assert.NotNil(t, f.Details)
	assert.True(t, f.IsEmpty())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entities":[],"relationships":[],"details":[]}`, string(data))
}

func TestGraphFragment_Normalize(t *testing.T) {
	f := GraphFragment{Entities: []Entity{{Name: "Alice", Type: EntityTypePerson}}}
	f.Normalize()

	assert.Len(t, f.Entities, 1)
	assert.NotNil(t, f.Relationships)
	assert.NotNil(t, f.Details)
	assert.False(t, f.IsEmpty())

	e, r, d := f.Counts()
	assert.Equal(t, 1, e)
	assert.Equal(t, 0, r)
	assert.Equal(t, 0, d)
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "John F. Kennedy", CanonicalName("  John   F. Kennedy "))
	assert.Equal(t, "", CanonicalName("   "))
	assert.NotEqual(t, CanonicalName("alice"), CanonicalName("Alice"))
	assert.Equal(t, EntityIDFor("Alice"), EntityIDFor(" Alice "))
}

func TestDerivedIDs(t *testing.T) {
	a := SourceIDFor(1, 0, 300*time.Second)
	assert.Equal(t, a, SourceIDFor(1, 0, 300*time.Second))
	assert.NotEqual(t, a, SourceIDFor(2, 0, 300*time.Second))
	assert.NotEqual(t, a, SourceIDFor(1, 0, 301*time.Second))

	r := RelationshipIDFor(1, 2, "knows", a)
	assert.Equal(t, r, RelationshipIDFor(1, 2, "knows", a))
	assert.NotEqual(t, r, RelationshipIDFor(2, 1, "knows", a))

	d := DetailIDFor(1, "likes tea", a)
	assert.Equal(t, d, DetailIDFor(1, "likes tea", a))
	assert.NotEqual(t, d, DetailIDFor(1, "likes coffee", a))
}

func TestEpisodeStatus_String(t *testing.T) {
	assert.Equal(t, "pending", EpisodeStatusPending.String())
	assert.Equal(t, "processing", EpisodeStatusProcessing.String())
	assert.Equal(t, "complete", EpisodeStatusComplete.String())
	assert.Equal(t, "failed", EpisodeStatusFailed.String())
	assert.Equal(t, "unknown", EpisodeStatus(0).String())
}
