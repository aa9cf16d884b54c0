package core

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored records.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntityType categorizes an extracted entity.
type EntityType string

const (
	EntityTypePerson         EntityType = "Person"
	EntityTypeOrganization   EntityType = "Organization"
	EntityTypeEvent          EntityType = "Event"
	EntityTypeConcept        EntityType = "Concept"
	EntityTypeSourceMaterial EntityType = "SourceMaterial"
)

// EntityTypes lists every valid entity type in prompt order.
var EntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeOrganization,
	EntityTypeEvent,
	EntityTypeConcept,
	EntityTypeSourceMaterial,
}

// ParseEntityType maps the spellings a model produces ("Source Material",
// "source_material", "person") onto an EntityType. Anything unrecognized
// becomes EntityTypeConcept.
func ParseEntityType(s string) EntityType {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	for _, t := range EntityTypes {
		if strings.ToLower(string(t)) == key {
			return t
		}
	}
	return EntityTypeConcept
}

// UnmarshalJSON normalizes the type while decoding model output.
func (t *EntityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseEntityType(s)
	return nil
}

// Entity is a named node in a graph fragment.
type Entity struct {
	Name    string     `json:"name" jsonschema_description:"Canonical display name of the entity"`
	Type    EntityType `json:"type" jsonschema:"enum=Person,enum=Organization,enum=Event,enum=Concept,enum=SourceMaterial" jsonschema_description:"Category of the entity"`
	Summary string     `json:"summary,omitempty" jsonschema_description:"A brief description of the entity"`
}

// Relationship links two entities by name. Names are resolved against
// stored entities at persist time, not when the fragment is built.
type Relationship struct {
	Source      string `json:"source" jsonschema_description:"Name of the source entity"`
	Target      string `json:"target" jsonschema_description:"Name of the target entity"`
	Description string `json:"description" jsonschema_description:"Description of the relationship"`
}

// Detail is a fact about a single entity, referenced by name.
type Detail struct {
	Entity string `json:"entity" jsonschema_description:"Name of the entity this detail is about"`
	Text   string `json:"detail" jsonschema_description:"The specific detail about this entity"`
}

// GraphFragment is the unit of extraction output. All three collections are
// always present; duplicates are allowed and order carries no meaning.
type GraphFragment struct {
	Entities      []Entity       `json:"entities" jsonschema_description:"People, organizations, events, concepts and source material mentioned"`
	Relationships []Relationship `json:"relationships" jsonschema_description:"Links between a source entity and a target entity"`
	Details       []Detail       `json:"details" jsonschema_description:"Key details about individual entities"`
}

// EmptyFragment returns a structurally complete fragment with no content.
func EmptyFragment() GraphFragment {
	return GraphFragment{
		Entities:      []Entity{},
		Relationships: []Relationship{},
		Details:       []Detail{},
	}
}

// Normalize replaces nil collections with empty ones.
func (f *GraphFragment) Normalize() {
	if f.Entities == nil {
		f.Entities = []Entity{}
	}
	if f.Relationships == nil {
		f.Relationships = []Relationship{}
	}
	if f.Details == nil {
		f.Details = []Detail{}
	}
}

// IsEmpty reports whether the fragment holds nothing at all.
func (f GraphFragment) IsEmpty() bool {
	return len(f.Entities) == 0 && len(f.Relationships) == 0 && len(f.Details) == 0
}

// Counts returns the sizes of the entity, relationship and detail collections.
func (f GraphFragment) Counts() (entities, relationships, details int) {
	return len(f.Entities), len(f.Relationships), len(f.Details)
}

// RunReport summarizes how a pipeline run degraded, if at all.
type RunReport struct {
	Segments           int
	EmptyFragments     int // Segments whose extraction produced nothing
	FailedExtractions  int // Segments whose extraction hit an upload, generate or parse failure
	RefinementSkipped  bool
	RefinementFellBack bool
	Duration           time.Duration
}

// EpisodeAnalysis pairs an episode with the single canonical fragment
// produced for it, along with the time range of audio that was analyzed.
type EpisodeAnalysis struct {
	EpisodeID ID
	Fragment  GraphFragment
	Start     time.Duration
	End       time.Duration
	Report    RunReport
}
