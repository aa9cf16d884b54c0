package extraction

import (
	"fmt"
	"strings"

	"github.com/poiesic/podmap/core"
)

const extractionPromptTemplate = `You are a meticulous research analyst building a knowledge graph from a podcast.

Analyze the provided audio file. Extract all entities (people, organizations, events, concepts, source material) and the relationships between them.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- For each entity, provide its canonical name, its type and a brief summary.
- The type field must be exactly one of: %s.
- For each relationship, describe the link between a source entity and a target entity. Use the entity names exactly as they appear in "entities".
- For each key detail about an entity, state it in one sentence and name the entity exactly as it appears in "entities".
- Include only what is said or clearly implied in the audio. Do not hallucinate.
- If nothing can be identified, return {"entities":[],"relationships":[],"details":[]}.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

// BuildPrompt returns the extraction instructions with the fragment schema
// and entity types embedded.
func BuildPrompt() string {
	types := make([]string, len(core.EntityTypes))
	for i, t := range core.EntityTypes {
		types[i] = string(t)
	}
	return fmt.Sprintf(extractionPromptTemplate, FragmentSchema(), strings.Join(types, ", "))
}
