package refinement

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/podmap/core"
	"github.com/poiesic/podmap/extraction"
)

const refinementPromptTemplate = `You are a data analyst tasked with refining a knowledge graph from a podcast.

The JSON data below contains entities, relationships and details extracted independently from consecutive
segments of the same episode. The same person, organization or idea may appear several times under slightly
different names.

Apply these instructions in order of priority:
1. Merge entities that refer to the same real-world referent into one entity. Keep the most descriptive summary.
2. Re-evaluate relationships across segments: drop duplicates, keep every distinct link, and add links that only
   become evident when the segments are read together.
3. Consolidate details per entity: drop repeated details, keep every distinct fact.
4. Use exactly one canonical name per referent, and use that name everywhere in relationships and details.

Output ONLY valid JSON which complies with the schema given below, with no preamble or explanation:

%s

Here is the data:
%s`

// BuildPrompt embeds the indented union in the refinement instructions.
func BuildPrompt(union core.GraphFragment) (string, error) {
	data, err := json.MarshalIndent(union, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(refinementPromptTemplate, extraction.FragmentSchema(), data), nil
}
