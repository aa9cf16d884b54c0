package extraction

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/poiesic/podmap/core"
)

// FragmentSchema returns the JSON schema of core.GraphFragment, indented
// for inclusion in prompts.
var FragmentSchema = sync.OnceValue(func() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&core.GraphFragment{})
	// Prompts only need the structure.
	schema.Version = ""
	schema.ID = ""

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		panic("extraction: fragment schema: " + err.Error())
	}
	return string(data)
})
