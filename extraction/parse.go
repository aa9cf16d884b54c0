package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/podmap/core"
)

// StripFences removes a leading ```json or ``` fence and a trailing ``` fence.
// Text without fences is only trimmed.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseFragment decodes exactly one JSON object into a fragment.
//
// No repair is attempted. Unknown keys are ignored, a missing collection is
// treated as empty, and anything after the object is an error. On error the
// returned fragment is empty, never nil-sliced.
func ParseFragment(text string) (core.GraphFragment, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return core.EmptyFragment(), ErrNotAnObject
	}

	dec := json.NewDecoder(strings.NewReader(text))
	var fragment core.GraphFragment
	if err := dec.Decode(&fragment); err != nil {
		return core.EmptyFragment(), fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return core.EmptyFragment(), ErrTrailingData
	}

	fragment.Normalize()
	return fragment, nil
}

// ParseResponse strips fences and parses the remainder.
func ParseResponse(text string) (core.GraphFragment, error) {
	return ParseFragment(StripFences(text))
}
