package audio

import (
	"fmt"
	"time"
)

// DefaultChunk is the default segment length.
const DefaultChunk = 300 * time.Second

// Window is a half-open time range [Start, End) within an audio stream.
type Window struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Length returns End - Start.
func (w Window) Length() time.Duration {
	return w.End - w.Start
}

func (w Window) String() string {
	return fmt.Sprintf("#%d [%s, %s)", w.Index, w.Start, w.End)
}

// Plan divides total into ceil(total/chunk) consecutive windows.
// Returns nil when total or chunk is not positive.
func Plan(total, chunk time.Duration) []Window {
	if total <= 0 || chunk <= 0 {
		return nil
	}

	n := int((total + chunk - 1) / chunk)
	windows := make([]Window, n)
	for i := range n {
		start := time.Duration(i) * chunk
		windows[i] = Window{
			Index: i,
			Start: start,
			End:   min(start+chunk, total),
		}
	}
	return windows
}
