package audio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Segment is one encoded window of the source audio, stored on disk.
type Segment struct {
	Index int
	Start time.Duration
	End   time.Duration
	Path  string

	once sync.Once
	err  error
}

// Bytes reads the encoded segment.
func (s *Segment) Bytes() ([]byte, error) {
	return os.ReadFile(s.Path)
}

// DisplayName is the file name without extension. It is unique per run.
func (s *Segment) DisplayName() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Window returns the time range the segment covers.
func (s *Segment) Window() Window {
	return Window{Index: s.Index, Start: s.Start, End: s.End}
}

// Release removes the segment file. Only the first call has an effect.
func (s *Segment) Release() error {
	s.once.Do(func() {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.err = err
		}
	})
	return s.err
}

// SegmentSet is the ordered output of one Split call.
type SegmentSet struct {
	RunID    string
	Dir      string
	Duration time.Duration
	Segments []*Segment

	once sync.Once
	err  error
}

// Len returns the number of segments.
func (s *SegmentSet) Len() int {
	return len(s.Segments)
}

// Release removes every segment and the run directory.
// It is safe to call more than once and after individual segments were released.
func (s *SegmentSet) Release() error {
	s.once.Do(func() {
		var errs []error
		for _, seg := range s.Segments {
			if err := seg.Release(); err != nil {
				errs = append(errs, err)
			}
		}
		if s.Dir != "" {
			if err := os.RemoveAll(s.Dir); err != nil {
				errs = append(errs, err)
			}
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}
