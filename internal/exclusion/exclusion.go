package exclusion

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cpperf/internal/voyage"
)

// Period is a closed interval of voyage time left out of the performance
// assessment, for example a deviation or a stoppage for engine repairs.
type Period struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason,omitempty"`
}

// Validate checks Start does not come after End.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("exclusion period needs both start and end")
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("exclusion period end %s is before start %s",
			p.End.Format(time.RFC3339), p.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether ts falls inside the period, bounds included.
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && !ts.After(p.End)
}

// Set is the union of a collection of periods.
type Set struct {
	spans []Period
}

// NewSet validates the periods and merges overlapping or touching ones.
func NewSet(periods []Period) (*Set, error) {
	sorted := make([]Period, 0, len(periods))
	for i, p := range periods {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("exclusion %d: %w", i+1, err)
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	spans := make([]Period, 0, len(sorted))
	for _, p := range sorted {
		n := len(spans)
		if n > 0 && !p.Start.After(spans[n-1].End) {
			last := &spans[n-1]
			if p.End.After(last.End) {
				last.End = p.End
			}
			last.Reason = joinReason(last.Reason, p.Reason)
			continue
		}
		spans = append(spans, p)
	}
	return &Set{spans: spans}, nil
}

// Spans returns the merged periods in chronological order.
func (s *Set) Spans() []Period {
	if s == nil {
		return nil
	}
	out := make([]Period, len(s.spans))
	copy(out, s.spans)
	return out
}

// Len is the number of merged spans.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.spans)
}

// Contains reports whether ts falls inside any span.
func (s *Set) Contains(ts time.Time) bool {
	if s == nil {
		return false
	}
	idx := sort.Search(len(s.spans), func(i int) bool {
		return !s.spans[i].End.Before(ts)
	})
	return idx < len(s.spans) && s.spans[idx].Contains(ts)
}

// Apply marks events inside the set as excluded and returns how many are.
// Events without a timestamp are never excluded. Applying twice is a no-op.
func (s *Set) Apply(events []voyage.Event) int {
	excluded := 0
	for i := range events {
		ts := events[i].Timestamp
		events[i].Excluded = ts != nil && s.Contains(*ts)
		if events[i].Excluded {
			excluded++
		}
	}
	return excluded
}

func joinReason(a, b string) string {
	if b == "" {
		return a
	}
	if a == "" {
		return b
	}
	for _, part := range strings.Split(a, reasonSep) {
		if part == b {
			return a
		}
	}
	return a + reasonSep + b
}

const reasonSep = "; "
