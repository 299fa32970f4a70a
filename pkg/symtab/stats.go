package symtab

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// percentScale converts a ratio to a percentage.
const percentScale = 100

// Stats is a point-in-time summary of an interner's size and dedup activity.
type Stats struct {
	Entries      int    // distinct interned strings
	ContentBytes int    // total bytes of interned contents
	Capacity     int    // backend-reserved capacity (see Backend.Capacity)
	Hits         uint64 // GetOrIntern calls answered from the dedup index
	Misses       uint64 // GetOrIntern calls that interned new contents
}

// Stats summarizes the interner's current state. ContentBytes walks every
// entry, so this is an O(n) call meant for diagnostics, not hot paths.
func (in *Interner) Stats() Stats {
	content := 0
	for _, s := range in.backend.All() {
		content += len(s)
	}

	return Stats{
		Entries:      in.Len(),
		ContentBytes: content,
		Capacity:     in.Capacity(),
		Hits:         in.hits,
		Misses:       in.misses,
	}
}

// HitRate returns the dedup hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// String renders the stats with humanized sizes.
func (s Stats) String() string {
	return fmt.Sprintf("%d entries, %s content, %s reserved, %d hits / %d misses (%.0f%% hit rate)",
		s.Entries,
		humanize.IBytes(uint64(s.ContentBytes)),
		humanize.IBytes(uint64(s.Capacity)),
		s.Hits,
		s.Misses,
		s.HitRate()*percentScale)
}
