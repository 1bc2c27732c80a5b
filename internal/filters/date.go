// Package filters narrows parsed clippings before they are rendered.
package filters

import (
	"fmt"
	"time"

	"github.com/mrlokans/kindle-cards/internal/entities"
)

// CutoffLayout is the MM-DD-YYYY format accepted by --start-date.
const CutoffLayout = "01-02-2006"

// ParseCutoff reads a MM-DD-YYYY date as midnight in loc.
func ParseCutoff(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	cutoff, err := time.ParseInLocation(CutoffLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q, expected MM-DD-YYYY: %w", value, err)
	}
	return cutoff, nil
}

// Since returns the clippings added at or after cutoff, in their original
// order. A zero cutoff keeps everything.
func Since(clippings []entities.Clipping, cutoff time.Time) []entities.Clipping {
	if cutoff.IsZero() {
		return clippings
	}

	kept := make([]entities.Clipping, 0, len(clippings))
	for _, clipping := range clippings {
		if !clipping.AddedAt.Before(cutoff) {
			kept = append(kept, clipping)
		}
	}
	return kept
}
