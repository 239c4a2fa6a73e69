package archive

import (
	"context"

	"github.com/jamesainslie/logsift/pkg/logsift/daterange"
	"github.com/jamesainslie/logsift/pkg/logsift/folder"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/segment"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// Extractor runs full segmentation over every qualifying archive entry.
type Extractor struct {
	limits  Limits
	pattern segment.Pattern
}

// NewExtractor returns an Extractor enforcing limits and recognising anchors
// with pattern.
func NewExtractor(limits Limits, pattern segment.Pattern) *Extractor {
	return &Extractor{limits: limits, pattern: pattern}
}

// Extract returns the records of every .log, .txt or extensionless entry,
// concatenated in archive order. Records keep file order; nothing is sorted.
func (x *Extractor) Extract(ctx context.Context, data []byte, filename string, rng daterange.Range) ([]types.LogRecord, error) {
	seg := segment.New(segment.Options{Pattern: x.pattern, Range: rng})
	records := []types.LogRecord{}
	files := 0

	err := walk(ctx, data, filename, x.limits, func(m member) error {
		if !types.IsLogFile(m.Path) {
			return nil
		}
		raw, skip, err := load(m, filename, x.limits)
		if err != nil || skip {
			return err
		}
		files++
		records = append(records, seg.Segment(segment.Decode(raw), folder.FromFile(m.Path), m.Path)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Get("archive").Debug("extracted archive",
		"archive", filename, "files", files, "records", len(records), "range", rng.String())
	return records, nil
}
