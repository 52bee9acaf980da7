package listparser

import (
	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/logging"
)

// ScanStats summarizes one list file scan.
type ScanStats struct {
	LinesRead       int
	Records         int
	SkippedNoise    int
	Unrecognized    int
	DroppedPartials int
}

// ParseFestbetragFile reads a Festbetrag list and returns one candidate per
// extracted record. Malformed lines are counted, never fatal.
func ParseFestbetragFile(path string) ([]entities.Candidate, *ScanStats, error) {
	return parseListFile(path, "festbetrag list")
}

// ParseExemptionFile reads a co-payment exemption list. The lines carry a
// single trailing price and no group headers, the extractor handles both
// layouts.
func ParseExemptionFile(path string) ([]entities.Candidate, *ScanStats, error) {
	return parseListFile(path, "exemption list")
}

func parseListFile(path string, kind string) ([]entities.Candidate, *ScanStats, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, nil, err
	}

	extractor := NewExtractor()
	var candidates []entities.Candidate

	for i, raw := range lines {
		if c := extractor.Feed(raw, i+1); c != nil {
			candidates = append(candidates, *c)
		}
	}
	extractor.Flush()

	stats := &ScanStats{
		LinesRead:       len(lines),
		Records:         len(candidates),
		SkippedNoise:    extractor.SkippedNoise,
		Unrecognized:    extractor.Unrecognized,
		DroppedPartials: extractor.DroppedPartials,
	}

	logging.Info(kind+" scan statistics",
		"file", path,
		"lines_read", stats.LinesRead,
		"records", stats.Records,
		"skipped_noise", stats.SkippedNoise,
		"unrecognized_lines", stats.Unrecognized,
		"dropped_partials", stats.DroppedPartials)

	return candidates, stats, nil
}
