package listparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/medpreis/festbetrag-api/listparser/entities"
	"github.com/medpreis/festbetrag-api/logging"
)

// Column names accepted in exemption CSV exports. The vendor exports use
// the German names, the normalized exports the English ones.
var csvColumnAliases = map[string]string{
	"pzn":          "pzn",
	"identifier":   "pzn",
	"name":         "name",
	"hersteller":   "manufacturer",
	"manufacturer": "manufacturer",
	"preis":        "price",
	"price":        "price",
}

// ReadExemptionCSV reads an exemption list in CSV form. Columns are matched
// by header name so their order does not matter; a missing pzn or price
// column fails the whole read.
func ReadExemptionCSV(path string) ([]entities.Candidate, *ScanStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close CSV file", "file", path, "error", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.Comma = detectDelimiter(path)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header of %s: %w", path, err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\uFEFF")
		if name, ok := csvColumnAliases[strings.ToLower(h)]; ok {
			cols[name] = i
		}
	}
	for _, required := range []string{"pzn", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("CSV %s is missing the %s column", path, required)
		}
	}

	stats := &ScanStats{LinesRead: 1}
	var candidates []entities.Candidate

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a torn row is a malformed line, not a fatal error
			stats.LinesRead++
			stats.Unrecognized++
			continue
		}
		stats.LinesRead++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		c := entities.Candidate{
			Pzn:          field("pzn"),
			Name:         field("name"),
			Manufacturer: field("manufacturer"),
			PriceRaw:     field("price"),
			RawLine:      strings.Join(row, string(reader.Comma)),
			LineNumber:   stats.LinesRead,
		}
		if c.Pzn == "" && c.Name == "" && c.PriceRaw == "" {
			stats.SkippedNoise++
			continue
		}

		candidates = append(candidates, c)
		stats.Records++
	}

	logging.Info("exemption CSV scan statistics",
		"file", path,
		"lines_read", stats.LinesRead,
		"records", stats.Records,
		"skipped_empty", stats.SkippedNoise,
		"torn_rows", stats.Unrecognized)

	return candidates, stats, nil
}

// detectDelimiter picks semicolon when the header line uses it, comma
// otherwise. German CSV exports are usually semicolon separated.
func detectDelimiter(path string) rune {
	f, err := os.Open(path)
	if err != nil {
		return ','
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	line := string(buf[:n])
	if i := strings.IndexByte(line, '\n'); i != -1 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
