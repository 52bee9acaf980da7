package listparser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// readLines loads a list file into memory. The published dumps are a mix of
// UTF-8 and ISO-8859-1, so the content is sniffed before decoding.
func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(raw)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0), 1*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error in %s: %w", path, err)
	}

	return lines, nil
}
