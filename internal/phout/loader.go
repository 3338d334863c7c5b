package phout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const lineCutset = " \r\n\t"

// LoadFile reads the phout file at path
func LoadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open phout file: %w", err)
	}
	defer f.Close()

	return Load(f, opts)
}

// Load reads phout lines from r until EOF, a blank line or a stop condition
// of opts, and returns the kept records in file order
func Load(r io.Reader, opts Options) (*Dataset, error) {
	reader := bufio.NewReader(r)
	records := make([]Record, 0, 1024)
	lineNum := 0

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("failed to read phout line %d: %w", lineNum+1, readErr)
		}
		if readErr != nil && line == "" {
			break
		}
		lineNum++

		line = strings.Trim(line, lineCutset)
		if line == "" {
			break
		}

		fields := strings.Split(line, "\t")
		if len(fields) != FieldCount {
			return nil, &FormatError{Line: lineNum, Text: line, Err: ErrFieldCount}
		}

		rec, err := newRecord(fields, lineNum)
		if err != nil {
			return nil, &FormatError{Line: lineNum, Text: line, Err: fmt.Errorf("%w: %v", ErrTimeFormat, err)}
		}

		if !opts.start(rec.Time) {
			if readErr != nil {
				break
			}
			continue
		}

		records = append(records, rec)
		if opts.stop(len(records), rec.Time) {
			break
		}

		if readErr != nil {
			break
		}
	}

	return &Dataset{records: records}, nil
}
