// Package importer bulk-loads questions from CSV files.
//
// Each record has seven fields: number, question, four answers (A to D) and the
// correct label. The number column is ignored; stores assign their own.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"brainquiz/internal/domain"
)

const fieldsPerRecord = 7

// Inserter is the write side of the question service.
type Inserter interface {
	Insert(ctx context.Context, q domain.Question) (domain.Question, error)
}

// Report counts what a load did.
type Report struct {
	Inserted   int
	Duplicates int
}

// LoadFile opens path and loads it with Load.
func LoadFile(ctx context.Context, path string, dst Inserter) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(ctx, f, dst)
}

// Load inserts every record read from r. Questions whose text already exists are
// skipped and counted; any other error stops the load.
func Load(ctx context.Context, r io.Reader, dst Inserter) (Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = fieldsPerRecord
	reader.TrimLeadingSpace = true

	var report Report
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && isHeader(record) {
			continue
		}

		q := domain.Question{
			Text:    record[1],
			Options: [4]string{record[2], record[3], record[4], record[5]},
			Correct: strings.ToUpper(strings.TrimSpace(record[6])),
		}
		if _, err := dst.Insert(ctx, q); err != nil {
			if errors.Is(err, domain.ErrDuplicateQuestion) {
				report.Duplicates++
				slog.Debug("skipping duplicate question", "line", line)
				continue
			}
			return report, fmt.Errorf("line %d: %w", line, err)
		}
		report.Inserted++
	}
}

func isHeader(record []string) bool {
	return strings.EqualFold(strings.TrimSpace(record[len(record)-1]), "correct")
}
