// Package report parses the plain-text classification reports produced by
// the offline model evaluation pipeline. Each report describes one binary
// classifier: two per-class rows (precision, recall, F1-score, support)
// followed by summary lines, one of which carries the overall accuracy.
//
// Rows are recognized by structure rather than line position, so the parser
// tolerates extra blank lines and header variations between pipeline runs.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// classRowCount is fixed: every report evaluates one binary classifier.
const classRowCount = 2

// summaryLabels are sklearn summary rows that share the class-row token
// shape and must not be mistaken for classes.
var summaryLabels = map[string]bool{
	"accuracy":     true,
	"macro avg":    true,
	"weighted avg": true,
	"micro avg":    true,
}

// ClassRow holds the per-class metrics extracted from one report line.
type ClassRow struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the parsed form of one classification report file.
// Accuracy is nil when the file carries no parseable accuracy line.
type Report struct {
	Rows     []ClassRow `json:"rows"`
	Accuracy *float64   `json:"accuracy,omitempty"`
}

// ParseFile reads and parses the report at path. The file is re-read on
// every call; nothing is cached between invocations.
func ParseFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	rep, err := Parse(f)
	if err != nil {
		return Report{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return rep, nil
}

// Parse extracts the two class rows and the optional accuracy value from a
// classification report. It returns an error unless exactly two class rows
// are found, so malformed or truncated rows surface as a parse failure
// rather than a partial table.
func Parse(r io.Reader) (Report, error) {
	scanner := bufio.NewScanner(r)

	var rep Report
	for scanner.Scan() {
		line := scanner.Text()

		if row, ok := parseClassRow(line); ok {
			rep.Rows = append(rep.Rows, row)
			continue
		}

		if rep.Accuracy == nil {
			if acc, ok := parseAccuracy(line); ok {
				rep.Accuracy = &acc
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Report{}, fmt.Errorf("read report: %w", err)
	}

	if len(rep.Rows) != classRowCount {
		return Report{}, fmt.Errorf("expected %d class rows, found %d", classRowCount, len(rep.Rows))
	}
	return rep, nil
}

// parseClassRow matches a line whose trailing four tokens parse as
// precision, recall, F1 and support, with at least one leading token
// forming the class label. Labels with embedded spaces ("Did Not Increase")
// are rebuilt by joining the leading tokens.
func parseClassRow(line string) (ClassRow, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 5 {
		return ClassRow{}, false
	}

	n := len(tokens)
	label := strings.Join(tokens[:n-4], " ")
	if summaryLabels[strings.ToLower(label)] {
		return ClassRow{}, false
	}

	precision, err := strconv.ParseFloat(tokens[n-4], 64)
	if err != nil {
		return ClassRow{}, false
	}
	recall, err := strconv.ParseFloat(tokens[n-3], 64)
	if err != nil {
		return ClassRow{}, false
	}
	f1, err := strconv.ParseFloat(tokens[n-2], 64)
	if err != nil {
		return ClassRow{}, false
	}
	support, err := strconv.Atoi(tokens[n-1])
	if err != nil {
		return ClassRow{}, false
	}

	return ClassRow{
		Label:     label,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Support:   support,
	}, true
}

// parseAccuracy matches a summary line containing the token "accuracy" and
// extracts its second-to-last field. Lines that mention accuracy but carry
// no parseable value are skipped, never fatal.
func parseAccuracy(line string) (float64, bool) {
	if !strings.Contains(strings.ToLower(line), "accuracy") {
		return 0, false
	}

	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return 0, false
	}

	acc, err := strconv.ParseFloat(tokens[len(tokens)-2], 64)
	if err != nil {
		return 0, false
	}
	return acc, true
}
