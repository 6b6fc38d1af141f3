package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedReport = `                  precision    recall  f1-score   support

Did Not Increase       0.70      0.65      0.67       120
        Increase       0.72      0.77      0.74       130

        accuracy                           0.73       250
       macro avg       0.71      0.71      0.71       250
    weighted avg       0.71      0.71      0.71       250
`

func TestParseWellFormed(t *testing.T) {
	rep, err := Parse(strings.NewReader(wellFormedReport))
	require.NoError(t, err)

	require.Len(t, rep.Rows, 2)
	assert.Equal(t, ClassRow{Label: "Did Not Increase", Precision: 0.70, Recall: 0.65, F1: 0.67, Support: 120}, rep.Rows[0])
	assert.Equal(t, ClassRow{Label: "Increase", Precision: 0.72, Recall: 0.77, F1: 0.74, Support: 130}, rep.Rows[1])

	require.NotNil(t, rep.Accuracy)
	assert.Equal(t, 0.73, *rep.Accuracy)
}

func TestParseRowRecognition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		rows    []ClassRow
	}{
		{
			name: "numeric class labels",
			input: `              precision    recall  f1-score   support

           0       0.61      0.55      0.58       118
           1       0.64      0.69      0.66       132
`,
			rows: []ClassRow{
				{Label: "0", Precision: 0.61, Recall: 0.55, F1: 0.58, Support: 118},
				{Label: "1", Precision: 0.64, Recall: 0.69, F1: 0.66, Support: 132},
			},
		},
		{
			name: "extra blank lines and shifted positions",
			input: `Classification Report


                  precision    recall  f1-score   support


Did Not Increase       0.70      0.65      0.67       120

        Increase       0.72      0.77      0.74       130
`,
			rows: []ClassRow{
				{Label: "Did Not Increase", Precision: 0.70, Recall: 0.65, F1: 0.67, Support: 120},
				{Label: "Increase", Precision: 0.72, Recall: 0.77, F1: 0.74, Support: 130},
			},
		},
		{
			name: "class row with too few tokens",
			input: `header

Did Not Increase 0.70 0.65
Increase 0.72 0.77 0.74 130
`,
			wantErr: "expected 2 class rows, found 1",
		},
		{
			name: "class row with non-numeric metric",
			input: `header

Did Not Increase 0.70 n/a 0.67 120
Increase 0.72 0.77 0.74 130
`,
			wantErr: "expected 2 class rows, found 1",
		},
		{
			name: "more than two class rows",
			input: `Up 0.70 0.65 0.67 120
Down 0.72 0.77 0.74 130
Flat 0.50 0.50 0.50 100
`,
			wantErr: "expected 2 class rows, found 3",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: "expected 2 class rows, found 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, rep.Rows)
		})
	}
}

func TestParseAccuracyScan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{
			name: "no accuracy line",
			input: `Did Not Increase 0.70 0.65 0.67 120
Increase 0.72 0.77 0.74 130
`,
			want: nil,
		},
		{
			name: "unparseable accuracy line is skipped",
			input: `Accuracy was high this run
Did Not Increase 0.70 0.65 0.67 120
Increase 0.72 0.77 0.74 130
accuracy 0.73 250
`,
			want: floatPtr(0.73),
		},
		{
			name: "case-insensitive match",
			input: `Did Not Increase 0.70 0.65 0.67 120
Increase 0.72 0.77 0.74 130
ACCURACY 0.68 250
`,
			want: floatPtr(0.68),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, rep.Accuracy)
			} else {
				require.NotNil(t, rep.Accuracy)
				assert.Equal(t, *tt.want, *rep.Accuracy)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classification_report_rf.txt")
	require.NoError(t, os.WriteFile(path, []byte(wellFormedReport), 0o644))

	first, err := ParseFile(path)
	require.NoError(t, err)

	// Re-parsing must yield identical results; the parser keeps no state.
	second, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open report")
}

func floatPtr(v float64) *float64 { return &v }
